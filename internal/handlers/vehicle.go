package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/toozhub/toozhub/internal/audit"
	"github.com/toozhub/toozhub/internal/middleware"
	"github.com/toozhub/toozhub/internal/models"
	"github.com/toozhub/toozhub/internal/repo"
)

// ==========================
// VehicleHandler - admin CRUD over vehicles
// ==========================
type VehicleHandler struct {
	Repo      *repo.VehicleRepo
	Customers *repo.CustomerRepo
	Audit     *audit.Dispatcher
}

// ==========================
// List Vehicles (with owner name and service count)
// ==========================
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r, 100)
	vehicles, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	JSON(w, map[string]interface{}{"vehicles": vehicles}, http.StatusOK)
}

// ==========================
// Get Vehicle
// ==========================
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid vehicle id", http.StatusBadRequest)
		return
	}

	vehicle, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "vehicle not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, vehicle, http.StatusOK)
}

// ==========================
// Create Vehicle (owner must exist)
// ==========================
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserEmail string  `json:"user_email" validate:"required,email"`
		Nickname  *string `json:"nickname"`
		Brand     *string `json:"brand"`
		Model     *string `json:"model"`
		Year      *int    `json:"year"`
		Plate     *string `json:"plate"`
		VIN       *string `json:"vin"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if fields := ValidateStruct(input); fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	if _, err := h.Customers.GetByEmail(r.Context(), input.UserEmail); err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "owner not found", http.StatusBadRequest)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	vehicle := &models.Vehicle{
		UserEmail: input.UserEmail,
		Nickname:  input.Nickname,
		Brand:     input.Brand,
		Model:     input.Model,
		Year:      input.Year,
		Plate:     input.Plate,
		VIN:       input.VIN,
	}
	id, err := h.Repo.Create(r.Context(), vehicle)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.Audit.Record(middleware.Email(r.Context()), models.ActionCreateVehicle, models.EntityVehicle, id,
		fmt.Sprintf("created vehicle %s for %s", vehicle.DisplayName(), input.UserEmail))

	JSON(w, map[string]interface{}{"id": id, "message": "vehicle created"}, http.StatusCreated)
}

// ==========================
// Update Vehicle (partial)
// ==========================
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid vehicle id", http.StatusBadRequest)
		return
	}

	var input struct {
		UserEmail *string `json:"user_email"`
		Nickname  *string `json:"nickname"`
		Brand     *string `json:"brand"`
		Model     *string `json:"model"`
		Year      *int    `json:"year"`
		Plate     *string `json:"plate"`
		VIN       *string `json:"vin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	if input.UserEmail != nil {
		if _, err := h.Customers.GetByEmail(r.Context(), *input.UserEmail); err != nil {
			if err == sql.ErrNoRows {
				JSONError(w, "owner not found", http.StatusBadRequest)
				return
			}
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
	}

	err = h.Repo.Update(r.Context(), id, repo.VehicleUpdate{
		UserEmail: input.UserEmail,
		Nickname:  input.Nickname,
		Brand:     input.Brand,
		Model:     input.Model,
		Year:      input.Year,
		Plate:     input.Plate,
		VIN:       input.VIN,
	})
	if err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "vehicle not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.Audit.Record(middleware.Email(r.Context()), models.ActionUpdateVehicle, models.EntityVehicle, id, "")

	JSONMessage(w, "vehicle updated", http.StatusOK)
}

// ==========================
// Delete Vehicle (service records cascade)
// ==========================
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid vehicle id", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "vehicle not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.Audit.Record(middleware.Email(r.Context()), models.ActionDeleteVehicle, models.EntityVehicle, id, "")

	JSONMessage(w, "vehicle deleted", http.StatusOK)
}
