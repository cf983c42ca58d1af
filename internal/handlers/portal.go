package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/toozhub/toozhub/internal/middleware"
	"github.com/toozhub/toozhub/internal/models"
	"github.com/toozhub/toozhub/internal/repo"
)

// PortalHandler serves the end-user surface. Every operation is scoped to
// the authenticated customer; owning is checked before any mutation.
type PortalHandler struct {
	Customers    *repo.CustomerRepo
	Vehicles     *repo.VehicleRepo
	Records      *repo.RecordRepo
	Reminders    *repo.ReminderRepo
	Reservations *repo.ReservationRepo
}

// Me returns the authenticated customer's profile.
func (h *PortalHandler) Me(w http.ResponseWriter, r *http.Request) {
	customer, err := h.Customers.GetByID(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "account not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, customer, http.StatusOK)
}

// MyVehicles lists the caller's vehicles with service counts.
func (h *PortalHandler) MyVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Vehicles.ListByOwner(r.Context(), middleware.Email(r.Context()))
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	JSON(w, map[string]interface{}{"vehicles": vehicles}, http.StatusOK)
}

// AddVehicle creates a vehicle owned by the caller.
func (h *PortalHandler) AddVehicle(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Nickname *string `json:"nickname"`
		Brand    *string `json:"brand"`
		Model    *string `json:"model"`
		Year     *int    `json:"year"`
		Plate    *string `json:"plate"`
		VIN      *string `json:"vin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	hasName := input.Nickname != nil && *input.Nickname != ""
	hasBrand := input.Brand != nil && *input.Brand != ""
	if !hasName && !hasBrand {
		JSONValidationError(w, "validation failed",
			map[string]string{"nickname": "nickname or brand required"}, http.StatusBadRequest)
		return
	}

	id, err := h.Vehicles.Create(r.Context(), &models.Vehicle{
		UserEmail: middleware.Email(r.Context()),
		Nickname:  input.Nickname,
		Brand:     input.Brand,
		Model:     input.Model,
		Year:      input.Year,
		Plate:     input.Plate,
		VIN:       input.VIN,
	})
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, map[string]interface{}{"id": id, "message": "vehicle created"}, http.StatusCreated)
}

// ownVehicle loads a vehicle and verifies the caller owns it. Writes the
// error response and returns nil when not.
func (h *PortalHandler) ownVehicle(w http.ResponseWriter, r *http.Request) *models.Vehicle {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid vehicle id", http.StatusBadRequest)
		return nil
	}
	vehicle, err := h.Vehicles.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "vehicle not found", http.StatusNotFound)
			return nil
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return nil
	}
	if vehicle.UserEmail != middleware.Email(r.Context()) {
		// Not yours: indistinguishable from missing.
		JSONError(w, "vehicle not found", http.StatusNotFound)
		return nil
	}
	return vehicle
}

// MyVehicle returns one of the caller's vehicles.
func (h *PortalHandler) MyVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle := h.ownVehicle(w, r)
	if vehicle == nil {
		return
	}
	JSON(w, vehicle, http.StatusOK)
}

// UpdateMyVehicle applies a partial update to one of the caller's vehicles.
func (h *PortalHandler) UpdateMyVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle := h.ownVehicle(w, r)
	if vehicle == nil {
		return
	}

	var input struct {
		Nickname *string `json:"nickname"`
		Brand    *string `json:"brand"`
		Model    *string `json:"model"`
		Year     *int    `json:"year"`
		Plate    *string `json:"plate"`
		VIN      *string `json:"vin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	err := h.Vehicles.Update(r.Context(), vehicle.ID, repo.VehicleUpdate{
		Nickname: input.Nickname,
		Brand:    input.Brand,
		Model:    input.Model,
		Year:     input.Year,
		Plate:    input.Plate,
		VIN:      input.VIN,
	})
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSONMessage(w, "vehicle updated", http.StatusOK)
}

// DeleteMyVehicle removes one of the caller's vehicles with its records.
func (h *PortalHandler) DeleteMyVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle := h.ownVehicle(w, r)
	if vehicle == nil {
		return
	}
	if err := h.Vehicles.Delete(r.Context(), vehicle.ID); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSONMessage(w, "vehicle deleted", http.StatusOK)
}

// MyVehicleRecords returns the service history of one of the caller's vehicles.
func (h *PortalHandler) MyVehicleRecords(w http.ResponseWriter, r *http.Request) {
	vehicle := h.ownVehicle(w, r)
	if vehicle == nil {
		return
	}
	records, err := h.Records.ListByVehicle(r.Context(), vehicle.ID)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.ServiceRecord{}
	}
	JSON(w, map[string]interface{}{"records": records}, http.StatusOK)
}

// MyReminders lists the caller's reminders.
func (h *PortalHandler) MyReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.Reminders.ListByCustomer(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	JSON(w, map[string]interface{}{"reminders": reminders}, http.StatusOK)
}

// AddReminder creates a reminder for the caller.
func (h *PortalHandler) AddReminder(w http.ResponseWriter, r *http.Request) {
	var input struct {
		VehicleID *int    `json:"vehicle_id"`
		Text      string  `json:"text"`
		DueDate   *string `json:"due_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if input.Text == "" {
		JSONValidationError(w, "validation failed", map[string]string{"text": "required"}, http.StatusBadRequest)
		return
	}
	var due *time.Time
	if input.DueDate != nil && *input.DueDate != "" {
		parsed, err := time.Parse(time.RFC3339, *input.DueDate)
		if err != nil {
			JSONValidationError(w, "validation failed", map[string]string{"due_date": "must be RFC 3339"}, http.StatusBadRequest)
			return
		}
		due = &parsed
	}

	id, err := h.Reminders.Create(r.Context(), &models.Reminder{
		CustomerID: middleware.UserID(r.Context()),
		VehicleID:  input.VehicleID,
		Text:       input.Text,
		DueDate:    due,
	})
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, map[string]interface{}{"id": id, "message": "reminder created"}, http.StatusCreated)
}

// SetReminderDone toggles a reminder's done flag.
func (h *PortalHandler) SetReminderDone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid reminder id", http.StatusBadRequest)
		return
	}
	var input struct {
		Done bool `json:"done"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.Reminders.SetDone(r.Context(), id, middleware.UserID(r.Context()), input.Done); err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "reminder not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSONMessage(w, "reminder updated", http.StatusOK)
}

// DeleteReminder removes one of the caller's reminders.
func (h *PortalHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid reminder id", http.StatusBadRequest)
		return
	}
	if err := h.Reminders.Delete(r.Context(), id, middleware.UserID(r.Context())); err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "reminder not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSONMessage(w, "reminder deleted", http.StatusOK)
}

// MyReservations lists the caller's reservations.
func (h *PortalHandler) MyReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.Reservations.ListByCustomer(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if reservations == nil {
		reservations = []models.Reservation{}
	}
	JSON(w, map[string]interface{}{"reservations": reservations}, http.StatusOK)
}

// AddReservation books one of the caller's vehicles into a service.
func (h *PortalHandler) AddReservation(w http.ResponseWriter, r *http.Request) {
	var input struct {
		VehicleID   int     `json:"vehicle_id"`
		ServiceID   *int    `json:"service_id"`
		ScheduledAt string  `json:"scheduled_at"`
		Note        *string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	fields := make(map[string]string)
	if input.VehicleID <= 0 {
		fields["vehicle_id"] = "required"
	}
	scheduledAt, err := time.Parse(time.RFC3339, input.ScheduledAt)
	if err != nil {
		fields["scheduled_at"] = "must be RFC 3339"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	vehicle, err := h.Vehicles.GetByID(r.Context(), input.VehicleID)
	if err != nil || vehicle.UserEmail != middleware.Email(r.Context()) {
		JSONError(w, "vehicle not found", http.StatusNotFound)
		return
	}

	id, err := h.Reservations.Create(r.Context(), &models.Reservation{
		CustomerID:  middleware.UserID(r.Context()),
		VehicleID:   input.VehicleID,
		ServiceID:   input.ServiceID,
		ScheduledAt: scheduledAt,
		Note:        input.Note,
	})
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, map[string]interface{}{"id": id, "message": "reservation created"}, http.StatusCreated)
}

// CancelReservation moves one of the caller's reservations to cancelled.
func (h *PortalHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid reservation id", http.StatusBadRequest)
		return
	}
	err = h.Reservations.SetStatus(r.Context(), id, middleware.UserID(r.Context()), models.ReservationCancelled)
	if err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "reservation not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSONMessage(w, "reservation cancelled", http.StatusOK)
}
