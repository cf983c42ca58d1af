package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/toozhub/toozhub/internal/audit"
	"github.com/toozhub/toozhub/internal/middleware"
	"github.com/toozhub/toozhub/internal/models"
	"github.com/toozhub/toozhub/internal/repo"
)

// ==========================
// RecordHandler - admin CRUD over service records
// ==========================
type RecordHandler struct {
	Repo     *repo.RecordRepo
	Vehicles *repo.VehicleRepo
	Audit    *audit.Dispatcher
}

func recordFilter(r *http.Request) repo.RecordFilter {
	var f repo.RecordFilter
	if v := r.URL.Query().Get("vehicle_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			f.VehicleID = id
		}
	}
	if s := r.URL.Query().Get("service_id"); s != "" {
		if id, err := strconv.Atoi(s); err == nil && id > 0 {
			f.ServiceID = id
		}
	}
	if u := r.URL.Query().Get("user_id"); u != "" {
		if id, err := strconv.Atoi(u); err == nil && id > 0 {
			f.UserID = id
		}
	}
	return f
}

// ==========================
// List Records (paginated, denormalized vehicle/service fields)
// ==========================
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r, 20)
	filter := recordFilter(r)

	records, err := h.Repo.List(r.Context(), limit, offset, filter)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Repo.Count(r.Context(), filter)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.ServiceRecord{}
	}

	JSON(w, models.RecordPage{
		Records: records,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, http.StatusOK)
}

// ==========================
// Create Record (vehicle must exist)
// ==========================
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		VehicleID   int      `json:"vehicle_id"`
		ServiceID   *int     `json:"service_id"`
		PerformedAt string   `json:"performed_at"`
		Mileage     *int     `json:"mileage"`
		Description string   `json:"description"`
		Price       *float64 `json:"price"`
		Category    *string  `json:"category"`
		Note        *string  `json:"note"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	fields := make(map[string]string)
	if input.VehicleID <= 0 {
		fields["vehicle_id"] = "required"
	}
	if input.Description == "" {
		fields["description"] = "required"
	}
	performedAt := time.Now()
	if input.PerformedAt != "" {
		parsed, err := time.Parse(time.RFC3339, input.PerformedAt)
		if err != nil {
			fields["performed_at"] = "must be RFC 3339"
		} else {
			performedAt = parsed
		}
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	if _, err := h.Vehicles.GetByID(r.Context(), input.VehicleID); err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "vehicle not found", http.StatusBadRequest)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	id, err := h.Repo.Create(r.Context(), &models.ServiceRecord{
		VehicleID:   input.VehicleID,
		ServiceID:   input.ServiceID,
		PerformedAt: performedAt,
		Mileage:     input.Mileage,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Note:        input.Note,
	})
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.Audit.Record(middleware.Email(r.Context()), models.ActionCreateRecord, models.EntityRecord, id, input.Description)

	JSON(w, map[string]interface{}{"id": id, "message": "record created"}, http.StatusCreated)
}

// ==========================
// Update Record (partial)
// ==========================
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid record id", http.StatusBadRequest)
		return
	}

	var input struct {
		VehicleID   *int     `json:"vehicle_id"`
		ServiceID   *int     `json:"service_id"`
		PerformedAt *string  `json:"performed_at"`
		Mileage     *int     `json:"mileage"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Category    *string  `json:"category"`
		Note        *string  `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	if input.PerformedAt != nil {
		if _, err := time.Parse(time.RFC3339, *input.PerformedAt); err != nil {
			JSONValidationError(w, "validation failed", map[string]string{"performed_at": "must be RFC 3339"}, http.StatusBadRequest)
			return
		}
	}

	err = h.Repo.Update(r.Context(), id, repo.RecordUpdate{
		VehicleID:   input.VehicleID,
		ServiceID:   input.ServiceID,
		PerformedAt: input.PerformedAt,
		Mileage:     input.Mileage,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Note:        input.Note,
	})
	if err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "record not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.Audit.Record(middleware.Email(r.Context()), models.ActionUpdateRecord, models.EntityRecord, id, "")

	JSONMessage(w, "record updated", http.StatusOK)
}

// ==========================
// Delete Record
// ==========================
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid record id", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "record not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.Audit.Record(middleware.Email(r.Context()), models.ActionDeleteRecord, models.EntityRecord, id, "")

	JSONMessage(w, "record deleted", http.StatusOK)
}
