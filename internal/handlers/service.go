package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/toozhub/toozhub/internal/audit"
	"github.com/toozhub/toozhub/internal/middleware"
	"github.com/toozhub/toozhub/internal/models"
	"github.com/toozhub/toozhub/internal/repo"
)

// ==========================
// ServiceHandler - admin CRUD over service (repair shop) accounts.
// Services live in the customers table with role 'service'.
// ==========================
type ServiceHandler struct {
	Repo  *repo.CustomerRepo
	Audit *audit.Dispatcher
}

// ==========================
// List Services
// ==========================
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r, 100)
	services, err := h.Repo.ListServices(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if services == nil {
		services = []models.UserSummary{}
	}
	JSON(w, map[string]interface{}{"services": services}, http.StatusOK)
}

// ==========================
// Get Service
// ==========================
func (h *ServiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid service id", http.StatusBadRequest)
		return
	}

	service, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "service not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	// End-user rows share the table but are not addressable here.
	if service.Role == models.RoleUser {
		JSONError(w, "service not found", http.StatusNotFound)
		return
	}
	JSON(w, service, http.StatusOK)
}

// ==========================
// Create Service
// ==========================
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string  `json:"email" validate:"required,email"`
		Password string  `json:"password" validate:"required,min=6"`
		Name     *string `json:"name"`
		City     *string `json:"city"`
		Phone    *string `json:"phone"`
		ICO      *string `json:"ico"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if fields := ValidateStruct(input); fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	taken, err := h.Repo.EmailTaken(r.Context(), input.Email, 0)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if taken {
		JSONError(w, "email already registered", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	id, err := h.Repo.Create(r.Context(), &models.Customer{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: string(hash),
		Role:         models.RoleService,
		City:         input.City,
		Phone:        input.Phone,
		ICO:          input.ICO,
	})
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.Audit.Record(middleware.Email(r.Context()), models.ActionCreateService, models.EntityService, id,
		fmt.Sprintf("created service %s", input.Email))

	JSON(w, map[string]interface{}{"id": id, "message": "service created"}, http.StatusCreated)
}

// ==========================
// Update Service (partial; role stays in the service family)
// ==========================
func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid service id", http.StatusBadRequest)
		return
	}

	var input struct {
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Name     *string `json:"name"`
		City     *string `json:"city"`
		Phone    *string `json:"phone"`
		ICO      *string `json:"ico"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	if input.Email != nil {
		taken, err := h.Repo.EmailTaken(r.Context(), *input.Email, id)
		if err != nil {
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		if taken {
			JSONError(w, "email already registered", http.StatusBadRequest)
			return
		}
	}

	upd := repo.CustomerUpdate{
		Email: input.Email,
		Name:  input.Name,
		City:  input.City,
		Phone: input.Phone,
		ICO:   input.ICO,
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		hashed := string(hash)
		upd.PasswordHash = &hashed
	}

	if err := h.Repo.Update(r.Context(), id, upd); err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "service not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.Audit.Record(middleware.Email(r.Context()), models.ActionUpdateService, models.EntityService, id, "")

	JSONMessage(w, "service updated", http.StatusOK)
}

// ==========================
// Delete Service (records keep rows, service_id set to NULL)
// ==========================
func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid service id", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "service not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.Audit.Record(middleware.Email(r.Context()), models.ActionDeleteService, models.EntityService, id, "")

	JSONMessage(w, "service deleted", http.StatusOK)
}
