package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/toozhub/toozhub/internal/audit"
	"github.com/toozhub/toozhub/internal/middleware"
	"github.com/toozhub/toozhub/internal/models"
	"github.com/toozhub/toozhub/internal/repo"
)

// ==========================
// UserHandler - admin CRUD over end-user accounts
// ==========================
type UserHandler struct {
	Repo  *repo.CustomerRepo
	Audit *audit.Dispatcher
}

// parsePage reads limit/offset query params with sane defaults.
func parsePage(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}
	return limit, offset
}

// pathID reads the {id} chi URL param.
func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r, 50)
	users, err := h.Repo.ListUsers(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []models.UserSummary{}
	}
	JSON(w, map[string]interface{}{"users": users}, http.StatusOK)
}

// ==========================
// Get User
// ==========================
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	customer, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "user not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, customer, http.StatusOK)
}

// ==========================
// Create User (email unique; password stored as bcrypt hash)
// ==========================
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string  `json:"email" validate:"required,email"`
		Password string  `json:"password" validate:"required,min=6"`
		Name     *string `json:"name"`
		City     *string `json:"city"`
		Phone    *string `json:"phone"`
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
		Role:         models.RoleUser,
		City:         input.City,
		Phone:        input.Phone,
	})
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.Audit.Record(middleware.Email(r.Context()), models.ActionCreateUser, models.EntityUser, id,
		fmt.Sprintf("created user %s", input.Email))

	JSON(w, map[string]interface{}{"id": id, "message": "user created"}, http.StatusCreated)
}

// ==========================
// Update User (partial; omitted fields keep current values)
// ==========================
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var input struct {
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Name     *string `json:"name"`
		Role     *string `json:"role"`
		City     *string `json:"city"`
		Phone    *string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	if input.Role != nil {
		switch *input.Role {
		case models.RoleUser, models.RoleService, models.RoleAdmin, models.RoleDeveloperAdmin:
		default:
			JSONValidationError(w, "validation failed", map[string]string{"role": "unknown role"}, http.StatusBadRequest)
			return
		}
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
		Role:  input.Role,
		City:  input.City,
		Phone: input.Phone,
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
			JSONError(w, "user not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.Audit.Record(middleware.Email(r.Context()), models.ActionUpdateUser, models.EntityUser, id, "")

	JSONMessage(w, "user updated", http.StatusOK)
}

// ==========================
// Delete User (vehicles and records cascade)
// ==========================
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "user not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.Audit.Record(middleware.Email(r.Context()), models.ActionDeleteUser, models.EntityUser, id, "")

	JSONMessage(w, "user deleted", http.StatusOK)
}
