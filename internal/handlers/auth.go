package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/toozhub/toozhub/internal/metrics"
	"github.com/toozhub/toozhub/internal/models"
	"github.com/toozhub/toozhub/internal/repo"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Customers   *repo.CustomerRepo
	Secret      []byte
	ExpireHours int
}

// ==========================
// Login (email + password, bcrypt verified, returns JWT)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if input.Email == "" || input.Password == "" {
		JSONError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	customer, err := h.Customers.GetByEmail(r.Context(), input.Email)
	if err != nil {
		if err != sql.ErrNoRows {
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		metrics.IncLogin("failure")
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(input.Password)); err != nil {
		metrics.IncLogin("failure")
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	expire := time.Duration(h.ExpireHours) * time.Hour
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"user_id": customer.ID,
		"email":   customer.Email,
		"role":    customer.Role,
		"exp":     time.Now().Add(expire).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.Secret)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	metrics.IncLogin("success")
	JSON(w, map[string]interface{}{
		"access_token": signed,
		"token_type":   "bearer",
		"user": map[string]interface{}{
			"id":    customer.ID,
			"email": customer.Email,
			"name":  customer.Name,
			"role":  customer.Role,
		},
	}, http.StatusOK)
}

// ==========================
// Register (self-service, always role user, returns a token like Login)
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Name     *string `json:"name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if input.Email == "" || input.Password == "" {
		JSONError(w, "email and password are required", http.StatusBadRequest)
		return
	}
	if len(input.Password) < 6 {
		JSONError(w, "password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	taken, err := h.Customers.EmailTaken(r.Context(), input.Email, 0)
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

	id, err := h.Customers.Create(r.Context(), &models.Customer{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	})
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	expire := time.Duration(h.ExpireHours) * time.Hour
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"user_id": id,
		"email":   input.Email,
		"role":    models.RoleUser,
		"exp":     time.Now().Add(expire).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.Secret)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	JSON(w, map[string]interface{}{
		"access_token": signed,
		"token_type":   "bearer",
		"user": map[string]interface{}{
			"id":    id,
			"email": input.Email,
			"name":  input.Name,
			"role":  models.RoleUser,
		},
	}, http.StatusCreated)
}
