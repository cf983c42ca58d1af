package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"

	"github.com/toozhub/toozhub/internal/repo"
)

func serviceGetRequest(id string) *http.Request {
	req := httptest.NewRequest("GET", "/admin-api/services/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestServiceHandler_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, email, name, password_hash`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "city", "phone", "ico", "created_at"}).
			AddRow(3, "shop@example.com", "AutoFix", "x", "service", nil, nil, "12345678", nil))

	h := &ServiceHandler{Repo: repo.NewCustomerRepo(db)}
	rr := httptest.NewRecorder()
	h.Get(rr, serviceGetRequest("3"))

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Email != "shop@example.com" || out.Role != "service" {
		t.Errorf("unexpected body: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestServiceHandler_Get_EndUserRowIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, email, name, password_hash`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "city", "phone", "ico", "created_at"}).
			AddRow(7, "alice@example.com", "Alice", "x", "user", nil, nil, nil, nil))

	h := &ServiceHandler{Repo: repo.NewCustomerRepo(db)}
	rr := httptest.NewRecorder()
	h.Get(rr, serviceGetRequest("7"))

	if rr.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rr.Code)
	}
}

func TestServiceHandler_Create_MissingFields(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &ServiceHandler{Repo: repo.NewCustomerRepo(db)}

	body, _ := json.Marshal(map[string]string{"email": ""})
	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest("POST", "/admin-api/services", bytes.NewReader(body)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Fields["email"] != "required" || out.Fields["password"] != "required" {
		t.Errorf("unexpected fields: %v", out.Fields)
	}
}
