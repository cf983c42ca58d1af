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

	"github.com/toozhub/toozhub/internal/audit"
	"github.com/toozhub/toozhub/internal/middleware"
	"github.com/toozhub/toozhub/internal/repo"
)

// newTestDispatcher returns an audit dispatcher backed by its own mock db
// expecting exactly one insert. Call the returned flush to drain and verify.
func newTestDispatcher(t *testing.T) (*audit.Dispatcher, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	d := audit.NewDispatcher(repo.NewAuditRepo(db), "test")
	flush := func() {
		d.Close()
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("audit expectations: %v", err)
		}
		db.Close()
	}
	return d, flush
}

// adminContext stamps the request with an authenticated admin identity.
func adminContext(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, 1)
	ctx = context.WithValue(ctx, middleware.EmailKey, "admin@example.com")
	ctx = context.WithValue(ctx, middleware.RoleKey, "developer_admin")
	return r.WithContext(ctx)
}

func TestUserHandler_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM customers WHERE email`).
		WithArgs("alice@example.com", 0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO customers`).
		WithArgs("alice@example.com", nil, sqlmock.AnyArg(), "user", nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	dispatcher, flush := newTestDispatcher(t)
	h := &UserHandler{Repo: repo.NewCustomerRepo(db), Audit: dispatcher}

	body, _ := json.Marshal(map[string]string{"email": "alice@example.com", "password": "pw123456"})
	req := adminContext(httptest.NewRequest("POST", "/admin-api/users", bytes.NewReader(body)))
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("got %d, want 201: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		ID      int    `json:"id"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ID != 5 || out.Message == "" {
		t.Errorf("unexpected response: %+v", out)
	}
	flush()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserHandler_Create_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM customers WHERE email`).
		WithArgs("alice@example.com", 0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	h := &UserHandler{Repo: repo.NewCustomerRepo(db)}

	body, _ := json.Marshal(map[string]string{"email": "alice@example.com", "password": "pw123456"})
	req := adminContext(httptest.NewRequest("POST", "/admin-api/users", bytes.NewReader(body)))
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rr.Code)
	}
	var out struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Error != "email already registered" {
		t.Errorf("got error %q", out.Error)
	}
}

func TestUserHandler_Create_Validation(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &UserHandler{Repo: repo.NewCustomerRepo(db)}

	body, _ := json.Marshal(map[string]string{"email": ""})
	req := adminContext(httptest.NewRequest("POST", "/admin-api/users", bytes.NewReader(body)))
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Fields["email"] != "required" || out.Fields["password"] != "required" {
		t.Errorf("unexpected fields: %v", out.Fields)
	}
}

func TestUserHandler_Delete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM customers`).
		WithArgs(999).
		WillReturnResult(sqlmock.NewResult(0, 0))

	h := &UserHandler{Repo: repo.NewCustomerRepo(db)}

	req := adminContext(httptest.NewRequest("DELETE", "/admin-api/users/999", nil))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "999")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rr := httptest.NewRecorder()
	h.Delete(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rr.Code)
	}
}
