package repo

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/toozhub/toozhub/internal/models"
)

func TestCustomerRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	name := "Alice"
	mock.ExpectQuery(`INSERT INTO customers \(email, name, password_hash, role, city, phone, ico\)`).
		WithArgs("alice@example.com", "Alice", "hash", "user", nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	repo := NewCustomerRepo(db)
	id, err := repo.Create(context.Background(), &models.Customer{
		Email:        "alice@example.com",
		Name:         &name,
		PasswordHash: "hash",
		Role:         "user",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 7 {
		t.Errorf("got id %d, want 7", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCustomerRepo_GetByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, email, name, password_hash, role, city, phone, ico, created_at`).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	repo := NewCustomerRepo(db)
	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCustomerRepo_ListUsers(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "email", "name", "role", "city", "phone", "created_at", "vehicles_count"}).
		AddRow(1, "alice@example.com", "Alice", "user", nil, nil, nil, 2).
		AddRow(2, "bob@example.com", nil, "user", "Brno", nil, nil, 0)
	mock.ExpectQuery(`SELECT c.id, c.email, c.name, c.role, c.city, c.phone, c.created_at`).
		WithArgs(50, 0).
		WillReturnRows(rows)

	repo := NewCustomerRepo(db)
	users, err := repo.ListUsers(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].VehiclesCount != 2 {
		t.Errorf("got vehicles_count %d, want 2", users[0].VehiclesCount)
	}
	if users[1].DisplayName() != "bob@example.com" {
		t.Errorf("got display name %q, want email fallback", users[1].DisplayName())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCustomerRepo_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	city := "Praha"
	mock.ExpectExec(`UPDATE customers`).
		WithArgs(nil, nil, nil, nil, "Praha", nil, nil, 999).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewCustomerRepo(db)
	err = repo.Update(context.Background(), 999, CustomerUpdate{City: &city})
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCustomerRepo_EmailTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM customers WHERE email`).
		WithArgs("alice@example.com", 0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	repo := NewCustomerRepo(db)
	taken, err := repo.EmailTaken(context.Background(), "alice@example.com", 0)
	if err != nil {
		t.Fatalf("EmailTaken: %v", err)
	}
	if !taken {
		t.Error("expected email to be taken")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
