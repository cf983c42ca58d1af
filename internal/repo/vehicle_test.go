package repo

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/toozhub/toozhub/internal/models"
)

func TestVehicleRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "user_email", "nickname", "brand", "model", "year", "plate", "vin", "created_at",
		"service_count", "owner_name",
	}).
		AddRow(1, "alice@example.com", "Daily", "Skoda", "Octavia", 2019, "1AB 2345", nil, nil, 3, "Alice").
		AddRow(2, "bob@example.com", nil, nil, nil, nil, nil, nil, nil, 0, nil)
	mock.ExpectQuery(`SELECT v.id, v.user_email, v.nickname`).
		WithArgs(50, 0).
		WillReturnRows(rows)

	repo := NewVehicleRepo(db)
	vehicles, err := repo.List(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(vehicles) != 2 {
		t.Fatalf("got %d vehicles, want 2", len(vehicles))
	}
	if vehicles[0].ServiceCount != 3 {
		t.Errorf("got service_count %d, want 3", vehicles[0].ServiceCount)
	}
	if vehicles[0].DisplayName() != "Daily" {
		t.Errorf("got display name %q, want Daily", vehicles[0].DisplayName())
	}
	if vehicles[1].DisplayName() != "(unnamed)" {
		t.Errorf("got display name %q, want (unnamed)", vehicles[1].DisplayName())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestVehicleRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	nickname := "Daily"
	mock.ExpectQuery(`INSERT INTO vehicles \(user_email, nickname, brand, model, year, plate, vin\)`).
		WithArgs("alice@example.com", "Daily", nil, nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	repo := NewVehicleRepo(db)
	id, err := repo.Create(context.Background(), &models.Vehicle{
		UserEmail: "alice@example.com",
		Nickname:  &nickname,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 42 {
		t.Errorf("got id %d, want 42", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestVehicleRepo_Update_Partial(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE vehicles`).
		WithArgs(nil, nil, nil, nil, 2021, "2CD 6789", nil, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	year := 2021
	plate := "2CD 6789"
	repo := NewVehicleRepo(db)
	err = repo.Update(context.Background(), 1, VehicleUpdate{Year: &year, Plate: &plate})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestVehicleRepo_Delete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM vehicles`).
		WithArgs(999).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewVehicleRepo(db)
	err = repo.Delete(context.Background(), 999)
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
