package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/toozhub/toozhub/internal/models"
)

func TestRecordRepo_List_Filtered(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	performed := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "vehicle_id", "service_id", "performed_at", "mileage",
		"description", "price", "category", "note", "created_at",
		"nickname", "brand", "model", "plate", "email", "name",
	}).AddRow(5, 1, 3, performed, 120000, "oil change", 89.5, "maintenance", nil, nil,
		"Daily", "Skoda", "Octavia", "1AB 2345", "shop@example.com", "AutoFix")
	mock.ExpectQuery(`SELECT sr.id, sr.vehicle_id, sr.service_id`).
		WithArgs(1, 0, 0, 20, 0).
		WillReturnRows(rows)

	repo := NewRecordRepo(db)
	records, err := repo.List(context.Background(), 20, 0, RecordFilter{VehicleID: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Description != "oil change" {
		t.Errorf("got description %q", rec.Description)
	}
	if rec.ServiceName == nil || *rec.ServiceName != "AutoFix" {
		t.Errorf("unexpected service name: %v", rec.ServiceName)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRecordRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM service_records`).
		WithArgs(0, 3, 0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))

	repo := NewRecordRepo(db)
	n, err := repo.Count(context.Background(), RecordFilter{ServiceID: 3})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 17 {
		t.Errorf("got %d, want 17", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRecordRepo_Count_ByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// The owner filter resolves through vehicles.user_email.
	mock.ExpectQuery(`LEFT JOIN customers owner ON owner.email = v.user_email`).
		WithArgs(0, 0, 42).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	repo := NewRecordRepo(db)
	n, err := repo.Count(context.Background(), RecordFilter{UserID: 42})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 4 {
		t.Errorf("got %d, want 4", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRecordRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	performed := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO service_records`).
		WithArgs(1, nil, performed, nil, "brake pads", nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	repo := NewRecordRepo(db)
	id, err := repo.Create(context.Background(), &models.ServiceRecord{
		VehicleID:   1,
		PerformedAt: performed,
		Description: "brake pads",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 9 {
		t.Errorf("got id %d, want 9", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
