package repo

import (
	"context"
	"database/sql"

	"github.com/toozhub/toozhub/internal/models"
)

// ReservationRepo persists service reservations.
type ReservationRepo struct {
	db *sql.DB
}

func NewReservationRepo(db *sql.DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

// ListByCustomer returns a customer's reservations, upcoming first.
func (r *ReservationRepo) ListByCustomer(ctx context.Context, customerID int) ([]models.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, vehicle_id, service_id, scheduled_at, note, status, created_at
		FROM reservations
		WHERE customer_id = $1
		ORDER BY scheduled_at DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var res models.Reservation
		if err := rows.Scan(&res.ID, &res.CustomerID, &res.VehicleID, &res.ServiceID,
			&res.ScheduledAt, &res.Note, &res.Status, &res.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

// Create inserts a pending reservation and returns its id.
func (r *ReservationRepo) Create(ctx context.Context, res *models.Reservation) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reservations (customer_id, vehicle_id, service_id, scheduled_at, note, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, res.CustomerID, res.VehicleID, res.ServiceID, res.ScheduledAt, res.Note, models.ReservationPending).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SetStatus moves a reservation to a new status, scoped to its owner.
func (r *ReservationRepo) SetStatus(ctx context.Context, id, customerID int, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = $1 WHERE id = $2 AND customer_id = $3`,
		status, id, customerID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a reservation, scoped to its owner.
func (r *ReservationRepo) Delete(ctx context.Context, id, customerID int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reservations WHERE id = $1 AND customer_id = $2`, id, customerID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
