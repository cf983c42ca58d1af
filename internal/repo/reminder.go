package repo

import (
	"context"
	"database/sql"

	"github.com/toozhub/toozhub/internal/models"
)

// ReminderRepo persists customer maintenance reminders.
type ReminderRepo struct {
	db *sql.DB
}

func NewReminderRepo(db *sql.DB) *ReminderRepo {
	return &ReminderRepo{db: db}
}

// ListByCustomer returns a customer's reminders, soonest due first with
// undated ones last.
func (r *ReminderRepo) ListByCustomer(ctx context.Context, customerID int) ([]models.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, vehicle_id, text, due_date, done, created_at
		FROM reminders
		WHERE customer_id = $1
		ORDER BY due_date ASC NULLS LAST, id ASC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		var rem models.Reminder
		if err := rows.Scan(&rem.ID, &rem.CustomerID, &rem.VehicleID, &rem.Text, &rem.DueDate, &rem.Done, &rem.CreatedAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

// CountDue returns how many open reminders are past due.
func (r *ReminderRepo) CountDue(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reminders WHERE NOT done AND due_date IS NOT NULL AND due_date <= now()`,
	).Scan(&n)
	return n, err
}

// Create inserts a reminder and returns its id.
func (r *ReminderRepo) Create(ctx context.Context, rem *models.Reminder) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reminders (customer_id, vehicle_id, text, due_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, rem.CustomerID, rem.VehicleID, rem.Text, rem.DueDate).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SetDone marks a reminder done or not done, scoped to its owner.
func (r *ReminderRepo) SetDone(ctx context.Context, id, customerID int, done bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET done = $1 WHERE id = $2 AND customer_id = $3`,
		done, id, customerID)
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

// Delete removes a reminder, scoped to its owner.
func (r *ReminderRepo) Delete(ctx context.Context, id, customerID int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE id = $1 AND customer_id = $2`, id, customerID)
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
