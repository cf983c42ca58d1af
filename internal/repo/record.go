package repo

import (
	"context"
	"database/sql"

	"github.com/toozhub/toozhub/internal/models"
)

// RecordRepo persists service records.
type RecordRepo struct {
	db *sql.DB
}

func NewRecordRepo(db *sql.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// RecordFilter narrows List/Count. Zero values mean no filter. UserID
// filters by the owning customer, resolved through the vehicle.
type RecordFilter struct {
	VehicleID int
	ServiceID int
	UserID    int
}

// List returns service records with denormalized vehicle and service display
// fields, newest performed_at first. Filters are optional.
func (r *RecordRepo) List(ctx context.Context, limit, offset int, f RecordFilter) ([]models.ServiceRecord, error) {
	query := `
		SELECT sr.id, sr.vehicle_id, sr.service_id, sr.performed_at, sr.mileage,
		       sr.description, sr.price, sr.category, sr.note, sr.created_at,
		       v.nickname, v.brand, v.model, v.plate,
		       c.email, c.name
		FROM service_records sr
		LEFT JOIN vehicles v ON v.id = sr.vehicle_id
		LEFT JOIN customers c ON c.id = sr.service_id
		LEFT JOIN customers owner ON owner.email = v.user_email
		WHERE ($1 = 0 OR sr.vehicle_id = $1)
		  AND ($2 = 0 OR sr.service_id = $2)
		  AND ($3 = 0 OR owner.id = $3)
		ORDER BY sr.performed_at DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := r.db.QueryContext(ctx, query, f.VehicleID, f.ServiceID, f.UserID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ServiceRecord
	for rows.Next() {
		var rec models.ServiceRecord
		if err := rows.Scan(
			&rec.ID, &rec.VehicleID, &rec.ServiceID, &rec.PerformedAt, &rec.Mileage,
			&rec.Description, &rec.Price, &rec.Category, &rec.Note, &rec.CreatedAt,
			&rec.VehicleNickname, &rec.VehicleBrand, &rec.VehicleModel, &rec.VehiclePlate,
			&rec.ServiceEmail, &rec.ServiceName,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total matching the filter, for pagination.
func (r *RecordRepo) Count(ctx context.Context, f RecordFilter) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM service_records sr
		LEFT JOIN vehicles v ON v.id = sr.vehicle_id
		LEFT JOIN customers owner ON owner.email = v.user_email
		WHERE ($1 = 0 OR sr.vehicle_id = $1)
		  AND ($2 = 0 OR sr.service_id = $2)
		  AND ($3 = 0 OR owner.id = $3)
	`

	var n int
	err := r.db.QueryRowContext(ctx, query, f.VehicleID, f.ServiceID, f.UserID).Scan(&n)
	return n, err
}

// ListByVehicle returns the records of one vehicle, newest first, without the
// denormalized fields (the owner already knows their vehicle).
func (r *RecordRepo) ListByVehicle(ctx context.Context, vehicleID int) ([]models.ServiceRecord, error) {
	query := `
		SELECT id, vehicle_id, service_id, performed_at, mileage, description, price, category, note, created_at
		FROM service_records
		WHERE vehicle_id = $1
		ORDER BY performed_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ServiceRecord
	for rows.Next() {
		var rec models.ServiceRecord
		if err := rows.Scan(
			&rec.ID, &rec.VehicleID, &rec.ServiceID, &rec.PerformedAt, &rec.Mileage,
			&rec.Description, &rec.Price, &rec.Category, &rec.Note, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Create inserts a record and returns its id.
func (r *RecordRepo) Create(ctx context.Context, rec *models.ServiceRecord) (int, error) {
	query := `
		INSERT INTO service_records (vehicle_id, service_id, performed_at, mileage, description, price, category, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int
	err := r.db.QueryRowContext(ctx, query,
		rec.VehicleID, rec.ServiceID, rec.PerformedAt, rec.Mileage,
		rec.Description, rec.Price, rec.Category, rec.Note,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// RecordUpdate carries the partial fields of a PATCH. Nil means unchanged.
type RecordUpdate struct {
	VehicleID   *int
	ServiceID   *int
	PerformedAt *string
	Mileage     *int
	Description *string
	Price       *float64
	Category    *string
	Note        *string
}

// Update applies a partial update; nil fields keep current values.
// PerformedAt is an RFC 3339 string; postgres casts it.
func (r *RecordRepo) Update(ctx context.Context, id int, upd RecordUpdate) error {
	query := `
		UPDATE service_records
		SET vehicle_id   = COALESCE($1, vehicle_id),
		    service_id   = COALESCE($2, service_id),
		    performed_at = COALESCE($3::timestamptz, performed_at),
		    mileage      = COALESCE($4, mileage),
		    description  = COALESCE($5, description),
		    price        = COALESCE($6, price),
		    category     = COALESCE($7, category),
		    note         = COALESCE($8, note)
		WHERE id = $9
	`

	res, err := r.db.ExecContext(ctx, query,
		upd.VehicleID, upd.ServiceID, upd.PerformedAt, upd.Mileage,
		upd.Description, upd.Price, upd.Category, upd.Note, id,
	)
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

// Delete removes a record.
func (r *RecordRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM service_records WHERE id = $1`, id)
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
