package repo

import (
	"context"
	"database/sql"

	"github.com/toozhub/toozhub/internal/models"
)

// VehicleRepo persists vehicles.
type VehicleRepo struct {
	db *sql.DB
}

func NewVehicleRepo(db *sql.DB) *VehicleRepo {
	return &VehicleRepo{db: db}
}

// List returns all vehicles with owner name and service-record count, newest first.
func (r *VehicleRepo) List(ctx context.Context, limit, offset int) ([]models.Vehicle, error) {
	query := `
		SELECT v.id, v.user_email, v.nickname, v.brand, v.model, v.year, v.plate, v.vin, v.created_at,
		       COUNT(sr.id) AS service_count,
		       c.name AS owner_name
		FROM vehicles v
		LEFT JOIN service_records sr ON sr.vehicle_id = v.id
		LEFT JOIN customers c ON c.email = v.user_email
		GROUP BY v.id, v.user_email, v.nickname, v.brand, v.model, v.year, v.plate, v.vin, v.created_at, c.name
		ORDER BY v.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVehicles(rows, true)
}

// ListByOwner returns the vehicles owned by the given customer email.
func (r *VehicleRepo) ListByOwner(ctx context.Context, email string) ([]models.Vehicle, error) {
	query := `
		SELECT v.id, v.user_email, v.nickname, v.brand, v.model, v.year, v.plate, v.vin, v.created_at,
		       COUNT(sr.id) AS service_count
		FROM vehicles v
		LEFT JOIN service_records sr ON sr.vehicle_id = v.id
		WHERE v.user_email = $1
		GROUP BY v.id, v.user_email, v.nickname, v.brand, v.model, v.year, v.plate, v.vin, v.created_at
		ORDER BY v.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVehicles(rows, false)
}

func scanVehicles(rows *sql.Rows, withOwner bool) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		dest := []interface{}{
			&v.ID, &v.UserEmail, &v.Nickname, &v.Brand, &v.Model, &v.Year, &v.Plate, &v.VIN, &v.CreatedAt,
			&v.ServiceCount,
		}
		if withOwner {
			dest = append(dest, &v.OwnerName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// GetByID returns one vehicle without the denormalized list fields.
func (r *VehicleRepo) GetByID(ctx context.Context, id int) (*models.Vehicle, error) {
	query := `
		SELECT id, user_email, nickname, brand, model, year, plate, vin, created_at
		FROM vehicles
		WHERE id = $1
	`

	v := &models.Vehicle{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&v.ID, &v.UserEmail, &v.Nickname, &v.Brand, &v.Model, &v.Year, &v.Plate, &v.VIN, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Create inserts a vehicle and returns its id.
func (r *VehicleRepo) Create(ctx context.Context, v *models.Vehicle) (int, error) {
	query := `
		INSERT INTO vehicles (user_email, nickname, brand, model, year, plate, vin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int
	err := r.db.QueryRowContext(ctx, query,
		v.UserEmail, v.Nickname, v.Brand, v.Model, v.Year, v.Plate, v.VIN,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// VehicleUpdate carries the partial fields of a PATCH. Nil means unchanged.
type VehicleUpdate struct {
	UserEmail *string
	Nickname  *string
	Brand     *string
	Model     *string
	Year      *int
	Plate     *string
	VIN       *string
}

// Update applies a partial update; nil fields keep current values.
func (r *VehicleRepo) Update(ctx context.Context, id int, upd VehicleUpdate) error {
	query := `
		UPDATE vehicles
		SET user_email = COALESCE($1, user_email),
		    nickname   = COALESCE($2, nickname),
		    brand      = COALESCE($3, brand),
		    model      = COALESCE($4, model),
		    year       = COALESCE($5, year),
		    plate      = COALESCE($6, plate),
		    vin        = COALESCE($7, vin)
		WHERE id = $8
	`

	res, err := r.db.ExecContext(ctx, query,
		upd.UserEmail, upd.Nickname, upd.Brand, upd.Model, upd.Year, upd.Plate, upd.VIN, id,
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

// Delete removes a vehicle and, via FK cascade, its service records.
func (r *VehicleRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
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
