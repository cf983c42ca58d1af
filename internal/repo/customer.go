package repo

import (
	"context"
	"database/sql"

	"github.com/toozhub/toozhub/internal/models"
)

// ==========================
// CustomerRepo
// ==========================
type CustomerRepo struct {
	db *sql.DB
}

func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

// ==========================
// Get By Email
// ==========================
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	query := `
		SELECT id, email, name, password_hash, role, city, phone, ico, created_at
		FROM customers
		WHERE email = $1
	`

	c := &models.Customer{}
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&c.ID, &c.Email, &c.Name, &c.PasswordHash, &c.Role, &c.City, &c.Phone, &c.ICO, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ==========================
// Get By ID
// ==========================
func (r *CustomerRepo) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	query := `
		SELECT id, email, name, password_hash, role, city, phone, ico, created_at
		FROM customers
		WHERE id = $1
	`

	c := &models.Customer{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Email, &c.Name, &c.PasswordHash, &c.Role, &c.City, &c.Phone, &c.ICO, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ==========================
// List Users (with vehicle counts)
// ==========================
func (r *CustomerRepo) ListUsers(ctx context.Context, limit, offset int) ([]models.UserSummary, error) {
	query := `
		SELECT c.id, c.email, c.name, c.role, c.city, c.phone, c.created_at,
		       COUNT(v.id) AS vehicles_count
		FROM customers c
		LEFT JOIN vehicles v ON v.user_email = c.email
		GROUP BY c.id, c.email, c.name, c.role, c.city, c.phone, c.created_at
		ORDER BY c.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.UserSummary
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.City, &u.Phone, &u.CreatedAt, &u.VehiclesCount); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ==========================
// List Services (role service or developer_admin)
// ==========================
func (r *CustomerRepo) ListServices(ctx context.Context, limit, offset int) ([]models.UserSummary, error) {
	query := `
		SELECT id, email, name, role, city, phone, ico, created_at
		FROM customers
		WHERE role = 'service' OR role = 'developer_admin'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.UserSummary
	for rows.Next() {
		var s models.UserSummary
		if err := rows.Scan(&s.ID, &s.Email, &s.Name, &s.Role, &s.City, &s.Phone, &s.ICO, &s.CreatedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// ==========================
// Create
// ==========================
func (r *CustomerRepo) Create(ctx context.Context, c *models.Customer) (int, error) {
	query := `
		INSERT INTO customers (email, name, password_hash, role, city, phone, ico)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int
	err := r.db.QueryRowContext(ctx, query,
		c.Email, c.Name, c.PasswordHash, c.Role, c.City, c.Phone, c.ICO,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// CustomerUpdate carries the partial fields of a PATCH. Nil means unchanged.
type CustomerUpdate struct {
	Email        *string
	Name         *string
	PasswordHash *string
	Role         *string
	City         *string
	Phone        *string
	ICO          *string
}

// ==========================
// Update (partial; nil fields keep current values)
// ==========================
func (r *CustomerRepo) Update(ctx context.Context, id int, upd CustomerUpdate) error {
	query := `
		UPDATE customers
		SET email         = COALESCE($1, email),
		    name          = COALESCE($2, name),
		    password_hash = COALESCE($3, password_hash),
		    role          = COALESCE($4, role),
		    city          = COALESCE($5, city),
		    phone         = COALESCE($6, phone),
		    ico           = COALESCE($7, ico)
		WHERE id = $8
	`

	res, err := r.db.ExecContext(ctx, query,
		upd.Email, upd.Name, upd.PasswordHash, upd.Role, upd.City, upd.Phone, upd.ICO, id,
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

// ==========================
// Delete
// ==========================
func (r *CustomerRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
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

// EmailTaken reports whether another customer (id != excludeID) already uses email.
// Pass excludeID 0 when creating.
func (r *CustomerRepo) EmailTaken(ctx context.Context, email string, excludeID int) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM customers WHERE email = $1 AND id <> $2`,
		email, excludeID,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
