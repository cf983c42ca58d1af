package repo

import (
	"context"
	"database/sql"

	"github.com/toozhub/toozhub/internal/models"
)

// SettingRepo persists configuration settings keyed by (category, key).
// Values are stored as text; coercion to the declared value_type happens
// in the handler layer against the settings schema.
type SettingRepo struct {
	db *sql.DB
}

func NewSettingRepo(db *sql.DB) *SettingRepo {
	return &SettingRepo{db: db}
}

// All returns every settings row ordered by category then key. Value holds
// the raw stored text.
func (r *SettingRepo) All(ctx context.Context) ([]models.Setting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, key, COALESCE(value, ''), value_type, description
		 FROM settings ORDER BY category, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []models.Setting
	for rows.Next() {
		var s models.Setting
		var raw string
		if err := rows.Scan(&s.Category, &s.Key, &raw, &s.ValueType, &s.Description); err != nil {
			return nil, err
		}
		s.Value = raw
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Get returns the raw text value of one setting, or sql.ErrNoRows.
func (r *SettingRepo) Get(ctx context.Context, category, key string) (string, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(value, '') FROM settings WHERE category = $1 AND key = $2`,
		category, key,
	).Scan(&raw)
	return raw, err
}

const upsertSettingSQL = `
	INSERT INTO settings (category, key, value, value_type, description)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (category, key) DO UPDATE
	SET value = EXCLUDED.value,
	    value_type = EXCLUDED.value_type,
	    description = EXCLUDED.description,
	    updated_at = now()
`

// SettingWrite is one row of a batch settings write.
type SettingWrite struct {
	Category    string
	Key         string
	Value       string
	ValueType   string
	Description *string
}

// UpsertAll writes a batch of settings in one transaction, so a mid-batch
// failure leaves every stored row untouched.
func (r *SettingRepo) UpsertAll(ctx context.Context, writes []SettingWrite) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, w := range writes {
		if _, err := tx.ExecContext(ctx, upsertSettingSQL,
			w.Category, w.Key, w.Value, w.ValueType, w.Description); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// InsertMissing writes a setting only if the key does not exist yet, so
// re-running defaults never clobbers operator changes. Returns whether a
// row was inserted.
func (r *SettingRepo) InsertMissing(ctx context.Context, category, key, value, valueType string, description *string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (category, key, value, value_type, description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (category, key) DO NOTHING
	`, category, key, value, valueType, description)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Delete removes one setting.
func (r *SettingRepo) Delete(ctx context.Context, category, key string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM settings WHERE category = $1 AND key = $2`, category, key)
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
