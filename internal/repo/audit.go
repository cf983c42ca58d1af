package repo

import (
	"context"
	"database/sql"

	"github.com/toozhub/toozhub/internal/models"
)

// AuditRepo persists audit log entries.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Insert writes one audit entry. Timestamp defaults server-side.
func (r *AuditRepo) Insert(ctx context.Context, e models.AuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (actor_email, action, entity_type, entity_id, details, source_project)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ActorEmail, e.Action, e.EntityType, e.EntityID, e.Details, e.SourceProject,
	)
	return err
}

// AuditFilter narrows List/Count. Empty strings mean no filter.
type AuditFilter struct {
	EntityType string
	Action     string
}

// List returns audit entries newest first.
func (r *AuditRepo) List(ctx context.Context, limit, offset int, f AuditFilter) ([]models.AuditEntry, error) {
	query := `
		SELECT id, created_at, actor_email, action, entity_type, entity_id,
		       COALESCE(details, ''), source_project
		FROM audit_log
		WHERE ($1 = '' OR entity_type = $1)
		  AND ($2 = '' OR action = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, query, f.EntityType, f.Action, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.ActorEmail, &e.Action,
			&e.EntityType, &e.EntityID, &e.Details, &e.SourceProject,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the total matching the filter.
func (r *AuditRepo) Count(ctx context.Context, f AuditFilter) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE ($1 = '' OR entity_type = $1) AND ($2 = '' OR action = $2)`,
		f.EntityType, f.Action,
	).Scan(&n)
	return n, err
}
