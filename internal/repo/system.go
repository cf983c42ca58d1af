package repo

import (
	"context"
	"database/sql"
	"fmt"
)

// ==========================
// SystemRepo - maintenance and introspection queries used by the
// dashboard's system page.
// ==========================

type SystemRepo struct {
	db *sql.DB
}

func NewSystemRepo(db *sql.DB) *SystemRepo {
	return &SystemRepo{db: db}
}

// Overview holds the dashboard landing-page counters.
type Overview struct {
	TotalUsers        int `json:"total_users"`
	TotalVehicles     int `json:"total_vehicles"`
	TotalServices     int `json:"total_services"`
	TotalRecords      int `json:"total_records"`
	TotalReservations int `json:"total_reservations"`
	TotalReminders    int `json:"total_reminders"`
}

// GetOverview counts the main entities in one round trip.
func (r *SystemRepo) GetOverview(ctx context.Context) (Overview, error) {
	var o Overview
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM customers WHERE role = 'user'),
			(SELECT COUNT(*) FROM vehicles),
			(SELECT COUNT(*) FROM customers WHERE role IN ('service', 'developer_admin')),
			(SELECT COUNT(*) FROM service_records),
			(SELECT COUNT(*) FROM reservations),
			(SELECT COUNT(*) FROM reminders)
	`).Scan(&o.TotalUsers, &o.TotalVehicles, &o.TotalServices, &o.TotalRecords, &o.TotalReservations, &o.TotalReminders)
	return o, err
}

// TableInfo is one table's row in the db-info payload.
type TableInfo struct {
	Name     string `json:"name"`
	RowCount int    `json:"row_count"`
	SizeKB   int64  `json:"size_kb"`
}

// DBInfo is the GET /admin-api/system/db-info payload.
type DBInfo struct {
	DBPath      string      `json:"db_path"`
	TableCount  int         `json:"table_count"`
	TotalSizeKB int64       `json:"total_size_kb"`
	Tables      []TableInfo `json:"tables"`
}

// maintainTables is the fixed set the maintenance endpoints touch. Exposing
// only known tables keeps REINDEX/VACUUM away from anything else living in
// the same database.
var maintainTables = []string{
	"customers",
	"vehicles",
	"service_records",
	"reminders",
	"reservations",
	"settings",
	"audit_log",
}

// GetDBInfo reports database name, size and per-table row counts.
func (r *SystemRepo) GetDBInfo(ctx context.Context) (DBInfo, error) {
	var info DBInfo

	var sizeBytes int64
	err := r.db.QueryRowContext(ctx,
		`SELECT current_database(), pg_database_size(current_database())`,
	).Scan(&info.DBPath, &sizeBytes)
	if err != nil {
		return info, err
	}
	info.TotalSizeKB = sizeBytes / 1024

	for _, table := range maintainTables {
		var t TableInfo
		t.Name = table
		var tableBytes int64
		err := r.db.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT COUNT(*), pg_total_relation_size('%s') FROM %s`, table, table),
		).Scan(&t.RowCount, &tableBytes)
		if err != nil {
			return info, err
		}
		t.SizeKB = tableBytes / 1024
		info.Tables = append(info.Tables, t)
	}
	info.TableCount = len(info.Tables)
	return info, nil
}

// Reindex rebuilds the indexes of every maintained table and returns one
// result line per table.
func (r *SystemRepo) Reindex(ctx context.Context) ([]string, error) {
	var results []string
	for _, table := range maintainTables {
		if _, err := r.db.ExecContext(ctx, fmt.Sprintf(`REINDEX TABLE %s`, table)); err != nil {
			return results, fmt.Errorf("reindex %s: %w", table, err)
		}
		results = append(results, fmt.Sprintf("reindexed %s", table))
	}
	return results, nil
}

// Repair runs VACUUM ANALYZE over the maintained tables and probes basic
// referential integrity, returning one result line per step.
func (r *SystemRepo) Repair(ctx context.Context) ([]string, error) {
	var results []string
	for _, table := range maintainTables {
		if _, err := r.db.ExecContext(ctx, fmt.Sprintf(`VACUUM ANALYZE %s`, table)); err != nil {
			return results, fmt.Errorf("vacuum %s: %w", table, err)
		}
		results = append(results, fmt.Sprintf("vacuumed %s", table))
	}

	var orphans int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vehicles v
		LEFT JOIN customers c ON c.email = v.user_email
		WHERE c.id IS NULL
	`).Scan(&orphans)
	if err != nil {
		return results, err
	}
	results = append(results, fmt.Sprintf("orphaned vehicles: %d", orphans))

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM service_records sr
		LEFT JOIN vehicles v ON v.id = sr.vehicle_id
		WHERE v.id IS NULL
	`).Scan(&orphans)
	if err != nil {
		return results, err
	}
	results = append(results, fmt.Sprintf("orphaned service records: %d", orphans))

	return results, nil
}
