package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/toozhub/toozhub/internal/models"
)

// RenderTable prints a pretty table. An empty list prints a placeholder
// message instead.
func RenderTable(w io.Writer, headers []string, rows [][]interface{}) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(nothing to show)")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)

	headerRow := table.Row{}
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	t.AppendHeader(headerRow)
	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}
	t.Render()
}

// FilterRows keeps rows whose concatenated cell text contains the query,
// case-insensitively. Empty query keeps everything.
func FilterRows(rows [][]interface{}, query string) [][]interface{} {
	if query == "" {
		return rows
	}
	query = strings.ToLower(query)
	var out [][]interface{}
	for _, row := range rows {
		var sb strings.Builder
		for _, cell := range row {
			fmt.Fprintf(&sb, "%v ", cell)
		}
		if strings.Contains(strings.ToLower(sb.String()), query) {
			out = append(out, row)
		}
	}
	return out
}

// UserRows converts a user list to table rows.
func UserRows(users []models.UserSummary) [][]interface{} {
	rows := make([][]interface{}, 0, len(users))
	for _, u := range users {
		rows = append(rows, []interface{}{u.ID, u.Email, u.DisplayName(), u.Role, u.VehiclesCount})
	}
	return rows
}

// VehicleRows converts a vehicle list to table rows using the display-name
// fallback (nickname, else brand+model, else a placeholder).
func VehicleRows(vehicles []models.Vehicle) [][]interface{} {
	rows := make([][]interface{}, 0, len(vehicles))
	for _, v := range vehicles {
		rows = append(rows, []interface{}{v.ID, v.DisplayName(), v.UserEmail, deref(v.Plate), v.ServiceCount})
	}
	return rows
}

// ServiceRows converts a service list to table rows.
func ServiceRows(services []models.UserSummary) [][]interface{} {
	rows := make([][]interface{}, 0, len(services))
	for _, s := range services {
		rows = append(rows, []interface{}{s.ID, s.Email, s.DisplayName(), deref(s.City), deref(s.Phone), deref(s.ICO)})
	}
	return rows
}

// RecordRows converts a record list to table rows with denormalized
// vehicle and service columns.
func RecordRows(records []models.ServiceRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		vehicle := deref(r.VehicleNickname)
		if vehicle == "" {
			vehicle = strings.TrimSpace(deref(r.VehicleBrand) + " " + deref(r.VehicleModel))
		}
		if vehicle == "" {
			vehicle = fmt.Sprintf("#%d", r.VehicleID)
		}
		price := ""
		if r.Price != nil {
			price = fmt.Sprintf("%.2f", *r.Price)
		}
		rows = append(rows, []interface{}{
			r.ID, r.PerformedAt.Format("2006-01-02"), vehicle, deref(r.ServiceName), r.Description, price,
		})
	}
	return rows
}

// AuditRows converts audit entries to table rows.
func AuditRows(entries []models.AuditEntry) [][]interface{} {
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{
			e.Timestamp.Format("2006-01-02 15:04:05"), e.ActorEmail, e.Action, e.EntityType, e.EntityID, e.Details,
		})
	}
	return rows
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
