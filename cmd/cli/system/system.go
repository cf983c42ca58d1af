package system

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toozhub/toozhub/cmd/cli/root"
	"github.com/toozhub/toozhub/internal/client"
	"github.com/toozhub/toozhub/internal/models"
	"github.com/toozhub/toozhub/internal/repo"
)

func init() {
	overviewCmd := &cobra.Command{
		Use:   "overview",
		Short: "Show entity counts",
		RunE:  runOverview,
	}

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit log, newest first",
		RunE:  runAudit,
	}
	auditCmd.Flags().StringVar(&auditEntity, "entity", "", "Filter by entity type")
	auditCmd.Flags().StringVar(&auditAction, "action", "", "Filter by action")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "Page size")

	systemCmd := &cobra.Command{
		Use:   "system",
		Short: "Database maintenance tools",
	}
	systemCmd.AddCommand(dbInfoCmd(), reindexCmd(), repairCmd())

	root.GetRoot().AddCommand(overviewCmd, auditCmd, systemCmd)
}

var (
	auditEntity, auditAction string
	auditLimit               int
)

func runOverview(cmd *cobra.Command, args []string) error {
	var out repo.Overview
	if err := root.NewClient().Get("/admin-api/overview", &out); err != nil {
		return err
	}
	client.RenderTable(os.Stdout,
		[]string{"Users", "Vehicles", "Services", "Records", "Reservations", "Reminders"},
		[][]interface{}{{out.TotalUsers, out.TotalVehicles, out.TotalServices, out.TotalRecords, out.TotalReservations, out.TotalReminders}})
	return nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	path := fmt.Sprintf("/admin-api/audit?limit=%d", auditLimit)
	if auditEntity != "" {
		path += "&entity_type=" + auditEntity
	}
	if auditAction != "" {
		path += "&action=" + auditAction
	}
	var out models.AuditPage
	if err := root.NewClient().Get(path, &out); err != nil {
		return err
	}
	client.RenderTable(os.Stdout,
		[]string{"Timestamp", "Actor", "Action", "Entity", "ID", "Details"},
		client.AuditRows(out.Logs))
	fmt.Printf("Showing %d of %d entries\n", len(out.Logs), out.Total)
	return nil
}

func dbInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "db-info",
		Short: "Show database name, size and table statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out repo.DBInfo
			if err := root.NewClient().Get("/admin-api/db-info", &out); err != nil {
				return err
			}
			fmt.Printf("Database %s, %d tables, %d KiB total\n", out.DBPath, out.TableCount, out.TotalSizeKB)
			rows := make([][]interface{}, 0, len(out.Tables))
			for _, t := range out.Tables {
				rows = append(rows, []interface{}{t.Name, t.RowCount, t.SizeKB})
			}
			client.RenderTable(os.Stdout, []string{"Table", "Rows", "Size KiB"}, rows)
			return nil
		},
	}
}

// maintenance runs one of the destructive system tools and prints its
// per-step results.
func maintenance(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Message string   `json:"message"`
				Results []string `json:"results"`
				Success bool     `json:"success"`
			}
			if err := root.NewClient().Post(path, nil, &out); err != nil {
				return err
			}
			for _, line := range out.Results {
				fmt.Println(" -", line)
			}
			if !out.Success {
				root.Failf("%s", out.Message)
				return fmt.Errorf("%s reported failure", use)
			}
			root.Successf("%s", out.Message)
			return nil
		},
	}
}

func reindexCmd() *cobra.Command {
	return maintenance("reindex", "Rebuild table indexes", "/admin-api/reindex")
}

func repairCmd() *cobra.Command {
	return maintenance("repair", "Vacuum tables and check integrity", "/admin-api/repair")
}
