package records

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/toozhub/toozhub/cmd/cli/root"
	"github.com/toozhub/toozhub/internal/client"
	"github.com/toozhub/toozhub/internal/models"
)

func init() {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Manage service records",
	}
	recordsCmd.AddCommand(listCmd(), createCmd(), deleteCmd())
	root.GetRoot().AddCommand(recordsCmd)
}

func listCmd() *cobra.Command {
	var vehicleID, serviceID, userID, limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List service records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/admin-api/records?limit=%d&offset=%d", limit, offset)
			if vehicleID > 0 {
				path += fmt.Sprintf("&vehicle_id=%d", vehicleID)
			}
			if serviceID > 0 {
				path += fmt.Sprintf("&service_id=%d", serviceID)
			}
			if userID > 0 {
				path += fmt.Sprintf("&user_id=%d", userID)
			}
			var out models.RecordPage
			if err := root.NewClient().Get(path, &out); err != nil {
				return err
			}
			client.RenderTable(os.Stdout,
				[]string{"ID", "Date", "Vehicle", "Service", "Description", "Price"},
				client.RecordRows(out.Records))
			fmt.Printf("Showing %d of %d records (offset %d)\n", len(out.Records), out.Total, out.Offset)
			return nil
		},
	}
	cmd.Flags().IntVar(&vehicleID, "vehicle", 0, "Filter by vehicle id")
	cmd.Flags().IntVar(&serviceID, "service", 0, "Filter by service id")
	cmd.Flags().IntVar(&userID, "user", 0, "Filter by owner id")
	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}

func createCmd() *cobra.Command {
	var vehicleID, serviceID, mileage int
	var plate, performedAt, description, category, note string
	var price float64
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a service record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if vehicleID <= 0 && plate != "" {
				id, err := resolvePlate(plate)
				if err != nil {
					return err
				}
				vehicleID = id
			}
			if vehicleID <= 0 || description == "" {
				return fmt.Errorf("--vehicle (or --plate) and --description are required")
			}
			body := map[string]interface{}{
				"vehicle_id":  vehicleID,
				"description": description,
			}
			if serviceID > 0 {
				body["service_id"] = serviceID
			}
			if performedAt != "" {
				body["performed_at"] = performedAt
			}
			if mileage > 0 {
				body["mileage"] = mileage
			}
			if price > 0 {
				body["price"] = price
			}
			if category != "" {
				body["category"] = category
			}
			if note != "" {
				body["note"] = note
			}
			var out struct {
				ID int `json:"id"`
			}
			if err := root.NewClient().Post("/admin-api/records", body, &out); err != nil {
				return err
			}
			root.Successf("Record created with id %d", out.ID)
			return nil
		},
	}
	cmd.Flags().IntVar(&vehicleID, "vehicle", 0, "Vehicle id")
	cmd.Flags().StringVar(&plate, "plate", "", "Resolve the vehicle by license plate instead of id")
	cmd.Flags().IntVar(&serviceID, "service", 0, "Service id")
	cmd.Flags().StringVar(&performedAt, "performed-at", "", "When performed (RFC 3339, default now)")
	cmd.Flags().IntVar(&mileage, "mileage", 0, "Mileage at service time")
	cmd.Flags().StringVar(&description, "description", "", "What was done")
	cmd.Flags().Float64Var(&price, "price", 0, "Price")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.Flags().StringVar(&note, "note", "", "Free-text note")
	return cmd
}

// resolvePlate looks up a vehicle id by exact license plate from the full
// vehicle list.
func resolvePlate(plate string) (int, error) {
	vehicles := client.NewStore(func() ([]models.Vehicle, error) {
		var out struct {
			Vehicles []models.Vehicle `json:"vehicles"`
		}
		if err := root.NewClient().Get("/admin-api/vehicles", &out); err != nil {
			return nil, err
		}
		return out.Vehicles, nil
	})
	if _, err := vehicles.Load(); err != nil {
		return 0, err
	}
	v, ok := vehicles.Find(func(v models.Vehicle) bool {
		return v.Plate != nil && *v.Plate == plate
	})
	if !ok {
		return 0, fmt.Errorf("no vehicle with plate %q", plate)
	}
	return v.ID, nil
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a service record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			if err := root.NewClient().Delete(fmt.Sprintf("/admin-api/records/%d", id), nil); err != nil {
				return err
			}
			root.Successf("Record %d deleted", id)
			return nil
		},
	}
}
