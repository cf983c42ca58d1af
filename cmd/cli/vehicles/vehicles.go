package vehicles

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
	vehiclesCmd := &cobra.Command{
		Use:   "vehicles",
		Short: "Manage vehicles",
	}
	vehiclesCmd.AddCommand(listCmd(), createCmd(), updateCmd(), deleteCmd())
	root.GetRoot().AddCommand(vehiclesCmd)
}

func listCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vehicles with owners and record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Vehicles []models.Vehicle `json:"vehicles"`
			}
			if err := root.NewClient().Get("/admin-api/vehicles", &out); err != nil {
				return err
			}
			rows := client.FilterRows(client.VehicleRows(out.Vehicles), filter)
			client.RenderTable(os.Stdout, []string{"ID", "Vehicle", "Owner", "Plate", "Records"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Keep rows containing this text")
	return cmd
}

func createCmd() *cobra.Command {
	var owner, nickname, brand, model, plate, vin string
	var year int
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a vehicle for an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return fmt.Errorf("--owner is required")
			}
			body := map[string]interface{}{"user_email": owner}
			for key, val := range map[string]string{
				"nickname": nickname, "brand": brand, "model": model, "plate": plate, "vin": vin,
			} {
				if val != "" {
					body[key] = val
				}
			}
			if year > 0 {
				body["year"] = year
			}
			var out struct {
				ID int `json:"id"`
			}
			if err := root.NewClient().Post("/admin-api/vehicles", body, &out); err != nil {
				return err
			}
			root.Successf("Vehicle created with id %d", out.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner email")
	cmd.Flags().StringVar(&nickname, "nickname", "", "Nickname")
	cmd.Flags().StringVar(&brand, "brand", "", "Brand")
	cmd.Flags().StringVar(&model, "model", "", "Model")
	cmd.Flags().IntVar(&year, "year", 0, "Year")
	cmd.Flags().StringVar(&plate, "plate", "", "License plate")
	cmd.Flags().StringVar(&vin, "vin", "", "VIN")
	return cmd
}

func updateCmd() *cobra.Command {
	var owner, nickname, brand, model, plate, vin string
	var year int
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			body := map[string]interface{}{}
			for key, val := range map[string]string{
				"user_email": owner, "nickname": nickname, "brand": brand,
				"model": model, "plate": plate, "vin": vin,
			} {
				if val != "" {
					body[key] = val
				}
			}
			if year > 0 {
				body["year"] = year
			}
			if len(body) == 0 {
				return fmt.Errorf("nothing to update")
			}
			if err := root.NewClient().Patch(fmt.Sprintf("/admin-api/vehicles/%d", id), body, nil); err != nil {
				return err
			}
			root.Successf("Vehicle %d updated", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner email")
	cmd.Flags().StringVar(&nickname, "nickname", "", "Nickname")
	cmd.Flags().StringVar(&brand, "brand", "", "Brand")
	cmd.Flags().StringVar(&model, "model", "", "Model")
	cmd.Flags().IntVar(&year, "year", 0, "Year")
	cmd.Flags().StringVar(&plate, "plate", "", "License plate")
	cmd.Flags().StringVar(&vin, "vin", "", "VIN")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a vehicle and its service records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			if err := root.NewClient().Delete(fmt.Sprintf("/admin-api/vehicles/%d", id), nil); err != nil {
				return err
			}
			root.Successf("Vehicle %d deleted", id)
			return nil
		},
	}
}
