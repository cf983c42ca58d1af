package services

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
	servicesCmd := &cobra.Command{
		Use:   "services",
		Short: "Manage service (repair shop) accounts",
	}
	servicesCmd.AddCommand(listCmd(), createCmd(), updateCmd(), deleteCmd())
	root.GetRoot().AddCommand(servicesCmd)
}

func listCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List service accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Services []models.UserSummary `json:"services"`
			}
			if err := root.NewClient().Get("/admin-api/services", &out); err != nil {
				return err
			}
			rows := client.FilterRows(client.ServiceRows(out.Services), filter)
			client.RenderTable(os.Stdout, []string{"ID", "Email", "Name", "City", "Phone", "ICO"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Keep rows containing this text")
	return cmd
}

func createCmd() *cobra.Command {
	var email, password, name, city, phone, ico string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a service account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			body := map[string]interface{}{"email": email, "password": password}
			for key, val := range map[string]string{
				"name": name, "city": city, "phone": phone, "ico": ico,
			} {
				if val != "" {
					body[key] = val
				}
			}
			var out struct {
				ID int `json:"id"`
			}
			if err := root.NewClient().Post("/admin-api/services", body, &out); err != nil {
				return err
			}
			root.Successf("Service %s created with id %d", email, out.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	cmd.Flags().StringVar(&name, "name", "", "Shop name")
	cmd.Flags().StringVar(&city, "city", "", "City")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&ico, "ico", "", "Tax id")
	return cmd
}

func updateCmd() *cobra.Command {
	var name, city, phone, ico, password string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a service account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			body := map[string]interface{}{}
			for key, val := range map[string]string{
				"name": name, "city": city, "phone": phone, "ico": ico, "password": password,
			} {
				if val != "" {
					body[key] = val
				}
			}
			if len(body) == 0 {
				return fmt.Errorf("nothing to update")
			}
			if err := root.NewClient().Patch(fmt.Sprintf("/admin-api/services/%d", id), body, nil); err != nil {
				return err
			}
			root.Successf("Service %d updated", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Shop name")
	cmd.Flags().StringVar(&city, "city", "", "City")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&ico, "ico", "", "Tax id")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a service account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			if err := root.NewClient().Delete(fmt.Sprintf("/admin-api/services/%d", id), nil); err != nil {
				return err
			}
			root.Successf("Service %d deleted", id)
			return nil
		},
	}
}
