package users

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/toozhub/toozhub/cmd/cli/root"
	"github.com/toozhub/toozhub/internal/client"
	"github.com/toozhub/toozhub/internal/models"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage end-user accounts",
	}
	usersCmd.AddCommand(listCmd(), createCmd(), updateCmd(), deleteCmd())
	root.GetRoot().AddCommand(usersCmd)
}

// ==========================
// List
// ==========================
func listCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := root.NewClient()
			var out struct {
				Users []models.UserSummary `json:"users"`
			}
			if err := c.Get("/admin-api/users", &out); err != nil {
				return err
			}
			rows := client.FilterRows(client.UserRows(out.Users), filter)
			client.RenderTable(os.Stdout, []string{"ID", "Email", "Name", "Role", "Vehicles"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Keep rows containing this text")
	return cmd
}

// ==========================
// Create
// ==========================
func createCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			body := map[string]interface{}{"email": email, "password": password}
			if name != "" {
				body["name"] = name
			}
			var out struct {
				ID int `json:"id"`
			}
			if err := root.NewClient().Post("/admin-api/users", body, &out); err != nil {
				return err
			}
			root.Successf("User %s created with id %d", email, out.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	return cmd
}

// ==========================
// Update (flags left empty stay unchanged)
// ==========================
func updateCmd() *cobra.Command {
	var name, role, city, phone, password string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			body := map[string]interface{}{}
			for key, val := range map[string]string{
				"name": name, "role": role, "city": city, "phone": phone, "password": password,
			} {
				if val != "" {
					body[key] = val
				}
			}
			if len(body) == 0 {
				return fmt.Errorf("nothing to update")
			}
			if err := root.NewClient().Patch(fmt.Sprintf("/admin-api/users/%d", id), body, nil); err != nil {
				return err
			}
			root.Successf("User %d updated", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", "", "Role (user, service, admin, developer_admin)")
	cmd.Flags().StringVar(&city, "city", "", "City")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	return cmd
}

// ==========================
// Delete
// ==========================
func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user account and its vehicles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			if err := root.NewClient().Delete(fmt.Sprintf("/admin-api/users/%d", id), nil); err != nil {
				return err
			}
			root.Successf("User %d deleted", id)
			return nil
		},
	}
}
