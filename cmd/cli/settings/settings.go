package settings

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/toozhub/toozhub/cmd/cli/root"
	"github.com/toozhub/toozhub/internal/client"
	"github.com/toozhub/toozhub/internal/models"
	schema "github.com/toozhub/toozhub/internal/settings"
)

func init() {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "View and edit configuration settings",
	}
	settingsCmd.AddCommand(listCmd(), setCmd(), unsetCmd(), initDefaultsCmd())
	root.GetRoot().AddCommand(settingsCmd)
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all settings grouped by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Settings models.SettingsTree `json:"settings"`
			}
			if err := root.NewClient().Get("/admin-api/settings", &out); err != nil {
				return err
			}

			categories := make([]string, 0, len(out.Settings))
			for c := range out.Settings {
				categories = append(categories, c)
			}
			sort.Strings(categories)

			var rows [][]interface{}
			for _, category := range categories {
				keys := make([]string, 0, len(out.Settings[category]))
				for k := range out.Settings[category] {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, key := range keys {
					v := out.Settings[category][key]
					rows = append(rows, []interface{}{category, key, fmt.Sprintf("%v", v.Value), v.ValueType})
				}
			}
			client.RenderTable(os.Stdout, []string{"Category", "Key", "Value", "Type"}, rows)
			return nil
		},
	}
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <key> <value>",
		Short: "Set one setting",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, key, raw := args[0], args[1], args[2]
			field, ok := schema.Lookup(category, key)
			if !ok {
				return fmt.Errorf("unknown setting %s.%s", category, key)
			}
			// Validate against the declared type before sending; the raw
			// string form is accepted by the server for every type.
			if _, err := schema.Coerce(field.Type, raw); err != nil {
				return fmt.Errorf("%s.%s: %w", category, key, err)
			}

			body := map[string]interface{}{
				"settings": []map[string]interface{}{
					{"category": category, "key": key, "value": raw},
				},
			}
			if err := root.NewClient().Put("/admin-api/settings", body, nil); err != nil {
				return err
			}
			root.Successf("%s.%s set to %s", category, key, raw)
			return nil
		},
	}
}

func unsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <category> <key>",
		Short: "Remove a stored setting (init-defaults restores its default)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, key := args[0], args[1]
			if _, ok := schema.Lookup(category, key); !ok {
				return fmt.Errorf("unknown setting %s.%s", category, key)
			}
			if err := root.NewClient().Delete(fmt.Sprintf("/admin-api/settings/%s/%s", category, key), nil); err != nil {
				return err
			}
			root.Successf("%s.%s removed", category, key)
			return nil
		},
	}
}

func initDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-defaults",
		Short: "Insert missing settings with their defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Message string `json:"message"`
			}
			if err := root.NewClient().Post("/admin-api/settings/init-defaults", nil, &out); err != nil {
				return err
			}
			root.Successf("%s", out.Message)
			return nil
		},
	}
}
