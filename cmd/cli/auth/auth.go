package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toozhub/toozhub/cmd/cli/root"
	"github.com/toozhub/toozhub/internal/client"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store a token locally",
		Long:  "Authenticate against the TooZ Hub API and store the JWT token for subsequent commands.",
		RunE:  runLogin,
	}
	loginCmd.Flags().StringVar(&email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&password, "password", "", "Account password")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the locally stored token",
		RunE:  runLogout,
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind the stored token",
		RunE:  runWhoami,
	}

	root.GetRoot().AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

var email, password string

// ==========================
// Login
// ==========================
func runLogin(cmd *cobra.Command, args []string) error {
	if email == "" {
		fmt.Print("Email: ")
		fmt.Scanln(&email)
	}
	if password == "" {
		fmt.Print("Password: ")
		fmt.Scanln(&password)
	}

	c := root.NewClient()
	var out struct {
		AccessToken string `json:"access_token"`
		User        struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	err := c.Post("/user/login", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return err
	}
	if out.AccessToken == "" {
		return fmt.Errorf("login succeeded but no token returned")
	}
	if err := c.Session.Save(out.AccessToken); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	root.Successf("Logged in as %s (%s). Token stored locally.", out.User.Email, out.User.Role)
	return nil
}

// ==========================
// Logout
// ==========================
func runLogout(cmd *cobra.Command, args []string) error {
	c := root.NewClient()
	if !c.Session.LoggedIn() {
		fmt.Println("No user logged in.")
		return nil
	}
	c.Session.Clear()
	root.Successf("Logged out. Token removed.")
	return nil
}

// ==========================
// Whoami (token probe)
// ==========================
func runWhoami(cmd *cobra.Command, args []string) error {
	c := root.NewClient()
	if !c.Session.LoggedIn() {
		return fmt.Errorf("not logged in")
	}
	if !client.Probe(c) {
		return fmt.Errorf("stored token is no longer valid")
	}
	root.Successf("Token valid against %s", root.APIURL())
	return nil
}
