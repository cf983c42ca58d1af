package root

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/toozhub/toozhub/internal/client"
)

const defaultAPIURL = "http://localhost:8000"

// RootCmd is the CLI entry point; resource command packages attach
// themselves in their init.
var RootCmd = &cobra.Command{
	Use:   "toozhub",
	Short: "TooZ Hub admin CLI",
	Long:  "Command line interface for administering the TooZ Hub vehicle service API.",
}

// GetRoot returns the root command.
func GetRoot() *cobra.Command {
	return RootCmd
}

// APIURL returns the API base URL, overridable with TOOZHUB_API_URL.
func APIURL() string {
	if v := os.Getenv("TOOZHUB_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

var sharedSession = &client.Session{}

// NewClient builds an API client bound to the shared CLI session.
func NewClient() *client.Client {
	return client.New(APIURL(), sharedSession)
}

// Successf prints a green status line.
func Successf(format string, args ...interface{}) {
	color.Green(format, args...)
}

// Failf prints a red status line.
func Failf(format string, args ...interface{}) {
	color.Red(format, args...)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
