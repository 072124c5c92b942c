// Package commands implements the hudctl CLI: a desktop stand-in for the
// HUD devices, useful for poking a running server.
package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"skihud/pkg/client"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "hudctl",
	Short: "Ski HUD API client",
	Long: `hudctl talks to a Ski HUD API server: register a rider, send telemetry
updates, and watch who is on the mountain.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of the Ski HUD API")
}

func apiClient() *client.Client {
	return client.New(serverURL)
}

func printRecord(rec client.Record) {
	name := color.New(color.FgCyan, color.Bold).Sprint(rec.Name)
	id := rec.UserID
	if len(id) > 6 {
		id = id[:6]
	}

	fmt.Printf("  %s (%s)  lat=%s lon=%s alt=%s trail=%s\n",
		name, id,
		fmtFloat(rec.Lat, "%.6f"),
		fmtFloat(rec.Lon, "%.6f"),
		fmtFloat(rec.Alt, "%.1f"),
		fmtTrail(rec.Trail),
	)
}

func fmtFloat(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}

func fmtTrail(v *string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%q", *v)
}
