package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var recordsLimit int

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Show the lifetime speed leaderboard",
	RunE:  runRecords,
}

func init() {
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 0, "Number of entries (0 = server default)")
	rootCmd.AddCommand(recordsCmd)
}

func runRecords(cmd *cobra.Command, args []string) error {
	entries, err := apiClient().Records(context.Background(), recordsLimit)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	color.New(color.Bold).Println("Leaderboard:")
	for i, e := range entries {
		fmt.Printf("  %d. %s  max_speed=%s max_g=%s\n",
			i+1,
			color.CyanString(e.Name),
			fmtFloat(e.MaxSpeed, "%.1f"),
			fmtFloat(e.MaxGForce, "%.2f"),
		)
	}
	if len(entries) == 0 {
		fmt.Println("  (no records yet)")
	}
	return nil
}
