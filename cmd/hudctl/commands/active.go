package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "List riders currently on the mountain",
	RunE:  runActive,
}

func init() {
	rootCmd.AddCommand(activeCmd)
}

func runActive(cmd *cobra.Command, args []string) error {
	recs, err := apiClient().Active(context.Background())
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	color.New(color.Bold).Println("Active riders:")
	if len(recs) == 0 {
		fmt.Println("  (none online yet)")
		return nil
	}
	for _, rec := range recs {
		printRecord(rec)
	}
	return nil
}
