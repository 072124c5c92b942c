package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the active rider list and print changes",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Second, "Poll interval")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := apiClient()
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		recs, err := c.Active(ctx)
		if err != nil {
			color.Red("fetch failed: %v", err)
		} else {
			fmt.Printf("[%s] %d rider(s) active\n", time.Now().Format("15:04:05"), len(recs))
			for _, rec := range recs {
				printRecord(rec)
			}
		}

		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case <-ticker.C:
		}
	}
}
