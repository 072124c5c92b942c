package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe every rider record on the server",
	Long: `Wipe every rider record. The server must have admin.enable_reset on,
and you will be asked to confirm unless --yes is given.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		fmt.Printf("This deletes ALL riders on %s. Type 'yes' to continue: ", serverURL)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(line) != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := apiClient().Reset(context.Background()); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	color.Yellow("Database cleared")
	return nil
}
