package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var registerName string

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new rider and print its user id",
	RunE:  runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name (defaults to anon)")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	session, err := apiClient().Register(context.Background(), registerName)
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}

	color.Green("Registered %s", session.Name)
	fmt.Println(session.UserID)
	return nil
}
