package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"skihud/pkg/client"
)

var (
	updateUser   string
	updateActive bool
	updateLat    float64
	updateLon    float64
	updateAlt    float64
	updateSpeed  float64
	updateG      float64
	updateTrail  string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Send one telemetry update for a rider",
	Long: `Send a sparse telemetry update. Only flags you actually set are sent;
everything else keeps its stored value on the server.`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateUser, "user", "", "Rider user id (required)")
	updateCmd.Flags().BoolVar(&updateActive, "active", true, "Liveness flag")
	updateCmd.Flags().Float64Var(&updateLat, "lat", 0, "Latitude")
	updateCmd.Flags().Float64Var(&updateLon, "lon", 0, "Longitude")
	updateCmd.Flags().Float64Var(&updateAlt, "alt", 0, "Altitude (m)")
	updateCmd.Flags().Float64Var(&updateSpeed, "speed", 0, "Speed (km/h)")
	updateCmd.Flags().Float64Var(&updateG, "g", 0, "G-force")
	updateCmd.Flags().StringVar(&updateTrail, "trail", "", "Trail name")
	_ = updateCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	// Only flags the user actually passed go on the wire; that is what
	// keeps the update sparse.
	var req client.UpdateRequest
	if cmd.Flags().Changed("active") {
		req.Active = &updateActive
	}
	if cmd.Flags().Changed("lat") {
		req.Lat = &updateLat
	}
	if cmd.Flags().Changed("lon") {
		req.Lon = &updateLon
	}
	if cmd.Flags().Changed("alt") {
		req.Alt = &updateAlt
	}
	if cmd.Flags().Changed("speed") {
		req.Speed = &updateSpeed
	}
	if cmd.Flags().Changed("g") {
		req.GForce = &updateG
	}
	if cmd.Flags().Changed("trail") {
		req.Trail = &updateTrail
	}

	session := apiClient().Resume(updateUser)
	rec, err := session.Update(context.Background(), req)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	color.Green("Update accepted")
	printRecord(*rec)
	return nil
}
