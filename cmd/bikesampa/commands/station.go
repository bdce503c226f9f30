package commands

import (
	"fmt"

	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(stationCmd)
}

var stationCmd = &cobra.Command{
	Use:   "station <id>",
	Short: "Shows a single station.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := stationClient.FetchOne(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("station %s not found", args[0])
		}
		return renderStations(cmd.OutOrStdout(), []models.Station{*s})
	},
}
