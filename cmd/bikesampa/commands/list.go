package commands

import (
	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/bbernstein/bikesampa/internal/station"
	"github.com/spf13/cobra"
)

var listStatus string

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only show stations in this state: working, maintenance, deploying or offline.")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [--status <state>]",
	Short: "Lists every station ordered by ID.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var status models.Status
		if listStatus != "" {
			parsed, err := models.ParseStatus(listStatus)
			if err != nil {
				return err
			}
			status = parsed
		}

		stations, err := stationClient.FetchAll(cmd.Context())
		if err != nil {
			return err
		}
		return renderStations(cmd.OutOrStdout(), station.SortedByID(station.FilterByStatus(stations, status)))
	},
}
