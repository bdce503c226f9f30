package commands

import (
	"fmt"
	"strconv"

	"github.com/bbernstein/bikesampa/internal/station"
	"github.com/spf13/cobra"
)

var nearestLimit int

func init() {
	nearestCmd.Flags().IntVar(&nearestLimit, "limit", station.DefaultNearestLimit, "How many stations to show.")
	rootCmd.AddCommand(nearestCmd)
}

var nearestCmd = &cobra.Command{
	Use:   "nearest <lat> <lon> [--limit <n>]",
	Short: "Lists the stations closest to a point.",
	// southern latitudes are negative, so coordinates go after --
	Example: "  bikesampa nearest --limit 3 -- -23.5614 -46.6558",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil || lat < -90 || lat > 90 {
			return fmt.Errorf("invalid latitude %q", args[0])
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil || lon < -180 || lon > 180 {
			return fmt.Errorf("invalid longitude %q", args[1])
		}

		stations, err := stationClient.FetchAll(cmd.Context())
		if err != nil {
			return err
		}
		return renderNearby(cmd.OutOrStdout(), station.Nearest(stations, lat, lon, nearestLimit))
	},
}
