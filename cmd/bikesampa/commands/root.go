package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bbernstein/bikesampa/internal/config"
	"github.com/bbernstein/bikesampa/internal/feed"
	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/bbernstein/bikesampa/internal/station"
	"github.com/bbernstein/bikesampa/pkg/http/client"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var (
	baseConfig = config.New()

	feedURL    string
	feedFormat string
	timeout    time.Duration
	output     string

	stationClient models.StationClient
)

var rootCmd = &cobra.Command{
	Use:               "bikesampa",
	Short:             "bikesampa reads live Bike Sampa station availability.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&feedURL, "url", "", "Full feed URL, overrides FEED_BASE_URL and FEED_PATH.")
	flags.StringVar(&feedFormat, "format", "", "Feed format: json or html (default from FEED_FORMAT).")
	flags.DurationVar(&timeout, "timeout", 0, "HTTP timeout (default from HTTP_TIMEOUT).")
	flags.StringVar(&output, "output", outputTable, "Output format: table or json.")
}

func ExecuteContext(ctx context.Context, cfg *config.Config) {
	if cfg != nil {
		baseConfig = cfg
	}
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup builds the station client from the loaded configuration and the flags.
func setup(cmd *cobra.Command, args []string) error {
	if output != outputTable && output != outputJSON {
		return fmt.Errorf("unknown output %q, want table or json", output)
	}

	format := baseConfig.FeedFormat
	if feedFormat != "" {
		format = feedFormat
	}
	f, err := feed.ParseFormat(format)
	if err != nil {
		return err
	}

	baseURL, path := baseConfig.FeedBaseURL, baseConfig.FeedPath
	if feedURL != "" {
		baseURL, path = "", feedURL
	}

	httpTimeout := baseConfig.HTTPTimeout
	if timeout > 0 {
		httpTimeout = timeout
	}

	httpClient := client.New(client.Options{
		BaseURL:            baseURL,
		Timeout:            httpTimeout,
		MaxRetries:         baseConfig.MaxRetries,
		UserAgent:          baseConfig.UserAgent,
		InsecureSkipVerify: baseConfig.InsecureSkipVerify,
	})

	source, err := feed.New(f, httpClient, path, feed.HTMLOptions{Timeout: baseConfig.ExtractTimeout})
	if err != nil {
		return err
	}
	stationClient = station.NewClient(source)

	log.Debug().
		Str("base_url", baseURL).
		Str("path", path).
		Str("format", string(f)).
		Msg("Station client ready")
	return nil
}
