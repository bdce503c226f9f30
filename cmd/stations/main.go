package main

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bbernstein/bikesampa/internal/cache"
	"github.com/bbernstein/bikesampa/internal/config"
	"github.com/bbernstein/bikesampa/internal/feed"
	"github.com/bbernstein/bikesampa/internal/handler"
	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/bbernstein/bikesampa/internal/station"
	"github.com/bbernstein/bikesampa/pkg/http/client"
	"github.com/rs/zerolog/log"
)

var (
	lambdaStart     = lambda.Start // Allow mocking of lambda.Start in tests
	stationsHandler *handler.StationsHandler
	setupOnce       sync.Once
)

func init() {
	setupOnce.Do(func() {
		cfg, err := config.LoadFromEnv()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		cfg.InitializeLogging()

		stationsHandler, err = newHandler(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize stations handler")
		}
	})
}

func newHandler(cfg *config.Config) (*handler.StationsHandler, error) {
	httpClient := client.New(client.Options{
		BaseURL:            cfg.FeedBaseURL,
		Timeout:            cfg.HTTPTimeout,
		MaxRetries:         cfg.MaxRetries,
		UserAgent:          cfg.UserAgent,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})

	format, err := feed.ParseFormat(cfg.FeedFormat)
	if err != nil {
		return nil, err
	}
	source, err := feed.New(format, httpClient, cfg.FeedPath, feed.HTMLOptions{Timeout: cfg.ExtractTimeout})
	if err != nil {
		return nil, err
	}

	var stationClient models.StationClient = cache.NewCachedClient(station.NewClient(source), cfg.Cache.GetStationTTL())

	var responses *cache.ResponseCache
	if cfg.Cache.EnableResponseCache {
		responses, err = cache.NewResponseCache(cfg.Cache.ResponseLRUSize, cfg.Cache.GetStationTTL())
		if err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("feed_url", cfg.FeedBaseURL+cfg.FeedPath).
		Str("format", string(format)).
		Dur("station_ttl", cfg.Cache.GetStationTTL()).
		Bool("response_cache", responses != nil).
		Msg("Stations handler initialized")

	return handler.NewStationsHandler(stationClient, responses), nil
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return stationsHandler.HandleRequest(ctx, request)
}

func main() {
	lambdaStart(handleRequest)
}
