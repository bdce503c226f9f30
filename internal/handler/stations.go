package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/bikesampa/internal/api"
	"github.com/bbernstein/bikesampa/internal/cache"
	"github.com/bbernstein/bikesampa/internal/feed"
	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/bbernstein/bikesampa/internal/station"
	"github.com/rs/zerolog/log"
)

type StationsHandler struct {
	stationClient models.StationClient
	responses     *cache.ResponseCache
}

// versionedClient is a station client that can tell which capture of the
// station map it serves. Responses are only cached in front of one.
type versionedClient interface {
	models.StationClient
	Current() (capturedAt time.Time, fresh bool)
	Snapshot(ctx context.Context) (models.StationMap, time.Time, error)
}

// NewStationsHandler builds the handler. responses may be nil to disable
// response caching.
func NewStationsHandler(stationClient models.StationClient, responses *cache.ResponseCache) *StationsHandler {
	return &StationsHandler{
		stationClient: stationClient,
		responses:     responses,
	}
}

func (h *StationsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters

	versioned, ok := h.stationClient.(versionedClient)
	if !ok || h.responses == nil {
		return h.handle(ctx, params, h.stationClient.FetchAll)
	}

	key := cacheKey(params)
	if capturedAt, fresh := versioned.Current(); fresh {
		if body, ok := h.responses.Get(key, capturedAt); ok {
			log.Debug().Str("key", key).Msg("Response cache HIT")
			return api.Raw(body), nil
		}
	}

	var (
		capturedAt time.Time
		loaded     bool
	)
	load := func(ctx context.Context) (models.StationMap, error) {
		stations, at, err := versioned.Snapshot(ctx)
		if err == nil {
			capturedAt, loaded = at, true
		}
		return stations, err
	}

	response, err := h.handle(ctx, params, load)
	if err == nil && loaded && response.StatusCode == http.StatusOK {
		h.responses.Add(key, response.Body, capturedAt)
	}
	return response, err
}

func (h *StationsHandler) handle(ctx context.Context, params map[string]string, load func(context.Context) (models.StationMap, error)) (events.APIGatewayProxyResponse, error) {
	// Check if we're looking up by station ID
	if stationID, ok := params["stationId"]; ok {
		stations, err := load(ctx)
		if err != nil {
			return errorResponse(err, "Error finding station")
		}
		stationLocal := station.Lookup(stations, stationID)
		if stationLocal == nil {
			return api.Error("Station not found", http.StatusNotFound)
		}
		return api.Success(api.NewStationsResponse([]models.Station{*stationLocal}))
	}

	status, err := api.ParseStatus(params)
	if err != nil {
		return api.Error(err.Error(), http.StatusBadRequest)
	}

	_, hasLat := params["lat"]
	_, hasLon := params["lon"]
	if hasLat && hasLon {
		lat, lon, err := api.ParseCoordinates(params)
		if err != nil {
			var invalidCoordErr api.InvalidCoordinatesError
			if errors.As(err, &invalidCoordErr) {
				return api.Error(err.Error(), http.StatusBadRequest)
			}
			return api.Error("Invalid parameters", http.StatusBadRequest)
		}

		stations, err := load(ctx)
		if err != nil {
			return errorResponse(err, "Error finding stations")
		}
		nearby := station.Nearest(station.FilterByStatus(stations, status), lat, lon, api.ParseLimit(params))
		return api.Success(api.NewNearbyResponse(nearby))
	}

	stations, err := load(ctx)
	if err != nil {
		return errorResponse(err, "Error finding stations")
	}
	return api.Success(api.NewStationsResponse(station.SortedByID(station.FilterByStatus(stations, status))))
}

// errorResponse maps station client failures onto gateway statuses. Provider
// side failures are 502, a slow legacy page is 504, anything else is ours.
func errorResponse(err error, fallback string) (events.APIGatewayProxyResponse, error) {
	var (
		providerErr  *feed.ProviderError
		timeoutErr   *feed.ExtractionTimeoutError
		malformedErr *feed.MalformedFragmentError
		transportErr *feed.TransportError
	)

	switch {
	case errors.As(err, &providerErr):
		log.Warn().Err(err).Msg("Station provider reported an error")
		return api.Error(providerErr.Error(), http.StatusBadGateway)
	case errors.As(err, &timeoutErr):
		log.Error().Err(err).Msg("Station extraction timed out")
		return api.Error("Station feed timed out", http.StatusGatewayTimeout)
	case errors.As(err, &malformedErr), errors.As(err, &transportErr), errors.Is(err, feed.ErrMissingStationList):
		log.Error().Err(err).Msg("Station provider unavailable")
		return api.Error("Station provider unavailable", http.StatusBadGateway)
	default:
		log.Error().Err(err).Msg(fallback)
		return api.Error(fallback, http.StatusInternalServerError)
	}
}

// cacheKey normalizes the query so parameter order does not matter.
func cacheKey(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}
