package station

import (
	"context"
	"fmt"

	"github.com/bbernstein/bikesampa/internal/feed"
	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/rs/zerolog/log"
)

// Client fetches the provider's stations from a single feed source.
type Client struct {
	source feed.Source
}

var _ models.StationClient = (*Client)(nil)

func NewClient(source feed.Source) *Client {
	return &Client{source: source}
}

func (c *Client) FetchAll(ctx context.Context) (models.StationMap, error) {
	records, err := c.source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching station records: %w", err)
	}

	stations := indexByID(records)
	log.Info().
		Int("record_count", len(records)).
		Int("station_count", len(stations)).
		Msg("Fetched station status")
	return stations, nil
}

// FetchOne looks id up in a single FetchAll. A missing station is nil, nil.
func (c *Client) FetchOne(ctx context.Context, stationID string) (*models.Station, error) {
	stations, err := c.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return Lookup(stations, stationID), nil
}

// indexByID folds records into a map in order; a repeated identifier
// overwrites the earlier record.
func indexByID(records []models.RawStation) models.StationMap {
	stations := make(models.StationMap, len(records))
	for _, raw := range records {
		stations[raw.ID] = Normalize(raw)
	}
	return stations
}

func Lookup(stations models.StationMap, stationID string) *models.Station {
	s, ok := stations[stationID]
	if !ok {
		log.Trace().Str("station_id", stationID).Msg("Lookup: station not found")
		return nil
	}
	return &s
}
