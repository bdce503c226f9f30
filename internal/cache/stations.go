package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/bbernstein/bikesampa/internal/station"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultStationTTL = 30 * time.Second

	refreshKey = "stations"
)

// CachedClient serves the last station map while it is younger than the TTL
// and refreshes it through the wrapped client otherwise. Concurrent callers
// share a single in-flight refresh.
type CachedClient struct {
	delegate models.StationClient
	ttl      time.Duration
	clock    clock

	mu           sync.RWMutex
	stations     models.StationMap
	captured     bool
	lastModified time.Time

	refresh singleflight.Group
}

var _ models.StationClient = (*CachedClient)(nil)

func NewCachedClient(delegate models.StationClient, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = DefaultStationTTL
	}
	return &CachedClient{
		delegate: delegate,
		ttl:      ttl,
		clock:    systemClock{},
	}
}

// IsValid reports whether a captured map exists and is younger than the TTL.
func (c *CachedClient) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isValid()
}

func (c *CachedClient) isValid() bool {
	if !c.captured {
		return false
	}
	return c.clock.Now().Sub(c.lastModified) < c.ttl
}

// LastModified is the capture time of the stored map, zero before the first refresh.
func (c *CachedClient) LastModified() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastModified
}

func (c *CachedClient) TTL() time.Duration {
	return c.ttl
}

// FetchAll returns the stored map while it is fresh. Every caller gets the
// same map value, so it is shared and must not be modified.
func (c *CachedClient) FetchAll(ctx context.Context) (models.StationMap, error) {
	stations, _, err := c.Snapshot(ctx)
	return stations, err
}

// Snapshot is FetchAll plus the capture time of the returned map.
func (c *CachedClient) Snapshot(ctx context.Context) (models.StationMap, time.Time, error) {
	if snap, ok := c.fresh(); ok {
		log.Debug().Msg("Cache HIT for station list")
		return snap.stations, snap.capturedAt, nil
	}

	// The refresh outlives any single caller so the others still get its result.
	ch := c.refresh.DoChan(refreshKey, func() (interface{}, error) {
		return c.refreshStations(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, time.Time{}, res.Err
		}
		snap := res.Val.(snapshot)
		return snap.stations, snap.capturedAt, nil
	case <-ctx.Done():
		return nil, time.Time{}, ctx.Err()
	}
}

// Current reports the capture time of the stored map and whether it is still
// fresh, without fetching.
func (c *CachedClient) Current() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastModified, c.isValid()
}

func (c *CachedClient) FetchOne(ctx context.Context, stationID string) (*models.Station, error) {
	stations, err := c.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return station.Lookup(stations, stationID), nil
}

type snapshot struct {
	stations   models.StationMap
	capturedAt time.Time
}

func (c *CachedClient) fresh() (snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.isValid() {
		return snapshot{}, false
	}
	return snapshot{stations: c.stations, capturedAt: c.lastModified}, true
}

func (c *CachedClient) refreshStations(ctx context.Context) (snapshot, error) {
	// A refresh may have completed between the caller's check and this flight.
	if snap, ok := c.fresh(); ok {
		return snap, nil
	}
	log.Debug().Msg("Cache MISS for station list, refreshing")

	stations, err := c.delegate.FetchAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Station refresh failed, keeping previous entry")
		return snapshot{}, err
	}

	c.mu.Lock()
	c.stations = stations
	c.captured = true
	c.lastModified = c.clock.Now()
	snap := snapshot{stations: c.stations, capturedAt: c.lastModified}
	c.mu.Unlock()

	log.Debug().Int("station_count", len(stations)).Msgf("Caching map of %d stations", len(stations))
	return snap, nil
}
