package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// Station list freshness
	StationTTLSeconds int

	// Rendered API responses
	ResponseLRUSize     int
	EnableResponseCache bool
}

const (
	// Default values
	defaultStationTTLSeconds = 30
	defaultResponseLRUSize   = 256
)

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		StationTTLSeconds:   defaultStationTTLSeconds,
		ResponseLRUSize:     defaultResponseLRUSize,
		EnableResponseCache: true,
	}
}

// GetCacheConfig overlays cache settings from environment variables on base.
// A nil base starts from the defaults.
func GetCacheConfig(base *CacheConfig) *CacheConfig {
	if base == nil {
		base = DefaultCacheConfig()
	}
	config := &CacheConfig{
		StationTTLSeconds:   getEnvInt("CACHE_STATION_TTL_SECONDS", base.StationTTLSeconds),
		ResponseLRUSize:     getEnvInt("CACHE_RESPONSE_LRU_SIZE", base.ResponseLRUSize),
		EnableResponseCache: getEnvBool("CACHE_ENABLE_RESPONSE", base.EnableResponseCache),
	}

	log.Debug().
		Int("StationTTLSeconds", config.StationTTLSeconds).
		Int("ResponseLRUSize", config.ResponseLRUSize).
		Bool("EnableResponseCache", config.EnableResponseCache).
		Msg("Cache configuration loaded")

	return config
}

func (c *CacheConfig) GetStationTTL() time.Duration {
	if c.StationTTLSeconds <= 0 {
		return defaultStationTTLSeconds * time.Second
	}
	return time.Duration(c.StationTTLSeconds) * time.Second
}
