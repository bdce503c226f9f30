package station

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/rs/zerolog/log"
)

const DefaultNearestLimit = 5

type Nearby struct {
	models.Station
	Distance float64 `json:"distance"` // km
}

// Nearest ranks stations by distance from lat/lon. Stations whose coordinates
// do not parse are left out.
func Nearest(stations models.StationMap, lat, lon float64, limit int) []Nearby {
	if limit <= 0 {
		limit = DefaultNearestLimit
	}

	ranked := make([]Nearby, 0, len(stations))
	for _, s := range stations {
		sLat, errLat := strconv.ParseFloat(strings.TrimSpace(s.Latitude), 64)
		sLon, errLon := strconv.ParseFloat(strings.TrimSpace(s.Longitude), 64)
		if errLat != nil || errLon != nil {
			log.Trace().Str("station_id", s.ID).Msg("Nearest: skipping station without coordinates")
			continue
		}
		ranked = append(ranked, Nearby{
			Station:  s,
			Distance: calculateDistance(lat, lon, sLat, sLon),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Distance == ranked[j].Distance {
			return ranked[i].ID < ranked[j].ID
		}
		return ranked[i].Distance < ranked[j].Distance
	})

	if limit > len(ranked) {
		limit = len(ranked)
	}
	return ranked[:limit]
}

func calculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371.0 // km

	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
