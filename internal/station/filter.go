package station

import (
	"sort"

	"github.com/bbernstein/bikesampa/internal/models"
)

// FilterByStatus keeps the stations in the given canonical state. The empty
// status keeps everything and returns stations unchanged.
func FilterByStatus(stations models.StationMap, status models.Status) models.StationMap {
	if status == "" {
		return stations
	}
	filtered := make(models.StationMap)
	for id, s := range stations {
		if s.Status == status {
			filtered[id] = s
		}
	}
	return filtered
}

// SortedByID lists the stations ordered by provider identifier.
func SortedByID(stations models.StationMap) []models.Station {
	list := make([]models.Station, 0, len(stations))
	for _, s := range stations {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
