package station

import "github.com/bbernstein/bikesampa/internal/models"

const fareIntegrationYes = "S"

// Normalize converts a provider record into the canonical station. Counts the
// provider sent as garbage come out as NaN rather than failing.
func Normalize(raw models.RawStation) models.Station {
	return models.Station{
		ID:                     raw.ID,
		Name:                   raw.Name,
		Address:                raw.Address,
		Reference:              raw.Reference,
		Latitude:               raw.Latitude,
		Longitude:              raw.Longitude,
		Status:                 StatusFor(raw.OnlineStatus, raw.OperationalStatus),
		AcceptsFareIntegration: raw.IntegrationFlag == fareIntegrationYes,
		FreePositions:          models.ParseCount(raw.FreePositions),
		AvailableBikes:         models.ParseCount(raw.AvailableBikes),
	}
}
