package station

import "github.com/bbernstein/bikesampa/internal/models"

// StatusFor maps the provider's online and operational codes to a canonical
// state. The operational codes EM and EI win regardless of the online code.
func StatusFor(online, operational string) models.Status {
	if online == "A" && operational == "EO" {
		return models.StatusWorking
	}
	if operational == "EM" {
		return models.StatusMaintenance
	}
	if operational == "EI" {
		return models.StatusDeploying
	}
	return models.StatusOffline
}
