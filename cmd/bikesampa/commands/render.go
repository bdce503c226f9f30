package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/bbernstein/bikesampa/internal/station"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stationRow(s models.Station) table.Row {
	return table.Row{s.ID, s.Name, s.Status, s.AvailableBikes, s.FreePositions, yesNo(s.AcceptsFareIntegration), s.Address}
}

var stationHeader = table.Row{"ID", "Name", "Status", "Bikes", "Free docks", "Bilhete Unico", "Address"}

func renderStations(out io.Writer, stations []models.Station) error {
	if output == outputJSON {
		return writeJSON(out, stations)
	}

	t := newTable(out)
	t.AppendHeader(stationHeader)
	for _, s := range stations {
		t.AppendRow(stationRow(s))
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d stations", len(stations))})
	t.Render()
	return nil
}

func renderNearby(out io.Writer, nearby []station.Nearby) error {
	if output == outputJSON {
		return writeJSON(out, nearby)
	}

	t := newTable(out)
	t.AppendHeader(append(table.Row{"Distance (km)"}, stationHeader...))
	for _, n := range nearby {
		t.AppendRow(append(table.Row{fmt.Sprintf("%.2f", n.Distance)}, stationRow(n.Station)...))
	}
	t.Render()
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
