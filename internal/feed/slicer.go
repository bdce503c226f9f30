package feed

import "strings"

// Markers are the sentinel comments the provider prints around the block of
// per-station rendering calls.
type Markers struct {
	Start string
	End   string
}

var DefaultMarkers = Markers{
	Start: "<!-- INICIO ESTACOES -->",
	End:   "<!-- FIM ESTACOES -->",
}

// Slice returns the lines found between the start and end markers, joined by
// newlines. Marker lines are never copied. Repeated regions are concatenated
// and a document without a start marker yields "".
func Slice(html string, m Markers) string {
	var (
		out    []string
		inside bool
	)
	for _, line := range strings.Split(html, "\n") {
		switch {
		case strings.Contains(line, m.Start):
			inside = true
		case inside && strings.Contains(line, m.End):
			inside = false
		case inside:
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
