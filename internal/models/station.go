package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Status string

const (
	StatusWorking     Status = "working"
	StatusMaintenance Status = "maintenance"
	StatusDeploying   Status = "deploying"
	StatusOffline     Status = "offline"
)

// ParseStatus accepts a canonical state name, ignoring case and surrounding space.
func ParseStatus(s string) (Status, error) {
	switch status := Status(strings.ToLower(strings.TrimSpace(s))); status {
	case StatusWorking, StatusMaintenance, StatusDeploying, StatusOffline:
		return status, nil
	}
	return "", fmt.Errorf("unknown station status %q", s)
}

// RawStation is a station record as the provider publishes it, before normalization.
// Both feed formats produce it; every field stays a string.
type RawStation struct {
	ID                string
	Name              string
	Address           string
	Reference         string
	Latitude          string
	Longitude         string
	OnlineStatus      string
	OperationalStatus string
	IntegrationFlag   string
	FreePositions     string
	AvailableBikes    string
}

type Station struct {
	ID                     string `json:"stationId"`
	Name                   string `json:"name"`
	Address                string `json:"address"`
	Reference              string `json:"reference"`
	Latitude               string `json:"lat"`
	Longitude              string `json:"lng"`
	Status                 Status `json:"status"`
	AcceptsFareIntegration bool   `json:"acceptsBilheteUnico"`
	FreePositions          Count  `json:"freePositions"`
	AvailableBikes         Count  `json:"availableBikes"`
}

// StationMap indexes stations by their provider identifier.
type StationMap map[string]Station

// Count is a bike or dock count read from provider text. Text that does not
// start with a number yields the NaN count instead of an error.
type Count struct {
	value int
	valid bool
}

// NaN is the count of a field the provider sent as garbage.
var NaN = Count{}

func NewCount(n int) Count {
	return Count{value: n, valid: true}
}

// ParseCount reads a base-10 integer the lenient way the provider's own pages do:
// leading whitespace and a sign are accepted, digits are read up to the first
// non-digit, and anything after them is ignored.
func ParseCount(s string) Count {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return NaN
	}
	n, err := strconv.Atoi(s[start:i])
	if err != nil {
		return NaN
	}
	return NewCount(n)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func (c Count) Int() (int, bool) {
	return c.value, c.valid
}

func (c Count) IsNaN() bool {
	return !c.valid
}

// Sub returns c - o, NaN when either side is NaN.
func (c Count) Sub(o Count) Count {
	if !c.valid || !o.valid {
		return NaN
	}
	return NewCount(c.value - o.value)
}

func (c Count) String() string {
	if !c.valid {
		return "NaN"
	}
	return strconv.Itoa(c.value)
}

func (c Count) MarshalJSON() ([]byte, error) {
	if !c.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(c.value)), nil
}

func (c *Count) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*c = NaN
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = NewCount(n)
	return nil
}
