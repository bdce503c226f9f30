package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/bbernstein/bikesampa/internal/station"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess(t *testing.T) {
	tests := []struct {
		name     string
		response interface{}
		wantType string
	}{
		{
			name:     "stations response",
			response: NewStationsResponse([]models.Station{{ID: "1", Status: models.StatusWorking}}),
			wantType: "stations",
		},
		{
			name:     "nearby response",
			response: NewNearbyResponse([]station.Nearby{{Station: models.Station{ID: "1"}, Distance: 0.5}}),
			wantType: "stations",
		},
		{
			name:     "error envelope",
			response: NewErrorResponse("test error"),
			wantType: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Success(tt.response)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, got.StatusCode)

			var resp APIResponse
			err = json.Unmarshal([]byte(got.Body), &resp)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, resp.ResponseType)

			assert.Equal(t, "application/json", got.Headers["Content-Type"])
			assert.Equal(t, "*", got.Headers["Access-Control-Allow-Origin"])
		})
	}
}

func TestSuccessUnencodable(t *testing.T) {
	got, err := Success(make(chan int))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, got.StatusCode)
}

func TestEmptyStationsEncodeAsArray(t *testing.T) {
	got, err := Success(NewStationsResponse(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"responseType":"stations","stations":[]}`, got.Body)

	got, err = Success(NewNearbyResponse(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"responseType":"stations","stations":[]}`, got.Body)
}

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		statusCode int
	}{
		{name: "bad request", message: "Invalid coordinates", statusCode: http.StatusBadRequest},
		{name: "bad gateway", message: "Station provider unavailable", statusCode: http.StatusBadGateway},
		{name: "server error", message: "Error finding stations", statusCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Error(tt.message, tt.statusCode)
			require.NoError(t, err)
			assert.Equal(t, tt.statusCode, got.StatusCode)

			var resp ErrorResponse
			err = json.Unmarshal([]byte(got.Body), &resp)
			require.NoError(t, err)
			assert.Equal(t, "error", resp.ResponseType)
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]string
		wantLat float64
		wantLon float64
		wantErr error
		anyErr  bool
	}{
		{
			name:    "valid coordinates",
			params:  map[string]string{"lat": "-23.5505", "lon": "-46.6333"},
			wantLat: -23.5505,
			wantLon: -46.6333,
		},
		{
			name:    "invalid latitude",
			params:  map[string]string{"lat": "91", "lon": "0"},
			wantErr: InvalidCoordinatesError{},
		},
		{
			name:    "invalid longitude",
			params:  map[string]string{"lat": "0", "lon": "-181"},
			wantErr: InvalidCoordinatesError{},
		},
		{
			name:   "missing coordinates",
			params: map[string]string{"lat": "1"},
		},
		{
			name:   "non-numeric latitude",
			params: map[string]string{"lat": "abc", "lon": "0"},
			anyErr: true,
		},
		{
			name:   "non-numeric longitude",
			params: map[string]string{"lat": "0", "lon": "abc"},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon, err := ParseCoordinates(tt.params)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantLat, lat)
				assert.Equal(t, tt.wantLon, lon)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, station.DefaultNearestLimit, ParseLimit(nil))
	assert.Equal(t, 2, ParseLimit(map[string]string{"limit": "2"}))
	assert.Equal(t, station.DefaultNearestLimit, ParseLimit(map[string]string{"limit": "zero"}))
	assert.Equal(t, station.DefaultNearestLimit, ParseLimit(map[string]string{"limit": "-3"}))
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, models.Status(""), status)

	status, err = ParseStatus(map[string]string{"status": " Maintenance "})
	require.NoError(t, err)
	assert.Equal(t, models.StatusMaintenance, status)

	_, err = ParseStatus(map[string]string{"status": "broken"})
	assert.EqualError(t, err, "Invalid status: broken")
}
