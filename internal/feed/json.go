package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/bbernstein/bikesampa/pkg/http/client"
	"github.com/rs/zerolog/log"
)

// ErrMissingStationList is returned when a reply carries no station list at
// all. An explicitly empty list is a valid zero-station reply.
var ErrMissingStationList = errors.New("station list missing")

// JSONFeed reads the provider's structured station status service.
type JSONFeed struct {
	client client.Interface
	path   string
}

func NewJSONFeed(httpClient client.Interface, path string) *JSONFeed {
	return &JSONFeed{
		client: httpClient,
		path:   path,
	}
}

type jsonStation struct {
	ID                providerText `json:"IdEstacao"`
	Name              providerText `json:"Nome"`
	Address           providerText `json:"Endereco"`
	Reference         providerText `json:"Referencia"`
	Latitude          providerText `json:"Latitude"`
	Longitude         providerText `json:"Longitude"`
	OnlineStatus      providerText `json:"StatusOnline"`
	OperationalStatus providerText `json:"StatusOperacao"`
	IntegrationFlag   providerText `json:"estacaoIntegradaBU"`
	FreePositions     providerText `json:"QtdPosicaoLivre"`
	AvailableBikes    providerText `json:"QtdBicicletas"`
}

type jsonStationList struct {
	Stations []jsonStation `json:"ListEstacao"`
	HasError providerFlag  `json:"houveErro"`
	Message  providerText  `json:"msg"`
}

// The error flag has been seen both at the top level and inside RSListEstacao.
type jsonResponse struct {
	jsonStationList
	List *jsonStationList `json:"RSListEstacao"`
}

func (f *JSONFeed) Records(ctx context.Context) ([]models.RawStation, error) {
	body, err := fetch(ctx, f.client, f.path)
	if err != nil {
		return nil, err
	}

	var resp jsonResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if resp.HasError {
		return nil, NewProviderError(string(resp.Message))
	}
	list := resp.jsonStationList
	if resp.List != nil {
		if resp.List.HasError {
			return nil, NewProviderError(string(resp.List.Message))
		}
		list = *resp.List
	}
	if list.Stations == nil {
		return nil, fmt.Errorf("decoding response: %w", ErrMissingStationList)
	}

	records := make([]models.RawStation, len(list.Stations))
	for i, s := range list.Stations {
		records[i] = models.RawStation{
			ID:                string(s.ID),
			Name:              string(s.Name),
			Address:           string(s.Address),
			Reference:         string(s.Reference),
			Latitude:          string(s.Latitude),
			Longitude:         string(s.Longitude),
			OnlineStatus:      string(s.OnlineStatus),
			OperationalStatus: string(s.OperationalStatus),
			IntegrationFlag:   string(s.IntegrationFlag),
			FreePositions:     string(s.FreePositions),
			AvailableBikes:    string(s.AvailableBikes),
		}
	}

	log.Debug().Int("record_count", len(records)).Msg("Decoded JSON station feed")
	return records, nil
}

// providerText takes a JSON string as is and keeps the literal text of numbers
// and booleans; null becomes "".
type providerText string

func (t *providerText) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = providerText(s)
		return nil
	}
	*t = providerText(data)
	return nil
}

// providerFlag reads "True"/"False" strings as well as JSON booleans.
type providerFlag bool

func (f *providerFlag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = providerFlag(b)
		return nil
	}
	var s providerText
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = providerFlag(strings.EqualFold(strings.TrimSpace(string(s)), "true"))
	return nil
}
