package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/bbernstein/bikesampa/pkg/http/client"
)

// Source produces the provider's raw station records in one of its published formats.
type Source interface {
	Records(ctx context.Context) ([]models.RawStation, error)
}

type Format string

const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown feed format %q", s)
	}
}

// New builds the source for the configured format. htmlOpts is ignored for JSON.
func New(format Format, httpClient client.Interface, path string, htmlOpts HTMLOptions) (Source, error) {
	switch format {
	case FormatJSON:
		return NewJSONFeed(httpClient, path), nil
	case FormatHTML:
		return NewHTMLFeed(httpClient, path, htmlOpts), nil
	default:
		return nil, fmt.Errorf("unknown feed format %q", format)
	}
}

func fetch(ctx context.Context, httpClient client.Interface, path string) ([]byte, error) {
	resp, err := httpClient.Get(ctx, path)
	if err != nil {
		return nil, NewTransportError(path, 0, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, NewTransportError(path, resp.StatusCode, nil)
	}
	return resp.Body, nil
}
