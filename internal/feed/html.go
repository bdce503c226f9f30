package feed

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/bbernstein/bikesampa/pkg/http/client"
	"github.com/rs/zerolog/log"
)

type HTMLOptions struct {
	Markers  Markers
	Function string
	Timeout  time.Duration
}

// HTMLFeed reads the legacy map page, where stations only exist as arguments
// of the page's marker rendering calls.
type HTMLFeed struct {
	client    client.Interface
	path      string
	markers   Markers
	extractor *Extractor
}

func NewHTMLFeed(httpClient client.Interface, path string, opts HTMLOptions) *HTMLFeed {
	if opts.Markers.Start == "" || opts.Markers.End == "" {
		opts.Markers = DefaultMarkers
	}
	return &HTMLFeed{
		client:    httpClient,
		path:      path,
		markers:   opts.Markers,
		extractor: NewExtractor(opts.Function, opts.Timeout),
	}
}

func (f *HTMLFeed) Records(ctx context.Context) ([]models.RawStation, error) {
	body, err := fetch(ctx, f.client, f.path)
	if err != nil {
		return nil, err
	}

	fragment := Slice(string(body), f.markers)
	if fragment == "" {
		f.logMissingBlock(body)
		return []models.RawStation{}, nil
	}

	records, err := f.extractor.Extract(ctx, fragment)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("fragment_bytes", len(fragment)).
		Int("record_count", len(records)).
		Msg("Extracted stations from legacy page")
	return records, nil
}

// logMissingBlock describes a page without a station block so layout changes
// on the provider side show up in the logs.
func (f *HTMLFeed) logMissingBlock(body []byte) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Str("path", f.path).Msg("Station block not found and page is not parseable")
		return
	}

	log.Warn().
		Str("path", f.path).
		Str("title", strings.TrimSpace(doc.Find("title").First().Text())).
		Int("scripts", doc.Find("script").Length()).
		Msg("Station block markers not found in page")
}
