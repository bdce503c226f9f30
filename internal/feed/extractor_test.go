package feed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFragment = `exibirEstacaMapa(-23.587315, -46.647974, 'img/verde.png', 'Instituto Biologico', '1', 'A', 'EO', '1', '12', 'Rua X / Ref Y');
exibirEstacaMapa("-23.5", "-46.6", icone, "Sé", "2", "I", "EM", "abc", "10", "Praça da Sé");`

func TestExtract(t *testing.T) {
	t.Parallel()

	got, err := NewExtractor("", 0).Extract(context.Background(), sampleFragment)
	require.NoError(t, err)

	want := []models.RawStation{
		{
			ID:                "1",
			Name:              "Instituto Biologico",
			Address:           "Rua X",
			Reference:         "Ref Y",
			Latitude:          "-23.587315",
			Longitude:         "-46.647974",
			OnlineStatus:      "A",
			OperationalStatus: "EO",
			IntegrationFlag:   "S",
			FreePositions:     "11",
			AvailableBikes:    "1",
		},
		{
			ID:                "2",
			Name:              "Sé",
			Address:           "Praça da Sé",
			Reference:         "",
			Latitude:          "-23.5",
			Longitude:         "-46.6",
			OnlineStatus:      "I",
			OperationalStatus: "EM",
			IntegrationFlag:   "S",
			FreePositions:     "NaN",
			AvailableBikes:    "abc",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractIgnoresNonCalls(t *testing.T) {
	t.Parallel()

	fragment := strings.Join([]string{
		"// exibirEstacaMapa('commented', 'out');",
		"/* exibirEstacaMapa(1,2,3) */",
		"function exibirEstacaMapa(lat, lng, icone, nome, id, on, op, ocup, total, end) {",
		"  var label = 'exibirEstacaMapa(';",
		"}",
		"mapa.exibirEstacaMapa(1);",
		"var exibirEstacaMapaOld = 1;",
		"exibirEstacaMapa ( '1', '2', 'i', 'n', '9', 'A', 'EO', '3', '5', 'Rua / Ref / Extra', );",
	}, "\n")

	got, err := NewExtractor(DefaultRenderFunction, time.Second).Extract(context.Background(), fragment)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "9", got[0].ID)
	assert.Equal(t, "Rua", got[0].Address)
	assert.Equal(t, "Ref", got[0].Reference)
	assert.Equal(t, "2", got[0].FreePositions)
	assert.Equal(t, "3", got[0].AvailableBikes)
}

func TestExtractEmpty(t *testing.T) {
	t.Parallel()

	for _, fragment := range []string{"", "   \n\t", "var a = 1;\nwhile (true) {}"} {
		got, err := NewExtractor("", 0).Extract(context.Background(), fragment)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestExtractMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fragment string
		reason   string
	}{
		{
			name:     "unterminated call",
			fragment: "exibirEstacaMapa('1', '2', '3'",
			reason:   "unterminated call",
		},
		{
			name:     "too few arguments",
			fragment: "exibirEstacaMapa('1', '2', '3');",
			reason:   "expected 10 arguments, got 3",
		},
		{
			name:     "empty argument",
			fragment: "exibirEstacaMapa('1', , '3', '4', '5', '6', '7', '8', '9', '10');",
			reason:   "argument 2",
		},
		{
			name:     "expression argument",
			fragment: "exibirEstacaMapa('1', '2', '3', '4', '5', '6', '7', 1 + 2, '9', '10');",
			reason:   "argument 8",
		},
		{
			name:     "unterminated string",
			fragment: "exibirEstacaMapa('1', '2\n', '3');",
			reason:   "unterminated call",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewExtractor("", 0).Extract(context.Background(), tt.fragment)
			assert.Nil(t, got)

			var malformed *MalformedFragmentError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, 0, malformed.Offset)
			assert.Equal(t, tt.reason, malformed.Reason)
		})
	}
}

func TestExtractTimeout(t *testing.T) {
	t.Parallel()

	fragment := strings.Repeat("exibirEstacaMapa('1','2','3','4','5','6','7','8','9','10');\n", 10000)

	start := time.Now()
	got, err := NewExtractor("", time.Nanosecond).Extract(context.Background(), fragment)
	assert.Less(t, time.Since(start), time.Second)
	assert.Nil(t, got)

	var timeout *ExtractionTimeoutError
	require.True(t, errors.As(err, &timeout), "got %v", err)
	assert.Equal(t, time.Nanosecond, timeout.Budget)
}

func TestExtractCallerDeadline(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	fragment := strings.Repeat("exibirEstacaMapa('1','2','3','4','5','6','7','8','9','10');\n", 10000)

	got, err := NewExtractor("", time.Minute).Extract(ctx, fragment)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var timeout *ExtractionTimeoutError
	assert.False(t, errors.As(err, &timeout), "caller deadline reported as extraction timeout: %v", err)
}

func TestExtractCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor("", time.Second).Extract(ctx, sampleFragment)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	var timeout *ExtractionTimeoutError
	assert.False(t, errors.As(err, &timeout))
}

func TestDecodeArgument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: `'single'`, want: "single"},
		{raw: `"double"`, want: "double"},
		{raw: `'it\'s'`, want: "it's"},
		{raw: ` 12 `, want: "12"},
		{raw: `-46.647974`, want: "-46.647974"},
		{raw: `true`, want: "true"},
		{raw: `null`, want: "null"},
		{raw: `undefined`, want: "undefined"},
		{raw: `iconeVerde`, want: "iconeVerde"},
		{raw: ``, wantErr: true},
		{raw: `a + b`, wantErr: true},
	}

	for _, tt := range tests {
		got, err := decodeArgument(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
