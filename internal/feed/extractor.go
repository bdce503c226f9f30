package feed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bbernstein/bikesampa/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/titanous/json5"
)

const (
	DefaultRenderFunction = "exibirEstacaMapa"
	DefaultExtractTimeout = 10 * time.Second

	// lat, lng, icon, name, id, online, operational, occupied, docks, address
	renderArgCount   = 10
	addressSeparator = " / "

	// The legacy page carries no integration signal, every station is
	// reported as integrated.
	legacyIntegrationFlag = "S"
)

// Extractor recovers station records from the legacy page's rendering calls
// without executing them: each call's arguments are read as literals.
type Extractor struct {
	function string
	timeout  time.Duration
}

func NewExtractor(function string, timeout time.Duration) *Extractor {
	if function == "" {
		function = DefaultRenderFunction
	}
	if timeout <= 0 {
		timeout = DefaultExtractTimeout
	}
	return &Extractor{
		function: function,
		timeout:  timeout,
	}
}

// Extract returns one record per rendering call in fragment, in call order.
// It gives up with an ExtractionTimeoutError once its budget is spent.
func (e *Extractor) Extract(parent context.Context, fragment string) ([]models.RawStation, error) {
	ctx, cancel := context.WithTimeout(parent, e.timeout)
	defer cancel()

	type result struct {
		records []models.RawStation
		err     error
	}
	done := make(chan result, 1)

	go func() {
		records, err := e.parse(ctx, fragment)
		done <- result{records: records, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && ctx.Err() != nil {
			return nil, e.contextError(parent, ctx)
		}
		return r.records, r.err
	case <-ctx.Done():
		return nil, e.contextError(parent, ctx)
	}
}

// contextError blames the extractor only when its own budget ran out. A
// caller that cancelled or ran past its own deadline gets its error back.
func (e *Extractor) contextError(parent, ctx context.Context) error {
	if err := parent.Err(); err != nil {
		return fmt.Errorf("extracting stations: %w", err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Warn().Dur("budget", e.timeout).Msg("Station extraction timed out")
		return &ExtractionTimeoutError{Budget: e.timeout}
	}
	return fmt.Errorf("extracting stations: %w", ctx.Err())
}

func (e *Extractor) parse(ctx context.Context, src string) ([]models.RawStation, error) {
	records := make([]models.RawStation, 0)
	s := &scanner{src: src}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		callAt, open, err := s.nextCall(e.function)
		if err != nil {
			return nil, err
		}
		if callAt < 0 {
			return records, nil
		}

		rawArgs, err := s.arguments(open)
		if err != nil {
			return nil, newMalformed(callAt, "unterminated call", err)
		}
		if len(rawArgs) < renderArgCount {
			return nil, newMalformed(callAt, fmt.Sprintf("expected %d arguments, got %d", renderArgCount, len(rawArgs)), nil)
		}

		args := make([]string, len(rawArgs))
		for i, raw := range rawArgs {
			args[i], err = decodeArgument(raw)
			if err != nil {
				return nil, newMalformed(callAt, fmt.Sprintf("argument %d", i+1), err)
			}
		}

		records = append(records, recordFromArgs(args))
	}
}

func recordFromArgs(args []string) models.RawStation {
	address, reference := splitAddress(args[9])
	occupied := args[7]
	docks := args[8]

	return models.RawStation{
		ID:                args[4],
		Name:              args[3],
		Address:           address,
		Reference:         reference,
		Latitude:          args[0],
		Longitude:         args[1],
		OnlineStatus:      args[5],
		OperationalStatus: args[6],
		IntegrationFlag:   legacyIntegrationFlag,
		AvailableBikes:    occupied,
		FreePositions:     models.ParseCount(docks).Sub(models.ParseCount(occupied)).String(),
	}
}

func splitAddress(combined string) (address, reference string) {
	parts := strings.Split(combined, addressSeparator)
	address = parts[0]
	if len(parts) > 1 {
		reference = parts[1]
	}
	return address, reference
}

// decodeArgument renders one literal argument the way the page would see it as a string.
func decodeArgument(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty argument")
	}
	// true, false, null, undefined, NaN and plain variable references
	if isIdentifier(raw) {
		return raw, nil
	}

	var v interface{}
	if err := json5.Unmarshal([]byte(raw), &v); err != nil {
		return "", err
	}

	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	case nil:
		return "null", nil
	default:
		return raw, nil
	}
}

func isIdentifier(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i]) || (i == 0 && s[i] >= '0' && s[i] <= '9') {
			return false
		}
	}
	return s != ""
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}

// scanner walks script text, stepping over comments and string literals.
type scanner struct {
	src string
	pos int
}

// nextCall finds the next call of function and returns the offset of its name
// and of its opening parenthesis. Declarations and member calls are skipped.
// callAt is -1 once the text is exhausted.
func (s *scanner) nextCall(function string) (callAt, open int, err error) {
	prevWord := ""
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case s.skipComment():
		case c == '\'' || c == '"' || c == '`':
			if err := s.skipString(); err != nil {
				return -1, -1, err
			}
			prevWord = ""
		case isIdentChar(c):
			start := s.pos
			for s.pos < len(s.src) && isIdentChar(s.src[s.pos]) {
				s.pos++
			}
			word := s.src[start:s.pos]
			if word == function && prevWord != "function" && !s.memberAccess(start) {
				if p := s.skipSpace(s.pos); p < len(s.src) && s.src[p] == '(' {
					s.pos = p
					return start, p, nil
				}
			}
			prevWord = word
		default:
			if !isSpace(c) {
				prevWord = ""
			}
			s.pos++
		}
	}
	return -1, -1, nil
}

// arguments splits the argument list opened at open into raw argument texts
// and leaves the scanner after the closing parenthesis.
func (s *scanner) arguments(open int) ([]string, error) {
	s.pos = open + 1
	var (
		args  []string
		depth int
		start = s.pos
	)
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case s.skipComment():
		case c == '\'' || c == '"' || c == '`':
			if err := s.skipString(); err != nil {
				return nil, err
			}
		case c == '(' || c == '[' || c == '{':
			depth++
			s.pos++
		case depth > 0 && (c == ')' || c == ']' || c == '}'):
			depth--
			s.pos++
		case c == ',' && depth == 0:
			args = append(args, s.src[start:s.pos])
			s.pos++
			start = s.pos
		case c == ')':
			// a trailing comma leaves an empty last argument behind
			if last := s.src[start:s.pos]; strings.TrimSpace(last) != "" {
				args = append(args, last)
			}
			s.pos++
			return args, nil
		default:
			s.pos++
		}
	}
	return nil, errors.New("missing closing parenthesis")
}

func (s *scanner) skipComment() bool {
	if s.pos+1 >= len(s.src) || s.src[s.pos] != '/' {
		return false
	}
	switch s.src[s.pos+1] {
	case '/':
		if end := strings.IndexByte(s.src[s.pos:], '\n'); end >= 0 {
			s.pos += end + 1
		} else {
			s.pos = len(s.src)
		}
		return true
	case '*':
		if end := strings.Index(s.src[s.pos+2:], "*/"); end >= 0 {
			s.pos += end + 4
		} else {
			s.pos = len(s.src)
		}
		return true
	}
	return false
}

func (s *scanner) skipString() error {
	start := s.pos
	quote := s.src[s.pos]
	s.pos++
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos += 2
			continue
		case quote:
			s.pos++
			return nil
		case '\n':
			if quote != '`' {
				return newMalformed(start, "unterminated string", nil)
			}
		}
		s.pos++
	}
	return newMalformed(start, "unterminated string", nil)
}

func (s *scanner) skipSpace(p int) int {
	for p < len(s.src) && isSpace(s.src[p]) {
		p++
	}
	return p
}

func (s *scanner) memberAccess(identStart int) bool {
	p := identStart - 1
	for p >= 0 && isSpace(s.src[p]) {
		p--
	}
	return p >= 0 && s.src[p] == '.'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
