package feed

import (
	"fmt"
	"time"
)

// TransportError is a failed fetch: network error, timeout or a non-2xx reply.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func NewTransportError(url string, statusCode int, err error) *TransportError {
	return &TransportError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// ProviderError is raised when the JSON feed sets its own error flag.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider reported error: %s", e.Message)
}

func NewProviderError(message string) *ProviderError {
	return &ProviderError{Message: message}
}

// ExtractionTimeoutError means the legacy fragment could not be read within its budget.
type ExtractionTimeoutError struct {
	Budget time.Duration
}

func (e *ExtractionTimeoutError) Error() string {
	return fmt.Sprintf("station extraction exceeded %s", e.Budget)
}

// MalformedFragmentError is an unreadable rendering call in the legacy fragment.
type MalformedFragmentError struct {
	Offset int
	Reason string
	Err    error
}

func (e *MalformedFragmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed fragment at offset %d: %s: %v", e.Offset, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed fragment at offset %d: %s", e.Offset, e.Reason)
}

func (e *MalformedFragmentError) Unwrap() error {
	return e.Err
}

func newMalformed(offset int, reason string, err error) *MalformedFragmentError {
	return &MalformedFragmentError{
		Offset: offset,
		Reason: reason,
		Err:    err,
	}
}
