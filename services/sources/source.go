package sources

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/kushwahaamar-dev/sentinel/models"
)

// Source is the interface every upstream feed adapter must implement.
// Fetch returns the normalized events currently visible on the feed
// plus a status line for the source board. A nil error with zero events
// means the feed was reachable but quiet; a non-nil error marks the
// source degraded and the status line carries the failure label.
type Source interface {
	// Name returns the source name used in logs and event records
	Name() string

	// Fetch retrieves and normalizes the feed's current events
	Fetch(ctx context.Context) ([]models.SourceEvent, string, error)
}

// Status labels rendered into operator-facing log lines. The wording is
// part of the log contract; dashboards match on these strings.
const (
	StatusUnauthorized  = "Unauthorized (check API key / plan)"
	StatusRateLimited   = "Rate Limited"
	StatusNotAcceptable = "Not Acceptable (bad Accept header)"
	StatusTimeout       = "Timeout"
	StatusSignalLost    = "Signal Lost"
	StatusParseError    = "Parse Error"
)

// FeedError represents an error from an upstream feed
type FeedError struct {
	Source     string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Err        error
}

// Error implements the error interface
func (e *FeedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s [%s] (HTTP %d): %s", e.Source, e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Source, e.Code, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *FeedError) Unwrap() error {
	return e.Err
}

// NewFeedError creates a new feed error
func NewFeedError(source, code, message string, statusCode int, retryable bool, err error) *FeedError {
	return &FeedError{
		Source:     source,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
		Err:        err,
	}
}

// StatusLabel maps a fetch error to the short label shown on the source
// status board and in log lines.
func StatusLabel(err error) string {
	var feedErr *FeedError
	if errors.As(err, &feedErr) {
		switch {
		case feedErr.StatusCode == http.StatusUnauthorized || feedErr.StatusCode == http.StatusForbidden:
			return StatusUnauthorized
		case feedErr.StatusCode == http.StatusTooManyRequests:
			return StatusRateLimited
		case feedErr.StatusCode == http.StatusNotAcceptable:
			return StatusNotAcceptable
		case feedErr.Code == "PARSE_ERROR":
			return StatusParseError
		case feedErr.Code == "TIMEOUT":
			return StatusTimeout
		case feedErr.StatusCode > 0:
			return fmt.Sprintf("HTTP %d", feedErr.StatusCode)
		}
		return StatusSignalLost
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return StatusTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return StatusTimeout
	}
	return StatusSignalLost
}

// StatusLine renders the log line for a failed fetch, e.g. "GDACS: Timeout".
func StatusLine(source string, err error) string {
	return fmt.Sprintf("%s: %s", source, StatusLabel(err))
}
