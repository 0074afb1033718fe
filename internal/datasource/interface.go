// Package datasource fetches daily price history from external providers.
package datasource

import (
	"context"
	"time"

	"github.com/yourusername/aegisquant/internal/models"
)

// PriceSource fetches daily OHLCV bars for a symbol. Implementations
// normalize provider quirks into models.PriceBar; they do not sort or
// deduplicate, that is the core's job.
type PriceSource interface {
	// FetchDailyBars retrieves daily bars from start up to today.
	FetchDailyBars(ctx context.Context, symbol string, start time.Time) ([]models.PriceBar, error)

	// Name returns the name of the data source.
	Name() string

	// IsEnabled returns whether this data source is currently enabled.
	IsEnabled() bool
}

// SourceError represents errors from data source operations.
type SourceError struct {
	Source  string // data source name
	Code    string // error code (e.g., "rate_limit_exceeded")
	Message string
	Err     error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
	ErrCodeDisabled          = "source_disabled"
)

// NewSourceError creates a new data source error.
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
