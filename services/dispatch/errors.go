package dispatch

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoKeys is returned when a dispatch is requested but the key pool is
// empty. This is a configuration problem, not a transient one, and is never
// retried.
var ErrNoKeys = errors.New("no API keys configured")

// QuotaExhaustedError indicates that every key in the pool is quota-exhausted
// and the global cooldown is active. RetryAfter reports how long callers must
// wait before the pool may be tried again.
type QuotaExhaustedError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *QuotaExhaustedError) Error() string {
	return fmt.Sprintf("all API keys quota-exhausted, retry after %s", e.RetryAfter.Round(time.Second))
}

// IsQuotaExhausted reports whether err is a QuotaExhaustedError.
func IsQuotaExhausted(err error) bool {
	var qe *QuotaExhaustedError
	return errors.As(err, &qe)
}

// AllProvidersError is the terminal failure returned when the primary
// rotation and every fallback model have failed. Last holds the most recent
// underlying error observed, in try order, for diagnostics.
type AllProvidersError struct {
	Last error
}

// Error implements the error interface.
func (e *AllProvidersError) Error() string {
	if e.Last != nil {
		return "all providers exhausted: " + e.Last.Error()
	}
	return "all providers exhausted"
}

// Unwrap implements error unwrapping.
func (e *AllProvidersError) Unwrap() error {
	return e.Last
}

// IsAllProvidersExhausted reports whether err is an AllProvidersError.
func IsAllProvidersExhausted(err error) bool {
	var ae *AllProvidersError
	return errors.As(err, &ae)
}
