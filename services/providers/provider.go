// Package providers holds the vision-model provider clients and the
// structured error type the dispatch layer uses to tell quota exhaustion
// apart from everything else.
package providers

import (
	"errors"
	"fmt"
)

// Image is a raw image payload handed to a vision provider.
type Image struct {
	// Data is the raw image bytes.
	Data []byte

	// MIMEType is the image content type (e.g. "image/jpeg").
	MIMEType string
}

// ErrorKind classifies a provider failure. The kind is set by the provider
// client from the HTTP status it observed, never inferred downstream from
// message text.
type ErrorKind int

const (
	// KindOther is any provider failure that is not a quota signal:
	// transport errors, 5xx responses, malformed payloads.
	KindOther ErrorKind = iota

	// KindRateLimited means the provider rejected this key's quota
	// (HTTP 429). The dispatcher recovers from these by rotating keys.
	KindRateLimited
)

// Error is a failure from a provider call.
type Error struct {
	// Provider is the provider name (e.g. "gemini", "openrouter").
	Provider string

	// Model is the model identifier used for the call, when known.
	Model string

	// StatusCode is the HTTP status code, zero for transport failures.
	StatusCode int

	// Kind classifies the failure for the dispatch layer.
	Kind ErrorKind

	// Message is a short description of what failed.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a provider error.
func NewError(provider, model string, statusCode int, kind ErrorKind, message string, err error) *Error {
	return &Error{
		Provider:   provider,
		Model:      model,
		StatusCode: statusCode,
		Kind:       kind,
		Message:    message,
		Err:        err,
	}
}

// IsRateLimited reports whether err carries a rate-limit provider error.
func IsRateLimited(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == KindRateLimited
	}
	return false
}
