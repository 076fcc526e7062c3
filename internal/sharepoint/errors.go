// Package sharepoint implements a client for the SharePoint REST API:
// token acquisition (app-only and delegated context-token flows), payload
// hydration into typed entities, and CRUD operations on lists, items,
// files, and folders.
package sharepoint

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, sharepoint.ErrNotFound) to check.
var (
	ErrBadRequest   = errors.New("sharepoint: bad request")
	ErrUnauthorized = errors.New("sharepoint: unauthorized")
	ErrForbidden    = errors.New("sharepoint: forbidden")
	ErrNotFound     = errors.New("sharepoint: not found")
	ErrConflict     = errors.New("sharepoint: conflict")
	ErrThrottled    = errors.New("sharepoint: throttled")
	ErrServerError  = errors.New("sharepoint: server error")
)

// ErrNotLoggedIn is returned when an operation requires a saved token and
// none exists.
var ErrNotLoggedIn = errors.New("sharepoint: not logged in")

// ConfigError reports a missing or invalid required configuration field.
// Non-retryable; Field names the first field that failed validation.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sharepoint: missing or invalid config field %q", e.Field)
}

// MappingError reports a hydration failure: either a required path was
// absent from the payload (strict mode) or a resolved value could not be
// coerced to the declared core attribute type.
type MappingError struct {
	Path string
	Err  error // nil for absent paths, coercion cause otherwise
}

func (e *MappingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sharepoint: mapping path %q: %v", e.Path, e.Err)
	}

	return fmt.Sprintf("sharepoint: required path %q absent from payload", e.Path)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

// AuthError reports a context assertion that failed verification or
// decoding. Non-retryable.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("sharepoint: assertion rejected: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TransportError wraps any failure from the HTTP layer, including non-2xx
// responses. StatusCode is zero for network-level failures. Err carries the
// original cause — a classification sentinel for HTTP errors, the transport
// error otherwise — so callers can use errors.Is.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sharepoint: HTTP %d: %s", e.StatusCode, e.Message)
	}

	return fmt.Sprintf("sharepoint: transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for 2xx success codes.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}
