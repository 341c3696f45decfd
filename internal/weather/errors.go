package weather

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound means the provider could not resolve the location.
	ErrNotFound = errors.New("location not found")
	// ErrAuthFailure means the provider credentials are missing or invalid.
	ErrAuthFailure = errors.New("weather provider authentication failed")
	// ErrRateLimited means the provider refused the request due to quota.
	ErrRateLimited = errors.New("weather provider rate limited")
	// ErrProviderFailure covers every other upstream failure.
	ErrProviderFailure = errors.New("weather provider failure")
	// ErrNoProviders is returned when the service has nothing to query.
	ErrNoProviders = errors.New("no weather providers configured")
)

// ProviderError is a typed upstream failure. Kind is one of the sentinel
// errors above, so callers match with errors.Is.
type ProviderError struct {
	Provider   string
	StatusCode int
	Kind       error
	Cause      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ProviderError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Retryable reports whether repeating the request may succeed.
func (e *ProviderError) Retryable() bool {
	return errors.Is(e.Kind, ErrRateLimited) ||
		(errors.Is(e.Kind, ErrProviderFailure) && (e.StatusCode == 0 || e.StatusCode >= 500))
}

// KindForStatus maps an HTTP status code to an error kind.
func KindForStatus(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailure
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return ErrProviderFailure
	}
}
