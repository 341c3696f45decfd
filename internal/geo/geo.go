// Package geo resolves postal codes to coordinates and back using the Google
// Geocoding API.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kelvins/geocoder"
)

var (
	// ErrNotFound means the geocoder returned no match.
	ErrNotFound = errors.New("location not found")
	// ErrNotConfigured means no geocoding API key is available.
	ErrNotConfigured = errors.New("geocoder api key is not configured")
	// ErrInvalidCoordinates rejects latitude/longitude outside their ranges.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that the coordinates lie on the globe.
func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: %f,%f", ErrInvalidCoordinates, c.Latitude, c.Longitude)
	}
	return nil
}

// Place is the postal address of a position.
type Place struct {
	PostalCode string `json:"postalCode"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Locator converts between postal codes and coordinates.
type Locator interface {
	Locate(ctx context.Context, postalCode, country string) (Coordinates, error)
	Reverse(ctx context.Context, c Coordinates) (Place, error)
}

// GoogleLocator is a Locator backed by github.com/kelvins/geocoder. Forward
// lookups are cached for the lifetime of the locator since postal codes do
// not move.
type GoogleLocator struct {
	apiKey string

	geocode func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)

	mu    sync.Mutex
	cache map[string]Coordinates
}

// keyMu guards geocoder.ApiKey, which the library keeps as package state.
// Requests hold the read lock so that a hung request only delays a key change,
// never another request with the same key.
var keyMu sync.RWMutex

// requestTimeout bounds a call whose context carries no deadline. The library
// uses its own http.Client without a timeout.
const requestTimeout = 15 * time.Second

// NewGoogleLocator creates a locator with the given API key.
func NewGoogleLocator(apiKey string) *GoogleLocator {
	return &GoogleLocator{
		apiKey:  apiKey,
		geocode: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
		cache:   make(map[string]Coordinates),
	}
}

// Locate returns the coordinates of a postal code.
func (l *GoogleLocator) Locate(ctx context.Context, postalCode, country string) (Coordinates, error) {
	if l.apiKey == "" {
		return Coordinates{}, ErrNotConfigured
	}
	postalCode = strings.TrimSpace(postalCode)
	if postalCode == "" {
		return Coordinates{}, fmt.Errorf("%w: empty postal code", ErrNotFound)
	}
	key := strings.ToUpper(country) + ":" + postalCode

	l.mu.Lock()
	c, ok := l.cache[key]
	l.mu.Unlock()
	if ok {
		return c, nil
	}

	loc, err := call(ctx, l.apiKey, func() (geocoder.Location, error) {
		return l.geocode(geocoder.Address{PostalCode: postalCode, Country: country})
	})
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode %s: %w", key, err)
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return Coordinates{}, fmt.Errorf("geocode %s: %w", key, ErrNotFound)
	}

	c = Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude}
	l.mu.Lock()
	l.cache[key] = c
	l.mu.Unlock()
	return c, nil
}

// Reverse returns the postal address nearest to c. The first result that
// carries a postal code wins.
func (l *GoogleLocator) Reverse(ctx context.Context, c Coordinates) (Place, error) {
	if err := c.Validate(); err != nil {
		return Place{}, err
	}
	if l.apiKey == "" {
		return Place{}, ErrNotConfigured
	}

	addresses, err := call(ctx, l.apiKey, func() ([]geocoder.Address, error) {
		return l.reverse(geocoder.Location{Latitude: c.Latitude, Longitude: c.Longitude})
	})
	if err != nil {
		return Place{}, fmt.Errorf("reverse geocode %f,%f: %w", c.Latitude, c.Longitude, err)
	}
	for _, a := range addresses {
		if a.PostalCode != "" {
			return Place{PostalCode: a.PostalCode, City: a.City, Country: a.Country}, nil
		}
	}
	return Place{}, fmt.Errorf("reverse geocode %f,%f: %w", c.Latitude, c.Longitude, ErrNotFound)
}

// call runs a blocking geocoder request so that ctx can abandon it.
func call[T any](ctx context.Context, apiKey string, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, requestTimeout)
		defer cancel()
	}

	done := make(chan result, 1)
	go func() {
		release := useKey(apiKey)
		v, err := fn()
		release()
		done <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.v, r.err
	}
}

// useKey installs apiKey as the library key and returns with the read lock
// held while the key stays installed.
func useKey(apiKey string) (release func()) {
	for {
		keyMu.RLock()
		if geocoder.ApiKey == apiKey {
			return keyMu.RUnlock
		}
		keyMu.RUnlock()

		keyMu.Lock()
		geocoder.ApiKey = apiKey
		keyMu.Unlock()
	}
}
