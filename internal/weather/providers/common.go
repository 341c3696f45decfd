// Package providers implements weather.Provider for public weather APIs.
// Every provider retries transient failures with exponential backoff behind
// its own circuit breaker.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/lawn-tracker/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

var defaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
	errMissingAPIKey = errors.New("api key is not configured")
)

// Option customizes a provider.
type Option func(*base)

// WithBaseURL points the provider at a different API root.
func WithBaseURL(u string) Option {
	return func(b *base) { b.baseURL = u }
}

// WithBackoff overrides the retry policy.
func WithBackoff(cfg BackoffConfig) Option {
	return func(b *base) { b.httpCfg.Backoff = cfg }
}

// base holds what every provider shares.
type base struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func newBase(name, baseURL string, client *http.Client, opts []Option) base {
	b := base{
		name:    name,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff},
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Name() string {
	return b.name
}

func (b *base) fail(kind error, status int, cause error) *weather.ProviderError {
	return &weather.ProviderError{Provider: b.name, StatusCode: status, Kind: kind, Cause: cause}
}

// get performs a resilient GET and returns the response of a 2xx reply.
func (b *base) get(ctx context.Context, u string) (*http.Response, error) {
	return doRequestWithResilience(ctx, b.name, b.httpCfg, b.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, u, nil)
	})
}

// doRequestWithResilience executes the HTTP request with retries, exponential backoff,
// and a circuit breaker. Rate limiting, server errors, and transport errors are
// retried and count against the breaker. Other non-2xx replies fail at once.
// Every returned error other than a context error is a *weather.ProviderError.
func doRequestWithResilience(
	ctx context.Context,
	provider string,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, &weather.ProviderError{Provider: provider, Kind: weather.ErrProviderFailure, Cause: errNoHTTPClient}
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, &weather.ProviderError{Provider: provider, Kind: weather.ErrProviderFailure, Cause: errInvalidConfig}
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, &weather.ProviderError{Provider: provider, Kind: weather.ErrProviderFailure, Cause: err}
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, &weather.ProviderError{Provider: provider, Kind: weather.ErrProviderFailure, Cause: execErr}
			}

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				drain(resp)
				return nil, &weather.ProviderError{
					Provider:   provider,
					StatusCode: resp.StatusCode,
					Kind:       weather.KindForStatus(resp.StatusCode),
				}
			}

			// Client errors are the caller's problem, not the upstream's.
			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, &weather.ProviderError{Provider: provider, Kind: weather.ErrProviderFailure,
					Cause: fmt.Errorf("unexpected result type from circuit breaker")}
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				drain(resp)
				return nil, &weather.ProviderError{
					Provider:   provider,
					StatusCode: resp.StatusCode,
					Kind:       weather.KindForStatus(resp.StatusCode),
				}
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.ProviderError{Provider: provider, Kind: weather.ErrProviderFailure, Cause: err}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		if attempt >= cfg.Backoff.MaxRetries {
			return nil, lastErr
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
