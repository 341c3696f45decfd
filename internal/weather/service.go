// Package weather fetches current conditions and forecast temperatures for a
// postal code from several providers and aggregates them into one Snapshot.
package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Service orchestrates fetching from multiple providers and caching snapshots.
type Service struct {
	cache     Cache
	providers []Provider
	logger    *zap.Logger
}

// NewService creates a new Service. cache may be nil.
func NewService(cache Cache, providers []Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cache:     cache,
		providers: providers,
		logger:    logger.Named("weather"),
	}
}

// Current returns the cached snapshot for loc, fetching a fresh one when the
// cache has nothing usable.
func (s *Service) Current(ctx context.Context, loc Location) (Snapshot, error) {
	if err := loc.Validate(); err != nil {
		return Snapshot{}, &ProviderError{Provider: "weather", Kind: ErrNotFound, Cause: err}
	}
	if s.cache != nil {
		if snap, ok := s.cache.Latest(loc); ok {
			return snap, nil
		}
	}
	return s.Refresh(ctx, loc)
}

// Refresh fetches from all providers concurrently, aggregates the successful
// readings, and caches the result. When every provider fails the provider
// errors are returned joined, in provider order, and the cache is untouched.
func (s *Service) Refresh(ctx context.Context, loc Location) (Snapshot, error) {
	if err := loc.Validate(); err != nil {
		return Snapshot{}, &ProviderError{Provider: "weather", Kind: ErrNotFound, Cause: err}
	}
	if len(s.providers) == 0 {
		s.logger.Error("no providers available", zap.String("location", loc.Key()))
		return Snapshot{}, ErrNoProviders
	}

	var (
		wg      sync.WaitGroup
		results = make([]*Reading, len(s.providers))
		errs    = make([]error, len(s.providers))
	)

	for i, p := range s.providers {
		i, p := i, p
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)
			if err != nil {
				// Partial success is still a snapshot.
				s.logger.Warn("provider fetch failed",
					zap.String("provider", p.Name()),
					zap.String("location", loc.Key()),
					zap.Error(err))
				errs[i] = err
				return
			}

			results[i] = &r
		}()
	}

	wg.Wait()

	// Provider order, not completion order, decides ties during aggregation.
	readings := make([]Reading, 0, len(results))
	for _, r := range results {
		if r != nil {
			readings = append(readings, *r)
		}
	}

	if len(readings) == 0 {
		return Snapshot{}, fmt.Errorf("all weather providers failed for %s: %w", loc.Key(), errors.Join(errs...))
	}

	snapshot := AggregateReadings(loc, readings)
	if s.cache != nil {
		s.cache.Save(loc, snapshot)
	}
	s.logger.Debug("weather refreshed",
		zap.String("location", loc.Key()),
		zap.Int("providers", len(readings)))
	return snapshot, nil
}
