package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/lawn-tracker/internal/lawn"
	"github.com/i474232898/lawn-tracker/internal/weather"
)

const (
	defaultInterval = 15 * time.Minute
	jobTimeout      = 30 * time.Second
)

// SettingsSource supplies the saved lawn profile.
type SettingsSource interface {
	Settings(ctx context.Context) (lawn.Settings, error)
}

// Refresher fetches fresh weather for a location and caches it.
type Refresher interface {
	Refresh(ctx context.Context, loc weather.Location) (weather.Snapshot, error)
}

// Scheduler periodically warms the weather cache for the saved zip code so
// recommendation requests rarely wait on the providers.
type Scheduler struct {
	scheduler *gocron.Scheduler
	settings  SettingsSource
	weather   Refresher
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler. A non-positive interval uses 15 minutes.
func New(settings SettingsSource, refresher Refresher, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		settings:  settings,
		weather:   refresher,
		interval:  interval,
		logger:    logger.Named("scheduler"),
	}
}

// Start schedules the warm-up job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 1
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("Weather warm-up scheduled", zap.Duration("interval", time.Duration(minutes)*time.Minute))
	return nil
}

// RunOnce refreshes the weather for the saved location. It reports whether a
// refresh succeeded; a missing zip code is skipped.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		s.logger.Error("Failed to load settings", zap.Error(err))
		return false
	}
	if settings.ZipCode == "" {
		s.logger.Debug("No zip code saved; skipping weather warm-up")
		return false
	}

	loc := weather.NewLocation(settings.ZipCode, settings.Country())
	start := time.Now()
	if _, err := s.weather.Refresh(ctx, loc); err != nil {
		s.logger.Warn("Weather warm-up failed",
			zap.String("location", loc.Key()),
			zap.Error(err))
		return false
	}
	s.logger.Debug("Weather warm-up completed",
		zap.String("location", loc.Key()),
		zap.Duration("elapsed", time.Since(start)))
	return true
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
