package recommend

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/lawn-tracker/internal/lawn"
	"github.com/i474232898/lawn-tracker/internal/weather"
)

// Records is the read side of the record repository.
type Records interface {
	AllApplications(ctx context.Context) ([]lawn.Application, error)
	SoilMeasurements(ctx context.Context) ([]lawn.SoilMeasurement, error)
	Settings(ctx context.Context) (lawn.Settings, error)
}

// WeatherSource supplies the snapshot for the lawn's location.
type WeatherSource interface {
	Current(ctx context.Context, loc weather.Location) (weather.Snapshot, error)
}

// Report is a bundle plus the reasons any part of it is missing upstream data.
type Report struct {
	Bundle
	Warnings []string `json:"warnings"`
}

const (
	warnNoZip     = "Set a zip code in settings to enable GDD tracking"
	warnNoGrass   = "Set a grass type in settings to enable GDD tracking"
	warnNoWeather = "Weather data is unavailable; GDD tracking is paused"
)

// Service loads the current records and weather and builds a Report.
type Service struct {
	records Records
	weather WeatherSource
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a Service. ws may be nil, in which case GDD
// information is never produced.
func NewService(records Records, ws WeatherSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		records: records,
		weather: ws,
		logger:  logger.Named("recommend"),
		now:     time.Now,
	}
}

// Recommendations builds the current report. Only record loading can fail;
// weather problems become warnings.
func (s *Service) Recommendations(ctx context.Context) (Report, error) {
	in, warnings, err := s.inputs(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{Bundle: Build(in), Warnings: warnings}, nil
}

// Usage summarizes the application log.
func (s *Service) Usage(ctx context.Context) ([]Usage, error) {
	apps, err := s.records.AllApplications(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.records.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(apps, settings, s.now()), nil
}

func (s *Service) inputs(ctx context.Context) (Inputs, []string, error) {
	apps, err := s.records.AllApplications(ctx)
	if err != nil {
		return Inputs{}, nil, err
	}
	soil, err := s.records.SoilMeasurements(ctx)
	if err != nil {
		return Inputs{}, nil, err
	}
	settings, err := s.records.Settings(ctx)
	if err != nil {
		return Inputs{}, nil, err
	}

	in := Inputs{
		Applications: apps,
		Soil:         soil,
		Settings:     settings,
		Today:        s.now(),
	}
	warnings := []string{}

	switch {
	case settings.GrassType == lawn.UnspecifiedGrass:
		warnings = append(warnings, warnNoGrass)
	case settings.ZipCode == "":
		warnings = append(warnings, warnNoZip)
	case s.weather == nil:
		warnings = append(warnings, warnNoWeather)
	default:
		snap, err := s.weather.Current(ctx, weather.NewLocation(settings.ZipCode, settings.Country()))
		if err != nil {
			s.logger.Warn("weather unavailable for recommendations",
				zap.String("zip", settings.ZipCode),
				zap.Error(err))
			warnings = append(warnings, warnNoWeather+": "+err.Error())
			break
		}
		in.Weather = &snap
	}
	return in, warnings, nil
}
