package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/i474232898/lawn-tracker/internal/analyzer"
	httpapi "github.com/i474232898/lawn-tracker/internal/api/http"
	"github.com/i474232898/lawn-tracker/internal/config"
	"github.com/i474232898/lawn-tracker/internal/geo"
	"github.com/i474232898/lawn-tracker/internal/recommend"
	"github.com/i474232898/lawn-tracker/internal/records"
	"github.com/i474232898/lawn-tracker/internal/scheduler"
	"github.com/i474232898/lawn-tracker/internal/store"
	"github.com/i474232898/lawn-tracker/internal/weather"
	"github.com/i474232898/lawn-tracker/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := openStore(ctx, cfg.Store)
	if err != nil {
		zapLogger.Fatal("Failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := kv.Close(); err != nil {
			zapLogger.Warn("Failed to close store", zap.Error(err))
		}
	}()

	repo := records.New(kv, records.WithDefaultCountry(cfg.Weather.DefaultCountry))

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var locator *geo.GoogleLocator
	if cfg.Weather.GeocoderAPIKey != "" {
		locator = geo.NewGoogleLocator(cfg.Weather.GeocoderAPIKey)
	}

	var provs []weather.Provider
	if cfg.Weather.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.Weather.OpenWeatherAPIKey))
	}
	if cfg.Weather.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.Weather.WeatherAPIKey))
	}
	// Open-Meteo needs no key but only takes coordinates.
	if locator != nil {
		provs = append(provs, providers.NewOpenMeteoProvider(httpClient, locator))
	}
	if len(provs) == 0 {
		zapLogger.Warn("No weather providers configured; recommendations will run without weather")
	}

	weatherSvc := weather.NewService(weather.NewMemoryCache(cfg.Weather.CacheTTL), provs, zapLogger)
	recommender := recommend.NewService(repo, weatherSvc, zapLogger)

	vision, err := newVisionAnalyzer(cfg.Analyzer, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to configure soil report analyzer", zap.Error(err))
	}
	dispatcher := analyzer.NewDispatcher(vision, zapLogger)

	sched := scheduler.New(repo, weatherSvc, cfg.Weather.RefreshInterval, zapLogger)
	if err := sched.Start(); err != nil {
		zapLogger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "lawn-tracker",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		BodyLimit:             cfg.UploadMaxBytes + 1<<20,
		ErrorHandler:          httpapi.NewErrorHandler(zapLogger),
	})

	app.Use(logger.New())
	app.Use(recover.New())

	deps := httpapi.Deps{
		Records:        repo,
		Recommender:    recommender,
		Weather:        weatherSvc,
		Analyzer:       dispatcher,
		UploadMaxBytes: cfg.UploadMaxBytes,
		Logger:         zapLogger,
	}
	if locator != nil {
		deps.Locator = locator
	}
	httpapi.RegisterRoutes(app, deps)

	go func() {
		zapLogger.Info("Starting lawn-tracker",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Env),
			zap.String("store", cfg.Store.Driver),
			zap.Int("weather_providers", len(provs)),
			zap.Bool("vision_enabled", dispatcher.VisionEnabled()))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zapLogger.Error("Fiber server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zapLogger.Error("Error during shutdown", zap.Error(err))
	}
}

func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	logConfig := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		logConfig = zap.NewProductionConfig()
	}
	logConfig.Level = level
	return logConfig.Build()
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.KV, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		return store.NewMemoryKV(), nil
	case config.StorePostgres:
		return store.OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return store.OpenSQLite(cfg.SQLitePath)
	}
}

// newVisionAnalyzer returns nil when no provider is configured; image and PDF
// uploads are then rejected.
func newVisionAnalyzer(cfg config.AnalyzerConfig, logger *zap.Logger) (analyzer.Analyzer, error) {
	switch cfg.Provider {
	case config.AnalyzerOpenAI:
		return analyzer.NewOpenAIAnalyzer(analyzer.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}, logger)
	case config.AnalyzerAnthropic:
		return analyzer.NewAnthropicAnalyzer(analyzer.AnthropicConfig{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AnthropicModel,
		}, logger)
	default:
		return nil, nil
	}
}
