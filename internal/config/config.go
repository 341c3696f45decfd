package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/i474232898/lawn-tracker/internal/weather"
)

// AppConfig holds all configuration, read from the environment after an
// optional .env file.
type AppConfig struct {
	Port        string        `env:"PORT" env-default:"8080"`
	Env         string        `env:"ENVIRONMENT" env-default:"local"`
	LogLevel    string        `env:"LOG_LEVEL" env-default:"info"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" env-default:"10s"`

	Weather  WeatherConfig
	Store    StoreConfig
	Analyzer AnalyzerConfig

	// UploadMaxBytes limits soil report uploads.
	UploadMaxBytes int `env:"UPLOAD_MAX_BYTES" env-default:"10485760"`
}

// WeatherConfig configures the weather providers and cache.
type WeatherConfig struct {
	OpenWeatherAPIKey string `env:"OPENWEATHER_API_KEY"`
	WeatherAPIKey     string `env:"WEATHERAPI_API_KEY"`
	GeocoderAPIKey    string `env:"GEOCODER_API_KEY"`

	CacheTTL        time.Duration `env:"WEATHER_CACHE_TTL" env-default:"30m"`
	RefreshInterval time.Duration `env:"WEATHER_REFRESH_INTERVAL" env-default:"15m"`
	DefaultCountry  string        `env:"DEFAULT_COUNTRY" env-default:"US"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver      string `env:"STORE_DRIVER" env-default:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" env-default:"lawn-tracker.db"`
	DatabaseURL string `env:"DATABASE_URL"`
}

// AnalyzerConfig selects the vision model used for soil report images.
type AnalyzerConfig struct {
	Provider string `env:"ANALYZER_PROVIDER" env-default:"none"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" env-default:"gpt-4o"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" env-default:"claude-sonnet-4-5-20250929"`
}

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	AnalyzerNone      = "none"
	AnalyzerOpenAI    = "openai"
	AnalyzerAnthropic = "anthropic"
)

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Analyzer.Provider = strings.ToLower(strings.TrimSpace(c.Analyzer.Provider))
	c.Weather.DefaultCountry = strings.ToUpper(strings.TrimSpace(c.Weather.DefaultCountry))
	if c.Weather.DefaultCountry == "" {
		c.Weather.DefaultCountry = weather.DefaultCountry
	}
}

func (c *AppConfig) validate() error {
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER=sqlite")
		}
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: want memory, sqlite or postgres", c.Store.Driver)
	}

	switch c.Analyzer.Provider {
	case AnalyzerNone:
	case AnalyzerOpenAI:
		if c.Analyzer.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when ANALYZER_PROVIDER=openai")
		}
	case AnalyzerAnthropic:
		if c.Analyzer.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when ANALYZER_PROVIDER=anthropic")
		}
	default:
		return fmt.Errorf("invalid ANALYZER_PROVIDER %q: want none, openai or anthropic", c.Analyzer.Provider)
	}

	if len(c.Weather.DefaultCountry) != 2 {
		return fmt.Errorf("invalid DEFAULT_COUNTRY %q: want a two-letter country code", c.Weather.DefaultCountry)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
