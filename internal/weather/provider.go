package weather

import (
	"context"
	"time"
)

// Reading is a single provider's normalized observation and forecast
// summary, aggregated into a Snapshot.
type Reading struct {
	ProviderName string
	Timestamp    time.Time
	City         string

	CurrentTemp     float64
	CurrentHumidity float64
	ForecastMaxTemp float64
	ForecastMinTemp float64
	Description     string
	Condition       Condition
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (Reading, error)
}

// Cache holds recent snapshots per location.
type Cache interface {
	Save(loc Location, snapshot Snapshot)
	Latest(loc Location) (Snapshot, bool)
}
