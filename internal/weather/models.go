package weather

import (
	"errors"
	"strings"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// DefaultCountry is used when a location has no country code.
const DefaultCountry = "US"

// Location is a postal code within a country.
type Location struct {
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// NewLocation normalizes a zip code and country code.
func NewLocation(zip, country string) Location {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		country = DefaultCountry
	}
	return Location{Zip: strings.TrimSpace(zip), Country: country}
}

// Key returns a canonical string key for indexing this location in caches.
func (l Location) Key() string {
	return l.Country + ":" + l.Zip
}

// Validate reports whether the location can be queried.
func (l Location) Validate() error {
	if l.Zip == "" {
		return errors.New("zip code is required")
	}
	return nil
}

// Snapshot is the normalized, aggregated weather view for a location.
// Temperatures are in degrees Fahrenheit.
type Snapshot struct {
	CurrentTemp        float64   `json:"currentTemp"`
	CurrentHumidity    float64   `json:"currentHumidity"`
	ForecastAvgMaxTemp float64   `json:"forecastAvgMaxTemp"`
	ForecastAvgMinTemp float64   `json:"forecastAvgMinTemp"`
	Description        string    `json:"description,omitempty"`
	Condition          Condition `json:"condition"`
	LocationCity       string    `json:"locationCity,omitempty"`
	LocationZip        string    `json:"locationZip"`
	Timestamp          time.Time `json:"timestamp"` // always UTC

	// Providers contributing to this snapshot.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// ForecastPoint is one forecast entry: a 3-hour slot or a whole day,
// depending on the provider.
type ForecastPoint struct {
	Time    time.Time
	MaxTemp float64
	MinTemp float64
}

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}
