package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/lawn-tracker/internal/geo"
	"github.com/i474232898/lawn-tracker/internal/weather"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo only accepts coordinates, so postal codes go through a geo.Locator.
type OpenMeteoProvider struct {
	base
	locator geo.Locator
}

func NewOpenMeteoProvider(client *http.Client, locator geo.Locator, opts ...Option) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		base:    newBase("openmeteo", "https://api.open-meteo.com/v1/forecast", client, opts),
		locator: locator,
	}
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Reading, error) {
	if p.locator == nil {
		return weather.Reading{}, p.fail(weather.ErrProviderFailure, 0, errors.New("openmeteo requires a geocoder"))
	}
	coords, err := p.locator.Locate(ctx, loc.Zip, loc.Country)
	if err != nil {
		kind := weather.ErrProviderFailure
		switch {
		case errors.Is(err, geo.ErrNotFound):
			kind = weather.ErrNotFound
		case errors.Is(err, geo.ErrNotConfigured):
			kind = weather.ErrAuthFailure
		}
		return weather.Reading{}, p.fail(kind, 0, err)
	}

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', 4, 64))
	values.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', 4, 64))
	values.Set("current", "temperature_2m,relative_humidity_2m,weather_code")
	values.Set("daily", "temperature_2m_max,temperature_2m_min")
	values.Set("temperature_unit", "fahrenheit")
	values.Set("timezone", "UTC")
	values.Set("forecast_days", "8")

	resp, err := p.get(ctx, p.baseURL+"?"+values.Encode())
	if err != nil {
		return weather.Reading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			Time             string  `json:"time"`
			Temperature      float64 `json:"temperature_2m"`
			RelativeHumidity float64 `json:"relative_humidity_2m"`
			WeatherCode      int     `json:"weather_code"`
		} `json:"current"`
		Daily struct {
			Time    []string  `json:"time"`
			TempMax []float64 `json:"temperature_2m_max"`
			TempMin []float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Reading{}, p.fail(weather.ErrProviderFailure, resp.StatusCode, fmt.Errorf("decode forecast: %w", err))
	}

	// Open-Meteo reports ISO 8601 local times without a zone suffix.
	ts, err := time.Parse("2006-01-02T15:04", payload.Current.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	var todayMax, todayMin float64
	days := min(len(payload.Daily.Time), len(payload.Daily.TempMax), len(payload.Daily.TempMin))
	points := make([]weather.ForecastPoint, 0, days)
	for i := 0; i < days; i++ {
		day, err := time.Parse("2006-01-02", payload.Daily.Time[i])
		if err != nil {
			continue
		}
		if i == 0 {
			todayMax, todayMin = payload.Daily.TempMax[i], payload.Daily.TempMin[i]
		}
		points = append(points, weather.ForecastPoint{
			Time:    day,
			MaxTemp: payload.Daily.TempMax[i],
			MinTemp: payload.Daily.TempMin[i],
		})
	}
	avgMax, avgMin := weather.ForecastAverages(points, ts, todayMax, todayMin)

	cond := mapOpenMeteoCondition(payload.Current.WeatherCode)
	return weather.Reading{
		ProviderName:    p.name,
		Timestamp:       ts,
		CurrentTemp:     payload.Current.Temperature,
		CurrentHumidity: payload.Current.RelativeHumidity,
		ForecastMaxTemp: avgMax,
		ForecastMinTemp: avgMin,
		Description:     describeOpenMeteoCondition(cond),
		Condition:       cond,
	}, nil
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// Mapping based on WMO weather interpretation codes (simplified).
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}

func describeOpenMeteoCondition(c weather.Condition) string {
	switch c {
	case weather.ConditionClear:
		return "clear sky"
	case weather.ConditionCloudy:
		return "cloudy"
	case weather.ConditionMist:
		return "fog"
	case weather.ConditionRain:
		return "rain"
	case weather.ConditionSnow:
		return "snow"
	case weather.ConditionStorm:
		return "thunderstorm"
	default:
		return ""
	}
}
