package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/lawn-tracker/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
// It combines the current-weather and 5-day/3-hour forecast endpoints.
type OpenWeatherProvider struct {
	base
	apiKey string
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		base:   newBase("openweathermap", "https://api.openweathermap.org/data/2.5", client, opts),
		apiKey: apiKey,
	}
}

type openWeatherMain struct {
	Temp     float64 `json:"temp"`
	TempMax  float64 `json:"temp_max"`
	TempMin  float64 `json:"temp_min"`
	Humidity float64 `json:"humidity"`
}

type openWeatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, p.fail(weather.ErrAuthFailure, 0, errMissingAPIKey)
	}

	var current struct {
		Dt      int64                  `json:"dt"`
		Name    string                 `json:"name"`
		Main    openWeatherMain        `json:"main"`
		Weather []openWeatherCondition `json:"weather"`
	}
	if err := p.getJSON(ctx, "/weather", loc, &current); err != nil {
		return weather.Reading{}, err
	}

	var forecast struct {
		List []struct {
			Dt   int64           `json:"dt"`
			Main openWeatherMain `json:"main"`
		} `json:"list"`
	}
	if err := p.getJSON(ctx, "/forecast", loc, &forecast); err != nil {
		return weather.Reading{}, err
	}

	ts := time.Now().UTC()
	if current.Dt > 0 {
		ts = time.Unix(current.Dt, 0).UTC()
	}

	points := make([]weather.ForecastPoint, 0, len(forecast.List))
	for _, item := range forecast.List {
		points = append(points, weather.ForecastPoint{
			Time:    time.Unix(item.Dt, 0).UTC(),
			MaxTemp: item.Main.TempMax,
			MinTemp: item.Main.TempMin,
		})
	}
	avgMax, avgMin := weather.ForecastAverages(points, ts, current.Main.TempMax, current.Main.TempMin)

	r := weather.Reading{
		ProviderName:    p.name,
		Timestamp:       ts,
		City:            current.Name,
		CurrentTemp:     current.Main.Temp,
		CurrentHumidity: current.Main.Humidity,
		ForecastMaxTemp: avgMax,
		ForecastMinTemp: avgMin,
		Condition:       weather.ConditionUnknown,
	}
	if len(current.Weather) > 0 {
		r.Description = current.Weather[0].Description
		r.Condition = mapOpenWeatherCondition(current.Weather[0].Main)
	}
	return r, nil
}

func (p *OpenWeatherProvider) getJSON(ctx context.Context, path string, loc weather.Location, out any) error {
	values := url.Values{}
	values.Set("zip", fmt.Sprintf("%s,%s", loc.Zip, loc.Country))
	values.Set("appid", p.apiKey)
	values.Set("units", "imperial")

	resp, err := p.get(ctx, p.baseURL+path+"?"+values.Encode())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return p.fail(weather.ErrProviderFailure, resp.StatusCode, fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

func mapOpenWeatherCondition(main string) weather.Condition {
	switch main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
