package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/lawn-tracker/internal/common"
	"github.com/i474232898/lawn-tracker/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	base
	apiKey string
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...Option) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		base:   newBase("weatherapi", "https://api.weatherapi.com/v1/forecast.json", client, opts),
		apiKey: apiKey,
	}
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, p.fail(weather.ErrAuthFailure, 0, errMissingAPIKey)
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI resolves US zip, UK postcode and Canadian postal codes from "q".
	values.Set("q", loc.Zip)
	values.Set("days", strconv.Itoa(int(weather.ForecastWindow.Hours()/24)+1))

	resp, err := p.get(ctx, p.baseURL+"?"+values.Encode())
	if err != nil {
		return weather.Reading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Location struct {
			Name           string `json:"name"`
			LocaltimeEpoch int64  `json:"localtime_epoch"`
		} `json:"location"`
		Current struct {
			LastUpdatedEpoch int64   `json:"last_updated_epoch"`
			TempF            float64 `json:"temp_f"`
			Humidity         float64 `json:"humidity"`
			Condition        struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
		Forecast struct {
			ForecastDay []struct {
				DateEpoch int64 `json:"date_epoch"`
				Day       struct {
					MaxTempF float64 `json:"maxtemp_f"`
					MinTempF float64 `json:"mintemp_f"`
				} `json:"day"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Reading{}, p.fail(weather.ErrProviderFailure, resp.StatusCode, fmt.Errorf("decode forecast: %w", err))
	}

	ts := time.Now().UTC()
	switch {
	case payload.Current.LastUpdatedEpoch > 0:
		ts = time.Unix(payload.Current.LastUpdatedEpoch, 0).UTC()
	case payload.Location.LocaltimeEpoch > 0:
		ts = time.Unix(payload.Location.LocaltimeEpoch, 0).UTC()
	}

	var todayMax, todayMin float64
	points := make([]weather.ForecastPoint, 0, len(payload.Forecast.ForecastDay))
	for i, d := range payload.Forecast.ForecastDay {
		if i == 0 {
			todayMax, todayMin = d.Day.MaxTempF, d.Day.MinTempF
		}
		points = append(points, weather.ForecastPoint{
			Time:    time.Unix(d.DateEpoch, 0).UTC(),
			MaxTemp: d.Day.MaxTempF,
			MinTemp: d.Day.MinTempF,
		})
	}
	avgMax, avgMin := weather.ForecastAverages(points, ts, todayMax, todayMin)

	return weather.Reading{
		ProviderName:    p.name,
		Timestamp:       ts,
		City:            payload.Location.Name,
		CurrentTemp:     payload.Current.TempF,
		CurrentHumidity: payload.Current.Humidity,
		ForecastMaxTemp: avgMax,
		ForecastMinTemp: avgMin,
		Description:     payload.Current.Condition.Text,
		Condition:       mapWeatherAPICondition(payload.Current.Condition.Text),
	}, nil
}

func mapWeatherAPICondition(text string) weather.Condition {
	text = strings.ToLower(text)
	switch {
	case text == "":
		return weather.ConditionUnknown
	case common.HasAny(text, "thunder", "storm"):
		return weather.ConditionStorm
	case common.HasAny(text, "snow", "sleet", "blizzard", "ice pellets"):
		return weather.ConditionSnow
	case common.HasAny(text, "rain", "shower", "drizzle"):
		return weather.ConditionRain
	case common.HasAny(text, "mist", "fog"):
		return weather.ConditionMist
	case common.HasAny(text, "cloud", "overcast"):
		return weather.ConditionCloudy
	case common.HasAny(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
