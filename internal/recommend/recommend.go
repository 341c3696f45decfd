// Package recommend combines GDD timing, fertilizer and iron intervals, and
// soil advice into one recommendation bundle.
package recommend

import (
	"time"

	"github.com/i474232898/lawn-tracker/internal/gdd"
	"github.com/i474232898/lawn-tracker/internal/interval"
	"github.com/i474232898/lawn-tracker/internal/lawn"
	"github.com/i474232898/lawn-tracker/internal/weather"
)

// Inputs is everything Build needs. Weather may be nil.
type Inputs struct {
	Applications []lawn.Application
	Soil         []lawn.SoilMeasurement
	Settings     lawn.Settings
	Weather      *weather.Snapshot
	Today        time.Time
}

// GDDInfo is the growing-degree-day part of a bundle.
type GDDInfo struct {
	CurrentGDD float64 `json:"currentGdd"`
	BaseTemp   float64 `json:"baseTemp"`

	// SinceLastPGR projects the GDD accumulated since the last PGR
	// application from the forecast averages.
	SinceLastPGR *float64          `json:"gddSinceLastPgr"`
	NextPGR      *gdd.PGREstimate  `json:"nextAppEstimate"`
	Weather      *weather.Snapshot `json:"weatherData"`
}

// Bundle is the derived recommendation set. Nil parts are unavailable.
type Bundle struct {
	GDD        *GDDInfo           `json:"gddInfo"`
	Fertilizer *interval.Estimate `json:"fertilizerRecommendation"`
	Iron       *interval.Estimate `json:"ironRecommendation"`
}

// Build derives the bundle from its inputs. It has no side effects and never
// fails; missing inputs leave the matching part nil.
func Build(in Inputs) Bundle {
	var b Bundle
	grass := in.Settings.GrassType

	if in.Weather != nil && grass != lawn.UnspecifiedGrass {
		base := gdd.BaseTempFor(grass)
		info := &GDDInfo{
			CurrentGDD: gdd.Daily(in.Weather.ForecastAvgMaxTemp, in.Weather.ForecastAvgMinTemp, base),
			BaseTemp:   base,
			Weather:    in.Weather,
		}
		if last, ok := lawn.MostRecent(in.Applications, lawn.KindPGR); ok {
			period := gdd.ForPeriod(in.Weather.ForecastAvgMaxTemp, in.Weather.ForecastAvgMinTemp, base, last.Date, in.Today)
			info.SinceLastPGR = &period
			if est, ok := gdd.EstimateNextPGR(last.Date, info.CurrentGDD, in.Today); ok {
				info.NextPGR = &est
			}
		}
		b.GDD = info
	}

	var soil *lawn.SoilMeasurement
	if m, ok := lawn.LatestMeasurement(in.Soil); ok {
		soil = &m
	}

	for _, p := range []interval.Program{interval.Fertilizer(), interval.Iron()} {
		last, ok := lawn.MostRecent(in.Applications, p.Kind)
		if !ok {
			continue
		}
		est, ok := p.NextApplication(last, grass, soil, in.Today)
		if !ok {
			continue
		}
		switch p.Kind {
		case lawn.KindFertilizer:
			b.Fertilizer = &est
		case lawn.KindIron:
			b.Iron = &est
		}
	}
	return b
}
