// Package gdd implements growing-degree-day accumulation and PGR
// re-application timing.
//
// All temperatures are in degrees Fahrenheit.
package gdd

import (
	"fmt"
	"math"
	"time"

	"github.com/i474232898/lawn-tracker/internal/lawn"
)

const (
	// DefaultBaseTemp applies to cool-season and unclassified grasses.
	DefaultBaseTemp = 50.0
	// WarmSeasonBaseTemp applies to warm-season grasses.
	WarmSeasonBaseTemp = 60.0
)

// Daily returns the growing degree days of a single day.
// It is never negative.
func Daily(maxTemp, minTemp, baseTemp float64) float64 {
	return math.Max(0, (maxTemp+minTemp)/2-baseTemp)
}

// BaseTempFor returns the base growth temperature of a grass type.
func BaseTempFor(g lawn.GrassType) float64 {
	if g.Season() == lawn.SeasonWarm {
		return WarmSeasonBaseTemp
	}
	return DefaultBaseTemp
}

// DaysSince returns the whole number of days from last to now, rounded up.
func DaysSince(last, now time.Time) int {
	return int(math.Ceil(now.Sub(last).Hours() / 24))
}

// PGREstimate is the projected timing of the next PGR application.
type PGREstimate struct {
	DaysUntilNext           int     `json:"daysUntilNext"`
	DaysSinceLast           int     `json:"daysSinceLast"`
	GDDPerDay               float64 `json:"gddPerDay"`
	RecommendedIntervalDays int     `json:"recommendedIntervalDays"`
	Message                 string  `json:"message"`
}

// Ready reports whether the application window is open.
func (e PGREstimate) Ready() bool { return e.DaysUntilNext == 0 }

// IntervalForRate picks the PGR re-application interval in days from the
// GDD accumulation rate. Faster growth shortens the interval.
func IntervalForRate(gddPerDay float64) int {
	switch {
	case gddPerDay > 15:
		return 14
	case gddPerDay > 10:
		return 21
	case gddPerDay > 5:
		return 28
	default:
		return 35
	}
}

// EstimateNextPGR projects the next PGR application from the date of the
// last one and the accumulated GDD. It reports false when there is no last
// application or no accumulated GDD.
func EstimateNextPGR(lastApplication time.Time, accumulatedGDD float64, today time.Time) (PGREstimate, bool) {
	if lastApplication.IsZero() || accumulatedGDD == 0 || math.IsNaN(accumulatedGDD) {
		return PGREstimate{}, false
	}

	daysSince := DaysSince(lastApplication, today)
	gddPerDay := accumulatedGDD / float64(max(1, daysSince))
	interval := IntervalForRate(gddPerDay)
	daysUntil := max(0, interval-daysSince)

	est := PGREstimate{
		DaysUntilNext:           daysUntil,
		DaysSinceLast:           daysSince,
		GDDPerDay:               gddPerDay,
		RecommendedIntervalDays: interval,
	}
	if daysUntil == 0 {
		est.Message = "Ready for next application!"
	} else {
		est.Message = fmt.Sprintf("Estimated %d days until next application (%.1f GDD/day)", daysUntil, gddPerDay)
	}
	return est, true
}

// ForPeriod projects the GDD accumulated between start and end assuming
// every day matches the forecast daily averages.
func ForPeriod(forecastMax, forecastMin, baseTemp float64, start, end time.Time) float64 {
	days := DaysSince(start, end)
	if days <= 0 {
		return 0
	}
	return Daily(forecastMax, forecastMin, baseTemp) * float64(days)
}
