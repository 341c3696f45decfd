package recommend

import (
	"time"

	"github.com/i474232898/lawn-tracker/internal/gdd"
	"github.com/i474232898/lawn-tracker/internal/lawn"
)

// Usage summarizes the log of one application kind.
type Usage struct {
	Kind          lawn.Kind         `json:"kind"`
	Count         int               `json:"count"`
	Last          *lawn.Application `json:"lastApplication"`
	DaysSinceLast *int              `json:"daysSinceLast"`

	// TotalProduct is Σ rate × squareFootage / 1000, in Unit. It is nil
	// while the lawn size is unknown.
	TotalProduct *float64 `json:"totalProduct"`
	Unit         string   `json:"unit"`
}

// UnitFor returns the unit of total product for a kind.
func UnitFor(k lawn.Kind) string {
	if k == lawn.KindFertilizer {
		return "lbs"
	}
	return "oz"
}

// Summarize reports usage per kind, in lawn.Kinds order.
func Summarize(apps []lawn.Application, settings lawn.Settings, today time.Time) []Usage {
	out := make([]Usage, 0, len(lawn.Kinds()))
	for _, k := range lawn.Kinds() {
		u := Usage{Kind: k, Unit: UnitFor(k)}
		of := lawn.OfKind(apps, k)
		u.Count = len(of)

		if last, ok := lawn.MostRecent(of, k); ok {
			days := gdd.DaysSince(last.Date, today)
			u.Last = &last
			u.DaysSinceLast = &days
		}
		if settings.SquareFootage > 0 {
			var total float64
			for _, a := range of {
				total += a.Rate * settings.SquareFootage / 1000
			}
			u.TotalProduct = &total
		}
		out = append(out, u)
	}
	return out
}
