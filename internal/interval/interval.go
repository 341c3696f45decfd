// Package interval schedules fertilizer and iron programs from a product's
// base interval, the grass season, and the latest soil test.
package interval

import (
	"fmt"
	"time"

	"github.com/i474232898/lawn-tracker/internal/gdd"
	"github.com/i474232898/lawn-tracker/internal/lawn"
	"github.com/i474232898/lawn-tracker/internal/soil"
)

// DaysPerMonth converts interval months to days. Calendar months are not used.
const DaysPerMonth = 30

// Program holds the scheduling rules of one product family.
type Program struct {
	Kind    lawn.Kind
	Catalog lawn.Catalog

	// DefaultIntervalMonths applies to products missing from Catalog.
	DefaultIntervalMonths int

	adjustForGrass func(months int, season lawn.Season) int
	adjustForSoil  func(months int, m *lawn.SoilMeasurement) int

	// withSoilAdvice attaches soil recommendations to each estimate.
	withSoilAdvice bool
}

// Fertilizer returns the fertilizer program.
func Fertilizer() Program {
	return Program{
		Kind:                  lawn.KindFertilizer,
		Catalog:               lawn.FertilizerCatalog(),
		DefaultIntervalMonths: 6,
		adjustForGrass: func(months int, season lawn.Season) int {
			switch season {
			case lawn.SeasonCool:
				return max(4, months-1)
			case lawn.SeasonWarm:
				return min(8, months+1)
			}
			return months
		},
		adjustForSoil: func(months int, m *lawn.SoilMeasurement) int {
			n, _ := lawn.RangeFor(lawn.Nitrogen)
			om, _ := lawn.RangeFor(lawn.OrganicMatter)
			if v, ok := m.Value(lawn.Nitrogen); ok {
				if v < n.Low {
					months = max(4, months-1)
				} else if v > n.High {
					months = min(8, months+1)
				}
			}
			if v, ok := m.Value(lawn.OrganicMatter); ok && v < om.Low {
				months = max(4, months-1)
			}
			return months
		},
		withSoilAdvice: true,
	}
}

// Iron returns the iron program.
func Iron() Program {
	return Program{
		Kind:                  lawn.KindIron,
		Catalog:               lawn.IronCatalog(),
		DefaultIntervalMonths: 4,
		adjustForGrass: func(months int, season lawn.Season) int {
			if season == lawn.SeasonCool {
				return max(3, months-1)
			}
			return months
		},
		adjustForSoil: func(months int, m *lawn.SoilMeasurement) int {
			ph, ok := m.Value(lawn.PH)
			switch {
			case !ok:
				return months
			case ph > 7.0:
				return max(3, months-1)
			case ph < 6.0:
				return min(6, months+1)
			}
			return months
		},
	}
}

// ForKind returns the program of an interval-scheduled kind.
func ForKind(k lawn.Kind) (Program, bool) {
	switch k {
	case lawn.KindFertilizer:
		return Fertilizer(), true
	case lawn.KindIron:
		return Iron(), true
	}
	return Program{}, false
}

// BaseMonths returns the catalog interval of productType, or the program
// default when the product is not cataloged.
func (p Program) BaseMonths(productType string) int {
	if e, ok := p.Catalog.Lookup(productType); ok && e.BaseIntervalMonths > 0 {
		return e.BaseIntervalMonths
	}
	return p.DefaultIntervalMonths
}

// Months applies the grass and soil adjustments to the base interval of
// productType. soil may be nil.
func (p Program) Months(productType string, grass lawn.GrassType, m *lawn.SoilMeasurement) int {
	months := p.BaseMonths(productType)
	if p.adjustForGrass != nil {
		months = p.adjustForGrass(months, grass.Season())
	}
	if m != nil && p.adjustForSoil != nil {
		months = p.adjustForSoil(months, m)
	}
	return months
}

// Estimate is the projected timing of the next application of a program.
type Estimate struct {
	DaysUntilNext   int      `json:"daysUntilNext"`
	DaysSinceLast   int      `json:"daysSinceLast"`
	IntervalMonths  int      `json:"intervalMonths"`
	ProductType     string   `json:"productType"`
	Message         string   `json:"message"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Ready reports whether the application window is open.
func (e Estimate) Ready() bool { return e.DaysUntilNext == 0 }

// NextApplication projects the next application after last. It reports
// false when last has no product type. soil may be nil.
func (p Program) NextApplication(last lawn.Application, grass lawn.GrassType, m *lawn.SoilMeasurement, today time.Time) (Estimate, bool) {
	if last.Date.IsZero() || last.ProductType == "" {
		return Estimate{}, false
	}

	months := p.Months(last.ProductType, grass, m)
	daysSince := gdd.DaysSince(last.Date, today)
	daysUntil := max(0, months*DaysPerMonth-daysSince)

	est := Estimate{
		DaysUntilNext:  daysUntil,
		DaysSinceLast:  daysSince,
		IntervalMonths: months,
		ProductType:    last.ProductType,
	}
	if daysUntil == 0 {
		est.Message = fmt.Sprintf("Ready for next %s application!", p.Kind)
	} else {
		est.Message = fmt.Sprintf("Estimated %d days until next %s application", daysUntil, p.Kind)
	}
	if p.withSoilAdvice {
		est.Recommendations = soil.Recommendations(m)
	}
	return est, true
}
