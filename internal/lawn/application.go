package lawn

import (
	"sort"
	"time"
)

// Kind discriminates the product family of an application.
type Kind string

const (
	KindPGR        Kind = "pgr"
	KindFertilizer Kind = "fertilizer"
	KindIron       Kind = "iron"
)

// Kinds returns every application kind.
func Kinds() []Kind {
	return []Kind{KindPGR, KindFertilizer, KindIron}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPGR, KindFertilizer, KindIron:
		return true
	}
	return false
}

// Application is a single logged product application.
//
// Rate units depend on the kind: PGR is ounces per 1000 sqft, fertilizer and
// iron are pounds per 1000 sqft.
type Application struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind" validate:"required,oneof=pgr fertilizer iron"`
	Date        time.Time `json:"date" validate:"required"`
	Rate        float64   `json:"rate" validate:"gt=0"`
	ProductType string    `json:"productType,omitempty"`
	NPK         string    `json:"npk,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// Day truncates t to its calendar day in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MostRecent returns the latest application of the given kind. Later dates
// win; applications sharing a date resolve to the one inserted last, which
// is the one appearing later in the slice.
func MostRecent(apps []Application, kind Kind) (Application, bool) {
	var (
		best  Application
		found bool
	)
	for _, a := range apps {
		if a.Kind != kind {
			continue
		}
		if !found || !a.Date.Before(best.Date) {
			best = a
			found = true
		}
	}
	return best, found
}

// OfKind filters apps to one kind, keeping insertion order.
func OfKind(apps []Application, kind Kind) []Application {
	var out []Application
	for _, a := range apps {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// SortNewestFirst orders apps by date descending, newest insertion first on ties.
func SortNewestFirst(apps []Application) []Application {
	out := make([]Application, len(apps))
	for i := range apps {
		out[len(apps)-1-i] = apps[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
