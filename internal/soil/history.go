package soil

import (
	"fmt"
	"sort"
	"time"

	"github.com/i474232898/lawn-tracker/internal/lawn"
)

// Window limits a history query to recent measurements.
type Window string

const (
	Window3Months Window = "3m"
	Window6Months Window = "6m"
	Window1Year   Window = "1y"
	WindowAll     Window = "all"
)

// ParseWindow validates a window name. The empty string selects six months.
func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case "":
		return Window6Months, nil
	case Window3Months, Window6Months, Window1Year, WindowAll:
		return w, nil
	default:
		return "", fmt.Errorf("unknown history window %q", s)
	}
}

// Cutoff returns the earliest date included by the window, or the zero time
// for WindowAll.
func (w Window) Cutoff(now time.Time) time.Time {
	switch w {
	case Window3Months:
		return now.AddDate(0, -3, 0)
	case Window6Months:
		return now.AddDate(0, -6, 0)
	case Window1Year:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

// Filter keeps measurements dated on or after the window cutoff.
func Filter(history []lawn.SoilMeasurement, w Window, now time.Time) []lawn.SoilMeasurement {
	cutoff := w.Cutoff(now)
	out := make([]lawn.SoilMeasurement, 0, len(history))
	for _, m := range history {
		if !m.Date.Before(cutoff) {
			out = append(out, m)
		}
	}
	return out
}

// Point is one value of a parameter series.
type Point struct {
	Date            time.Time `json:"date"`
	Value           float64   `json:"value"`
	Recommendations []string  `json:"recommendations,omitempty"`
}

// Series returns the values of p inside the window, oldest first.
// Measurements without p are skipped.
func Series(history []lawn.SoilMeasurement, p lawn.Parameter, w Window, now time.Time) []Point {
	points := []Point{}
	for _, m := range Filter(history, w, now) {
		v, ok := m.Value(p)
		if !ok {
			continue
		}
		points = append(points, Point{Date: m.Date, Value: v, Recommendations: m.Recommendations})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// Trend summarizes a parameter series.
type Trend struct {
	Parameter lawn.Parameter `json:"parameter"`
	Unit      string         `json:"unit"`
	Range     lawn.SoilRange `json:"range"`
	Points    []Point        `json:"points"`

	// Populated when the series is not empty.
	First   *float64        `json:"first,omitempty"`
	Last    *float64        `json:"last,omitempty"`
	Change  *float64        `json:"change,omitempty"`
	Current *Classification `json:"current,omitempty"`
}

// TrendOf builds the trend of p inside the window.
func TrendOf(history []lawn.SoilMeasurement, p lawn.Parameter, w Window, now time.Time) (Trend, error) {
	r, ok := lawn.RangeFor(p)
	if !ok {
		return Trend{}, fmt.Errorf("unknown soil parameter %q", p)
	}

	t := Trend{Parameter: p, Unit: p.Unit(), Range: r, Points: Series(history, p, w, now)}
	if len(t.Points) == 0 {
		return t, nil
	}

	first := t.Points[0].Value
	last := t.Points[len(t.Points)-1].Value
	change := last - first
	current, _ := Classify(p, last)
	t.First, t.Last, t.Change, t.Current = &first, &last, &change, &current
	return t, nil
}
