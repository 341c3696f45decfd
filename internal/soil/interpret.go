// Package soil interprets soil test measurements: classification against
// reference ranges, health scoring, rule-based recommendations, and
// validation of untrusted measurement input.
package soil

import (
	"fmt"
	"math"

	"github.com/i474232898/lawn-tracker/internal/lawn"
)

// Status places a value relative to the acceptable band of its parameter.
type Status string

const (
	StatusBelow   Status = "below"
	StatusOptimal Status = "optimal"
	StatusAbove   Status = "above"
)

// Classification is the result of Classify.
type Classification struct {
	Status           Status  `json:"status"`
	DistanceFromBand float64 `json:"distanceFromBand"`
}

// Classify places value against the [low, high] band of p. The second
// result is false for parameters outside the fixed set.
func Classify(p lawn.Parameter, value float64) (Classification, bool) {
	r, ok := lawn.RangeFor(p)
	if !ok {
		return Classification{}, false
	}
	switch {
	case value < r.Low:
		return Classification{Status: StatusBelow, DistanceFromBand: r.Low - value}, true
	case value > r.High:
		return Classification{Status: StatusAbove, DistanceFromBand: value - r.High}, true
	default:
		return Classification{Status: StatusOptimal}, true
	}
}

const noSoilDataRecommendation = "Upload a soil test for personalized recommendations"

// Recommendations generates rule-based advice for a measurement. Rules are
// evaluated independently, so zero or several may fire. A nil measurement
// yields a single prompt to upload a soil test.
func Recommendations(m *lawn.SoilMeasurement) []string {
	if m == nil {
		return []string{noSoilDataRecommendation}
	}

	recs := []string{}
	below := func(p lawn.Parameter) bool {
		v, ok := m.Value(p)
		r, _ := lawn.RangeFor(p)
		return ok && v < r.Low
	}
	above := func(p lawn.Parameter) bool {
		v, ok := m.Value(p)
		r, _ := lawn.RangeFor(p)
		return ok && v > r.High
	}

	if below(lawn.PH) {
		recs = append(recs, "Consider lime application to raise soil pH")
	} else if above(lawn.PH) {
		recs = append(recs, "Consider sulfur application to lower soil pH")
	}
	if below(lawn.Nitrogen) {
		recs = append(recs, "Increase nitrogen application rate or frequency")
	} else if above(lawn.Nitrogen) {
		recs = append(recs, "Reduce nitrogen application rate")
	}
	if below(lawn.Phosphorus) {
		recs = append(recs, "Consider phosphorus-rich fertilizer or starter fertilizer")
	}
	if below(lawn.Potassium) {
		recs = append(recs, "Consider potassium supplement or balanced fertilizer")
	}
	if below(lawn.OrganicMatter) {
		recs = append(recs, "Consider organic amendments like compost or humic acid")
	}
	return recs
}

// Health labels.
const (
	LabelExcellent = "Excellent"
	LabelGood      = "Good"
	LabelFair      = "Fair"
	LabelPoor      = "Poor"
)

// Contribution weights per scoring tier.
const (
	weightBelow      = 0.0
	weightAbove      = 0.5
	weightNear       = 1.0
	weightAcceptable = 0.7

	// nearOptimalFraction is the share of each half-span around Optimal that
	// counts as near-optimal.
	nearOptimalFraction = 0.2
)

// Analysis is the overall health assessment of a measurement.
type Analysis struct {
	Overall         string   `json:"overall"`
	Score           int      `json:"score"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// Score rates a measurement 0-100 over the fixed parameter set. A missing
// parameter contributes the acceptable-tier weight and raises no issue.
func Score(m lawn.SoilMeasurement) Analysis {
	params := lawn.Parameters()
	issues := []string{}
	var sum float64

	for _, p := range params {
		v, ok := m.Value(p)
		if !ok {
			sum += weightAcceptable
			continue
		}
		r, _ := lawn.RangeFor(p)
		switch {
		case v < r.Low:
			sum += weightBelow
			issues = append(issues, fmt.Sprintf("%s is too low (%g)", p, v))
		case v > r.High:
			sum += weightAbove
			issues = append(issues, fmt.Sprintf("%s is too high (%g)", p, v))
		case nearOptimal(r, v):
			sum += weightNear
		default:
			sum += weightAcceptable
		}
	}

	score := int(math.Round(100 * sum / float64(len(params))))
	return Analysis{
		Overall:         Label(score),
		Score:           score,
		Issues:          issues,
		Recommendations: Recommendations(&m),
	}
}

// nearOptimal applies the same fraction to both half-spans, so the tier is
// asymmetric whenever Optimal is not centered in the band.
func nearOptimal(r lawn.SoilRange, v float64) bool {
	lo := r.Optimal - (r.Optimal-r.Low)*nearOptimalFraction
	hi := r.Optimal + (r.High-r.Optimal)*nearOptimalFraction
	return v >= lo && v <= hi
}

// Label maps a numeric score to its health label.
func Label(score int) string {
	switch {
	case score >= 80:
		return LabelExcellent
	case score >= 60:
		return LabelGood
	case score >= 40:
		return LabelFair
	default:
		return LabelPoor
	}
}
