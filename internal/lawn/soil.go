package lawn

import "time"

// Parameter names a soil test measurement.
type Parameter string

const (
	PH            Parameter = "pH"
	Nitrogen      Parameter = "nitrogen"
	Phosphorus    Parameter = "phosphorus"
	Potassium     Parameter = "potassium"
	Calcium       Parameter = "calcium"
	Magnesium     Parameter = "magnesium"
	OrganicMatter Parameter = "organicMatter"
)

// Parameters returns the fixed parameter set in reporting order.
func Parameters() []Parameter {
	return []Parameter{PH, Nitrogen, Phosphorus, Potassium, Calcium, Magnesium, OrganicMatter}
}

// Valid reports whether p belongs to the fixed parameter set.
func (p Parameter) Valid() bool {
	_, ok := soilRanges[p]
	return ok
}

// Unit is the reporting unit of the parameter.
func (p Parameter) Unit() string {
	switch p {
	case PH:
		return ""
	case OrganicMatter:
		return "%"
	default:
		return "ppm"
	}
}

// SoilRange holds the interpretation thresholds of a parameter. Values in
// [Low, High] are acceptable; Optimal is the target inside that band.
type SoilRange struct {
	Low     float64 `json:"low"`
	Optimal float64 `json:"optimal"`
	High    float64 `json:"high"`
}

var soilRanges = map[Parameter]SoilRange{
	PH:            {Low: 5.5, Optimal: 6.5, High: 7.5},
	Nitrogen:      {Low: 20, Optimal: 40, High: 60},
	Phosphorus:    {Low: 10, Optimal: 20, High: 40},
	Potassium:     {Low: 100, Optimal: 200, High: 300},
	Calcium:       {Low: 500, Optimal: 1000, High: 1500},
	Magnesium:     {Low: 50, Optimal: 100, High: 200},
	OrganicMatter: {Low: 2, Optimal: 4, High: 6},
}

// RangeFor returns the interpretation range of p.
func RangeFor(p Parameter) (SoilRange, bool) {
	r, ok := soilRanges[p]
	return r, ok
}

// SoilMeasurement is one soil test snapshot. Absent parameters are missing
// keys in Values, never zero.
type SoilMeasurement struct {
	ID                string                `json:"id"`
	Date              time.Time             `json:"date"`
	Values            map[Parameter]float64 `json:"values"`
	Recommendations   []string              `json:"recommendations,omitempty"`
	OverallAssessment string                `json:"overallAssessment,omitempty"`
	PriorityActions   []string              `json:"priorityActions,omitempty"`
	Source            string                `json:"source,omitempty"`
}

// Value returns the measured value of p.
func (m *SoilMeasurement) Value(p Parameter) (float64, bool) {
	if m == nil || m.Values == nil {
		return 0, false
	}
	v, ok := m.Values[p]
	return v, ok
}

// LatestMeasurement returns the measurement with the latest date. Ties go to
// the one appearing later in history.
func LatestMeasurement(history []SoilMeasurement) (SoilMeasurement, bool) {
	var (
		best  SoilMeasurement
		found bool
	)
	for _, m := range history {
		if !found || !m.Date.Before(best.Date) {
			best = m
			found = true
		}
	}
	return best, found
}
