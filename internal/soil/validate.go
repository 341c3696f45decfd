package soil

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/i474232898/lawn-tracker/internal/lawn"
)

// ErrNoValues is returned when manual entry yields no usable measurement.
var ErrNoValues = errors.New("at least one soil measurement value is required")

// Bounds is the plausible range of a value read from an external document.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

var plausibleBounds = map[lawn.Parameter]Bounds{
	lawn.PH:            {Min: 4.0, Max: 9.0},
	lawn.Nitrogen:      {Min: 1, Max: 200},
	lawn.Phosphorus:    {Min: 1, Max: 100},
	lawn.Potassium:     {Min: 10, Max: 500},
	lawn.Calcium:       {Min: 100, Max: 3000},
	lawn.Magnesium:     {Min: 10, Max: 500},
	lawn.OrganicMatter: {Min: 0.1, Max: 20},
}

// BoundsFor returns the plausible bounds of p.
func BoundsFor(p lawn.Parameter) (Bounds, bool) {
	b, ok := plausibleBounds[p]
	return b, ok
}

// Contains reports whether v lies in [Min, Max].
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Clean keeps only the recognized, numeric, in-bounds entries of an untrusted
// payload. Everything else is dropped silently. A canonical parameter name
// wins over its aliases; aliases only fill parameters still missing.
func Clean(raw map[string]json.RawMessage) map[lawn.Parameter]float64 {
	out := make(map[lawn.Parameter]float64)
	for _, key := range keyOrder(raw) {
		p, ok := resolveKey(key)
		if !ok {
			continue
		}
		if _, seen := out[p]; seen {
			continue
		}
		v, ok := numberFromJSON(raw[key])
		if !ok {
			continue
		}
		if b := plausibleBounds[p]; b.Contains(v) {
			out[p] = v
		}
	}
	return out
}

// CleanValues applies the same bounds check to already-typed values.
func CleanValues(values map[lawn.Parameter]float64) map[lawn.Parameter]float64 {
	out := make(map[lawn.Parameter]float64, len(values))
	for p, v := range values {
		b, ok := plausibleBounds[p]
		if !ok || math.IsNaN(v) || !b.Contains(v) {
			continue
		}
		out[p] = v
	}
	return out
}

// ParseManual converts form input into measurement values. Fields that do
// not parse or are not positive are ignored; ErrNoValues is returned when
// nothing remains. Keys are resolved in the same order as Clean.
func ParseManual(input map[string]string) (map[lawn.Parameter]float64, error) {
	out := make(map[lawn.Parameter]float64)
	for _, key := range keyOrder(input) {
		p, ok := resolveKey(key)
		if !ok {
			continue
		}
		if _, seen := out[p]; seen {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(input[key]), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		out[p] = v
	}
	if len(out) == 0 {
		return nil, ErrNoValues
	}
	return out, nil
}

// keyOrder lists canonical parameter names first, then every other key in
// sorted order, so alias collisions resolve the same way on every call.
func keyOrder[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := lawn.Parameter(keys[i]).Valid(), lawn.Parameter(keys[j]).Valid()
		if ci != cj {
			return ci
		}
		return keys[i] < keys[j]
	})
	return keys
}

func resolveKey(key string) (lawn.Parameter, bool) {
	if p := lawn.Parameter(key); p.Valid() {
		return p, true
	}
	return LookupParameter(key)
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// numberFromJSON reads a JSON number or a string starting with a number.
// Null, booleans, and non-numeric strings report false.
func numberFromJSON(msg json.RawMessage) (float64, bool) {
	if len(msg) == 0 || string(msg) == "null" {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(msg, &f); err == nil {
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	}

	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return 0, false
	}
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
