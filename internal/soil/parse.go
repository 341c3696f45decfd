package soil

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/i474232898/lawn-tracker/internal/lawn"
)

var parameterAliases = map[string]lawn.Parameter{
	"ph":             lawn.PH,
	"ph level":       lawn.PH,
	"soil ph":        lawn.PH,
	"n":              lawn.Nitrogen,
	"nitrogen":       lawn.Nitrogen,
	"total n":        lawn.Nitrogen,
	"nitrate":        lawn.Nitrogen,
	"no3-n":          lawn.Nitrogen,
	"p":              lawn.Phosphorus,
	"phosphorus":     lawn.Phosphorus,
	"p2o5":           lawn.Phosphorus,
	"k":              lawn.Potassium,
	"potassium":      lawn.Potassium,
	"k2o":            lawn.Potassium,
	"ca":             lawn.Calcium,
	"calcium":        lawn.Calcium,
	"mg":             lawn.Magnesium,
	"magnesium":      lawn.Magnesium,
	"om":             lawn.OrganicMatter,
	"organic matter": lawn.OrganicMatter,
	"organicmatter":  lawn.OrganicMatter,
	"organic carbon": lawn.OrganicMatter,
}

var (
	parenthesized = regexp.MustCompile(`\([^)]*\)`)
	spaces        = regexp.MustCompile(`\s+`)
)

// LookupParameter maps a report label such as "K2O", "Organic Matter (%)"
// or "pH Level" to its parameter.
func LookupParameter(label string) (lawn.Parameter, bool) {
	s := strings.ToLower(label)
	s = parenthesized.ReplaceAllString(s, " ")
	s = strings.Trim(s, " \t:=")
	s = spaces.ReplaceAllString(s, " ")
	p, ok := parameterAliases[s]
	return p, ok
}

// textPatterns are tried in order per parameter; the first positive match wins.
var textPatterns = map[lawn.Parameter][]*regexp.Regexp{
	lawn.PH: {
		regexp.MustCompile(`(?i)pH[:\s]*([0-9.]+)`),
		regexp.MustCompile(`(?i)pH\s*Level[:\s]*([0-9.]+)`),
		regexp.MustCompile(`(?i)([0-9.]+)\s*pH`),
	},
	lawn.Nitrogen: {
		regexp.MustCompile(`(?i)nitrogen[:\s]*([0-9.]+)`),
		regexp.MustCompile(`(?i)N[:\s]*([0-9.]+)`),
		regexp.MustCompile(`(?i)([0-9.]+)\s*ppm\s*N`),
	},
	lawn.Phosphorus: {
		regexp.MustCompile(`(?i)phosphorus[:\s]*([0-9.]+)`),
		regexp.MustCompile(`(?i)P[:\s]*([0-9.]+)`),
		regexp.MustCompile(`(?i)([0-9.]+)\s*ppm\s*P`),
	},
	lawn.Potassium: {
		regexp.MustCompile(`(?i)potassium[:\s]*([0-9.]+)`),
		regexp.MustCompile(`(?i)K[:\s]*([0-9.]+)`),
		regexp.MustCompile(`(?i)([0-9.]+)\s*ppm\s*K`),
	},
	lawn.Calcium: {
		regexp.MustCompile(`(?i)calcium[:\s]*([0-9.]+)`),
		regexp.MustCompile(`(?i)Ca[:\s]*([0-9.]+)`),
		regexp.MustCompile(`(?i)([0-9.]+)\s*ppm\s*Ca`),
	},
	lawn.Magnesium: {
		regexp.MustCompile(`(?i)magnesium[:\s]*([0-9.]+)`),
		regexp.MustCompile(`(?i)Mg[:\s]*([0-9.]+)`),
		regexp.MustCompile(`(?i)([0-9.]+)\s*ppm\s*Mg`),
	},
	lawn.OrganicMatter: {
		regexp.MustCompile(`(?i)organic\s*matter[:\s]*([0-9.]+)`),
		regexp.MustCompile(`(?i)OM[:\s]*([0-9.]+)`),
		regexp.MustCompile(`(?i)([0-9.]+)\s*%\s*OM`),
	},
}

// ParseText extracts measurement values from free-form report text. The
// result is not bounds-checked.
func ParseText(text string) map[lawn.Parameter]float64 {
	out := make(map[lawn.Parameter]float64)
	for _, p := range lawn.Parameters() {
		for _, re := range textPatterns[p] {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimRight(m[1], "."), 64)
			if err == nil && v > 0 {
				out[p] = v
				break
			}
		}
	}
	return out
}
