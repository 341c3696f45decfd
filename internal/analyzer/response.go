package analyzer

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/i474232898/lawn-tracker/internal/lawn"
	"github.com/i474232898/lawn-tracker/internal/soil"
)

var errNoJSON = errors.New("no JSON object found in response")

// ExtractJSON returns the first valid JSON object in a model response. Code
// fences and surrounding prose are ignored.
func ExtractJSON(response string) (string, error) {
	s := response
	for {
		start := strings.IndexByte(s, '{')
		if start < 0 {
			return "", errNoJSON
		}
		if obj, ok := balancedObject(s[start:]); ok && json.Valid([]byte(obj)) {
			return obj, nil
		}
		s = s[start+1:]
	}
}

// balancedObject returns the prefix of s up to the brace closing s[0].
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

// ParseResponse reads a model response in either the wrapped
// {soilData, recommendations, overallAssessment, priorityActions} shape or
// as a bare measurement object. Values are range checked; a response with no
// usable value is a parse failure.
func ParseResponse(response string) (lawn.SoilMeasurement, error) {
	raw, err := ExtractJSON(response)
	if err != nil {
		return lawn.SoilMeasurement{}, parseFailure("failed to parse soil data from response", err)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return lawn.SoilMeasurement{}, parseFailure("failed to parse soil data from response", err)
	}

	var m lawn.SoilMeasurement
	values := obj
	if wrapped, ok := obj["soilData"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(wrapped, &inner); err != nil {
			return lawn.SoilMeasurement{}, parseFailure("soilData is not an object", err)
		}
		values = inner
		m.Recommendations = stringList(obj["recommendations"])
		m.PriorityActions = stringList(obj["priorityActions"])
		_ = json.Unmarshal(obj["overallAssessment"], &m.OverallAssessment)
	}

	m.Values = soil.Clean(values)
	if len(m.Values) == 0 {
		return lawn.SoilMeasurement{}, parseFailure("no soil values found in report", nil)
	}
	return m, nil
}

// stringList decodes a JSON array, keeping only its non-empty strings.
func stringList(msg json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(msg, &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
