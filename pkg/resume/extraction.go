package resume

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Extraction is the loosely typed object returned by structured extraction.
// No field is guaranteed to exist or to have the documented type; the
// accessors below return ok=false for anything absent, blank or mistyped.
type Extraction map[string]any

// Text returns the first of keys holding a non-blank string (numbers are
// formatted, e.g. a phone number returned as a JSON number).
func (e Extraction) Text(keys ...string) (string, bool) {
	return textOf(map[string]any(e), keys...)
}

// List returns the first of keys holding a non-empty array.
func (e Extraction) List(keys ...string) ([]any, bool) {
	for _, k := range keys {
		if v, ok := e[k].([]any); ok && len(v) > 0 {
			return v, true
		}
	}
	return nil, false
}

func textOf(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := scalarString(m[k]); ok {
			return s, true
		}
	}
	return "", false
}

func textOr(m map[string]any, def string, keys ...string) string {
	if s, ok := textOf(m, keys...); ok {
		return s
	}
	return def
}

func scalarString(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func numberOf(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}

// asObject returns v as an object; anything else is treated as an empty object.
func asObject(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	if m, ok := v.(Extraction); ok {
		return m
	}
	return map[string]any{}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006-01",
	"2006/01",
	"01/2006",
	"1/2006",
	"01/02/2006",
	"Jan 2006",
	"January 2006",
	"Jan. 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006",
}

// Years outside this range are treated as missing.
const (
	minYear = 1900
	maxYear = 2100
)

func yearInRange(f float64) bool { return f >= minYear && f < maxYear+1 }

// parseDate returns the parsed date or false. Numbers are read as years.
func parseDate(v any) (time.Time, bool) {
	if f, ok := numberOf(v); ok {
		if !yearInRange(f) {
			return time.Time{}, false
		}
		return time.Date(int(f), time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseYear reads an integer year the way a lenient parseInt would:
// numbers are truncated, strings contribute their leading digits ("2019-09" -> 2019).
// Implausible years (outside minYear..maxYear) are reported as missing.
func parseYear(v any) (int, bool) {
	if f, ok := numberOf(v); ok {
		if !yearInRange(f) {
			return 0, false
		}
		return int(f), true
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < minYear || n > maxYear {
		return 0, false
	}
	return n, true
}

func parseBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true
		}
		return false
	}
	if f, ok := numberOf(v); ok {
		return f != 0
	}
	return false
}

// FallbackExtraction returns the fixed profile used when the language model
// cannot be reached or answers with something that is not JSON. Every call
// returns a fresh, identical value.
func FallbackExtraction() Extraction {
	return Extraction{
		"name":          "John Doe",
		"profile_email": "john.doe@example.com",
		"phone":         "+1 (555) 123-4567",
		"title":         "Software Engineer",
		"location":      "San Francisco, CA",
		"bio":           "Software engineer with experience building web applications and backend services.",
		"workExperience": []any{
			map[string]any{
				"position":          "Senior Software Engineer",
				"company":           "Tech Corp",
				"location":          "San Francisco, CA",
				"startDate":         "2021-01-01",
				"endDate":           "2024-01-01",
				"isCurrentPosition": false,
				"description":       "Built and maintained customer-facing web services.",
			},
			map[string]any{
				"position":          "Software Engineer",
				"company":           "Startup Inc",
				"location":          "Remote",
				"startDate":         "2018-06-01",
				"endDate":           "2020-12-31",
				"isCurrentPosition": false,
				"description":       "Developed internal tools and REST APIs.",
			},
		},
		"education": []any{
			map[string]any{
				"institution":  "State University",
				"degree":       "Bachelor of Science",
				"fieldOfStudy": "Computer Science",
				"startYear":    json.Number("2014"),
				"endYear":      json.Number("2018"),
				"description":  "",
			},
		},
		"skills": []any{"JavaScript", "TypeScript", "React", "Node.js", "Python", "SQL"},
	}
}
