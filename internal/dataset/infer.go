package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"reportai-backend/report/model"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// InferValue converts a raw text cell into a typed value. Empty text is
// null; numbers, true/false and ISO dates are recognised; everything else
// stays a string.
func InferValue(raw string) model.Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.Null()
	}
	if f, ok := parseNumber(s); ok {
		return model.Number(f)
	}
	switch strings.ToLower(s) {
	case "true":
		return model.Bool(true)
	case "false":
		return model.Bool(false)
	}
	if t, ok := parseTime(s); ok {
		return model.Time(t)
	}
	return model.String(s)
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseTime(s string) (time.Time, bool) {
	if len(s) < len("2006-01-02") || s[4] != '-' {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
