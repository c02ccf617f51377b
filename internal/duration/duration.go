// Package duration derives an activity's hour count from raw form fields.
//
// Users pick one of three input methods when logging an activity:
//
//	start-end      → both clock times given, duration computed
//	start-duration → start time + hours given, end time derived
//	date-duration  → only hours given, no clock times recorded
//
// The original UI duplicated this arithmetic in its create and update
// handlers; here it lives in exactly one place so both paths (and the
// tests) agree on every edge case.
package duration

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sakif/time-tracker/internal/apperror"
)

// Input method tags, as submitted by the activity form.
const (
	MethodStartEnd      = "start-end"
	MethodStartDuration = "start-duration"
	MethodDateDuration  = "date-duration"
)

const minutesPerDay = 24 * 60

// Fields holds the raw string fields relevant to duration calculation.
// Absent form fields arrive as empty strings.
type Fields struct {
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
	Duration  string // decimal hours, e.g. "2.5"
}

// Result is the canonical triple persisted with an activity. StartTime
// and EndTime are nil for the date-duration method.
type Result struct {
	Hours     float64
	StartTime *string
	EndTime   *string
}

// Calculate validates the fields for the given input method and produces
// the duration triple. All failures are apperror.ErrValidation.
//
// EDGE SEMANTICS:
//   - start-end with end earlier than start is an overnight span: 1440
//     minutes are added before subtracting. Equal start and end times are
//     rejected as an empty interval, not treated as a full day.
//   - A duration field of exactly 0 is treated the same as a missing
//     field. Zero-length activities are never valid.
//   - start-duration derives the end time modulo 24h; the clock wraps
//     with no day-rollover indicator, matching the stored date.
func Calculate(method string, f Fields) (*Result, error) {
	switch method {
	case MethodStartEnd:
		return calculateStartEnd(f)
	case MethodStartDuration:
		return calculateStartDuration(f)
	case MethodDateDuration:
		hours, err := parseHours(f.Duration)
		if err != nil {
			return nil, err
		}
		return &Result{Hours: hours}, nil
	default:
		return nil, apperror.ValidationFailed("inputMethod", "invalid input method")
	}
}

func calculateStartEnd(f Fields) (*Result, error) {
	if f.StartTime == "" || f.EndTime == "" {
		return nil, apperror.ValidationFailed("timeRange", "start time and end time are required")
	}

	start, err := parseClock(f.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseClock(f.EndTime)
	if err != nil {
		return nil, err
	}

	// End before start means the span crosses midnight.
	if end < start {
		end += minutesPerDay
	}

	hours := float64(end-start) / 60
	if hours <= 0 {
		return nil, apperror.ValidationFailed("timeRange", "end time must be after start time")
	}

	startStr, endStr := f.StartTime, f.EndTime
	return &Result{Hours: hours, StartTime: &startStr, EndTime: &endStr}, nil
}

func calculateStartDuration(f Fields) (*Result, error) {
	if f.StartTime == "" {
		return nil, apperror.ValidationFailed("startTime", "start time is required")
	}

	start, err := parseClock(f.StartTime)
	if err != nil {
		return nil, err
	}
	hours, err := parseHours(f.Duration)
	if err != nil {
		return nil, err
	}

	// Derive the end time on a 24h clock. Spans past midnight wrap;
	// the activity's date does not change.
	endMinutes := int(math.Floor(float64(start) + hours*60))
	endStr := fmt.Sprintf("%02d:%02d", (endMinutes/60)%24, endMinutes%60)

	startStr := f.StartTime
	return &Result{Hours: hours, StartTime: &startStr, EndTime: &endStr}, nil
}

// parseClock converts an "HH:MM" string to its minute of day.
func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, apperror.ValidationFailed("time", fmt.Sprintf("invalid time %q, expected HH:MM", s))
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, apperror.ValidationFailed("time", fmt.Sprintf("invalid time %q, expected HH:MM", s))
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, apperror.ValidationFailed("time", fmt.Sprintf("invalid time %q, expected HH:MM", s))
	}

	return hour*60 + minute, nil
}

// parseHours parses a required positive decimal-hours field.
// Empty and "0" both report "duration is required" — a zero entered by
// the user is coerced into the same failure as leaving the field blank.
func parseHours(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, apperror.ValidationFailed("duration", "duration is required")
	}

	hours, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, apperror.ValidationFailed("duration", "duration must be a number of hours")
	}
	// ParseFloat also accepts "NaN" and "Inf"; neither is a usable hour
	// count, and NaN slips through ordinary ==/< comparisons.
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0, apperror.ValidationFailed("duration", "duration must be a number of hours")
	}
	if hours == 0 {
		return 0, apperror.ValidationFailed("duration", "duration is required")
	}
	if hours < 0 {
		return 0, apperror.ValidationFailed("duration", "duration must be positive")
	}

	return hours, nil
}
