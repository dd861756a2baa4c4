package utils

import (
	"fmt"
	"time"
)

const (
	// ISODateLayout is the canonical date-only form exchanged with the backend.
	ISODateLayout = "2006-01-02"
	// DisplayDateLayout is how dates are shown to the user.
	DisplayDateLayout = "Jan 2, 2006"
)

// ToISODate formats the local calendar fields of t as YYYY-MM-DD.
func ToISODate(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseISODate parses a strict YYYY-MM-DD string as local midnight.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(ISODateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// DateOnly drops the time of day from t, keeping its location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsOverdue reports whether deadline falls on a calendar day strictly before
// now's day and the task is still open.
func IsOverdue(deadline time.Time, done bool, now time.Time) bool {
	if done {
		return false
	}
	d := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.Before(today)
}

// FormatDisplayDate renders an ISO date for the user. Empty or invalid input
// renders as an empty string.
func FormatDisplayDate(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := ParseISODate(iso)
	if err != nil {
		return ""
	}
	return t.Format(DisplayDateLayout)
}
