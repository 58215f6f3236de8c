package utils

import (
	"fmt"
	"time"
)

// NormalizeDay truncates t to 00:00 UTC of its calendar day.
func NormalizeDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseBookingDate accepts "2006-01-02" or an RFC 3339 timestamp and returns the UTC day.
func ParseBookingDate(raw string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return NormalizeDay(t), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return NormalizeDay(t), nil
}

// IsPastDay reports whether day falls strictly before the UTC calendar day of now.
func IsPastDay(day, now time.Time) bool {
	return NormalizeDay(day).Before(NormalizeDay(now))
}
