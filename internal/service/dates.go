package service

import (
	"time"
)

// NormalizeReadingTime moves a capture timestamp into the facility timezone,
// preserving the time of day. All calendar-date decisions downstream derive
// from this one normalization.
func NormalizeReadingTime(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc)
}

// DateOf truncates a normalized timestamp to its calendar date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the whole calendar days from a to b (positive when b is
// later), ignoring time of day. Each operand's date is read in its own
// location: a stored session date carries UTC while an incoming capture
// carries the facility timezone, and converting one into the other would
// shift its calendar day.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}
