package domain

import "time"

// WeekBounds is a Monday–Sunday calendar week. End is the last instant of Sunday.
type WeekBounds struct {
	Start time.Time
	End   time.Time
}

// Key returns a stable identifier for the week, e.g. "2026-10-05".
func (w WeekBounds) Key() string {
	return w.Start.Format(time.DateOnly)
}

// Contains reports whether t falls within the week, inclusive on both ends.
func (w WeekBounds) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Elapsed reports whether now is past the end of the week.
func (w WeekBounds) Elapsed(now time.Time) bool {
	return now.After(w.End)
}

// WeekOf returns the Monday-based week containing t, in t's location.
func WeekOf(t time.Time) WeekBounds {
	// time.Weekday: Sunday=0 … Saturday=6; shift so Monday=0.
	offset := (int(t.Weekday()) + 6) % 7
	start := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return WeekBounds{Start: start, End: end}
}

// PreviousWeek returns the calendar week before the one containing now.
func PreviousWeek(now time.Time) WeekBounds {
	return WeekOf(now.AddDate(0, 0, -7))
}
