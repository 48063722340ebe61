// Package datemath implements calendar-date arithmetic for due-date tracking.
//
// Calendar dates are carried as time.Time values at midnight UTC. A value with a
// time-of-day component is reduced to the date shown on its own wall clock, so
// the zone only matters when deciding what "today" is, which Clock owns.
package datemath

import (
	"fmt"
	"time"
)

// Layout is the wire format for calendar dates.
const Layout = "2006-01-02"

// DefaultZone is used when no zone is configured.
const DefaultZone = "Europe/Paris"

// Date truncates t to its wall-clock calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse reads a YYYY-MM-DD string into a calendar date.
func Parse(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return t, nil
}

// Format renders a calendar date as YYYY-MM-DD.
func Format(t time.Time) string {
	return Date(t).Format(Layout)
}

// AddMonths adds n calendar months. The day is clamped to the last day of the
// target month, so Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	d := Date(t)
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// AddDays adds n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return Date(t).AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b (negative when b
// is before a).
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}

// Before reports whether calendar date a falls strictly before b.
func Before(a, b time.Time) bool {
	return Date(a).Before(Date(b))
}

// Within reports whether t lies in [start, end], comparing calendar dates.
func Within(t, start, end time.Time) bool {
	d := Date(t)
	return !d.Before(Date(start)) && !d.After(Date(end))
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

// Clock answers "what is today" in a single canonical zone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock builds a clock for the named IANA zone. An empty name selects
// DefaultZone.
func NewClock(zone string) (*Clock, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", zone, err)
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewFixedClock returns a clock frozen at now, evaluated in loc. Used by tests
// and the CLI's --today flag.
func NewFixedClock(now time.Time, loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: func() time.Time { return now }}
}

// Location returns the canonical zone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	return c.now().UTC()
}

// Today returns the current calendar date in the canonical zone.
func (c *Clock) Today() time.Time {
	return Date(c.now().In(c.loc))
}

// IsPast reports whether the calendar date t is before today.
func (c *Clock) IsPast(t time.Time) bool {
	return Before(t, c.Today())
}

// IsFuture reports whether the calendar date t is after today.
func (c *Clock) IsFuture(t time.Time) bool {
	return Before(c.Today(), t)
}
