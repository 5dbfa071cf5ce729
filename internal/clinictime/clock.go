// Package clinictime anchors every calendar comparison to the clinic's civil
// timezone, independent of where the caller runs.
package clinictime

import (
	"fmt"
	"strings"
	"time"

	// Embedded zone database so the clinic zone resolves on minimal images.
	_ "time/tzdata"
)

// DefaultZone is the clinic's operating timezone.
const DefaultZone = "America/Lima"

// DayLayout is the canonical calendar-day format.
const DayLayout = "2006-01-02"

// Clock reports "now" and calendar days in a fixed location.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New returns a clock for the named IANA zone. An empty name means DefaultZone.
func New(zone string) (*Clock, error) {
	if strings.TrimSpace(zone) == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("clinictime: load location %q: %w", zone, err)
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewFixed returns a clock whose "now" is always at. Used by tests and the CLI.
func NewFixed(loc *time.Location, at time.Time) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: func() time.Time { return at }}
}

// Location returns the clinic zone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current instant expressed in the clinic zone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current calendar day in the clinic zone.
func (c *Clock) Today() string {
	return c.Now().Format(DayLayout)
}

// DayOf returns the calendar day of t as observed in the clinic zone.
func (c *Clock) DayOf(t time.Time) string {
	return t.In(c.loc).Format(DayLayout)
}

// CalendarDay normalizes a date input to YYYY-MM-DD in the clinic zone.
//
// A bare date is a civil date and is never shifted. Timestamps carrying an
// offset are converted into the clinic zone first; zone-less timestamps are
// read as clinic-local.
func (c *Clock) CalendarDay(input string) (string, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return "", fmt.Errorf("clinictime: empty date")
	}
	if t, err := time.Parse(DayLayout, raw); err == nil {
		return t.Format(DayLayout), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return c.DayOf(t), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, raw, c.loc); err == nil {
			return t.Format(DayLayout), nil
		}
	}
	return "", fmt.Errorf("clinictime: cannot parse date %q", input)
}

// IsPastDate reports whether input falls on a calendar day before today.
// Today is never in the past. Unparseable input is reported as not past.
func (c *Clock) IsPastDate(input string) bool {
	day, err := c.CalendarDay(input)
	if err != nil {
		return false
	}
	return day < c.Today()
}

// IsValidBirthDate accepts an absent birth date or one not after today.
func (c *Clock) IsValidBirthDate(input string) bool {
	if strings.TrimSpace(input) == "" {
		return true
	}
	day, err := c.CalendarDay(input)
	if err != nil {
		return false
	}
	return day <= c.Today()
}

// Age returns whole years between birth and today, decremented when this
// year's anniversary has not been reached. ok is false for absent or
// unparseable input.
func (c *Clock) Age(birth string) (age int, ok bool) {
	if strings.TrimSpace(birth) == "" {
		return 0, false
	}
	day, err := c.CalendarDay(birth)
	if err != nil {
		return 0, false
	}
	b, _ := time.Parse(DayLayout, day)
	now := c.Now()

	age = now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	return age, true
}

// StartOfDay returns midnight of day in the clinic zone.
func (c *Clock) StartOfDay(day string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, day, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("clinictime: parse day %q: %w", day, err)
	}
	return t, nil
}

// AddDays shifts a calendar day by n days.
func AddDays(day string, n int) (string, error) {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return "", fmt.Errorf("clinictime: parse day %q: %w", day, err)
	}
	return t.AddDate(0, 0, n).Format(DayLayout), nil
}
