// Package week implements the calendar rules for the weekly weigh-in cycle:
// week numbering, check-in window boundaries and deadline math.
//
// A week runs Monday 00:00:00 (inclusive) through the next Monday 00:00:00
// (exclusive) in a fixed reference timezone. Weeks are identified by an
// integer YYYYWW key. The week containing January 1 always counts as week 1
// of the new year, even when its Monday falls in the previous December.
package week

import (
	"fmt"
	"math"
	"time"
)

// DefaultCloseHour is the hour (local reference time) at which the Monday
// check-in window closes.
const DefaultCloseHour = 20

// Calendar converts between timestamps and week identifiers. All methods are
// pure functions of their arguments and the fixed reference location; there
// is no hidden clock.
type Calendar struct {
	loc       *time.Location
	closeHour int
}

// NewCalendar creates a Calendar anchored to the given reference location.
// A closeHour of 0 falls back to DefaultCloseHour.
func NewCalendar(loc *time.Location, closeHour int) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	if closeHour <= 0 || closeHour > 23 {
		closeHour = DefaultCloseHour
	}
	return &Calendar{loc: loc, closeHour: closeHour}
}

// Location returns the fixed reference location.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// MondayOf returns the Monday 00:00:00 that starts the week containing t.
func (c *Calendar) MondayOf(t time.Time) time.Time {
	t = t.In(c.loc)
	// time.Weekday: Sunday=0 ... Saturday=6. Sunday belongs to the week
	// that started six days earlier.
	diff := 1 - int(t.Weekday())
	if t.Weekday() == time.Sunday {
		diff = -6
	}
	y, m, d := t.Date()
	return time.Date(y, m, d+diff, 0, 0, 0, 0, c.loc)
}

// firstMonday returns the Monday of the week containing January 1 of year.
// That week is week 1 of the year; its Monday may fall in December.
func (c *Calendar) firstMonday(year int) time.Time {
	return c.MondayOf(time.Date(year, time.January, 1, 0, 0, 0, 0, c.loc))
}

// WeekIDOf returns the YYYYWW identifier of the week containing t.
func (c *Calendar) WeekIDOf(t time.Time) int {
	t = t.In(c.loc)
	monday := c.MondayOf(t)
	sunday := monday.AddDate(0, 0, 6)

	// The week spanning the year boundary is owned by the new year.
	if monday.Month() == time.December && sunday.Month() == time.January {
		return sunday.Year()*100 + 1
	}

	year := t.Year()
	week := daysBetween(c.firstMonday(year), monday)/7 + 1
	return year*100 + week
}

// WeekMonday reconstructs the starting Monday of the given YYYYWW week.
// Inverse of WeekIDOf: WeekIDOf(WeekMonday(w)) == w for every valid w.
func (c *Calendar) WeekMonday(weekID int) time.Time {
	year, wk := Split(weekID)
	return c.firstMonday(year).AddDate(0, 0, (wk-1)*7)
}

// PrevWeekID returns the identifier of the week before weekID. Computed by
// stepping the calendar, not by integer subtraction, so year boundaries
// resolve to the correct week 52/53 of the prior year.
func (c *Calendar) PrevWeekID(weekID int) int {
	return c.WeekIDOf(c.WeekMonday(weekID).AddDate(0, 0, -7))
}

// NextWeekID returns the identifier of the week after weekID.
func (c *Calendar) NextWeekID(weekID int) int {
	return c.WeekIDOf(c.WeekMonday(weekID).AddDate(0, 0, 7))
}

// CheckInWindow returns the half-open interval [open, close) during which
// check-ins for the given week are accepted: Monday 00:00 to Monday close
// hour of that same day.
func (c *Calendar) CheckInWindow(weekID int) (open, close time.Time) {
	open = c.WeekMonday(weekID)
	y, m, d := open.Date()
	close = time.Date(y, m, d, c.closeHour, 0, 0, 0, c.loc)
	return open, close
}

// IsOpenAt reports whether t falls inside the check-in window of the week
// containing t.
func (c *Calendar) IsOpenAt(t time.Time) bool {
	t = t.In(c.loc)
	open, close := c.CheckInWindow(c.WeekIDOf(t))
	return !t.Before(open) && t.Before(close)
}

// TimeUntilClose returns the remaining time until this week's check-in
// deadline, or zero when the deadline has passed.
func (c *Calendar) TimeUntilClose(t time.Time) time.Duration {
	t = t.In(c.loc)
	_, close := c.CheckInWindow(c.WeekIDOf(t))
	d := close.Sub(t)
	if d < 0 {
		return 0
	}
	return d
}

// DaysUntilNextOpen returns the number of calendar days from t until the
// next week's window opens.
func (c *Calendar) DaysUntilNextOpen(t time.Time) int {
	t = t.In(c.loc)
	nextMonday := c.MondayOf(t).AddDate(0, 0, 7)
	y, m, d := t.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, c.loc)
	return daysBetween(today, nextMonday)
}

// Split decomposes a YYYYWW identifier into its year and week parts.
func Split(weekID int) (year, wk int) {
	return weekID / 100, weekID % 100
}

// Compose builds a YYYYWW identifier from year and week parts.
func Compose(year, wk int) int {
	return year*100 + wk
}

// Validate checks that weekID decodes to a plausible (year, week) pair.
func Validate(weekID int) error {
	year, wk := Split(weekID)
	if year < 2000 || year > 9999 {
		return fmt.Errorf("week id %d: year %d out of range", weekID, year)
	}
	if wk < 1 || wk > 53 {
		return fmt.Errorf("week id %d: week %d out of range 1-53", weekID, wk)
	}
	return nil
}

// daysBetween counts whole days from a to b. Rounding absorbs DST offsets
// in locations that observe it.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
