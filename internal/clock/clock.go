// Package clock anchors every "day" and "week" calculation to a single
// fixed timezone (JST, UTC+9), independent of the host machine's locale.
//
// WHY A FIXED TIMEZONE?
// Activity dates are bucketed by calendar day, and the weekly leaderboard
// runs Monday→Sunday. If those boundaries moved with the server's local
// timezone, restarting the server in another region would silently shift
// everyone's "today" and re-rank the leaderboard. Pinning UTC+9 makes the
// boundaries a property of the application, not of the deployment.
//
// WHY AN INJECTABLE NOW?
// All methods derive from a now-function supplied at construction. Tests
// pass a frozen instant (NewFixed) and get fully deterministic day/week
// boundaries instead of depending on the wall clock.
package clock

import (
	"fmt"
	"time"
)

// JST is the fixed application timezone, UTC+9.
var JST = time.FixedZone("JST", 9*60*60)

// DateLayout is the canonical YYYY-MM-DD form used for activity dates,
// both in storage and in API responses.
const DateLayout = "2006-01-02"

// Clock provides JST-anchored time operations.
type Clock struct {
	now func() time.Time
}

// New creates a Clock backed by the real wall clock.
func New() *Clock {
	return &Clock{now: time.Now}
}

// NewFixed creates a Clock frozen at the given instant. Test use only.
func NewFixed(instant time.Time) *Clock {
	return &Clock{now: func() time.Time { return instant }}
}

// Now returns the current time in JST.
func (c *Clock) Now() time.Time {
	return c.now().In(JST)
}

// Today returns the current JST date truncated to midnight.
func (c *Clock) Today() time.Time {
	return DateOf(c.Now())
}

// CurrentWeekRange returns the Monday 00:00:00 (inclusive) and Sunday
// 23:59:59.999 (inclusive) bounding the current JST week.
//
// WEEK-START RULE:
// time.Weekday numbers Sunday as 0. A Sunday therefore belongs to the
// week that started six days earlier, while any other day offsets back by
// 1-weekday days to reach its Monday.
func (c *Clock) CurrentWeekRange() (start, end time.Time) {
	today := c.Today()

	diff := 1 - int(today.Weekday())
	if today.Weekday() == time.Sunday {
		diff = -6
	}

	start = today.AddDate(0, 0, diff)
	end = endOfDay(start.AddDate(0, 0, 6))
	return start, end
}

// LastWeekRange returns the Monday→Sunday range immediately before the
// current week, with the same inclusive bounds as CurrentWeekRange.
func (c *Clock) LastWeekRange() (start, end time.Time) {
	currentStart, _ := c.CurrentWeekRange()
	start = currentStart.AddDate(0, 0, -7)
	end = endOfDay(start.AddDate(0, 0, 6))
	return start, end
}

// IsToday reports whether t falls on the current JST calendar day.
func (c *Clock) IsToday(t time.Time) bool {
	return DateOf(t).Equal(c.Today())
}

// DateOf truncates a time to midnight of its JST calendar day.
func DateOf(t time.Time) time.Time {
	t = t.In(JST)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, JST)
}

// SameDay reports whether two times fall on the same JST calendar day.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// FormatDate renders a time as its JST YYYY-MM-DD date string.
func FormatDate(t time.Time) string {
	return t.In(JST).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a JST midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, JST)
	if err != nil {
		return time.Time{}, fmt.Errorf("clock: parsing date %q: %w", s, err)
	}
	return t, nil
}

// endOfDay returns the last representable millisecond of t's day.
// The upper bound is inclusive, matching the range filters in SQL.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59,
		int(999*time.Millisecond), JST)
}
