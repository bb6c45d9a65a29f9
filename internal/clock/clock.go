// Package clock isolates time handling so period boundaries (swipe days,
// message-request weeks) stay testable. All boundaries are computed in UTC.
package clock

import "time"

// Clock supplies the current time. Services depend on it instead of
// time.Now so tests can pin the calendar.
type Clock interface {
	Now() time.Time
}

// System is the production clock.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always reports T. Test double.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

const dayLayout = "2006-01-02"

// DayKey returns the UTC calendar-day key for t, e.g. "2026-08-28".
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// ValidDayKey reports whether s looks like a DayKey.
func ValidDayKey(s string) bool {
	_, err := time.Parse(dayLayout, s)
	return err == nil
}

// WeekStart returns the day key of the Monday that starts the ISO week
// containing t (Monday 00:00 UTC boundary).
func WeekStart(t time.Time) string {
	u := t.UTC()
	daysSinceMonday := (int(u.Weekday()) + 6) % 7
	return DayKey(u.AddDate(0, 0, -daysSinceMonday))
}

// NextMidnight returns the first instant of the next UTC day after t.
func NextMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
