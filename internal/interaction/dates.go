package interaction

import (
	"time"

	"apptcal/internal/model"
)

// StartOfDay truncates t to local midnight
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last instant of t's day
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfWeek returns midnight of the first day of the week containing t
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// StartOfMonth returns midnight of the first of t's month
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// withClock returns date's calendar day at clock's hour, minute and second
func withClock(date, clock time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), 0, date.Location())
}

// Reschedule computes the new bounds for ev dropped or resized onto target.
// On day cells only the dates move and the original times of day are kept;
// on time grids the target is used as is.
func Reschedule(ev model.Event, target Range, allDay bool) (time.Time, time.Time) {
	if !allDay {
		return target.Start, target.End
	}
	return withClock(target.Start, ev.Start), withClock(target.End, ev.End)
}

// shift moves focus by n periods of view
func shift(focus time.Time, view View, n int) time.Time {
	switch view {
	case Month:
		return StartOfMonth(focus).AddDate(0, n, 0)
	case Day:
		return focus.AddDate(0, 0, n)
	default:
		return focus.AddDate(0, 0, 7*n)
	}
}
