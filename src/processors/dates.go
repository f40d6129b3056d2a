package processors

import (
	"math"
	"time"
)

// DaysBetween returns the calendar distance between two instants in days,
// rounding any partial day up. Direction is ignored, so the result is
// never negative.
func DaysBetween(a, b time.Time) int {
	diff := b.Sub(a).Hours() / 24
	return int(math.Ceil(math.Abs(diff)))
}

// MidnightUTC drops the time-of-day component. Transactions are compared
// by calendar date only.
func MidnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayKey is the calendar-date identity used when counting distinct
// cash-flow dates.
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
