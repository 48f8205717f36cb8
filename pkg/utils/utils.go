package utils

import (
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a time as an ISO calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// TruncateToDay drops the time-of-day component, keeping the UTC date.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from one date to another.
// Both arguments are truncated to their UTC date first.
func DaysBetween(from, to time.Time) int {
	return int(TruncateToDay(to).Sub(TruncateToDay(from)).Hours() / 24)
}

// IsPastDue reports whether the due date falls strictly before the current
// date. Same-day dues are not yet overdue.
func IsPastDue(dueDate, now time.Time) bool {
	return TruncateToDay(dueDate).Before(TruncateToDay(now))
}
