package timecalc

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used on the wire and in output.
const DateLayout = "2006-01-02"

// MonthLayout labels a calendar month bucket, e.g. "2024-01".
const MonthLayout = "2006-01"

// Day returns the calendar date of t as 00:00:00 UTC. The date is taken in
// t's own location, so a local evening never rolls over to the next day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO date or an RFC 3339 timestamp and returns its day.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{
		DateLayout,
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the number of whole calendar days from a to b.
// The result is negative when b is before a. Unix seconds are used because
// time.Duration saturates after about 292 years.
func DaysBetween(a, b time.Time) int {
	return int((Day(b).Unix() - Day(a).Unix()) / 86400)
}

// AddDays shifts a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthRange returns the first day of every month from from's month to
// to's month inclusive. It returns nil when to is before from.
func MonthRange(from, to time.Time) []time.Time {
	start, end := MonthStart(from), MonthStart(to)
	var months []time.Time
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}
	return months
}

// FormatDays formats a day count like "1 day" or "15 days".
func FormatDays(n int) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d day", n)
	}
	return fmt.Sprintf("%d days", n)
}
