package domain

import (
	"fmt"
	"time"
)

// DateLayout is the only accepted textual form of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time component, stored as YYYY-MM-DD.
type Date string

// ParseDate parses s as a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	// time.Parse accepts some inputs that do not round-trip, e.g. surrounding zeros
	if t.Format(DateLayout) != s {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date(s), nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Today returns the current calendar day in local time.
func Today() Date {
	return DateOf(time.Now())
}

// String returns the YYYY-MM-DD form.
func (d Date) String() string {
	return string(d)
}

// IsZero reports whether d is unset.
func (d Date) IsZero() bool {
	return d == ""
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is earlier than other. YYYY-MM-DD sorts lexically.
func (d Date) Before(other Date) bool {
	return d < other
}

// StartOfMonth returns the first day of d's month.
func (d Date) StartOfMonth() Date {
	t := d.Time()
	return DateOf(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC))
}

// DateRange returns every date from start to end inclusive, oldest first.
// It returns nil when end is before start.
func DateRange(start, end Date) []Date {
	if end.Before(start) {
		return nil
	}
	var dates []Date
	for d := start; !end.Before(d); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

// MonthToDate returns the dates from the first of today's month through today.
func MonthToDate(today Date) []Date {
	return DateRange(today.StartOfMonth(), today)
}
