// Package datetime provides standardized date and time handling across the application.
// All calendar math is done in UTC and values are transmitted in ISO 8601 format.
package datetime

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Standard date formats used throughout the application.
const (
	// DateFormat is the standard date-only format (YYYY-MM-DD).
	DateFormat = "2006-01-02"

	// DateTimeFormat is the standard datetime format (ISO 8601 / RFC3339).
	DateTimeFormat = time.RFC3339

	// MonthFormat is the year-month label format (YYYY-MM).
	MonthFormat = "2006-01"
)

// Precision is the resolution of stored timestamps. Inclusive upper bounds end
// on the last microsecond of their unit; Postgres rounds finer fractions to the
// nearest microsecond, which would carry 23:59:59.9999995 into the next day.
const Precision = time.Microsecond

const lastInstant = int(time.Second - Precision)

// DateTime represents a datetime value.
// It serializes to RFC3339 and accepts either RFC3339 or YYYY-MM-DD on input.
type DateTime struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (dt DateTime) MarshalJSON() ([]byte, error) {
	if dt.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(dt.UTC().Format(time.RFC3339))
}

// UnmarshalJSON implements json.Unmarshaler.
func (dt *DateTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), "\"")
	if s == "" || s == "null" {
		return nil
	}

	t, _, err := parse(s)
	if err != nil {
		return err
	}
	dt.Time = t
	return nil
}

// String returns the datetime in RFC3339 format.
func (dt DateTime) String() string {
	if dt.IsZero() {
		return ""
	}
	return dt.UTC().Format(time.RFC3339)
}

// ParseStart parses a lower range bound. Date-only values start at 00:00:00 UTC.
func ParseStart(s string) (time.Time, error) {
	t, _, err := parse(s)
	return t, err
}

// ParseEnd parses an inclusive upper range bound.
// Date-only values are extended to the last instant of that day; datetimes are
// truncated to Precision.
func ParseEnd(s string) (time.Time, error) {
	t, dateOnly, err := parse(s)
	if err != nil {
		return time.Time{}, err
	}
	if dateOnly {
		return EndOfDay(t), nil
	}
	return t.Truncate(Precision), nil
}

func parse(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if t, err = time.Parse(DateFormat, s); err == nil {
		return t.UTC(), true, nil
	}
	if t, err = time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", s)
}

// StartOfDay returns the datetime at 00:00:00 UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the datetime at 23:59:59.999999 UTC.
func EndOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, lastInstant, time.UTC)
}

// StartOfMonth returns the first day of the month at 00:00:00 UTC.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last day of the month at 23:59:59.999999 UTC.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-Precision)
}

// StartOfYear returns the first day of the year at 00:00:00 UTC.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// EndOfYear returns the last day of the year at 23:59:59.999999 UTC.
func EndOfYear(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), time.December, 31, 23, 59, 59, lastInstant, time.UTC)
}

// DaysInMonth returns the number of days (28-31) of the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Quarter returns the calendar quarter (1-4) of a month.
func Quarter(month time.Month) int {
	return (int(month)-1)/3 + 1
}

// StartOfISOWeek returns the Monday 00:00:00 UTC of the ISO week containing t.
func StartOfISOWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
