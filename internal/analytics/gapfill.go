package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/wealthpath/expense-analytics/internal/apperror"
	"github.com/wealthpath/expense-analytics/pkg/datetime"
)

// FillDays returns one bucket per day 1..N of the month, N taken from the calendar.
func FillDays(year int, month time.Month, sparse []Bucket) ([]Bucket, error) {
	n := datetime.DaysInMonth(year, month)
	keys := make([]Key, n)
	for i := range keys {
		keys[i] = Key{Day: i + 1}
	}
	return densify(ShapeDay, keys, sparse)
}

// FillMonths returns one bucket per month 1..12.
func FillMonths(sparse []Bucket) ([]Bucket, error) {
	keys := make([]Key, 12)
	for i := range keys {
		keys[i] = Key{Month: i + 1}
	}
	return densify(ShapeMonth, keys, sparse)
}

// FillQuarters returns one bucket per quarter 1..4.
func FillQuarters(sparse []Bucket) ([]Bucket, error) {
	keys := make([]Key, 4)
	for i := range keys {
		keys[i] = Key{Quarter: i + 1}
	}
	return densify(ShapeQuarter, keys, sparse)
}

// FillMonthWeeks returns one bucket per ISO week that has at least one day
// inside the month.
func FillMonthWeeks(year int, month time.Month, sparse []Bucket) ([]Bucket, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return FillSeries(ShapeWeek, Range{Start: first, End: datetime.EndOfMonth(first)}, sparse)
}

// FillSeries returns one bucket per calendar unit of shape between r.Start and
// r.End inclusive. Only the composite shapes (date, week, year-month) form a
// series, and both sides of r must be bounded.
func FillSeries(shape Shape, r Range, sparse []Bucket) ([]Bucket, error) {
	if r.Start.IsZero() || r.End.IsZero() {
		return nil, apperror.Computation(errors.New("series over an unbounded range"))
	}
	start, end := r.Start.UTC(), r.End.UTC()

	var keys []Key
	switch shape {
	case ShapeDate:
		for d := datetime.StartOfDay(start); !d.After(end); d = d.AddDate(0, 0, 1) {
			keys = append(keys, Key{Year: d.Year(), Month: int(d.Month()), Day: d.Day()})
		}
	case ShapeWeek:
		for d := datetime.StartOfISOWeek(start); !d.After(end); d = d.AddDate(0, 0, 7) {
			y, w := d.ISOWeek()
			keys = append(keys, Key{Year: y, Week: w})
		}
	case ShapeYearMonth:
		for d := datetime.StartOfMonth(start); !d.After(end); d = d.AddDate(0, 1, 0) {
			keys = append(keys, Key{Year: d.Year(), Month: int(d.Month())})
		}
	case ShapeTotal, ShapeDay, ShapeMonth, ShapeQuarter:
		return nil, apperror.Computation(fmt.Errorf("%s buckets do not form a series", shape))
	default:
		return nil, apperror.Computation(fmt.Errorf("unknown grouping shape %d", int(shape)))
	}
	if len(keys) > MaxSeriesPoints {
		return nil, apperror.Computation(fmt.Errorf("series of %d %s buckets exceeds %d", len(keys), shape, MaxSeriesPoints))
	}
	return densify(shape, keys, sparse)
}

// WeekSpan returns the Monday 00:00 and Sunday 23:59:59.999999 UTC of an ISO week.
func WeekSpan(isoYear, week int) (time.Time, time.Time) {
	// January 4th is always in ISO week 1.
	monday := datetime.StartOfISOWeek(time.Date(isoYear, time.January, 4, 0, 0, 0, 0, time.UTC))
	start := monday.AddDate(0, 0, 7*(week-1))
	return start, datetime.EndOfDay(start.AddDate(0, 0, 6))
}

// densify lays sparse buckets onto keys in order, zero-filling gaps.
// Every sparse bucket must land on exactly one key.
func densify(shape Shape, keys []Key, sparse []Bucket) ([]Bucket, error) {
	index := make(map[Key]int, len(sparse))
	for i, b := range sparse {
		k := shape.project(b.Key)
		if _, dup := index[k]; dup {
			return nil, apperror.Computation(fmt.Errorf("duplicate %s bucket %+v", shape, k))
		}
		index[k] = i
	}

	used := make([]bool, len(sparse))
	out := make([]Bucket, len(keys))
	for i, k := range keys {
		j, ok := index[k]
		if !ok {
			out[i] = Bucket{Key: k}
			continue
		}
		used[j] = true
		out[i] = sparse[j]
		out[i].Key = k
	}

	for i, u := range used {
		if !u {
			return nil, apperror.Computation(fmt.Errorf("%s bucket %+v falls outside the period", shape, sparse[i].Key))
		}
	}
	return out, nil
}
