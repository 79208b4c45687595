// Package analytics turns raw expense records into time- and category-bucketed
// statistics. It resolves reporting periods, drives grouped queries through a
// Store, densifies the sparse results over calendar units and derives trend,
// pattern and budget-utilization figures from them.
//
// All calendar math is done in UTC. Nothing in this package keeps state
// between calls.
package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wealthpath/expense-analytics/pkg/datetime"
)

// Shape selects which calendar fields form a bucket key.
type Shape int

const (
	// ShapeTotal collapses every matching record into one bucket.
	ShapeTotal Shape = iota
	// ShapeDay groups by day of month (1-31).
	ShapeDay
	// ShapeWeek groups by ISO year and ISO week (1-53).
	ShapeWeek
	// ShapeMonth groups by month of year (1-12).
	ShapeMonth
	// ShapeQuarter groups by calendar quarter (1-4).
	ShapeQuarter
	// ShapeDate groups by calendar date (year, month, day).
	ShapeDate
	// ShapeYearMonth groups by year and month.
	ShapeYearMonth
)

func (s Shape) String() string {
	switch s {
	case ShapeTotal:
		return "total"
	case ShapeDay:
		return "day"
	case ShapeWeek:
		return "week"
	case ShapeMonth:
		return "month"
	case ShapeQuarter:
		return "quarter"
	case ShapeDate:
		return "date"
	case ShapeYearMonth:
		return "year-month"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Valid reports whether s is one of the declared shapes.
func (s Shape) Valid() bool {
	return s >= ShapeTotal && s <= ShapeYearMonth
}

// Key identifies a bucket. Only the fields used by the bucket's Shape are set.
// For ShapeWeek, Year is the ISO year.
type Key struct {
	Year    int `json:"year,omitempty"`
	Quarter int `json:"quarter,omitempty"`
	Month   int `json:"month,omitempty"`
	Week    int `json:"week,omitempty"`
	Day     int `json:"day,omitempty"`
}

// project keeps only the fields that belong to s.
func (s Shape) project(k Key) Key {
	switch s {
	case ShapeTotal:
		return Key{}
	case ShapeDay:
		return Key{Day: k.Day}
	case ShapeWeek:
		return Key{Year: k.Year, Week: k.Week}
	case ShapeMonth:
		return Key{Month: k.Month}
	case ShapeQuarter:
		return Key{Quarter: k.Quarter}
	case ShapeDate:
		return Key{Year: k.Year, Month: k.Month, Day: k.Day}
	case ShapeYearMonth:
		return Key{Year: k.Year, Month: k.Month}
	default:
		return k
	}
}

// check reports whether k is a possible key for s.
func (s Shape) check(k Key) error {
	var ok bool
	switch s {
	case ShapeTotal:
		ok = true
	case ShapeDay:
		ok = k.Day >= 1 && k.Day <= 31
	case ShapeWeek:
		ok = k.Year > 0 && k.Week >= 1 && k.Week <= 53
	case ShapeMonth:
		ok = k.Month >= 1 && k.Month <= 12
	case ShapeQuarter:
		ok = k.Quarter >= 1 && k.Quarter <= 4
	case ShapeDate:
		ok = k.Year > 0 && k.Month >= 1 && k.Month <= 12 &&
			k.Day >= 1 && k.Day <= datetime.DaysInMonth(k.Year, time.Month(k.Month))
	case ShapeYearMonth:
		ok = k.Year > 0 && k.Month >= 1 && k.Month <= 12
	default:
		return fmt.Errorf("unknown grouping shape %d", int(s))
	}
	if !ok {
		return fmt.Errorf("key %+v is not a valid %s bucket", k, s)
	}
	return nil
}

// Label renders the key for display: 2025-06-01, 2025-W23, 2025-06, Q2, ...
func (k Key) Label(s Shape) string {
	switch s {
	case ShapeDay:
		return fmt.Sprintf("%d", k.Day)
	case ShapeWeek:
		return fmt.Sprintf("%d-W%02d", k.Year, k.Week)
	case ShapeMonth:
		return time.Month(k.Month).String()
	case ShapeQuarter:
		return fmt.Sprintf("Q%d", k.Quarter)
	case ShapeDate:
		return fmt.Sprintf("%d-%02d-%02d", k.Year, k.Month, k.Day)
	case ShapeYearMonth:
		return fmt.Sprintf("%d-%02d", k.Year, k.Month)
	default:
		return "total"
	}
}

// Bucket holds the statistics of one group of expenses.
// A zero-filled bucket has Count 0 and zero values everywhere else.
type Bucket struct {
	Key        Key
	CategoryID uuid.UUID
	Total      decimal.Decimal
	Count      int64
	Avg        decimal.Decimal
	Min        decimal.Decimal
	Max        decimal.Decimal
	FirstAt    time.Time
	LastAt     time.Time
}

// CategoryBucket is a Bucket joined with the display attributes of its category.
type CategoryBucket struct {
	Bucket
	Name  string
	Color string
	Icon  string
}

// Range is an inclusive interval of instants. A zero Start or End leaves
// that side unbounded.
type Range struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether neither side is bounded.
func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Query describes one grouped read against a Store.
type Query struct {
	OwnerID     string
	Range       Range
	Shape       Shape
	CategoryID  *uuid.UUID
	CategoryIDs []uuid.UUID
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
}
