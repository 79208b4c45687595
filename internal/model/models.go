package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Records are owned by an opaque identifier issued by the external identity provider.

type Category struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	Color     *string   `db:"color" json:"color,omitempty"`
	Icon      *string   `db:"icon" json:"icon,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type Expense struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OwnerID     string          `db:"owner_id" json:"userId"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description string          `db:"description" json:"description"`
	Notes       *string         `db:"notes" json:"notes,omitempty"`
	CategoryID  uuid.UUID       `db:"category_id" json:"categoryId"`
	Date        time.Time       `db:"date" json:"date"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// ExpenseWithCategory is an expense joined with its category's display attributes.
// The category fields are nil when the category has been deleted.
type ExpenseWithCategory struct {
	Expense
	CategoryName  *string `db:"category_name" json:"categoryName,omitempty"`
	CategoryColor *string `db:"category_color" json:"categoryColor,omitempty"`
}

type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// Valid reports whether p is a known period.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodYearly:
		return true
	}
	return false
}

// EndFrom returns the end of one period starting at start.
func (p BudgetPeriod) EndFrom(start time.Time) time.Time {
	switch p {
	case BudgetPeriodWeekly:
		return start.AddDate(0, 0, 7)
	case BudgetPeriodYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

type Budget struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	OwnerID    string          `db:"owner_id" json:"userId"`
	Name       string          `db:"name" json:"name"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	CategoryID uuid.UUID       `db:"category_id" json:"categoryId"`
	Period     BudgetPeriod    `db:"period" json:"period"`
	StartDate  time.Time       `db:"start_date" json:"startDate"`
	EndDate    time.Time       `db:"end_date" json:"endDate"`
	IsActive   bool            `db:"is_active" json:"isActive"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

// Contains reports whether t falls within the budget's inclusive range.
func (b Budget) Contains(t time.Time) bool {
	return !t.Before(b.StartDate) && !t.After(b.EndDate)
}
