package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wealthpath/expense-analytics/internal/apperror"
	"github.com/wealthpath/expense-analytics/pkg/money"
)

// Status classifies budget utilization.
type Status string

const (
	StatusGood     Status = "good"
	StatusWarning  Status = "warning"
	StatusExceeded Status = "exceeded"
)

// Utilization thresholds in percent.
const (
	WarningPercent  = 80.0
	ExceededPercent = 100.0
)

// Classify maps an unrounded utilization percentage to a Status.
func Classify(percentage float64) Status {
	switch {
	case percentage >= ExceededPercent:
		return StatusExceeded
	case percentage >= WarningPercent:
		return StatusWarning
	default:
		return StatusGood
	}
}

// Utilization is how much of a budget has been spent.
// Status and IsOverBudget use different comparisons and can disagree when
// spent equals the budget exactly.
type Utilization struct {
	Spent        decimal.Decimal
	Remaining    decimal.Decimal
	Percentage   float64
	Status       Status
	IsOverBudget bool
}

// Compare measures spent against a budget amount. A non-positive amount is a
// computation error since utilization is undefined for it.
func Compare(amount, spent decimal.Decimal) (Utilization, error) {
	if !amount.IsPositive() {
		return Utilization{}, apperror.Computation(fmt.Errorf("budget amount %s is not positive", amount))
	}
	// Rounding is for display only; 79.995 is still good.
	pct := money.Percent(spent, amount)
	return Utilization{
		Spent:        spent,
		Remaining:    amount.Sub(spent),
		Percentage:   money.Round2(pct),
		Status:       Classify(pct),
		IsOverBudget: spent.GreaterThan(amount),
	}, nil
}

// DaysRemaining counts whole or partial days from now until end, never below 0.
func DaysRemaining(end, now time.Time) int {
	left := end.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}
