// Package money provides standardized handling of monetary amounts.
// Amounts are stored as decimal.Decimal; derived ratios are reported as float64
// rounded half away from zero to two decimal places.
package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Amount bounds accepted for a single expense.
var (
	MinAmount = decimal.RequireFromString("0.01")
	MaxAmount = decimal.RequireFromString("999999.99")
)

// DecimalPlaces is the precision every stored amount is rounded to.
const DecimalPlaces = 2

// Parse parses a decimal string into an amount.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %w", err)
	}
	return d, nil
}

// ValidateAmount checks that d lies within [MinAmount, MaxAmount].
func ValidateAmount(d decimal.Decimal) error {
	if d.LessThan(MinAmount) {
		return fmt.Errorf("amount must be at least %s", MinAmount.StringFixed(DecimalPlaces))
	}
	if d.GreaterThan(MaxAmount) {
		return fmt.Errorf("amount cannot exceed %s", MaxAmount.StringFixed(DecimalPlaces))
	}
	return nil
}

// Round rounds an amount to two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(DecimalPlaces)
}

// Round2 rounds x half away from zero to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Percent returns part/whole*100, or 0 when whole is not positive.
func Percent(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// Float converts an amount for use in float statistics.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
