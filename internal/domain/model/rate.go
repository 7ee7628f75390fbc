package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/pkg/money"
)

const (
	periodsPerYear = 12
	daysPerMonth   = 30
)

// MonthlyRateFromTEA converts an annual effective rate, given as a
// percentage, into the equivalent monthly rate r with (1+r)^12 = 1+tea/100.
// The result is rounded to money.RateScale digits.
func MonthlyRateFromTEA(tea decimal.Decimal) (decimal.Decimal, error) {
	if tea.IsNegative() {
		return decimal.Decimal{}, validationError("credit", "", "tea", ErrNegativeRate)
	}
	if tea.IsZero() {
		return decimal.Zero, nil
	}

	base := money.One().Add(money.Percent(tea))
	exponent := money.Div(money.One(), decimal.NewFromInt(periodsPerYear))

	root, err := base.PowWithPrecision(exponent, money.IntermediateScale)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("monthly rate from tea %s: %w", tea, err)
	}
	return money.RoundRate(root.Sub(money.One())), nil
}

// GraceInterest returns the interest accrued on principal during a grace
// period of graceDays, using 30-day commercial months.
func GraceInterest(principal, monthlyRate decimal.Decimal, graceDays int) (decimal.Decimal, error) {
	if graceDays < 0 {
		return decimal.Decimal{}, validationError("credit", "", "grace_days", ErrNegativeGrace)
	}
	if graceDays == 0 || monthlyRate.IsZero() {
		return decimal.Zero, nil
	}
	graceMonths := money.Div(decimal.NewFromInt(int64(graceDays)), decimal.NewFromInt(daysPerMonth))
	return money.Round(principal.Mul(monthlyRate).Mul(graceMonths)), nil
}

// CapitalizePrincipal adds grace-period interest to principal. It returns
// the capitalized principal and the accrued interest.
func CapitalizePrincipal(principal, monthlyRate decimal.Decimal, graceDays int) (decimal.Decimal, decimal.Decimal, error) {
	accrued, err := GraceInterest(principal, monthlyRate, graceDays)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	return principal.Add(accrued), accrued, nil
}
