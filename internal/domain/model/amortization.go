package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/pkg/money"
)

// AmortizationEntry is an immutable value object representing one period in an
// amortization schedule.
type AmortizationEntry struct {
	DueDate          time.Time
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	Total            decimal.Decimal
	RemainingBalance decimal.Decimal
	Period           int
}

// Schedule is the output of GenerateSchedule: the constant installment
// amount and the ordered entries.
type Schedule struct {
	FixedPayment decimal.Decimal
	Entries      []AmortizationEntry
}

// TotalPrincipal sums the principal part of every entry.
func (s Schedule) TotalPrincipal() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range s.Entries {
		sum = sum.Add(e.Principal)
	}
	return sum
}

// TotalInterest sums the interest part of every entry.
func (s Schedule) TotalInterest() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range s.Entries {
		sum = sum.Add(e.Interest)
	}
	return sum
}

// FixedPayment computes the constant annuity installment
//
//	A = P·r / (1 − (1+r)^−n)
//
// rounded to two decimals. A zero rate splits the principal evenly, rounding
// down so that the first n-1 installments never repay more than principal.
func FixedPayment(principal, monthlyRate decimal.Decimal, n int) (decimal.Decimal, error) {
	if monthlyRate.IsZero() {
		return money.Div(principal, decimal.NewFromInt(int64(n))).RoundDown(money.CurrencyScale), nil
	}

	growth, err := money.One().Add(monthlyRate).PowInt32(int32(n))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("compound factor: %w", err)
	}
	discount := money.Div(money.One(), growth)
	return money.DivAmount(principal.Mul(monthlyRate), money.One().Sub(discount)), nil
}

// GenerateSchedule builds a French (constant payment) amortization schedule
// of n installments over principal at monthlyRate, the first one due on
// firstDue and the rest on the same day of the following months.
//
// Every installment but the last pays A; interest is round(remaining × r, 2)
// and the principal part is A minus interest. The last installment repays
// exactly the remaining balance, so the principal parts always sum to the
// principal.
func GenerateSchedule(
	principal decimal.Decimal,
	monthlyRate decimal.Decimal,
	n int,
	firstDue time.Time,
) (Schedule, error) {
	switch {
	case !principal.IsPositive():
		return Schedule{}, validationError("credit", "", "capital_amount", ErrNonPositivePrincipal)
	case n < 1:
		return Schedule{}, validationError("credit", "", "installments", ErrNonPositiveCount)
	case monthlyRate.IsNegative():
		return Schedule{}, validationError("credit", "", "tea", ErrNegativeRate)
	case firstDue.IsZero():
		return Schedule{}, validationError("credit", "", "first_payment_date", ErrMissingDueDate)
	}

	payment, err := FixedPayment(principal, monthlyRate, n)
	if err != nil {
		return Schedule{}, err
	}

	entries := make([]AmortizationEntry, 0, n)
	remaining := principal
	firstDue = DateOf(firstDue)

	for period := 1; period <= n; period++ {
		interest := money.Round(remaining.Mul(monthlyRate))
		if interest.IsNegative() {
			return Schedule{}, invariantError("schedule", "", ErrNegativeInterest,
				fmt.Sprintf("period %d interest %s", period, interest))
		}

		principalPart := payment.Sub(interest)
		if period == n {
			principalPart = remaining
		}
		if principalPart.IsNegative() {
			return Schedule{}, invariantError("schedule", "", ErrNegativePrincipal,
				fmt.Sprintf("period %d principal %s", period, principalPart))
		}

		remaining = remaining.Sub(principalPart)

		entries = append(entries, AmortizationEntry{
			Period:           period,
			DueDate:          AddMonthsClamped(firstDue, period-1),
			Principal:        principalPart,
			Interest:         interest,
			Total:            principalPart.Add(interest),
			RemainingBalance: remaining,
		})
	}

	schedule := Schedule{FixedPayment: payment, Entries: entries}
	if sum := schedule.TotalPrincipal(); !sum.Equal(principal) {
		return Schedule{}, invariantError("schedule", "", ErrScheduleSum,
			fmt.Sprintf("sum %s, principal %s", sum, principal))
	}
	return schedule, nil
}
