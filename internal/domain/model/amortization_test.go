package model_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-service/internal/domain/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got}, msgAndArgs...)...)
}

type row struct {
	principal, interest, total, remaining string
}

func assertRows(t *testing.T, want []row, entries []model.AmortizationEntry) {
	t.Helper()
	require.Len(t, entries, len(want))
	for i, w := range want {
		e := entries[i]
		assert.Equal(t, i+1, e.Period)
		assertDecimal(t, w.principal, e.Principal, "period %d principal", i+1)
		assertDecimal(t, w.interest, e.Interest, "period %d interest", i+1)
		assertDecimal(t, w.total, e.Total, "period %d total", i+1)
		if w.remaining != "" {
			assertDecimal(t, w.remaining, e.RemainingBalance, "period %d remaining", i+1)
		}
	}
}

func TestGenerateSchedule_ThreeInstallmentsAt36TEA(t *testing.T) {
	rate, err := model.MonthlyRateFromTEA(dec("36"))
	require.NoError(t, err)

	schedule, err := model.GenerateSchedule(dec("1000"), rate, 3, date(2024, time.January, 31))
	require.NoError(t, err)

	assertDecimal(t, "350.78", schedule.FixedPayment)
	assertRows(t, []row{
		{"324.83", "25.95", "350.78", "675.17"},
		{"333.26", "17.52", "350.78", "341.91"},
		{"341.91", "8.87", "350.78", "0.00"},
	}, schedule.Entries)

	assertDecimal(t, "1000.00", schedule.TotalPrincipal())
	assertDecimal(t, "52.34", schedule.TotalInterest())

	assert.Equal(t, date(2024, time.January, 31), schedule.Entries[0].DueDate)
	assert.Equal(t, date(2024, time.February, 29), schedule.Entries[1].DueDate)
	assert.Equal(t, date(2024, time.March, 31), schedule.Entries[2].DueDate)
}

func TestGenerateSchedule_WithCapitalizedGrace(t *testing.T) {
	rate, err := model.MonthlyRateFromTEA(dec("36"))
	require.NoError(t, err)

	capitalized, accrued, err := model.CapitalizePrincipal(dec("1000"), rate, 30)
	require.NoError(t, err)
	assertDecimal(t, "25.95", accrued)
	assertDecimal(t, "1025.95", capitalized)

	schedule, err := model.GenerateSchedule(capitalized, rate, 3, date(2024, time.January, 31))
	require.NoError(t, err)

	assertDecimal(t, "359.89", schedule.FixedPayment)
	assertRows(t, []row{
		{"333.26", "26.63", "359.89", "692.69"},
		{"341.91", "17.98", "359.89", "350.78"},
		{"350.78", "9.10", "359.88", "0.00"},
	}, schedule.Entries)

	assert.True(t, schedule.TotalPrincipal().Equal(capitalized),
		"principal must sum to the capitalized amount, got %s", schedule.TotalPrincipal())
}

func TestGenerateSchedule_FinalInstallmentAbsorbsResidue(t *testing.T) {
	rate, err := model.MonthlyRateFromTEA(dec("20"))
	require.NoError(t, err)

	schedule, err := model.GenerateSchedule(dec("5000"), rate, 12, date(2025, time.March, 15))
	require.NoError(t, err)
	require.Len(t, schedule.Entries, 12)

	assertDecimal(t, "459.28", schedule.FixedPayment)

	first := schedule.Entries[0]
	assertDecimal(t, "382.73", first.Principal)
	assertDecimal(t, "76.55", first.Interest)

	last := schedule.Entries[11]
	assertDecimal(t, "452.43", last.Principal)
	assertDecimal(t, "6.93", last.Interest)
	assertDecimal(t, "459.36", last.Total)
	assert.True(t, last.RemainingBalance.IsZero())
	assert.Equal(t, date(2026, time.February, 15), last.DueDate)
}

func TestGenerateSchedule_ZeroRate(t *testing.T) {
	schedule, err := model.GenerateSchedule(dec("100"), decimal.Zero, 3, date(2024, time.May, 10))
	require.NoError(t, err)

	assertDecimal(t, "33.33", schedule.FixedPayment)
	assertRows(t, []row{
		{"33.33", "0", "33.33", "66.67"},
		{"33.33", "0", "33.33", "33.34"},
		{"33.34", "0", "33.34", "0"},
	}, schedule.Entries)
}

func TestGenerateSchedule_ZeroRateNeverOverpaysEarlyInstallments(t *testing.T) {
	tests := []struct {
		principal, payment, last string
		n                        int
	}{
		{"200", "0.66", "2.66", 300},
		{"1", "0.01", "0.41", 60},
		{"1", "0.00", "1", 300},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("P=%s n=%d", tc.principal, tc.n), func(t *testing.T) {
			schedule, err := model.GenerateSchedule(dec(tc.principal), decimal.Zero, tc.n, date(2024, time.May, 10))
			require.NoError(t, err)
			require.Len(t, schedule.Entries, tc.n)

			assertDecimal(t, tc.payment, schedule.FixedPayment)
			assertDecimal(t, tc.last, schedule.Entries[tc.n-1].Principal)
			assertDecimal(t, tc.principal, schedule.TotalPrincipal())
		})
	}
}

func TestGenerateSchedule_InvariantViolationIsFatal(t *testing.T) {
	rate, err := model.MonthlyRateFromTEA(dec("36"))
	require.NoError(t, err)

	// Rounding A up leaves the balance negative before the final period.
	schedule, err := model.GenerateSchedule(dec("1000"), rate, 360, date(2024, time.January, 31))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvariantViolation)
	assert.ErrorIs(t, err, model.ErrNegativeInterest)
	assert.NotErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "period 330")
	assert.Empty(t, schedule.Entries)

	_, err = model.QuoteCredit(model.CreditTerms{
		CapitalAmount:    dec("1000"),
		TEA:              dec("36"),
		Installments:     360,
		FirstPaymentDate: date(2024, time.January, 31),
	})
	assert.ErrorIs(t, err, model.ErrInvariantViolation)
}

func TestGenerateSchedule_Validation(t *testing.T) {
	due := date(2024, time.January, 1)
	rate := dec("0.01")

	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		n         int
		due       time.Time
		cause     error
	}{
		{"zero principal", decimal.Zero, rate, 3, due, model.ErrNonPositivePrincipal},
		{"negative principal", dec("-1"), rate, 3, due, model.ErrNonPositivePrincipal},
		{"zero count", dec("100"), rate, 0, due, model.ErrNonPositiveCount},
		{"negative rate", dec("100"), dec("-0.01"), 3, due, model.ErrNegativeRate},
		{"missing due date", dec("100"), rate, 3, time.Time{}, model.ErrMissingDueDate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := model.GenerateSchedule(tc.principal, tc.rate, tc.n, tc.due)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrValidation)
			assert.ErrorIs(t, err, tc.cause)
		})
	}
}

func TestGenerateSchedule_Properties(t *testing.T) {
	inputs := []struct {
		principal string
		tea       string
		n         int
	}{
		{"1000", "36", 3},
		{"5000", "20", 12},
		{"12000", "12", 24},
		{"100", "0", 3},
		{"200", "0", 300},
		{"1", "0", 60},
		{"999.99", "45.5", 7},
		{"150000", "9.5", 120},
		{"750", "80", 1},
	}

	for _, in := range inputs {
		t.Run(fmt.Sprintf("P=%s tea=%s n=%d", in.principal, in.tea, in.n), func(t *testing.T) {
			rate, err := model.MonthlyRateFromTEA(dec(in.tea))
			require.NoError(t, err)

			principal := dec(in.principal)
			schedule, err := model.GenerateSchedule(principal, rate, in.n, date(2024, time.January, 31))
			require.NoError(t, err)
			require.Len(t, schedule.Entries, in.n)

			assert.True(t, schedule.TotalPrincipal().Equal(principal),
				"sum of principal %s != %s", schedule.TotalPrincipal(), principal)

			for i, e := range schedule.Entries {
				assert.True(t, e.Total.Equal(e.Principal.Add(e.Interest)), "period %d", e.Period)
				assert.False(t, e.Interest.IsNegative(), "period %d", e.Period)
				assert.False(t, e.Principal.IsNegative(), "period %d", e.Period)
				if i < len(schedule.Entries)-1 {
					assert.True(t, e.Total.Equal(schedule.FixedPayment),
						"period %d total %s != %s", e.Period, e.Total, schedule.FixedPayment)
				}
			}
			assert.True(t, schedule.Entries[in.n-1].RemainingBalance.IsZero())
		})
	}
}

func TestFixedPayment_TwoYearsAt12TEA(t *testing.T) {
	rate, err := model.MonthlyRateFromTEA(dec("12"))
	require.NoError(t, err)

	payment, err := model.FixedPayment(dec("12000"), rate, 24)
	require.NoError(t, err)
	assertDecimal(t, "561.45", payment)
}
