package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
)

var paymentDay = date(2024, time.January, 20)

func unpaidInstallment(principal, interest string, due time.Time) model.Installment {
	p, i := dec(principal), dec(interest)
	created := date(2023, time.December, 1)
	return model.ReconstructInstallment(
		"inst-1", "credit-1", 1, due,
		p.Add(i), p, i,
		decimal.Zero, decimal.Zero,
		p, i,
		valueobject.InstallmentStatusPending,
		time.Time{}, "",
		1, created, created,
	)
}

func TestInstallment_ApplyPayment_InterestFirst(t *testing.T) {
	inst := unpaidInstallment("300.00", "50.00", date(2024, time.January, 31))

	t.Run("partial payment covers interest only", func(t *testing.T) {
		next, payment, err := inst.ApplyPayment(dec("20.00"), valueobject.PaymentMethodYape, paymentDay, paymentDay)
		require.NoError(t, err)

		assertDecimal(t, "20.00", next.InterestPaid())
		assertDecimal(t, "0.00", next.PrincipalPaid())
		assertDecimal(t, "30.00", next.InterestRemaining())
		assertDecimal(t, "300.00", next.PrincipalRemaining())
		assert.Equal(t, valueobject.InstallmentStatusPartiallyPaid, next.Status())
		assert.Equal(t, valueobject.PaymentMethodYape, next.PaymentMethod())
		assert.Equal(t, paymentDay, next.PaymentDate())

		assertDecimal(t, "20.00", payment.InterestAmount)
		assertDecimal(t, "0", payment.PrincipalAmount)
		assertDecimal(t, "20.00", payment.TotalAmount)
		assert.Equal(t, 1, payment.InstallmentNumber)
		assert.Equal(t, "credit-1", payment.CreditID)
		assert.Equal(t, "inst-1", payment.InstallmentID)
		assert.NotEmpty(t, payment.ID)

		require.Len(t, next.DomainEvents(), 1)
		assert.Equal(t, "credit.installment_paid", next.DomainEvents()[0].EventType())

		// The receiver is left untouched.
		assertDecimal(t, "50.00", inst.InterestRemaining())
		assert.Equal(t, valueobject.InstallmentStatusPending, inst.Status())
	})

	t.Run("second payment settles the installment", func(t *testing.T) {
		partial, _, err := inst.ApplyPayment(dec("20.00"), valueobject.PaymentMethodCash, paymentDay, paymentDay)
		require.NoError(t, err)

		paid, payment, err := partial.ApplyPayment(dec("330.00"), valueobject.PaymentMethodCash, paymentDay, paymentDay)
		require.NoError(t, err)

		assertDecimal(t, "30.00", payment.InterestAmount)
		assertDecimal(t, "300.00", payment.PrincipalAmount)
		assert.True(t, paid.PrincipalRemaining().IsZero())
		assert.True(t, paid.InterestRemaining().IsZero())
		assert.Equal(t, valueobject.InstallmentStatusPaid, paid.Status())

		_, _, err = paid.ApplyPayment(dec("0.01"), valueobject.PaymentMethodCash, paymentDay, paymentDay)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrValidation)
		assert.ErrorIs(t, err, model.ErrAlreadyPaid)
	})

	t.Run("payment spanning interest and principal", func(t *testing.T) {
		next, payment, err := inst.ApplyPayment(dec("100.00"), valueobject.PaymentMethodTransfer, paymentDay, paymentDay)
		require.NoError(t, err)
		assertDecimal(t, "50.00", payment.InterestAmount)
		assertDecimal(t, "50.00", payment.PrincipalAmount)
		assertDecimal(t, "250.00", next.PrincipalRemaining())
		assert.True(t, next.InterestRemaining().IsZero())
		assert.Equal(t, valueobject.InstallmentStatusPartiallyPaid, next.Status())
	})
}

func TestInstallment_ApplyPayment_Rejections(t *testing.T) {
	inst := unpaidInstallment("300.00", "50.00", date(2024, time.January, 31))

	t.Run("exceeds outstanding balance", func(t *testing.T) {
		next, _, err := inst.ApplyPayment(dec("350.01"), valueobject.PaymentMethodCash, paymentDay, paymentDay)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrExceedsOutstanding)
		assert.Equal(t, inst, next)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "installment", domainErr.Entity)
		assert.Equal(t, "inst-1", domainErr.ID)
		assert.Equal(t, "amount", domainErr.Field)
	})

	t.Run("exact outstanding balance is accepted", func(t *testing.T) {
		next, _, err := inst.ApplyPayment(dec("350.00"), valueobject.PaymentMethodCash, paymentDay, paymentDay)
		require.NoError(t, err)
		assert.Equal(t, valueobject.InstallmentStatusPaid, next.Status())
	})

	t.Run("sub-cent amount", func(t *testing.T) {
		_, _, err := inst.ApplyPayment(dec("25.005"), valueobject.PaymentMethodCash, paymentDay, paymentDay)
		assert.ErrorIs(t, err, model.ErrValidation)
		assert.ErrorIs(t, err, model.ErrAmountPrecision)
	})

	t.Run("negative amount", func(t *testing.T) {
		_, _, err := inst.ApplyPayment(dec("-1"), valueobject.PaymentMethodCash, paymentDay, paymentDay)
		assert.ErrorIs(t, err, model.ErrNegativeAmount)
	})
}

func TestInstallment_ZeroPaymentLeavesStateUnchanged(t *testing.T) {
	inst := unpaidInstallment("300.00", "50.00", date(2024, time.January, 31))
	partial, _, err := inst.ApplyPayment(dec("20.00"), valueobject.PaymentMethodCash, paymentDay, paymentDay)
	require.NoError(t, err)
	partial = partial.ClearEvents()

	next, payment, err := partial.ApplyPayment(decimal.Zero, valueobject.PaymentMethodCash, date(2024, time.January, 25), date(2024, time.January, 25))
	require.NoError(t, err)

	assert.Equal(t, partial, next)
	assert.Equal(t, valueobject.InstallmentStatusPartiallyPaid, next.Status())
	assert.True(t, payment.TotalAmount.IsZero())
	assert.Empty(t, next.DomainEvents())
}

func TestInstallment_PaidAmountsNeverDecrease(t *testing.T) {
	inst := unpaidInstallment("341.91", "8.87", date(2024, time.March, 31))
	payments := []string{"1.00", "7.00", "0", "0.87", "100.00", "0.01", "241.90"}

	prevPrincipal, prevInterest := inst.PrincipalPaid(), inst.InterestPaid()
	for _, amount := range payments {
		next, _, err := inst.ApplyPayment(dec(amount), valueobject.PaymentMethodCash, paymentDay, paymentDay)
		require.NoError(t, err, "amount %s", amount)

		assert.True(t, next.PrincipalPaid().GreaterThanOrEqual(prevPrincipal))
		assert.True(t, next.InterestPaid().GreaterThanOrEqual(prevInterest))
		assert.False(t, next.PrincipalRemaining().IsNegative())
		assert.False(t, next.InterestRemaining().IsNegative())
		assert.True(t, next.PrincipalRemaining().Equal(next.PrincipalDue().Sub(next.PrincipalPaid())))
		assert.True(t, next.InterestRemaining().Equal(next.InterestDue().Sub(next.InterestPaid())))

		bothZero := next.PrincipalRemaining().IsZero() && next.InterestRemaining().IsZero()
		assert.Equal(t, bothZero, next.Status().IsPaid())

		prevPrincipal, prevInterest = next.PrincipalPaid(), next.InterestPaid()
		inst = next
	}
	assert.Equal(t, valueobject.InstallmentStatusPaid, inst.Status())
}

func TestInstallment_MarkOverdue(t *testing.T) {
	due := date(2024, time.January, 31)
	inst := unpaidInstallment("300.00", "50.00", due)

	t.Run("not yet due", func(t *testing.T) {
		_, changed := inst.MarkOverdue(due, due)
		assert.False(t, changed)
		assert.False(t, inst.IsOverdue(due))
	})

	t.Run("past due", func(t *testing.T) {
		today := date(2024, time.February, 1)
		overdue, changed := inst.MarkOverdue(today, today)
		require.True(t, changed)
		assert.Equal(t, valueobject.InstallmentStatusOverdue, overdue.Status())

		_, changedAgain := overdue.MarkOverdue(today, today)
		assert.False(t, changedAgain)

		// A later partial payment clears the overdue flag.
		next, _, err := overdue.ApplyPayment(dec("10.00"), valueobject.PaymentMethodCash, today, today)
		require.NoError(t, err)
		assert.Equal(t, valueobject.InstallmentStatusPartiallyPaid, next.Status())
	})

	t.Run("paid installments are never overdue", func(t *testing.T) {
		paid, _, err := inst.ApplyPayment(dec("350.00"), valueobject.PaymentMethodCash, paymentDay, paymentDay)
		require.NoError(t, err)
		today := date(2024, time.June, 1)
		_, changed := paid.MarkOverdue(today, today)
		assert.False(t, changed)
	})
}
