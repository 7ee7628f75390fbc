package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/application/usecase"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
)

var midJanuary = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

// seedCredit stores a three-installment credit due from 2024-01-31.
func seedCredit(t *testing.T) (*mockCreditRepository, *mockInstallmentRepository, model.Credit) {
	t.Helper()
	credit, err := model.NewCredit(model.CreditTerms{
		ClientID:         "client-1",
		CapitalAmount:    dec("1000"),
		TEA:              dec("36"),
		Installments:     3,
		FirstPaymentDate: time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
	}, testNow)
	require.NoError(t, err)
	credit = credit.ClearEvents()

	credits := newCreditStore()
	credits.credits[credit.ID()] = credit
	return credits, &mockInstallmentRepository{credits: credits}, credit
}

func newPayInstallment(credits *mockCreditRepository, installments *mockInstallmentRepository, publisher *mockEventPublisher, now time.Time) *usecase.PayInstallmentUseCase {
	return usecase.NewPayInstallmentUseCase(credits, installments, publisher, fixedClock(now), nil, discardLogger())
}

func TestPayInstallment_Execute(t *testing.T) {
	t.Run("partial payment goes to interest first", func(t *testing.T) {
		credits, installments, credit := seedCredit(t)
		publisher := &mockEventPublisher{}
		uc := newPayInstallment(credits, installments, publisher, midJanuary)

		first := credit.Installments()[0]
		resp, err := uc.Execute(context.Background(), dto.PayInstallmentRequest{
			InstallmentID: first.ID(),
			Amount:        dec("20.00"),
			Method:        "EFECTIVO",
		})

		require.NoError(t, err)
		assert.Equal(t, "PARTIALLY_PAID", resp.Installment.Status)
		assert.True(t, dec("20.00").Equal(resp.Installment.InterestPaid))
		assert.True(t, resp.Installment.PrincipalPaid.IsZero())
		assert.True(t, dec("20.00").Equal(resp.Payment.InterestAmount))
		assert.True(t, resp.Payment.PrincipalAmount.IsZero())
		assert.Equal(t, 1, resp.Payment.InstallmentNumber)
		assert.Equal(t, "CASH", resp.Payment.Method)
		assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), resp.Payment.PaidAt)
		assert.Equal(t, "ACTIVE", resp.CreditStatus)

		assert.Len(t, installments.payments, 1)
		assert.Empty(t, credits.savedCredits, "status did not move")
		assert.Equal(t, []string{"credit.installment_paid"}, publisher.types())
	})

	t.Run("paying every installment settles the credit", func(t *testing.T) {
		credits, installments, credit := seedCredit(t)
		publisher := &mockEventPublisher{}
		uc := newPayInstallment(credits, installments, publisher, midJanuary)

		var last dto.InstallmentPaymentResponse
		for _, inst := range credit.Installments() {
			resp, err := uc.Execute(context.Background(), dto.PayInstallmentRequest{
				InstallmentID: inst.ID(),
				Amount:        inst.Outstanding(),
				Method:        "TRANSFER",
			})
			require.NoError(t, err)
			assert.Equal(t, "PAID", resp.Installment.Status)
			last = resp
		}

		assert.Equal(t, "PAID", last.CreditStatus)
		require.Len(t, credits.savedCredits, 1)
		assert.Equal(t, valueobject.CreditStatusPaid, credits.credits[credit.ID()].Status())
		assert.Contains(t, publisher.types(), "credit.status_changed")
	})

	t.Run("zero amount changes nothing and records no payment", func(t *testing.T) {
		credits, installments, credit := seedCredit(t)
		publisher := &mockEventPublisher{}
		uc := newPayInstallment(credits, installments, publisher, midJanuary)

		resp, err := uc.Execute(context.Background(), dto.PayInstallmentRequest{
			InstallmentID: credit.Installments()[0].ID(),
			Amount:        dec("0"),
		})

		require.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Installment.Status)
		assert.Empty(t, resp.Payment.ID)
		assert.True(t, resp.Payment.TotalAmount.IsZero())
		assert.Equal(t, "ACTIVE", resp.CreditStatus)
		assert.Empty(t, installments.payments)
		assert.Empty(t, credits.savedCredits)
		assert.Empty(t, publisher.publishedEvents)
	})

	t.Run("rejects overpayment", func(t *testing.T) {
		credits, installments, credit := seedCredit(t)
		uc := newPayInstallment(credits, installments, &mockEventPublisher{}, midJanuary)

		_, err := uc.Execute(context.Background(), dto.PayInstallmentRequest{
			InstallmentID: credit.Installments()[0].ID(),
			Amount:        dec("350.79"),
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrValidation)
		assert.ErrorIs(t, err, model.ErrExceedsOutstanding)
		assert.Contains(t, err.Error(), "apply payment")
		assert.Empty(t, installments.payments)
	})

	t.Run("rejects a second payment on a paid installment", func(t *testing.T) {
		credits, installments, credit := seedCredit(t)
		uc := newPayInstallment(credits, installments, &mockEventPublisher{}, midJanuary)
		first := credit.Installments()[0]

		_, err := uc.Execute(context.Background(), dto.PayInstallmentRequest{InstallmentID: first.ID(), Amount: dec("350.78")})
		require.NoError(t, err)

		_, err = uc.Execute(context.Background(), dto.PayInstallmentRequest{InstallmentID: first.ID(), Amount: dec("1")})
		assert.ErrorIs(t, err, model.ErrAlreadyPaid)
	})

	t.Run("rejects payments on a cancelled credit", func(t *testing.T) {
		credits, installments, credit := seedCredit(t)
		cancelled, err := credit.Cancel(testNow)
		require.NoError(t, err)
		credits.credits[credit.ID()] = cancelled.ClearEvents()
		uc := newPayInstallment(credits, installments, &mockEventPublisher{}, midJanuary)

		_, err = uc.Execute(context.Background(), dto.PayInstallmentRequest{
			InstallmentID: credit.Installments()[0].ID(),
			Amount:        dec("10"),
		})

		assert.ErrorIs(t, err, model.ErrCreditCancelled)
		assert.Empty(t, installments.payments)
	})

	t.Run("rejects an unknown payment method", func(t *testing.T) {
		credits, installments, credit := seedCredit(t)
		uc := newPayInstallment(credits, installments, &mockEventPublisher{}, midJanuary)

		_, err := uc.Execute(context.Background(), dto.PayInstallmentRequest{
			InstallmentID: credit.Installments()[0].ID(),
			Amount:        dec("10"),
			Method:        "BITCOIN",
		})

		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("fails when the installment does not exist", func(t *testing.T) {
		credits, installments, _ := seedCredit(t)
		uc := newPayInstallment(credits, installments, &mockEventPublisher{}, midJanuary)

		_, err := uc.Execute(context.Background(), dto.PayInstallmentRequest{InstallmentID: "missing", Amount: dec("10")})

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.Contains(t, err.Error(), "find installment")
	})

	t.Run("retries the credit status update after a version conflict", func(t *testing.T) {
		credits, installments, credit := seedCredit(t)
		items := credit.Installments()
		for _, inst := range items[1:] {
			paid, _, err := inst.ApplyPayment(inst.Outstanding(), valueobject.PaymentMethodCash, midJanuary, midJanuary)
			require.NoError(t, err)
			installments.store(paid)
		}

		calls := 0
		credits.saveFunc = func(context.Context, model.Credit) error {
			calls++
			if calls == 1 {
				return model.NewConflictError("credit", credit.ID())
			}
			return nil
		}
		uc := newPayInstallment(credits, installments, &mockEventPublisher{}, midJanuary)

		resp, err := uc.Execute(context.Background(), dto.PayInstallmentRequest{
			InstallmentID: items[0].ID(),
			Amount:        items[0].Outstanding(),
		})

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, "PAID", resp.CreditStatus)
	})
}
