//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
	"github.com/bibbank/credit-service/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/credit-service/migrations"
	"github.com/bibbank/credit-service/pkg/testutil"
)

func setupDB(t *testing.T) *testutil.PostgresContainer {
	t.Helper()
	pc := testutil.NewPostgresContainer(context.Background(), t)
	pc.Migrate(t, migrations.FS)
	return pc
}

func newTestCredit(t *testing.T) model.Credit {
	t.Helper()
	credit, err := model.NewCredit(model.CreditTerms{
		ClientID:         testutil.TestClientID,
		CapitalAmount:    testutil.TestCapital,
		TEA:              testutil.TestTEA,
		Installments:     3,
		FirstPaymentDate: testutil.TestFirstPaymentDate,
	}, testutil.TestNow)
	require.NoError(t, err)
	return credit
}

func TestRepositories(t *testing.T) {
	pc := setupDB(t)
	ctx := context.Background()

	credits := postgres.NewCreditRepo(pc.Pool)
	installments := postgres.NewInstallmentRepo(pc.Pool)
	loans := postgres.NewLoanRepo(pc.Pool)
	payments := postgres.NewPaymentRepo(pc.Pool)
	history := postgres.NewLoanHistoryRepo(pc.Pool)

	t.Run("credit round trip", func(t *testing.T) {
		credit := newTestCredit(t)
		require.NoError(t, credits.Save(ctx, credit))

		got, err := credits.FindByID(ctx, credit.ID())
		require.NoError(t, err)
		assert.Equal(t, credit.Code(), got.Code())
		assert.Equal(t, "PEN", got.Currency().Code())
		testutil.AssertDecimal(t, "350.78", got.InstallmentAmount())
		testutil.AssertDecimal(t, "0.0259548347", got.MonthlyRate())
		assert.Equal(t, testutil.TestFirstPaymentDate, got.FirstPaymentDate())

		items := got.Installments()
		require.Len(t, items, 3)
		testutil.AssertDecimal(t, "324.83", items[0].PrincipalDue())
		testutil.AssertDecimal(t, "8.87", items[2].InterestDue())
		assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), items[1].DueDate())

		byClient, err := credits.FindByClientID(ctx, testutil.TestClientID)
		require.NoError(t, err)
		assert.NotEmpty(t, byClient)
	})

	t.Run("stale credit version is rejected", func(t *testing.T) {
		credit := newTestCredit(t)
		require.NoError(t, credits.Save(ctx, credit))

		cancelled, err := credit.Cancel(testutil.TestNow)
		require.NoError(t, err)
		require.NoError(t, credits.Save(ctx, cancelled))

		err = credits.Save(ctx, cancelled)
		assert.ErrorIs(t, err, model.ErrConcurrentModification)
	})

	t.Run("unknown ids", func(t *testing.T) {
		_, err := credits.FindByID(ctx, "00000000-0000-0000-0000-0000000000ff")
		assert.ErrorIs(t, err, model.ErrNotFound)
		testutil.AssertErrorContains(t, err, "credit 00000000-0000-0000-0000-0000000000ff")
		_, err = loans.FindByID(ctx, "00000000-0000-0000-0000-0000000000ff")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("installment payment is stored with its record", func(t *testing.T) {
		credit := newTestCredit(t)
		require.NoError(t, credits.Save(ctx, credit))
		first := credit.Installments()[0]

		inst, payment, err := installments.ApplyPayment(ctx, first.ID(),
			func(locked model.Installment) (model.Installment, model.CreditPayment, error) {
				return locked.ApplyPayment(first.Outstanding(), valueobject.PaymentMethodYape, testutil.TestNow, testutil.TestNow)
			})
		require.NoError(t, err)
		assert.Equal(t, valueobject.InstallmentStatusPaid, inst.Status())

		stored, err := installments.FindByID(ctx, first.ID())
		require.NoError(t, err)
		assert.Equal(t, valueobject.InstallmentStatusPaid, stored.Status())
		assert.Equal(t, valueobject.PaymentMethodYape, stored.PaymentMethod())
		assert.True(t, stored.Outstanding().IsZero())
		assert.Equal(t, 2, stored.Version())

		recorded, err := payments.FindByCreditID(ctx, credit.ID())
		require.NoError(t, err)
		require.Len(t, recorded, 1)
		assert.Equal(t, payment.ID, recorded[0].ID)
		testutil.AssertDecimal(t, "25.95", recorded[0].InterestAmount)
	})

	t.Run("concurrent installment payments serialise on the row lock", func(t *testing.T) {
		credit := newTestCredit(t)
		require.NoError(t, credits.Save(ctx, credit))
		first := credit.Installments()[0]
		half := decimal.RequireFromString("175.39")

		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			failed int
		)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := installments.ApplyPayment(ctx, first.ID(),
					func(locked model.Installment) (model.Installment, model.CreditPayment, error) {
						return locked.ApplyPayment(half, valueobject.PaymentMethodCash, testutil.TestNow, testutil.TestNow)
					})
				if err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		stored, err := installments.FindByID(ctx, first.ID())
		require.NoError(t, err)
		assert.True(t, stored.Outstanding().IsZero())
		assert.Equal(t, 3, failed, "only two halves fit")
	})

	t.Run("overdue query skips paid and cancelled", func(t *testing.T) {
		pc.Truncate(t, "credit_payments", "installments", "credits")

		live := newTestCredit(t)
		require.NoError(t, credits.Save(ctx, live))
		cancelled := newTestCredit(t)
		require.NoError(t, credits.Save(ctx, cancelled))
		c, err := cancelled.Cancel(testutil.TestNow)
		require.NoError(t, err)
		require.NoError(t, credits.Save(ctx, c))

		overdue, err := installments.FindOverdue(ctx, time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, overdue, 1)
		assert.Equal(t, live.Installments()[0].ID(), overdue[0].ID())

		marked, changed := overdue[0].MarkOverdue(time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC), testutil.TestNow)
		require.True(t, changed)
		require.NoError(t, installments.UpdateStatus(ctx, marked))
		assert.ErrorIs(t, installments.UpdateStatus(ctx, marked), model.ErrConcurrentModification)
	})

	t.Run("loan lifecycle writes history", func(t *testing.T) {
		loan, err := model.NewLoan(model.LoanTerms{
			ClientID:     testutil.TestClientID,
			Amount:       testutil.TestCapital,
			InterestRate: decimal.RequireFromString("10"),
			DueDate:      time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC),
		}, testutil.TestNow)
		require.NoError(t, err)
		require.NoError(t, loans.Save(ctx, loan))

		approved, err := loan.Approve(testutil.TestNow)
		require.NoError(t, err)
		require.NoError(t, loans.Save(ctx, approved))

		paidAt := time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)
		next, _, err := loans.ApplyPayment(ctx, loan.ID(), func(locked model.Loan) (model.Loan, model.LoanPayment, error) {
			return locked.ApplyPayment(model.LoanPaymentRequest{Amount: testutil.TestCapital}, paidAt, paidAt)
		})
		require.NoError(t, err)
		assert.Equal(t, valueobject.LoanStatusOverdue, next.Status())

		stored, err := loans.FindByID(ctx, loan.ID())
		require.NoError(t, err)
		assert.Equal(t, 5, stored.DaysOverdue())
		assert.Equal(t, 3, stored.Version())

		snapshots, err := history.FindByLoanID(ctx, loan.ID())
		require.NoError(t, err)
		assert.Len(t, snapshots, 2)

		loanPayments, err := payments.FindByLoanID(ctx, loan.ID())
		require.NoError(t, err)
		require.Len(t, loanPayments, 1)
		testutil.AssertDecimal(t, "1000", loanPayments[0].RequestedAmount)

		candidates, err := loans.FindOverdueCandidates(ctx, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Len(t, candidates, 1)
	})
}

func TestMigrations_Reversible(t *testing.T) {
	pc := setupDB(t)
	ctx := context.Background()

	pc.MigrateDown(t, migrations.FS)

	var tables int
	require.NoError(t, pc.Pool.QueryRow(ctx,
		`SELECT count(*) FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_name <> 'schema_migrations'`).Scan(&tables))
	assert.Zero(t, tables)

	pc.Migrate(t, migrations.FS)

	credit := newTestCredit(t)
	require.NoError(t, postgres.NewCreditRepo(pc.Pool).Save(ctx, credit))
}
