package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/application/usecase"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
)

func loanRequest() dto.CreateLoanRequest {
	return dto.CreateLoanRequest{
		ClientID:     "client-1",
		Amount:       dec("1000"),
		InterestRate: dec("10"),
		DueDate:      time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
}

// createLoan runs the create use case against loans and returns the new id.
func createLoan(t *testing.T, loans *mockLoanRepository) string {
	t.Helper()
	uc := usecase.NewCreateLoanUseCase(loans, &mockEventPublisher{}, fixedClock(testNow), discardLogger())
	resp, err := uc.Execute(context.Background(), loanRequest())
	require.NoError(t, err)
	return resp.ID
}

func TestCreateLoan_Execute(t *testing.T) {
	t.Run("creates a pending loan with simple interest", func(t *testing.T) {
		loans := newLoanStore()
		publisher := &mockEventPublisher{}
		uc := usecase.NewCreateLoanUseCase(loans, publisher, fixedClock(testNow), discardLogger())

		resp, err := uc.Execute(context.Background(), loanRequest())

		require.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
		assert.True(t, dec("100").Equal(resp.InterestAmount))
		assert.True(t, dec("1100").Equal(resp.TotalAmount))
		assert.True(t, dec("1000").Equal(resp.RemainingCapital))
		assert.Equal(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), resp.IssueDate)
		assert.Zero(t, resp.DaysOverdue)

		require.Len(t, loans.history, 1, "creation snapshot")
		assert.True(t, dec("1100").Equal(loans.history[0].TotalAmount))
		assert.Equal(t, []string{"loan.created"}, publisher.types())
	})

	t.Run("rejects a due date before issue", func(t *testing.T) {
		req := loanRequest()
		req.IssueDate = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		uc := usecase.NewCreateLoanUseCase(newLoanStore(), &mockEventPublisher{}, fixedClock(testNow), discardLogger())

		_, err := uc.Execute(context.Background(), req)

		assert.ErrorIs(t, err, model.ErrValidation)
		assert.ErrorIs(t, err, model.ErrDueBeforeIssue)
	})

	t.Run("propagates save failures", func(t *testing.T) {
		loans := newLoanStore()
		loans.saveFunc = func(context.Context, model.Loan) error { return errors.New("db down") }
		uc := usecase.NewCreateLoanUseCase(loans, &mockEventPublisher{}, fixedClock(testNow), discardLogger())

		_, err := uc.Execute(context.Background(), loanRequest())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "save loan")
	})
}

func TestDecideLoan_Execute(t *testing.T) {
	tests := []struct {
		name    string
		approve bool
		want    string
	}{
		{"approve", true, "APPROVED"},
		{"reject", false, "REJECTED"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loans := newLoanStore()
			id := createLoan(t, loans)
			publisher := &mockEventPublisher{}
			uc := usecase.NewDecideLoanUseCase(loans, publisher, fixedClock(testNow), discardLogger())

			resp, err := uc.Execute(context.Background(), dto.DecideLoanRequest{LoanID: id, Approve: tc.approve})

			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.Status)
			assert.Equal(t, []string{"loan.decided"}, publisher.types())

			_, err = uc.Execute(context.Background(), dto.DecideLoanRequest{LoanID: id, Approve: tc.approve})
			assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
		})
	}
}

func TestPayLoan_Execute(t *testing.T) {
	t.Run("splits a lump sum interest first", func(t *testing.T) {
		loans := newLoanStore()
		id := createLoan(t, loans)
		publisher := &mockEventPublisher{}
		uc := usecase.NewPayLoanUseCase(loans, publisher, fixedClock(midJanuary), nil, discardLogger())

		resp, err := uc.Execute(context.Background(), dto.PayLoanRequest{LoanID: id, Amount: dec("300"), Method: "YAPE"})

		require.NoError(t, err)
		assert.True(t, dec("100").Equal(resp.Payment.InterestAmount))
		assert.True(t, dec("200").Equal(resp.Payment.CapitalAmount))
		assert.Equal(t, "YAPE", resp.Payment.Method)
		assert.True(t, dec("800").Equal(resp.Loan.RemainingCapital))
		assert.True(t, resp.Loan.RemainingInterest.IsZero())
		assert.True(t, dec("800").Equal(resp.Loan.TotalAmount))
		assert.Equal(t, "PENDING", resp.Loan.Status)
		assert.Equal(t, []string{"loan.payment_applied"}, publisher.types())
		assert.Len(t, loans.history, 2)
	})

	t.Run("truncates an overpayment and settles the loan", func(t *testing.T) {
		loans := newLoanStore()
		id := createLoan(t, loans)
		publisher := &mockEventPublisher{}
		uc := usecase.NewPayLoanUseCase(loans, publisher, fixedClock(midJanuary), nil, discardLogger())

		resp, err := uc.Execute(context.Background(), dto.PayLoanRequest{LoanID: id, Amount: dec("1500")})

		require.NoError(t, err)
		assert.True(t, dec("1100").Equal(resp.Payment.TotalAmount))
		assert.True(t, dec("1500").Equal(resp.Payment.RequestedAmount))
		assert.Equal(t, "PAID", resp.Loan.Status)
		assert.Equal(t, []string{"loan.payment_applied", "loan.paid_off"}, publisher.types())

		_, err = uc.Execute(context.Background(), dto.PayLoanRequest{LoanID: id, Amount: dec("1")})
		assert.ErrorIs(t, err, model.ErrAlreadyPaid)
	})

	t.Run("honours an explicit split", func(t *testing.T) {
		loans := newLoanStore()
		id := createLoan(t, loans)
		uc := usecase.NewPayLoanUseCase(loans, &mockEventPublisher{}, fixedClock(midJanuary), nil, discardLogger())

		resp, err := uc.Execute(context.Background(), dto.PayLoanRequest{
			LoanID:         id,
			InterestAmount: dec("40"),
			CapitalAmount:  dec("60"),
		})

		require.NoError(t, err)
		assert.True(t, dec("40").Equal(resp.Payment.InterestAmount))
		assert.True(t, dec("60").Equal(resp.Payment.CapitalAmount))
		assert.True(t, dec("60").Equal(resp.Loan.RemainingInterest))
		assert.True(t, dec("940").Equal(resp.Loan.RemainingCapital))
	})

	t.Run("rejects a zero payment", func(t *testing.T) {
		loans := newLoanStore()
		id := createLoan(t, loans)
		uc := usecase.NewPayLoanUseCase(loans, &mockEventPublisher{}, fixedClock(midJanuary), nil, discardLogger())

		_, err := uc.Execute(context.Background(), dto.PayLoanRequest{LoanID: id})

		assert.ErrorIs(t, err, model.ErrZeroPayment)
		assert.Empty(t, loans.payments)
	})

	t.Run("marks an approved loan overdue when paid late", func(t *testing.T) {
		loans := newLoanStore()
		id := createLoan(t, loans)
		decide := usecase.NewDecideLoanUseCase(loans, &mockEventPublisher{}, fixedClock(testNow), discardLogger())
		_, err := decide.Execute(context.Background(), dto.DecideLoanRequest{LoanID: id, Approve: true})
		require.NoError(t, err)

		late := time.Date(2024, time.February, 11, 9, 0, 0, 0, time.UTC)
		uc := usecase.NewPayLoanUseCase(loans, &mockEventPublisher{}, fixedClock(late), nil, discardLogger())
		resp, err := uc.Execute(context.Background(), dto.PayLoanRequest{LoanID: id, Amount: dec("50")})

		require.NoError(t, err)
		assert.Equal(t, "OVERDUE", resp.Loan.Status)
		assert.Equal(t, 10, resp.Loan.DaysOverdue)
	})

	t.Run("rejects payments on a rejected loan", func(t *testing.T) {
		loans := newLoanStore()
		id := createLoan(t, loans)
		decide := usecase.NewDecideLoanUseCase(loans, &mockEventPublisher{}, fixedClock(testNow), discardLogger())
		_, err := decide.Execute(context.Background(), dto.DecideLoanRequest{LoanID: id})
		require.NoError(t, err)

		uc := usecase.NewPayLoanUseCase(loans, &mockEventPublisher{}, fixedClock(midJanuary), nil, discardLogger())
		_, err = uc.Execute(context.Background(), dto.PayLoanRequest{LoanID: id, Amount: dec("50")})

		assert.ErrorIs(t, err, model.ErrLoanRejected)
	})

	t.Run("unknown loan", func(t *testing.T) {
		uc := usecase.NewPayLoanUseCase(newLoanStore(), &mockEventPublisher{}, fixedClock(midJanuary), nil, discardLogger())

		_, err := uc.Execute(context.Background(), dto.PayLoanRequest{LoanID: "nope", Amount: dec("1")})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestLoanReads(t *testing.T) {
	loans := newLoanStore()
	id := createLoan(t, loans)
	pay := usecase.NewPayLoanUseCase(loans, &mockEventPublisher{}, fixedClock(midJanuary), nil, discardLogger())
	_, err := pay.Execute(context.Background(), dto.PayLoanRequest{LoanID: id, Amount: dec("150")})
	require.NoError(t, err)

	t.Run("get", func(t *testing.T) {
		resp, err := usecase.NewGetLoanUseCase(loans).Execute(context.Background(), dto.GetLoanRequest{LoanID: id})
		require.NoError(t, err)
		assert.True(t, dec("950").Equal(resp.TotalAmount))
	})

	t.Run("list by client", func(t *testing.T) {
		uc := usecase.NewListClientLoansUseCase(loans)

		resp, err := uc.Execute(context.Background(), dto.ListClientLoansRequest{ClientID: "client-1"})
		require.NoError(t, err)
		assert.Len(t, resp, 1)

		_, err = uc.Execute(context.Background(), dto.ListClientLoansRequest{})
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("payments", func(t *testing.T) {
		repo := &mockPaymentRepository{loanPayments: loans.payments}
		resp, err := usecase.NewListLoanPaymentsUseCase(repo).Execute(context.Background(), dto.ListLoanPaymentsRequest{LoanID: id})
		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.True(t, dec("150").Equal(resp[0].TotalAmount))
	})

	t.Run("history", func(t *testing.T) {
		repo := &mockLoanHistoryRepository{history: loans.history}
		resp, err := usecase.NewGetLoanHistoryUseCase(repo).Execute(context.Background(), dto.GetLoanHistoryRequest{LoanID: id})
		require.NoError(t, err)
		require.Len(t, resp, 2)
		assert.True(t, dec("1100").Equal(resp[0].TotalAmount))
		assert.True(t, dec("950").Equal(resp[1].TotalAmount))
		assert.True(t, dec("50").Equal(resp[1].CapitalPaid))
	})
}
