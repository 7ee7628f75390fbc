package port

import (
	"context"
	"time"

	"github.com/bibbank/credit-service/internal/domain/event"
	"github.com/bibbank/credit-service/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// CreditRepository persists credits together with their installments.
// Save inserts a new credit with its whole schedule, or updates the status
// of an existing one guarded by its version.
type CreditRepository interface {
	Save(ctx context.Context, credit model.Credit) error
	FindByID(ctx context.Context, id string) (model.Credit, error)
	FindByClientID(ctx context.Context, clientID string) ([]model.Credit, error)
}

// InstallmentPaymentFunc mutates a locked installment and returns the new
// state with the payment record to store.
type InstallmentPaymentFunc func(model.Installment) (model.Installment, model.CreditPayment, error)

// InstallmentRepository reads installments and serialises payments on them.
type InstallmentRepository interface {
	FindByID(ctx context.Context, id string) (model.Installment, error)
	FindByCreditID(ctx context.Context, creditID string) ([]model.Installment, error)
	// FindOverdue returns unpaid installments of live credits due before today.
	FindOverdue(ctx context.Context, today time.Time) ([]model.Installment, error)
	UpdateStatus(ctx context.Context, inst model.Installment) error
	// ApplyPayment locks the installment row, runs fn on it and persists the
	// result and the payment record in the same transaction.
	ApplyPayment(ctx context.Context, id string, fn InstallmentPaymentFunc) (model.Installment, model.CreditPayment, error)
}

// LoanPaymentFunc mutates a locked loan and returns the new state with the
// payment record to store.
type LoanPaymentFunc func(model.Loan) (model.Loan, model.LoanPayment, error)

// LoanRepository persists loans. Save writes the first history snapshot
// when the loan is inserted.
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, id string) (model.Loan, error)
	FindByClientID(ctx context.Context, clientID string) ([]model.Loan, error)
	// FindOverdueCandidates returns approved or overdue loans due before today.
	FindOverdueCandidates(ctx context.Context, today time.Time) ([]model.Loan, error)
	// ApplyPayment locks the loan row, runs fn on it and persists the
	// result, the payment record and a history snapshot atomically.
	ApplyPayment(ctx context.Context, id string, fn LoanPaymentFunc) (model.Loan, model.LoanPayment, error)
}

// PaymentRepository reads the immutable payment records.
type PaymentRepository interface {
	FindByCreditID(ctx context.Context, creditID string) ([]model.CreditPayment, error)
	FindByLoanID(ctx context.Context, loanID string) ([]model.LoanPayment, error)
}

// LoanHistoryRepository reads the append-only loan snapshots.
type LoanHistoryRepository interface {
	FindByLoanID(ctx context.Context, loanID string) ([]model.LoanHistory, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

// Clock supplies the current instant. Overdue arithmetic reads today from it.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })
