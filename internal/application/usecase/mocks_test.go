package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/bibbank/credit-service/internal/domain/event"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
)

// --- Mock implementations ---

type mockCreditRepository struct {
	saveFunc     func(ctx context.Context, credit model.Credit) error
	findByIDFunc func(ctx context.Context, id string) (model.Credit, error)
	credits      map[string]model.Credit
	savedCredits []model.Credit
}

func (m *mockCreditRepository) Save(ctx context.Context, credit model.Credit) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, credit); err != nil {
			return err
		}
	}
	m.savedCredits = append(m.savedCredits, credit)
	if m.credits != nil {
		m.credits[credit.ID()] = credit.ClearEvents()
	}
	return nil
}

func (m *mockCreditRepository) FindByID(ctx context.Context, id string) (model.Credit, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	c, ok := m.credits[id]
	if !ok {
		return model.Credit{}, model.NewNotFoundError("credit", id)
	}
	return c, nil
}

func (m *mockCreditRepository) FindByClientID(_ context.Context, clientID string) ([]model.Credit, error) {
	var out []model.Credit
	for _, c := range m.credits {
		if c.ClientID() == clientID {
			out = append(out, c)
		}
	}
	return out, nil
}

// mockInstallmentRepository keeps installments inside the credits of a
// mockCreditRepository so both views stay consistent.
type mockInstallmentRepository struct {
	credits          *mockCreditRepository
	applyPaymentFunc func(ctx context.Context, id string, fn port.InstallmentPaymentFunc) (model.Installment, model.CreditPayment, error)
	updated          []model.Installment
	payments         []model.CreditPayment
}

func (m *mockInstallmentRepository) find(id string) (model.Installment, bool) {
	for _, c := range m.credits.credits {
		for _, inst := range c.Installments() {
			if inst.ID() == id {
				return inst, true
			}
		}
	}
	return model.Installment{}, false
}

func (m *mockInstallmentRepository) store(inst model.Installment) {
	c := m.credits.credits[inst.CreditID()]
	items := c.Installments()
	for i := range items {
		if items[i].ID() == inst.ID() {
			items[i] = inst.ClearEvents()
		}
	}
	m.credits.credits[c.ID()] = c.WithInstallments(items)
}

func (m *mockInstallmentRepository) FindByID(_ context.Context, id string) (model.Installment, error) {
	inst, ok := m.find(id)
	if !ok {
		return model.Installment{}, model.NewNotFoundError("installment", id)
	}
	return inst, nil
}

func (m *mockInstallmentRepository) FindByCreditID(_ context.Context, creditID string) ([]model.Installment, error) {
	c, ok := m.credits.credits[creditID]
	if !ok {
		return nil, nil
	}
	return c.Installments(), nil
}

func (m *mockInstallmentRepository) FindOverdue(_ context.Context, today time.Time) ([]model.Installment, error) {
	var out []model.Installment
	for _, c := range m.credits.credits {
		if !c.AcceptsPayments() {
			continue
		}
		for _, inst := range c.Installments() {
			if inst.IsOverdue(today) {
				out = append(out, inst)
			}
		}
	}
	return out, nil
}

func (m *mockInstallmentRepository) UpdateStatus(_ context.Context, inst model.Installment) error {
	m.updated = append(m.updated, inst)
	m.store(inst)
	return nil
}

func (m *mockInstallmentRepository) ApplyPayment(
	ctx context.Context, id string, fn port.InstallmentPaymentFunc,
) (model.Installment, model.CreditPayment, error) {
	if m.applyPaymentFunc != nil {
		return m.applyPaymentFunc(ctx, id, fn)
	}
	inst, ok := m.find(id)
	if !ok {
		return model.Installment{}, model.CreditPayment{}, model.NewNotFoundError("installment", id)
	}
	next, payment, err := fn(inst)
	if err != nil {
		return model.Installment{}, model.CreditPayment{}, err
	}
	if payment.TotalAmount.IsZero() {
		return next, payment, nil
	}
	m.store(next)
	m.payments = append(m.payments, payment)
	return next, payment, nil
}

type mockLoanRepository struct {
	saveFunc   func(ctx context.Context, loan model.Loan) error
	loans      map[string]model.Loan
	savedLoans []model.Loan
	payments   []model.LoanPayment
	history    []model.LoanHistory
}

func (m *mockLoanRepository) Save(ctx context.Context, loan model.Loan) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, loan); err != nil {
			return err
		}
	}
	m.savedLoans = append(m.savedLoans, loan)
	if _, exists := m.loans[loan.ID()]; !exists {
		m.history = append(m.history, loan.Snapshot())
	}
	if m.loans != nil {
		m.loans[loan.ID()] = loan.ClearEvents()
	}
	return nil
}

func (m *mockLoanRepository) FindByID(_ context.Context, id string) (model.Loan, error) {
	l, ok := m.loans[id]
	if !ok {
		return model.Loan{}, model.NewNotFoundError("loan", id)
	}
	return l, nil
}

func (m *mockLoanRepository) FindByClientID(_ context.Context, clientID string) ([]model.Loan, error) {
	var out []model.Loan
	for _, l := range m.loans {
		if l.ClientID() == clientID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLoanRepository) FindOverdueCandidates(_ context.Context, today time.Time) ([]model.Loan, error) {
	var out []model.Loan
	for _, l := range m.loans {
		if l.DueDate().Before(today) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLoanRepository) ApplyPayment(
	_ context.Context, id string, fn port.LoanPaymentFunc,
) (model.Loan, model.LoanPayment, error) {
	l, ok := m.loans[id]
	if !ok {
		return model.Loan{}, model.LoanPayment{}, model.NewNotFoundError("loan", id)
	}
	next, payment, err := fn(l)
	if err != nil {
		return model.Loan{}, model.LoanPayment{}, err
	}
	m.loans[id] = next.ClearEvents()
	m.payments = append(m.payments, payment)
	m.history = append(m.history, next.Snapshot())
	return next, payment, nil
}

type mockPaymentRepository struct {
	creditPayments []model.CreditPayment
	loanPayments   []model.LoanPayment
	err            error
}

func (m *mockPaymentRepository) FindByCreditID(_ context.Context, creditID string) ([]model.CreditPayment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.CreditPayment
	for _, p := range m.creditPayments {
		if p.CreditID == creditID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepository) FindByLoanID(_ context.Context, loanID string) ([]model.LoanPayment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.LoanPayment
	for _, p := range m.loanPayments {
		if p.LoanID == loanID {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockLoanHistoryRepository struct {
	history []model.LoanHistory
}

func (m *mockLoanHistoryRepository) FindByLoanID(_ context.Context, loanID string) ([]model.LoanHistory, error) {
	var out []model.LoanHistory
	for _, h := range m.history {
		if h.LoanID == loanID {
			out = append(out, h)
		}
	}
	return out, nil
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

func (m *mockEventPublisher) types() []string {
	out := make([]string, len(m.publishedEvents))
	for i, e := range m.publishedEvents {
		out[i] = e.EventType()
	}
	return out
}

// --- Fixtures ---

func fixedClock(t time.Time) port.Clock {
	return port.ClockFunc(func() time.Time { return t })
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCreditStore() *mockCreditRepository {
	return &mockCreditRepository{credits: make(map[string]model.Credit)}
}

func newLoanStore() *mockLoanRepository {
	return &mockLoanRepository{loans: make(map[string]model.Loan)}
}
