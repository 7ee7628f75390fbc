package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	aggregateCredit      = "Credit"
	aggregateInstallment = "Installment"
	aggregateLoan        = "Loan"
)

// ---------------------------------------------------------------------------
// Credit Events
// ---------------------------------------------------------------------------

// CreditCreated is raised when a credit and its schedule are generated.
type CreditCreated struct {
	events.BaseEvent
	ClientID          string          `json:"client_id"`
	Code              string          `json:"code"`
	CapitalAmount     decimal.Decimal `json:"capital_amount"`
	CapitalizedAmount decimal.Decimal `json:"capitalized_amount"`
	Currency          string          `json:"currency"`
	TEA               decimal.Decimal `json:"tea"`
	MonthlyRate       decimal.Decimal `json:"monthly_rate"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	Installments      int             `json:"installments"`
	FirstPaymentDate  time.Time       `json:"first_payment_date"`
}

func NewCreditCreated(
	creditID, clientID, code string,
	capital, capitalized decimal.Decimal, currency string,
	tea, monthlyRate, installmentAmount decimal.Decimal,
	installments int, firstPaymentDate, now time.Time,
) CreditCreated {
	return CreditCreated{
		BaseEvent:         events.NewBaseEvent("credit.created", creditID, aggregateCredit, now),
		ClientID:          clientID,
		Code:              code,
		CapitalAmount:     capital,
		CapitalizedAmount: capitalized,
		Currency:          currency,
		TEA:               tea,
		MonthlyRate:       monthlyRate,
		InstallmentAmount: installmentAmount,
		Installments:      installments,
		FirstPaymentDate:  firstPaymentDate,
	}
}

// CreditStatusChanged is raised when the aggregate status of a credit moves.
type CreditStatusChanged struct {
	events.BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

func NewCreditStatusChanged(creditID, from, to string, now time.Time) CreditStatusChanged {
	return CreditStatusChanged{
		BaseEvent: events.NewBaseEvent("credit.status_changed", creditID, aggregateCredit, now),
		From:      from,
		To:        to,
	}
}

// CreditCancelled is raised when an unpaid credit is cancelled.
type CreditCancelled struct {
	events.BaseEvent
	ClientID string `json:"client_id"`
}

func NewCreditCancelled(creditID, clientID string, now time.Time) CreditCancelled {
	return CreditCancelled{
		BaseEvent: events.NewBaseEvent("credit.cancelled", creditID, aggregateCredit, now),
		ClientID:  clientID,
	}
}

// InstallmentPaid is raised each time a payment is allocated to an installment.
type InstallmentPaid struct {
	events.BaseEvent
	CreditID           string          `json:"credit_id"`
	Number             int             `json:"number"`
	PrincipalApplied   decimal.Decimal `json:"principal_applied"`
	InterestApplied    decimal.Decimal `json:"interest_applied"`
	PrincipalRemaining decimal.Decimal `json:"principal_remaining"`
	InterestRemaining  decimal.Decimal `json:"interest_remaining"`
	Status             string          `json:"status"`
	Method             string          `json:"method"`
}

func NewInstallmentPaid(
	installmentID, creditID string, number int,
	principalApplied, interestApplied decimal.Decimal,
	principalRemaining, interestRemaining decimal.Decimal,
	status, method string, now time.Time,
) InstallmentPaid {
	return InstallmentPaid{
		BaseEvent:          events.NewBaseEvent("credit.installment_paid", installmentID, aggregateInstallment, now),
		CreditID:           creditID,
		Number:             number,
		PrincipalApplied:   principalApplied,
		InterestApplied:    interestApplied,
		PrincipalRemaining: principalRemaining,
		InterestRemaining:  interestRemaining,
		Status:             status,
		Method:             method,
	}
}

// ---------------------------------------------------------------------------
// Loan Events
// ---------------------------------------------------------------------------

// LoanCreated is raised when a loan is registered.
type LoanCreated struct {
	DueDate time.Time `json:"due_date"`
	events.BaseEvent
	ClientID       string          `json:"client_id"`
	Code           string          `json:"code"`
	Amount         decimal.Decimal `json:"amount"`
	InterestAmount decimal.Decimal `json:"interest_amount"`
	Currency       string          `json:"currency"`
}

func NewLoanCreated(
	loanID, clientID, code string,
	amount, interest decimal.Decimal, currency string,
	dueDate, now time.Time,
) LoanCreated {
	return LoanCreated{
		BaseEvent:      events.NewBaseEvent("loan.created", loanID, aggregateLoan, now),
		ClientID:       clientID,
		Code:           code,
		Amount:         amount,
		InterestAmount: interest,
		Currency:       currency,
		DueDate:        dueDate,
	}
}

// LoanDecided is raised when a pending loan is approved or rejected.
type LoanDecided struct {
	events.BaseEvent
	Status string `json:"status"`
}

func NewLoanDecided(loanID, status string, now time.Time) LoanDecided {
	return LoanDecided{
		BaseEvent: events.NewBaseEvent("loan.decided", loanID, aggregateLoan, now),
		Status:    status,
	}
}

// LoanPaymentApplied is raised when a payment reduces a loan's balances.
type LoanPaymentApplied struct {
	events.BaseEvent
	CapitalApplied  decimal.Decimal `json:"capital_applied"`
	InterestApplied decimal.Decimal `json:"interest_applied"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DaysOverdue     int             `json:"days_overdue"`
}

func NewLoanPaymentApplied(
	loanID string, capital, interest, total decimal.Decimal, daysOverdue int, now time.Time,
) LoanPaymentApplied {
	return LoanPaymentApplied{
		BaseEvent:       events.NewBaseEvent("loan.payment_applied", loanID, aggregateLoan, now),
		CapitalApplied:  capital,
		InterestApplied: interest,
		TotalAmount:     total,
		DaysOverdue:     daysOverdue,
	}
}

// LoanPaidOff is raised when a loan's total reaches zero.
type LoanPaidOff struct {
	events.BaseEvent
}

func NewLoanPaidOff(loanID string, now time.Time) LoanPaidOff {
	return LoanPaidOff{
		BaseEvent: events.NewBaseEvent("loan.paid_off", loanID, aggregateLoan, now),
	}
}

// LoanOverdue is raised when an approved loan passes its due date unpaid.
type LoanOverdue struct {
	events.BaseEvent
	DaysOverdue int             `json:"days_overdue"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func NewLoanOverdue(loanID string, daysOverdue int, total decimal.Decimal, now time.Time) LoanOverdue {
	return LoanOverdue{
		BaseEvent:   events.NewBaseEvent("loan.overdue", loanID, aggregateLoan, now),
		DaysOverdue: daysOverdue,
		TotalAmount: total,
	}
}
