package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Credit request DTOs
// ---------------------------------------------------------------------------

// CreateCreditRequest carries the terms of a new credit.
type CreateCreditRequest struct {
	ClientID         string          `json:"client_id"`
	CapitalAmount    decimal.Decimal `json:"capital_amount"`
	TEA              decimal.Decimal `json:"tea"`
	GraceDays        int             `json:"grace_days"`
	Installments     int             `json:"installments"`
	Currency         string          `json:"currency"`
	StartDate        time.Time       `json:"start_date"`
	FirstPaymentDate time.Time       `json:"first_payment_date"`
}

// SimulateScheduleRequest carries the terms of a schedule preview.
type SimulateScheduleRequest struct {
	CapitalAmount    decimal.Decimal `json:"capital_amount"`
	TEA              decimal.Decimal `json:"tea"`
	GraceDays        int             `json:"grace_days"`
	Installments     int             `json:"installments"`
	FirstPaymentDate time.Time       `json:"first_payment_date"`
}

// GetCreditRequest identifies a credit.
type GetCreditRequest struct {
	CreditID string `json:"credit_id"`
}

// ListClientCreditsRequest identifies a client.
type ListClientCreditsRequest struct {
	ClientID string `json:"client_id"`
}

// ListInstallmentsRequest lists the installments of a credit, optionally
// filtered by status.
type ListInstallmentsRequest struct {
	CreditID string `json:"credit_id"`
	Status   string `json:"status,omitempty"`
}

// GetInstallmentBalanceRequest identifies an installment.
type GetInstallmentBalanceRequest struct {
	InstallmentID string `json:"installment_id"`
}

// PayInstallmentRequest carries one payment against one installment.
type PayInstallmentRequest struct {
	InstallmentID string          `json:"installment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	PaidAt        time.Time       `json:"paid_at"`
}

// ListCreditPaymentsRequest identifies a credit.
type ListCreditPaymentsRequest struct {
	CreditID string `json:"credit_id"`
}

// CancelCreditRequest identifies a credit to cancel.
type CancelCreditRequest struct {
	CreditID string `json:"credit_id"`
}

// ---------------------------------------------------------------------------
// Loan request DTOs
// ---------------------------------------------------------------------------

// CreateLoanRequest carries the terms of a new loan.
type CreateLoanRequest struct {
	ClientID     string          `json:"client_id"`
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Currency     string          `json:"currency"`
	IssueDate    time.Time       `json:"issue_date"`
	DueDate      time.Time       `json:"due_date"`
}

// DecideLoanRequest approves or rejects a pending loan.
type DecideLoanRequest struct {
	LoanID  string `json:"loan_id"`
	Approve bool   `json:"approve"`
}

// PayLoanRequest carries a loan payment. Either Amount or the explicit
// InterestAmount/CapitalAmount split is used.
type PayLoanRequest struct {
	LoanID         string          `json:"loan_id"`
	Amount         decimal.Decimal `json:"amount"`
	InterestAmount decimal.Decimal `json:"interest_amount"`
	CapitalAmount  decimal.Decimal `json:"capital_amount"`
	Method         string          `json:"method"`
	PaidAt         time.Time       `json:"paid_at"`
}

// GetLoanRequest identifies a loan to retrieve.
type GetLoanRequest struct {
	LoanID string `json:"loan_id"`
}

// ListClientLoansRequest identifies a client.
type ListClientLoansRequest struct {
	ClientID string `json:"client_id"`
}

// ListLoanPaymentsRequest identifies a loan.
type ListLoanPaymentsRequest struct {
	LoanID string `json:"loan_id"`
}

// GetLoanHistoryRequest identifies a loan.
type GetLoanHistoryRequest struct {
	LoanID string `json:"loan_id"`
}

// ---------------------------------------------------------------------------
// Credit response DTOs
// ---------------------------------------------------------------------------

// AmortizationEntryResponse represents a single amortization schedule entry.
type AmortizationEntryResponse struct {
	Period           int             `json:"period"`
	DueDate          time.Time       `json:"due_date"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	Total            decimal.Decimal `json:"total"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// ScheduleResponse is the result of a schedule simulation.
type ScheduleResponse struct {
	MonthlyRate       decimal.Decimal             `json:"monthly_rate"`
	GraceInterest     decimal.Decimal             `json:"grace_interest"`
	CapitalizedAmount decimal.Decimal             `json:"capitalized_amount"`
	InstallmentAmount decimal.Decimal             `json:"installment_amount"`
	TotalInterest     decimal.Decimal             `json:"total_interest"`
	TotalAmount       decimal.Decimal             `json:"total_amount"`
	Entries           []AmortizationEntryResponse `json:"entries"`
}

// InstallmentResponse is the external representation of an installment.
type InstallmentResponse struct {
	ID                 string          `json:"id"`
	CreditID           string          `json:"credit_id"`
	Number             int             `json:"number"`
	DueDate            time.Time       `json:"due_date"`
	Amount             decimal.Decimal `json:"amount"`
	PrincipalDue       decimal.Decimal `json:"principal_due"`
	InterestDue        decimal.Decimal `json:"interest_due"`
	PrincipalPaid      decimal.Decimal `json:"principal_paid"`
	InterestPaid       decimal.Decimal `json:"interest_paid"`
	PrincipalRemaining decimal.Decimal `json:"principal_remaining"`
	InterestRemaining  decimal.Decimal `json:"interest_remaining"`
	Status             string          `json:"status"`
	PaymentDate        *time.Time      `json:"payment_date,omitempty"`
	PaymentMethod      string          `json:"payment_method,omitempty"`
}

// CreditResponse is the external representation of a credit.
type CreditResponse struct {
	ID                string                `json:"id"`
	Code              string                `json:"code"`
	ClientID          string                `json:"client_id"`
	Currency          string                `json:"currency"`
	CapitalAmount     decimal.Decimal       `json:"capital_amount"`
	TEA               decimal.Decimal       `json:"tea"`
	MonthlyRate       decimal.Decimal       `json:"monthly_rate"`
	GraceDays         int                   `json:"grace_days"`
	GraceInterest     decimal.Decimal       `json:"grace_interest"`
	CapitalizedAmount decimal.Decimal       `json:"capitalized_amount"`
	InstallmentAmount decimal.Decimal       `json:"installment_amount"`
	InstallmentCount  int                   `json:"installment_count"`
	StartDate         time.Time             `json:"start_date"`
	FirstPaymentDate  time.Time             `json:"first_payment_date"`
	EndDate           time.Time             `json:"end_date"`
	Status            string                `json:"status"`
	Installments      []InstallmentResponse `json:"installments,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// InstallmentBalanceResponse reports what is still owed on an installment.
type InstallmentBalanceResponse struct {
	InstallmentID      string          `json:"installment_id"`
	CreditID           string          `json:"credit_id"`
	Number             int             `json:"number"`
	DueDate            time.Time       `json:"due_date"`
	PrincipalRemaining decimal.Decimal `json:"principal_remaining"`
	InterestRemaining  decimal.Decimal `json:"interest_remaining"`
	TotalRemaining     decimal.Decimal `json:"total_remaining"`
	Status             string          `json:"status"`
	Overdue            bool            `json:"overdue"`
	DaysOverdue        int             `json:"days_overdue"`
}

// CreditPaymentResponse is the external representation of an installment
// payment record.
type CreditPaymentResponse struct {
	ID                string          `json:"id"`
	CreditID          string          `json:"credit_id"`
	InstallmentID     string          `json:"installment_id"`
	InstallmentNumber int             `json:"installment_number"`
	PrincipalAmount   decimal.Decimal `json:"principal_amount"`
	InterestAmount    decimal.Decimal `json:"interest_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Method            string          `json:"method"`
	PaidAt            time.Time       `json:"paid_at"`
}

// InstallmentPaymentResponse is the result of paying an installment.
type InstallmentPaymentResponse struct {
	Installment  InstallmentResponse   `json:"installment"`
	Payment      CreditPaymentResponse `json:"payment"`
	CreditStatus string                `json:"credit_status"`
}

// ---------------------------------------------------------------------------
// Loan response DTOs
// ---------------------------------------------------------------------------

// LoanResponse is the external representation of a loan.
type LoanResponse struct {
	ID                string          `json:"id"`
	Code              string          `json:"code"`
	ClientID          string          `json:"client_id"`
	Currency          string          `json:"currency"`
	Amount            decimal.Decimal `json:"amount"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	InterestAmount    decimal.Decimal `json:"interest_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	CapitalPaid       decimal.Decimal `json:"capital_paid"`
	InterestPaid      decimal.Decimal `json:"interest_paid"`
	RemainingCapital  decimal.Decimal `json:"remaining_capital"`
	RemainingInterest decimal.Decimal `json:"remaining_interest"`
	IssueDate         time.Time       `json:"issue_date"`
	DueDate           time.Time       `json:"due_date"`
	Status            string          `json:"status"`
	DaysOverdue       int             `json:"days_overdue"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// LoanPaymentResponse is the external representation of a loan payment.
type LoanPaymentResponse struct {
	ID              string          `json:"id"`
	LoanID          string          `json:"loan_id"`
	CapitalAmount   decimal.Decimal `json:"capital_amount"`
	InterestAmount  decimal.Decimal `json:"interest_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	Method          string          `json:"method"`
	PaidAt          time.Time       `json:"paid_at"`
}

// LoanPaymentResult is the result of paying a loan.
type LoanPaymentResult struct {
	Loan    LoanResponse        `json:"loan"`
	Payment LoanPaymentResponse `json:"payment"`
}

// LoanHistoryResponse is one balance snapshot of a loan.
type LoanHistoryResponse struct {
	ID             string          `json:"id"`
	LoanID         string          `json:"loan_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	InterestAmount decimal.Decimal `json:"interest_amount"`
	CapitalPaid    decimal.Decimal `json:"capital_paid"`
	InterestPaid   decimal.Decimal `json:"interest_paid"`
	Amount         decimal.Decimal `json:"amount"`
	Timestamp      time.Time       `json:"timestamp"`
}

// ---------------------------------------------------------------------------
// Maintenance
// ---------------------------------------------------------------------------

// SweepResult summarises one overdue sweep.
type SweepResult struct {
	InstallmentsMarked int `json:"installments_marked"`
	CreditsUpdated     int `json:"credits_updated"`
	LoansMarked        int `json:"loans_marked"`
}
