package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/internal/domain/valueobject"
	"github.com/bibbank/credit-service/pkg/money"
)

// CreditPayment is an immutable record of one payment allocated to one
// installment. It holds the split actually applied, not the requested one.
type CreditPayment struct {
	PaidAt            time.Time
	CreatedAt         time.Time
	ID                string
	CreditID          string
	InstallmentID     string
	Method            valueobject.PaymentMethod
	PrincipalAmount   decimal.Decimal
	InterestAmount    decimal.Decimal
	TotalAmount       decimal.Decimal
	InstallmentNumber int
}

func newCreditPayment(
	inst Installment,
	principal, interest decimal.Decimal,
	method valueobject.PaymentMethod,
	paidAt, now time.Time,
) CreditPayment {
	return CreditPayment{
		ID:                uuid.New().String(),
		CreditID:          inst.creditID,
		InstallmentID:     inst.id,
		InstallmentNumber: inst.number,
		PrincipalAmount:   principal,
		InterestAmount:    interest,
		TotalAmount:       principal.Add(interest),
		Method:            method,
		PaidAt:            DateOf(paidAt),
		CreatedAt:         now,
	}
}

// LoanPayment is an immutable record of one payment applied to a loan.
type LoanPayment struct {
	PaidAt          time.Time
	CreatedAt       time.Time
	ID              string
	LoanID          string
	Method          valueobject.PaymentMethod
	CapitalAmount   decimal.Decimal
	InterestAmount  decimal.Decimal
	TotalAmount     decimal.Decimal
	RequestedAmount decimal.Decimal
}

// LoanPaymentRequest describes an incoming loan payment. A positive Amount is
// split interest-first; otherwise the explicit Interest and Capital
// components are used. Setting both forms is rejected. Each part is capped to
// the corresponding remaining balance.
type LoanPaymentRequest struct {
	PaidAt   time.Time
	Method   valueobject.PaymentMethod
	Amount   decimal.Decimal
	Interest decimal.Decimal
	Capital  decimal.Decimal
}

func (r LoanPaymentRequest) hasSplit() bool {
	return !r.Interest.IsZero() || !r.Capital.IsZero()
}

func (r LoanPaymentRequest) atCurrencyScale() bool {
	return onCurrencyScale(r.Amount) && onCurrencyScale(r.Interest) && onCurrencyScale(r.Capital)
}

func onCurrencyScale(d decimal.Decimal) bool {
	return d.Equal(money.Round(d))
}

func (r LoanPaymentRequest) requested() decimal.Decimal {
	if r.Amount.IsPositive() {
		return r.Amount
	}
	return r.Interest.Add(r.Capital)
}
