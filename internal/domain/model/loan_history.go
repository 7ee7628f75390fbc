package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanHistory is an append-only snapshot of a loan's balances, taken at
// creation and after every payment.
type LoanHistory struct {
	Timestamp      time.Time
	ID             string
	LoanID         string
	TotalAmount    decimal.Decimal
	InterestAmount decimal.Decimal
	CapitalPaid    decimal.Decimal
	InterestPaid   decimal.Decimal
	Amount         decimal.Decimal
}
