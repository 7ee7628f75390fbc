package testutil

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fixed inputs for deterministic credit tests: 1000.00 at 36% TEA over
// three installments, the first due on 2024-01-31.
var (
	TestClientID         = "client-0001"
	TestNow              = time.Date(2024, time.January, 2, 10, 0, 0, 0, time.UTC)
	TestFirstPaymentDate = time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	TestCapital          = decimal.RequireFromString("1000")
	TestTEA              = decimal.RequireFromString("36")
)
