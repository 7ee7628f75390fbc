// Package money holds the precision policy shared by every monetary
// calculation in the service. Amounts are shopspring decimals; binary
// floating point is never used for money or rates.
package money

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

const (
	// CurrencyScale is the number of fractional digits kept for currency amounts.
	CurrencyScale int32 = 2

	// RateScale is the number of fractional digits kept for periodic rates.
	RateScale int32 = 10

	// IntermediateScale is used for divisions and powers whose result feeds
	// further rate math before any rounding to CurrencyScale or RateScale.
	IntermediateScale int32 = 20
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Round rounds an amount to CurrencyScale using HALF_UP.
// decimal.Round rounds half away from zero, which is HALF_UP for the
// non-negative amounts this service handles.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyScale)
}

// RoundRate rounds a rate to RateScale using HALF_UP.
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RateScale)
}

// Div divides a by b keeping IntermediateScale digits.
func Div(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, IntermediateScale)
}

// DivAmount divides a by b and rounds the quotient to CurrencyScale using HALF_UP.
func DivAmount(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, CurrencyScale)
}

// Percent converts a percentage (36 for 36%) into a fraction (0.36).
func Percent(p decimal.Decimal) decimal.Decimal {
	return p.Div(hundred)
}

// One is the decimal 1.
func One() decimal.Decimal { return one }

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// ParseAmount parses a currency amount and rejects values that carry more
// fractional digits than CurrencyScale.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -CurrencyScale && !d.Equal(Round(d)) {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: more than %d fractional digits", s, CurrencyScale)
	}
	return d, nil
}

// Format renders an amount with exactly CurrencyScale fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(CurrencyScale)
}

// ---------------------------------------------------------------------------
// Currency
// ---------------------------------------------------------------------------

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency is an ISO 4217 currency code.
type Currency struct {
	code string
}

// NewCurrency creates a Currency after validating the code is exactly 3 uppercase letters.
func NewCurrency(code string) (Currency, error) {
	if !currencyCodeRe.MatchString(code) {
		return Currency{}, fmt.Errorf("invalid currency code %q: must be exactly 3 uppercase letters", code)
	}
	return Currency{code: code}, nil
}

// MustCurrency creates a Currency and panics on error. Intended for package-level variable
// initialization only.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the ISO 4217 currency code.
func (c Currency) Code() string { return c.code }

// String returns the currency code.
func (c Currency) String() string { return c.code }

// IsZero reports whether the currency has not been set.
func (c Currency) IsZero() bool { return c.code == "" }

// Common currencies.
var (
	PEN = MustCurrency("PEN")
	USD = MustCurrency("USD")
)

// DefaultCurrency is applied when a request does not name one.
var DefaultCurrency = PEN
