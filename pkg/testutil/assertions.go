package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// AssertDecimal compares a decimal against its string form, ignoring
// trailing zeros so "25.9" equals "25.90".
func AssertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.True(t, decimal.RequireFromString(want).Equal(got),
		append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), expected)
	}
}
