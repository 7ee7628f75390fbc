package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
)

func TestNewRepos(t *testing.T) {
	assert.NotNil(t, NewCreditRepo(nil))
	assert.NotNil(t, NewInstallmentRepo(nil))
	assert.NotNil(t, NewLoanRepo(nil))
	assert.NotNil(t, NewPaymentRepo(nil))
	assert.NotNil(t, NewLoanHistoryRepo(nil))
}

func TestNullableColumns(t *testing.T) {
	assert.Nil(t, nullDate(time.Time{}))
	d := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, d, *nullDate(d))
	assert.Equal(t, d, dateOrZero(nullDate(d)))
	assert.True(t, dateOrZero(nil).IsZero())

	assert.Nil(t, nullMethod(""))
	assert.Equal(t, "PLIN", *nullMethod(valueobject.PaymentMethodPlin))
	assert.Empty(t, stringOrEmpty(nil))
}

func TestNotFound(t *testing.T) {
	err := notFound(pgx.ErrNoRows, "loan", "abc")
	assert.ErrorIs(t, err, model.ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, notFound(other, "loan", "abc"))
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "i.id, i.credit_id, i.number", prefixed("i", "\n\tid, credit_id,\n\tnumber"))
}
