package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/internal/domain/event"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
	"github.com/bibbank/credit-service/pkg/money"
)

// ---------------------------------------------------------------------------
// Installment entity (owned by a Credit)
// ---------------------------------------------------------------------------

// Installment is one scheduled payment of a credit. It is immutable;
// mutations return a new copy.
type Installment struct {
	dueDate            time.Time
	paymentDate        time.Time
	createdAt          time.Time
	updatedAt          time.Time
	id                 string
	creditID           string
	paymentMethod      valueobject.PaymentMethod
	status             valueobject.InstallmentStatus
	amount             decimal.Decimal
	principalDue       decimal.Decimal
	interestDue        decimal.Decimal
	principalPaid      decimal.Decimal
	interestPaid       decimal.Decimal
	principalRemaining decimal.Decimal
	interestRemaining  decimal.Decimal
	domainEvents       []event.DomainEvent
	number             int
	version            int
}

func newInstallment(creditID string, entry AmortizationEntry, now time.Time) Installment {
	return Installment{
		id:                 uuid.New().String(),
		creditID:           creditID,
		number:             entry.Period,
		dueDate:            entry.DueDate,
		amount:             entry.Total,
		principalDue:       entry.Principal,
		interestDue:        entry.Interest,
		principalPaid:      decimal.Zero,
		interestPaid:       decimal.Zero,
		principalRemaining: entry.Principal,
		interestRemaining:  entry.Interest,
		status:             valueobject.InstallmentStatusPending,
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}
}

// ReconstructInstallment rebuilds an Installment from persistence.
func ReconstructInstallment(
	id, creditID string,
	number int,
	dueDate time.Time,
	amount, principalDue, interestDue decimal.Decimal,
	principalPaid, interestPaid decimal.Decimal,
	principalRemaining, interestRemaining decimal.Decimal,
	status valueobject.InstallmentStatus,
	paymentDate time.Time,
	paymentMethod valueobject.PaymentMethod,
	version int,
	createdAt, updatedAt time.Time,
) Installment {
	return Installment{
		id:                 id,
		creditID:           creditID,
		number:             number,
		dueDate:            dueDate,
		amount:             amount,
		principalDue:       principalDue,
		interestDue:        interestDue,
		principalPaid:      principalPaid,
		interestPaid:       interestPaid,
		principalRemaining: principalRemaining,
		interestRemaining:  interestRemaining,
		status:             status,
		paymentDate:        paymentDate,
		paymentMethod:      paymentMethod,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

// installmentStatusFor is the single place where an installment's status is
// derived from its balances.
func installmentStatusFor(
	principalRemaining, interestRemaining decimal.Decimal,
	principalPaid, interestPaid decimal.Decimal,
	overdue bool,
) valueobject.InstallmentStatus {
	switch {
	case principalRemaining.IsZero() && interestRemaining.IsZero():
		return valueobject.InstallmentStatusPaid
	case overdue:
		return valueobject.InstallmentStatusOverdue
	case principalPaid.IsPositive() || interestPaid.IsPositive():
		return valueobject.InstallmentStatusPartiallyPaid
	default:
		return valueobject.InstallmentStatusPending
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// ApplyPayment allocates amount to the installment, interest first, and
// returns the updated installment with the payment record describing the
// split actually applied.
//
// A PAID installment rejects any payment. An amount above the outstanding
// balance is rejected, never truncated. A zero amount leaves the installment
// untouched.
func (i Installment) ApplyPayment(
	amount decimal.Decimal,
	method valueobject.PaymentMethod,
	paidAt, now time.Time,
) (Installment, CreditPayment, error) {
	if amount.IsNegative() {
		return i, CreditPayment{}, validationError("installment", i.id, "amount", ErrNegativeAmount)
	}
	if !onCurrencyScale(amount) {
		return i, CreditPayment{}, validationError("installment", i.id, "amount", ErrAmountPrecision)
	}
	if i.status.IsPaid() {
		return i, CreditPayment{}, validationError("installment", i.id, "status", ErrAlreadyPaid)
	}
	if amount.GreaterThan(i.Outstanding()) {
		return i, CreditPayment{}, validationError("installment", i.id, "amount", ErrExceedsOutstanding)
	}

	interestToPay := money.Min(amount, i.interestRemaining)
	principalToPay := amount.Sub(interestToPay)

	if amount.IsZero() {
		return i, newCreditPayment(i, principalToPay, interestToPay, method, paidAt, now), nil
	}

	next := i
	next.interestPaid = i.interestPaid.Add(interestToPay)
	next.principalPaid = i.principalPaid.Add(principalToPay)
	next.interestRemaining = i.interestDue.Sub(next.interestPaid)
	next.principalRemaining = i.principalDue.Sub(next.principalPaid)
	next.status = installmentStatusFor(
		next.principalRemaining, next.interestRemaining,
		next.principalPaid, next.interestPaid,
		false,
	)
	next.paymentDate = DateOf(paidAt)
	next.paymentMethod = method
	next.updatedAt = now

	next.domainEvents = copyEvents(i.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewInstallmentPaid(
		i.id, i.creditID, i.number,
		principalToPay, interestToPay,
		next.principalRemaining, next.interestRemaining,
		next.status.String(), method.String(), now,
	))

	return next, newCreditPayment(i, principalToPay, interestToPay, method, paidAt, now), nil
}

// MarkOverdue flags an unpaid installment whose due date has passed. The
// second return value reports whether anything changed.
func (i Installment) MarkOverdue(today, now time.Time) (Installment, bool) {
	if !i.IsOverdue(today) || i.status.Equal(valueobject.InstallmentStatusOverdue) {
		return i, false
	}
	next := i
	next.status = installmentStatusFor(
		i.principalRemaining, i.interestRemaining,
		i.principalPaid, i.interestPaid,
		true,
	)
	next.updatedAt = now
	return next, true
}

// IsOverdue reports whether the installment is unpaid past its due date.
func (i Installment) IsOverdue(today time.Time) bool {
	return !i.status.IsPaid() && DateOf(today).After(i.dueDate)
}

// HasPayments reports whether any amount has been applied.
func (i Installment) HasPayments() bool {
	return i.principalPaid.IsPositive() || i.interestPaid.IsPositive()
}

// Outstanding returns principal-remaining plus interest-remaining.
func (i Installment) Outstanding() decimal.Decimal {
	return i.principalRemaining.Add(i.interestRemaining)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (i Installment) ID() string                               { return i.id }
func (i Installment) CreditID() string                         { return i.creditID }
func (i Installment) Number() int                              { return i.number }
func (i Installment) DueDate() time.Time                       { return i.dueDate }
func (i Installment) Amount() decimal.Decimal                  { return i.amount }
func (i Installment) PrincipalDue() decimal.Decimal            { return i.principalDue }
func (i Installment) InterestDue() decimal.Decimal             { return i.interestDue }
func (i Installment) PrincipalPaid() decimal.Decimal           { return i.principalPaid }
func (i Installment) InterestPaid() decimal.Decimal            { return i.interestPaid }
func (i Installment) PrincipalRemaining() decimal.Decimal      { return i.principalRemaining }
func (i Installment) InterestRemaining() decimal.Decimal       { return i.interestRemaining }
func (i Installment) Status() valueobject.InstallmentStatus    { return i.status }
func (i Installment) PaymentDate() time.Time                   { return i.paymentDate }
func (i Installment) PaymentMethod() valueobject.PaymentMethod { return i.paymentMethod }
func (i Installment) Version() int                             { return i.version }
func (i Installment) CreatedAt() time.Time                     { return i.createdAt }
func (i Installment) UpdatedAt() time.Time                     { return i.updatedAt }
func (i Installment) DomainEvents() []event.DomainEvent        { return i.domainEvents }

// ClearEvents returns a copy with an empty event list.
func (i Installment) ClearEvents() Installment {
	next := i
	next.domainEvents = nil
	return next
}

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if src == nil {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
