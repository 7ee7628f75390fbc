package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/internal/domain/event"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
	"github.com/bibbank/credit-service/pkg/money"
)

// ---------------------------------------------------------------------------
// Credit aggregate root
// ---------------------------------------------------------------------------

// CreditTerms are the inputs of a credit: what the client borrows, at which
// annual effective rate, over how many monthly installments.
type CreditTerms struct {
	StartDate        time.Time
	FirstPaymentDate time.Time
	Currency         money.Currency
	ClientID         string
	CapitalAmount    decimal.Decimal
	TEA              decimal.Decimal
	GraceDays        int
	Installments     int
}

// CreditQuote is the result of pricing CreditTerms without creating a credit.
type CreditQuote struct {
	Schedule          Schedule
	MonthlyRate       decimal.Decimal
	GraceInterest     decimal.Decimal
	CapitalizedAmount decimal.Decimal
}

// EndDate is the due date of the final installment.
func (q CreditQuote) EndDate() time.Time {
	if len(q.Schedule.Entries) == 0 {
		return time.Time{}
	}
	return q.Schedule.Entries[len(q.Schedule.Entries)-1].DueDate
}

// QuoteCredit runs rate conversion, grace capitalization and schedule
// generation for terms.
func QuoteCredit(terms CreditTerms) (CreditQuote, error) {
	if terms.Installments < 1 {
		return CreditQuote{}, validationError("credit", "", "installments", ErrNonPositiveCount)
	}
	if !terms.CapitalAmount.IsPositive() {
		return CreditQuote{}, validationError("credit", "", "capital_amount", ErrNonPositivePrincipal)
	}

	rate, err := MonthlyRateFromTEA(terms.TEA)
	if err != nil {
		return CreditQuote{}, err
	}

	capitalized, graceInterest, err := CapitalizePrincipal(terms.CapitalAmount, rate, terms.GraceDays)
	if err != nil {
		return CreditQuote{}, err
	}

	schedule, err := GenerateSchedule(capitalized, rate, terms.Installments, terms.FirstPaymentDate)
	if err != nil {
		return CreditQuote{}, err
	}

	return CreditQuote{
		Schedule:          schedule,
		MonthlyRate:       rate,
		GraceInterest:     graceInterest,
		CapitalizedAmount: capitalized,
	}, nil
}

// Credit is an immutable aggregate. Mutations return a new copy.
type Credit struct {
	startDate         time.Time
	firstPaymentDate  time.Time
	endDate           time.Time
	createdAt         time.Time
	updatedAt         time.Time
	currency          money.Currency
	id                string
	code              string
	clientID          string
	status            valueobject.CreditStatus
	capitalAmount     decimal.Decimal
	tea               decimal.Decimal
	monthlyRate       decimal.Decimal
	graceInterest     decimal.Decimal
	capitalizedAmount decimal.Decimal
	installmentAmount decimal.Decimal
	installments      []Installment
	domainEvents      []event.DomainEvent
	graceDays         int
	installmentCount  int
	version           int
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewCredit prices terms and creates an ACTIVE credit owning its generated
// installments.
func NewCredit(terms CreditTerms, now time.Time) (Credit, error) {
	if terms.ClientID == "" {
		return Credit{}, validationError("credit", "", "client_id", ErrMissingClient)
	}

	quote, err := QuoteCredit(terms)
	if err != nil {
		return Credit{}, err
	}

	currency := terms.Currency
	if currency.IsZero() {
		currency = money.DefaultCurrency
	}
	start := terms.StartDate
	if start.IsZero() {
		start = now
	}

	id := uuid.New().String()
	installments := make([]Installment, 0, len(quote.Schedule.Entries))
	for _, entry := range quote.Schedule.Entries {
		installments = append(installments, newInstallment(id, entry, now))
	}

	credit := Credit{
		id:                id,
		code:              newCode("CRE"),
		clientID:          terms.ClientID,
		currency:          currency,
		capitalAmount:     terms.CapitalAmount,
		tea:               terms.TEA,
		monthlyRate:       quote.MonthlyRate,
		graceDays:         terms.GraceDays,
		graceInterest:     quote.GraceInterest,
		capitalizedAmount: quote.CapitalizedAmount,
		installmentAmount: quote.Schedule.FixedPayment,
		installmentCount:  terms.Installments,
		startDate:         DateOf(start),
		firstPaymentDate:  DateOf(terms.FirstPaymentDate),
		endDate:           quote.EndDate(),
		status:            valueobject.CreditStatusActive,
		installments:      installments,
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}

	credit.domainEvents = append(credit.domainEvents, event.NewCreditCreated(
		id, terms.ClientID, credit.code,
		terms.CapitalAmount, quote.CapitalizedAmount, currency.Code(),
		terms.TEA, quote.MonthlyRate, quote.Schedule.FixedPayment,
		terms.Installments, credit.firstPaymentDate, now,
	))

	return credit, nil
}

// ReconstructCredit rebuilds a Credit aggregate from persistence.
func ReconstructCredit(
	id, code, clientID string,
	currency money.Currency,
	capitalAmount, tea, monthlyRate decimal.Decimal,
	graceDays int,
	graceInterest, capitalizedAmount, installmentAmount decimal.Decimal,
	installmentCount int,
	startDate, firstPaymentDate, endDate time.Time,
	status valueobject.CreditStatus,
	installments []Installment,
	version int,
	createdAt, updatedAt time.Time,
) Credit {
	return Credit{
		id:                id,
		code:              code,
		clientID:          clientID,
		currency:          currency,
		capitalAmount:     capitalAmount,
		tea:               tea,
		monthlyRate:       monthlyRate,
		graceDays:         graceDays,
		graceInterest:     graceInterest,
		capitalizedAmount: capitalizedAmount,
		installmentAmount: installmentAmount,
		installmentCount:  installmentCount,
		startDate:         startDate,
		firstPaymentDate:  firstPaymentDate,
		endDate:           endDate,
		status:            status,
		installments:      installments,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

// creditStatusFor derives a credit's status from its installments.
// CANCELLED is terminal and never recomputed.
func creditStatusFor(
	current valueobject.CreditStatus,
	installments []Installment,
	today time.Time,
) valueobject.CreditStatus {
	if current.Equal(valueobject.CreditStatusCancelled) || len(installments) == 0 {
		return current
	}

	allPaid := true
	for _, inst := range installments {
		if inst.Status().IsPaid() {
			continue
		}
		allPaid = false
		if inst.IsOverdue(today) || inst.Status().Equal(valueobject.InstallmentStatusOverdue) {
			return valueobject.CreditStatusOverdue
		}
	}
	if allPaid {
		return valueobject.CreditStatusPaid
	}
	return valueobject.CreditStatusActive
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// RefreshStatus recomputes the status from the installments and records a
// CreditStatusChanged event when it moves.
func (c Credit) RefreshStatus(today, now time.Time) Credit {
	status := creditStatusFor(c.status, c.installments, today)
	if status.Equal(c.status) {
		return c
	}
	next := c
	next.status = status
	next.updatedAt = now
	next.domainEvents = copyEvents(c.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewCreditStatusChanged(
		c.id, c.status.String(), status.String(), now,
	))
	return next
}

// WithInstallments returns a copy holding the given installments, for
// callers that loaded them separately.
func (c Credit) WithInstallments(installments []Installment) Credit {
	next := c
	next.installments = installments
	return next
}

// Cancel transitions an ACTIVE credit with no payments to CANCELLED.
func (c Credit) Cancel(now time.Time) (Credit, error) {
	if !c.status.Equal(valueobject.CreditStatusActive) && !c.status.Equal(valueobject.CreditStatusOverdue) {
		return c, validationError("credit", c.id, "status", valueobject.ErrInvalidStatusTransition)
	}
	for _, inst := range c.installments {
		if inst.HasPayments() {
			return c, validationError("credit", c.id, "installments", ErrCreditHasPayments)
		}
	}
	next := c
	next.status = valueobject.CreditStatusCancelled
	next.updatedAt = now
	next.domainEvents = copyEvents(c.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewCreditCancelled(c.id, c.clientID, now))
	return next, nil
}

// AcceptsPayments reports whether installments of this credit may be paid.
func (c Credit) AcceptsPayments() bool {
	return !c.status.Equal(valueobject.CreditStatusCancelled)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (c Credit) ID() string                         { return c.id }
func (c Credit) Code() string                       { return c.code }
func (c Credit) ClientID() string                   { return c.clientID }
func (c Credit) Currency() money.Currency           { return c.currency }
func (c Credit) CapitalAmount() decimal.Decimal     { return c.capitalAmount }
func (c Credit) TEA() decimal.Decimal               { return c.tea }
func (c Credit) MonthlyRate() decimal.Decimal       { return c.monthlyRate }
func (c Credit) GraceDays() int                     { return c.graceDays }
func (c Credit) GraceInterest() decimal.Decimal     { return c.graceInterest }
func (c Credit) CapitalizedAmount() decimal.Decimal { return c.capitalizedAmount }
func (c Credit) InstallmentAmount() decimal.Decimal { return c.installmentAmount }
func (c Credit) InstallmentCount() int              { return c.installmentCount }
func (c Credit) StartDate() time.Time               { return c.startDate }
func (c Credit) FirstPaymentDate() time.Time        { return c.firstPaymentDate }
func (c Credit) EndDate() time.Time                 { return c.endDate }
func (c Credit) Status() valueobject.CreditStatus   { return c.status }
func (c Credit) Version() int                       { return c.version }
func (c Credit) CreatedAt() time.Time               { return c.createdAt }
func (c Credit) UpdatedAt() time.Time               { return c.updatedAt }
func (c Credit) DomainEvents() []event.DomainEvent  { return c.domainEvents }

// Installments returns a defensive copy of the installments.
func (c Credit) Installments() []Installment {
	if c.installments == nil {
		return nil
	}
	out := make([]Installment, len(c.installments))
	copy(out, c.installments)
	return out
}

// ClearEvents returns a copy with an empty event list.
func (c Credit) ClearEvents() Credit {
	next := c
	next.domainEvents = nil
	return next
}

// newCode builds a human-readable reference such as CRE-1A2B3C4D.
func newCode(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.New().String()[:8])
}
