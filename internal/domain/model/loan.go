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
// Loan aggregate root (single-balance lending product)
// ---------------------------------------------------------------------------

// LoanTerms are the inputs of a loan. InterestRate is a simple percentage
// charged once over the whole term.
type LoanTerms struct {
	IssueDate    time.Time
	DueDate      time.Time
	Currency     money.Currency
	ClientID     string
	Amount       decimal.Decimal
	InterestRate decimal.Decimal
}

// Loan is an immutable aggregate. Mutations return a new copy.
type Loan struct {
	issueDate         time.Time
	dueDate           time.Time
	createdAt         time.Time
	updatedAt         time.Time
	currency          money.Currency
	id                string
	code              string
	clientID          string
	status            valueobject.LoanStatus
	amount            decimal.Decimal
	interestRate      decimal.Decimal
	interestAmount    decimal.Decimal
	totalAmount       decimal.Decimal
	capitalPaid       decimal.Decimal
	interestPaid      decimal.Decimal
	remainingCapital  decimal.Decimal
	remainingInterest decimal.Decimal
	domainEvents      []event.DomainEvent
	daysOverdue       int
	version           int
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoan registers a PENDING loan. Interest is computed once as
// round(amount × rate / 100) and the remaining balances start at the
// principal and that interest.
func NewLoan(terms LoanTerms, now time.Time) (Loan, error) {
	switch {
	case terms.ClientID == "":
		return Loan{}, validationError("loan", "", "client_id", ErrMissingClient)
	case !terms.Amount.IsPositive():
		return Loan{}, validationError("loan", "", "amount", ErrNonPositivePrincipal)
	case terms.InterestRate.IsNegative():
		return Loan{}, validationError("loan", "", "interest_rate", ErrNegativeRate)
	case terms.DueDate.IsZero():
		return Loan{}, validationError("loan", "", "due_date", ErrMissingDueDate)
	}

	issue := terms.IssueDate
	if issue.IsZero() {
		issue = now
	}
	issue = DateOf(issue)
	due := DateOf(terms.DueDate)
	if due.Before(issue) {
		return Loan{}, validationError("loan", "", "due_date", ErrDueBeforeIssue)
	}

	currency := terms.Currency
	if currency.IsZero() {
		currency = money.DefaultCurrency
	}

	interest := money.Round(terms.Amount.Mul(money.Percent(terms.InterestRate)))
	id := uuid.New().String()

	loan := Loan{
		id:                id,
		code:              newCode("LOAN"),
		clientID:          terms.ClientID,
		currency:          currency,
		amount:            terms.Amount,
		interestRate:      terms.InterestRate,
		interestAmount:    interest,
		totalAmount:       terms.Amount.Add(interest),
		capitalPaid:       decimal.Zero,
		interestPaid:      decimal.Zero,
		remainingCapital:  terms.Amount,
		remainingInterest: interest,
		issueDate:         issue,
		dueDate:           due,
		status:            valueobject.LoanStatusPending,
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}

	loan.domainEvents = append(loan.domainEvents, event.NewLoanCreated(
		id, terms.ClientID, loan.code, terms.Amount, interest, currency.Code(), due, now,
	))

	return loan, nil
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(
	id, code, clientID string,
	currency money.Currency,
	amount, interestRate, interestAmount, totalAmount decimal.Decimal,
	capitalPaid, interestPaid decimal.Decimal,
	remainingCapital, remainingInterest decimal.Decimal,
	issueDate, dueDate time.Time,
	status valueobject.LoanStatus,
	daysOverdue int,
	version int,
	createdAt, updatedAt time.Time,
) Loan {
	return Loan{
		id:                id,
		code:              code,
		clientID:          clientID,
		currency:          currency,
		amount:            amount,
		interestRate:      interestRate,
		interestAmount:    interestAmount,
		totalAmount:       totalAmount,
		capitalPaid:       capitalPaid,
		interestPaid:      interestPaid,
		remainingCapital:  remainingCapital,
		remainingInterest: remainingInterest,
		issueDate:         issueDate,
		dueDate:           dueDate,
		status:            status,
		daysOverdue:       daysOverdue,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

// loanStatusFor derives a loan's status after a balance change. A zero total
// is PAID. An approved loan past its due date is OVERDUE. Anything else keeps
// its current status.
func loanStatusFor(
	current valueobject.LoanStatus,
	remainingCapital, remainingInterest decimal.Decimal,
	overdue bool,
) valueobject.LoanStatus {
	switch {
	case remainingCapital.Add(remainingInterest).IsZero():
		return valueobject.LoanStatusPaid
	case overdue && (current.Equal(valueobject.LoanStatusApproved) || current.Equal(valueobject.LoanStatusOverdue)):
		return valueobject.LoanStatusOverdue
	default:
		return current
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Approve transitions PENDING -> APPROVED.
func (l Loan) Approve(now time.Time) (Loan, error) {
	return l.decide(valueobject.LoanStatusApproved, now)
}

// Reject transitions PENDING -> REJECTED.
func (l Loan) Reject(now time.Time) (Loan, error) {
	return l.decide(valueobject.LoanStatusRejected, now)
}

func (l Loan) decide(to valueobject.LoanStatus, now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusPending) {
		return l, validationError("loan", l.id, "status", valueobject.ErrInvalidStatusTransition)
	}
	next := l
	next.status = to
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanDecided(l.id, to.String(), now))
	return next, nil
}

// ApplyPayment reduces the loan balances interest first. Each component is
// capped to its remaining balance; the excess is dropped, not rejected.
// daysOverdue is refreshed from today before allocation.
func (l Loan) ApplyPayment(req LoanPaymentRequest, today, now time.Time) (Loan, LoanPayment, error) {
	switch {
	case l.status.Equal(valueobject.LoanStatusRejected):
		return l, LoanPayment{}, validationError("loan", l.id, "status", ErrLoanRejected)
	case l.status.Equal(valueobject.LoanStatusPaid):
		return l, LoanPayment{}, validationError("loan", l.id, "status", ErrAlreadyPaid)
	case req.Amount.IsNegative() || req.Interest.IsNegative() || req.Capital.IsNegative():
		return l, LoanPayment{}, validationError("loan", l.id, "amount", ErrNegativeAmount)
	case req.Amount.IsPositive() && req.hasSplit():
		return l, LoanPayment{}, validationError("loan", l.id, "amount", ErrAmbiguousPayment)
	case !req.atCurrencyScale():
		return l, LoanPayment{}, validationError("loan", l.id, "amount", ErrAmountPrecision)
	case !req.requested().IsPositive():
		return l, LoanPayment{}, validationError("loan", l.id, "amount", ErrZeroPayment)
	}

	next := l
	next.daysOverdue = l.overdueDays(today)

	var interestApplied, capitalApplied decimal.Decimal
	if req.Amount.IsPositive() {
		interestApplied = money.Min(req.Amount, l.remainingInterest)
		capitalApplied = money.Min(req.Amount.Sub(interestApplied), l.remainingCapital)
	} else {
		interestApplied = money.Min(req.Interest, l.remainingInterest)
		capitalApplied = money.Min(req.Capital, l.remainingCapital)
	}

	next.interestPaid = l.interestPaid.Add(interestApplied)
	next.capitalPaid = l.capitalPaid.Add(capitalApplied)
	next.remainingInterest = l.remainingInterest.Sub(interestApplied)
	next.remainingCapital = l.remainingCapital.Sub(capitalApplied)
	next.totalAmount = next.remainingCapital.Add(next.remainingInterest)
	next.status = loanStatusFor(l.status, next.remainingCapital, next.remainingInterest, next.daysOverdue > 0)
	next.updatedAt = now

	total := capitalApplied.Add(interestApplied)
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanPaymentApplied(
		l.id, capitalApplied, interestApplied, total, next.daysOverdue, now,
	))
	if next.status.Equal(valueobject.LoanStatusPaid) {
		next.domainEvents = append(next.domainEvents, event.NewLoanPaidOff(l.id, now))
	}

	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = today
	}
	method := req.Method
	if method == "" {
		method = valueobject.PaymentMethodCash
	}

	payment := LoanPayment{
		ID:              uuid.New().String(),
		LoanID:          l.id,
		Method:          method,
		CapitalAmount:   capitalApplied,
		InterestAmount:  interestApplied,
		TotalAmount:     total,
		RequestedAmount: req.requested(),
		PaidAt:          DateOf(paidAt),
		CreatedAt:       now,
	}
	return next, payment, nil
}

// MarkOverdue moves an approved loan past its due date to OVERDUE and
// refreshes daysOverdue. The second return value reports whether anything
// changed.
func (l Loan) MarkOverdue(today, now time.Time) (Loan, bool) {
	if !l.status.Equal(valueobject.LoanStatusApproved) && !l.status.Equal(valueobject.LoanStatusOverdue) {
		return l, false
	}
	days := l.overdueDays(today)
	if days == 0 || days == l.daysOverdue {
		return l, false
	}

	next := l
	next.daysOverdue = days
	next.status = valueobject.LoanStatusOverdue
	next.updatedAt = now
	if !l.status.Equal(valueobject.LoanStatusOverdue) {
		next.domainEvents = copyEvents(l.domainEvents)
		next.domainEvents = append(next.domainEvents, event.NewLoanOverdue(l.id, days, l.totalAmount, now))
	}
	return next, true
}

// Snapshot captures the loan's aggregate balances as a history entry.
func (l Loan) Snapshot() LoanHistory {
	return LoanHistory{
		ID:             uuid.New().String(),
		LoanID:         l.id,
		TotalAmount:    l.totalAmount,
		InterestAmount: l.interestAmount,
		CapitalPaid:    l.capitalPaid,
		InterestPaid:   l.interestPaid,
		Amount:         l.amount,
		Timestamp:      l.updatedAt,
	}
}

func (l Loan) overdueDays(today time.Time) int {
	if !DateOf(today).After(l.dueDate) {
		return l.daysOverdue
	}
	return DaysBetween(l.dueDate, today)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string                         { return l.id }
func (l Loan) Code() string                       { return l.code }
func (l Loan) ClientID() string                   { return l.clientID }
func (l Loan) Currency() money.Currency           { return l.currency }
func (l Loan) Amount() decimal.Decimal            { return l.amount }
func (l Loan) InterestRate() decimal.Decimal      { return l.interestRate }
func (l Loan) InterestAmount() decimal.Decimal    { return l.interestAmount }
func (l Loan) TotalAmount() decimal.Decimal       { return l.totalAmount }
func (l Loan) CapitalPaid() decimal.Decimal       { return l.capitalPaid }
func (l Loan) InterestPaid() decimal.Decimal      { return l.interestPaid }
func (l Loan) RemainingCapital() decimal.Decimal  { return l.remainingCapital }
func (l Loan) RemainingInterest() decimal.Decimal { return l.remainingInterest }
func (l Loan) IssueDate() time.Time               { return l.issueDate }
func (l Loan) DueDate() time.Time                 { return l.dueDate }
func (l Loan) Status() valueobject.LoanStatus     { return l.status }
func (l Loan) DaysOverdue() int                   { return l.daysOverdue }
func (l Loan) Version() int                       { return l.version }
func (l Loan) CreatedAt() time.Time               { return l.createdAt }
func (l Loan) UpdatedAt() time.Time               { return l.updatedAt }
func (l Loan) DomainEvents() []event.DomainEvent  { return l.domainEvents }

// ClearEvents returns a copy with an empty event list.
func (l Loan) ClearEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}
