package model

import (
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Error kinds
// ---------------------------------------------------------------------------

var (
	// ErrValidation marks caller-fixable input or state errors.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks ids that do not resolve.
	ErrNotFound = errors.New("not found")
	// ErrInvariantViolation marks a calculation defect. Processing must stop.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrConcurrentModification marks a lost optimistic-locking race.
	ErrConcurrentModification = errors.New("concurrent modification")
)

// ---------------------------------------------------------------------------
// Causes
// ---------------------------------------------------------------------------

var (
	ErrNegativeRate         = errors.New("rate must not be negative")
	ErrNegativeGrace        = errors.New("grace period must not be negative")
	ErrNonPositivePrincipal = errors.New("principal must be positive")
	ErrNonPositiveCount     = errors.New("installment count must be positive")
	ErrMissingDueDate       = errors.New("first due date is required")
	ErrMissingClient        = errors.New("client ID is required")
	ErrNegativeAmount       = errors.New("payment amount must not be negative")
	ErrZeroPayment          = errors.New("payment amount must be positive")
	ErrAmountPrecision      = errors.New("payment amount has more than two decimal places")
	ErrAmbiguousPayment     = errors.New("payment sets both an amount and an interest/capital split")
	ErrAlreadyPaid          = errors.New("already fully paid")
	ErrExceedsOutstanding   = errors.New("exceeds outstanding balance")
	ErrCreditCancelled      = errors.New("credit is cancelled")
	ErrCreditHasPayments    = errors.New("credit has registered payments")
	ErrLoanRejected         = errors.New("loan was rejected")
	ErrDueBeforeIssue       = errors.New("due date precedes issue date")
	ErrNegativeInterest     = errors.New("computed interest is negative")
	ErrNegativePrincipal    = errors.New("computed principal part is negative")
	ErrScheduleSum          = errors.New("schedule principal does not sum to capitalized principal")
)

// DomainError carries the kind of failure together with the entity and field
// it concerns so callers can act on it.
type DomainError struct {
	Kind   error
	Cause  error
	Entity string
	ID     string
	Field  string
	Detail string
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Entity != "" {
		b.WriteString(": ")
		b.WriteString(e.Entity)
		if e.ID != "" {
			fmt.Fprintf(&b, " %s", e.ID)
		}
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %s)", e.Field)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *DomainError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func validationError(entity, id, field string, cause error) error {
	return &DomainError{Kind: ErrValidation, Cause: cause, Entity: entity, ID: id, Field: field}
}

func invariantError(entity, id string, cause error, detail string) error {
	return &DomainError{Kind: ErrInvariantViolation, Cause: cause, Entity: entity, ID: id, Detail: detail}
}

// NewNotFoundError is used by repositories when an id does not resolve.
func NewNotFoundError(entity, id string) error {
	return &DomainError{Kind: ErrNotFound, Entity: entity, ID: id}
}

// NewConflictError is used by repositories when a versioned write loses a race.
func NewConflictError(entity, id string) error {
	return &DomainError{Kind: ErrConcurrentModification, Entity: entity, ID: id}
}

// NewValidationError reports caller input that could not be parsed at the
// application boundary.
func NewValidationError(entity, id, field string, cause error) error {
	return validationError(entity, id, field, cause)
}
