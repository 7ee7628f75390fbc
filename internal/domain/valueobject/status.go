package valueobject

import (
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// InstallmentStatus – immutable value object
// ---------------------------------------------------------------------------

// InstallmentStatus represents the payment state of one scheduled installment.
type InstallmentStatus struct {
	value string
}

const (
	installmentStatusPending       = "PENDING"
	installmentStatusPartiallyPaid = "PARTIALLY_PAID"
	installmentStatusPaid          = "PAID"
	installmentStatusOverdue       = "OVERDUE"
)

var (
	InstallmentStatusPending       = InstallmentStatus{value: installmentStatusPending}
	InstallmentStatusPartiallyPaid = InstallmentStatus{value: installmentStatusPartiallyPaid}
	InstallmentStatusPaid          = InstallmentStatus{value: installmentStatusPaid}
	InstallmentStatusOverdue       = InstallmentStatus{value: installmentStatusOverdue}
)

var validInstallmentStatuses = map[string]InstallmentStatus{
	installmentStatusPending:       InstallmentStatusPending,
	installmentStatusPartiallyPaid: InstallmentStatusPartiallyPaid,
	installmentStatusPaid:          InstallmentStatusPaid,
	installmentStatusOverdue:       InstallmentStatusOverdue,
}

// legacy names still sent by older clients and stored by older releases
var legacyInstallmentStatuses = map[string]InstallmentStatus{
	"PENDIENTE":           InstallmentStatusPending,
	"PARCIALMENTE_PAGADA": InstallmentStatusPartiallyPaid,
	"PAGADA":              InstallmentStatusPaid,
	"PAGADO":              InstallmentStatusPaid,
	"VENCIDA":             InstallmentStatusOverdue,
	"VENCIDO":             InstallmentStatusOverdue,
}

// NewInstallmentStatus creates an InstallmentStatus from its canonical name.
func NewInstallmentStatus(s string) (InstallmentStatus, error) {
	v, ok := validInstallmentStatuses[s]
	if !ok {
		return InstallmentStatus{}, fmt.Errorf("invalid installment status: %q", s)
	}
	return v, nil
}

// ParseInstallmentStatus accepts canonical and legacy names, case-insensitively.
func ParseInstallmentStatus(s string) (InstallmentStatus, error) {
	key := normalise(s)
	if v, ok := validInstallmentStatuses[key]; ok {
		return v, nil
	}
	if v, ok := legacyInstallmentStatuses[key]; ok {
		return v, nil
	}
	return InstallmentStatus{}, fmt.Errorf("invalid installment status: %q", s)
}

// String returns the string representation of the status.
func (s InstallmentStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s InstallmentStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s InstallmentStatus) Equal(other InstallmentStatus) bool {
	return s.value == other.value
}

// IsPaid reports whether the installment is settled.
func (s InstallmentStatus) IsPaid() bool { return s.value == installmentStatusPaid }

// ---------------------------------------------------------------------------
// CreditStatus – immutable value object
// ---------------------------------------------------------------------------

// CreditStatus represents the aggregate state of a credit and its schedule.
type CreditStatus struct {
	value string
}

const (
	creditStatusActive    = "ACTIVE"
	creditStatusPaid      = "PAID"
	creditStatusOverdue   = "OVERDUE"
	creditStatusCancelled = "CANCELLED"
)

var (
	CreditStatusActive    = CreditStatus{value: creditStatusActive}
	CreditStatusPaid      = CreditStatus{value: creditStatusPaid}
	CreditStatusOverdue   = CreditStatus{value: creditStatusOverdue}
	CreditStatusCancelled = CreditStatus{value: creditStatusCancelled}
)

var validCreditStatuses = map[string]CreditStatus{
	creditStatusActive:    CreditStatusActive,
	creditStatusPaid:      CreditStatusPaid,
	creditStatusOverdue:   CreditStatusOverdue,
	creditStatusCancelled: CreditStatusCancelled,
}

var legacyCreditStatuses = map[string]CreditStatus{
	"ACTIVO":    CreditStatusActive,
	"PAGADO":    CreditStatusPaid,
	"VENCIDO":   CreditStatusOverdue,
	"CANCELADO": CreditStatusCancelled,
}

// NewCreditStatus creates a CreditStatus from its canonical name.
func NewCreditStatus(s string) (CreditStatus, error) {
	v, ok := validCreditStatuses[s]
	if !ok {
		return CreditStatus{}, fmt.Errorf("invalid credit status: %q", s)
	}
	return v, nil
}

// ParseCreditStatus accepts canonical and legacy names, case-insensitively.
func ParseCreditStatus(s string) (CreditStatus, error) {
	key := normalise(s)
	if v, ok := validCreditStatuses[key]; ok {
		return v, nil
	}
	if v, ok := legacyCreditStatuses[key]; ok {
		return v, nil
	}
	return CreditStatus{}, fmt.Errorf("invalid credit status: %q", s)
}

// String returns the string representation of the status.
func (s CreditStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s CreditStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s CreditStatus) Equal(other CreditStatus) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a simple-interest loan.
type LoanStatus struct {
	value string
}

const (
	loanStatusPending  = "PENDING"
	loanStatusApproved = "APPROVED"
	loanStatusRejected = "REJECTED"
	loanStatusPaid     = "PAID"
	loanStatusOverdue  = "OVERDUE"
)

var (
	LoanStatusPending  = LoanStatus{value: loanStatusPending}
	LoanStatusApproved = LoanStatus{value: loanStatusApproved}
	LoanStatusRejected = LoanStatus{value: loanStatusRejected}
	LoanStatusPaid     = LoanStatus{value: loanStatusPaid}
	LoanStatusOverdue  = LoanStatus{value: loanStatusOverdue}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusPending:  LoanStatusPending,
	loanStatusApproved: LoanStatusApproved,
	loanStatusRejected: LoanStatusRejected,
	loanStatusPaid:     LoanStatusPaid,
	loanStatusOverdue:  LoanStatusOverdue,
}

var legacyLoanStatuses = map[string]LoanStatus{
	"PENDIENTE": LoanStatusPending,
	"APROBADO":  LoanStatusApproved,
	"RECHAZADO": LoanStatusRejected,
	"PAGADO":    LoanStatusPaid,
	"VENCIDO":   LoanStatusOverdue,
}

// NewLoanStatus creates a LoanStatus from its canonical name.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

// ParseLoanStatus accepts canonical and legacy names, case-insensitively.
func ParseLoanStatus(s string) (LoanStatus, error) {
	key := normalise(s)
	if v, ok := validLoanStatuses[key]; ok {
		return v, nil
	}
	if v, ok := legacyLoanStatuses[key]; ok {
		return v, nil
	}
	return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

func normalise(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
