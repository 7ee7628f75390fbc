package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
	"github.com/bibbank/credit-service/pkg/money"
)

const (
	dateLayout      = time.DateOnly
	timestampLayout = time.RFC3339
)

// Executor is satisfied by every application use case.
type Executor[Req, Resp any] interface {
	Execute(ctx context.Context, req Req) (Resp, error)
}

// UseCases groups the operations the handler exposes.
type UseCases struct {
	CreateCredit          Executor[dto.CreateCreditRequest, dto.CreditResponse]
	SimulateSchedule      Executor[dto.SimulateScheduleRequest, dto.ScheduleResponse]
	GetCredit             Executor[dto.GetCreditRequest, dto.CreditResponse]
	ListClientCredits     Executor[dto.ListClientCreditsRequest, []dto.CreditResponse]
	ListInstallments      Executor[dto.ListInstallmentsRequest, []dto.InstallmentResponse]
	GetInstallmentBalance Executor[dto.GetInstallmentBalanceRequest, dto.InstallmentBalanceResponse]
	PayInstallment        Executor[dto.PayInstallmentRequest, dto.InstallmentPaymentResponse]
	ListCreditPayments    Executor[dto.ListCreditPaymentsRequest, []dto.CreditPaymentResponse]
	CancelCredit          Executor[dto.CancelCreditRequest, dto.CreditResponse]
	CreateLoan            Executor[dto.CreateLoanRequest, dto.LoanResponse]
	DecideLoan            Executor[dto.DecideLoanRequest, dto.LoanResponse]
	PayLoan               Executor[dto.PayLoanRequest, dto.LoanPaymentResult]
	GetLoan               Executor[dto.GetLoanRequest, dto.LoanResponse]
	ListClientLoans       Executor[dto.ListClientLoansRequest, []dto.LoanResponse]
	ListLoanPayments      Executor[dto.ListLoanPaymentsRequest, []dto.LoanPaymentResponse]
	GetLoanHistory        Executor[dto.GetLoanHistoryRequest, []dto.LoanHistoryResponse]
}

// CreditHandler translates gRPC messages to use-case DTOs and back.
type CreditHandler struct {
	UnimplementedCreditServiceServer
	uc UseCases
}

// NewCreditHandler creates a new handler with all use-case dependencies.
func NewCreditHandler(uc UseCases) *CreditHandler {
	return &CreditHandler{uc: uc}
}

var _ CreditServiceServer = (*CreditHandler)(nil)

// ---------------------------------------------------------------------------
// Credits
// ---------------------------------------------------------------------------

func (h *CreditHandler) CreateCredit(ctx context.Context, req *CreateCreditRequest) (*Credit, error) {
	var p parser
	in := dto.CreateCreditRequest{
		ClientID:         req.ClientID,
		CapitalAmount:    p.amount("capital_amount", req.CapitalAmount),
		TEA:              p.rate("tea", req.TEA),
		GraceDays:        int(req.GraceDays),
		Installments:     int(req.Installments),
		Currency:         req.Currency,
		StartDate:        p.optionalDate("start_date", req.StartDate),
		FirstPaymentDate: p.date("first_payment_date", req.FirstPaymentDate),
	}
	if p.err != nil {
		return nil, p.err
	}
	resp, err := h.uc.CreateCredit.Execute(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return toCredit(resp), nil
}

func (h *CreditHandler) SimulateSchedule(ctx context.Context, req *SimulateScheduleRequest) (*Schedule, error) {
	var p parser
	in := dto.SimulateScheduleRequest{
		CapitalAmount:    p.amount("capital_amount", req.CapitalAmount),
		TEA:              p.rate("tea", req.TEA),
		GraceDays:        int(req.GraceDays),
		Installments:     int(req.Installments),
		FirstPaymentDate: p.date("first_payment_date", req.FirstPaymentDate),
	}
	if p.err != nil {
		return nil, p.err
	}
	resp, err := h.uc.SimulateSchedule.Execute(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSchedule(resp), nil
}

func (h *CreditHandler) GetCredit(ctx context.Context, req *GetCreditRequest) (*Credit, error) {
	if err := required("credit_id", req.CreditID); err != nil {
		return nil, err
	}
	resp, err := h.uc.GetCredit.Execute(ctx, dto.GetCreditRequest{CreditID: req.CreditID})
	if err != nil {
		return nil, toStatus(err)
	}
	return toCredit(resp), nil
}

func (h *CreditHandler) ListClientCredits(ctx context.Context, req *ListClientCreditsRequest) (*ListCreditsResponse, error) {
	if err := required("client_id", req.ClientID); err != nil {
		return nil, err
	}
	resp, err := h.uc.ListClientCredits.Execute(ctx, dto.ListClientCreditsRequest{ClientID: req.ClientID})
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListCreditsResponse{Credits: mapAll(resp, toCredit)}, nil
}

func (h *CreditHandler) ListInstallments(ctx context.Context, req *ListInstallmentsRequest) (*ListInstallmentsResponse, error) {
	if err := required("credit_id", req.CreditID); err != nil {
		return nil, err
	}
	resp, err := h.uc.ListInstallments.Execute(ctx, dto.ListInstallmentsRequest{
		CreditID: req.CreditID,
		Status:   req.Status,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListInstallmentsResponse{Installments: mapAll(resp, toInstallment)}, nil
}

func (h *CreditHandler) GetInstallmentBalance(ctx context.Context, req *GetInstallmentBalanceRequest) (*InstallmentBalance, error) {
	if err := required("installment_id", req.InstallmentID); err != nil {
		return nil, err
	}
	resp, err := h.uc.GetInstallmentBalance.Execute(ctx, dto.GetInstallmentBalanceRequest{InstallmentID: req.InstallmentID})
	if err != nil {
		return nil, toStatus(err)
	}
	return &InstallmentBalance{
		InstallmentID:      resp.InstallmentID,
		CreditID:           resp.CreditID,
		Number:             int32(resp.Number),
		DueDate:            formatDate(resp.DueDate),
		PrincipalRemaining: money.Format(resp.PrincipalRemaining),
		InterestRemaining:  money.Format(resp.InterestRemaining),
		TotalRemaining:     money.Format(resp.TotalRemaining),
		Status:             resp.Status,
		Overdue:            resp.Overdue,
		DaysOverdue:        int32(resp.DaysOverdue),
	}, nil
}

func (h *CreditHandler) PayInstallment(ctx context.Context, req *PayInstallmentRequest) (*PayInstallmentResponse, error) {
	if err := required("installment_id", req.InstallmentID); err != nil {
		return nil, err
	}
	var p parser
	in := dto.PayInstallmentRequest{
		InstallmentID: req.InstallmentID,
		Amount:        p.amount("amount", req.Amount),
		Method:        req.Method,
		PaidAt:        p.instant("paid_at", req.PaidAt),
	}
	if p.err != nil {
		return nil, p.err
	}
	resp, err := h.uc.PayInstallment.Execute(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	out := &PayInstallmentResponse{
		Installment:  toInstallment(resp.Installment),
		CreditStatus: resp.CreditStatus,
	}
	if resp.Payment.ID != "" {
		out.Payment = toCreditPayment(resp.Payment)
	}
	return out, nil
}

func (h *CreditHandler) ListCreditPayments(ctx context.Context, req *ListCreditPaymentsRequest) (*ListCreditPaymentsResponse, error) {
	if err := required("credit_id", req.CreditID); err != nil {
		return nil, err
	}
	resp, err := h.uc.ListCreditPayments.Execute(ctx, dto.ListCreditPaymentsRequest{CreditID: req.CreditID})
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListCreditPaymentsResponse{Payments: mapAll(resp, toCreditPayment)}, nil
}

func (h *CreditHandler) CancelCredit(ctx context.Context, req *CancelCreditRequest) (*Credit, error) {
	if err := required("credit_id", req.CreditID); err != nil {
		return nil, err
	}
	resp, err := h.uc.CancelCredit.Execute(ctx, dto.CancelCreditRequest{CreditID: req.CreditID})
	if err != nil {
		return nil, toStatus(err)
	}
	return toCredit(resp), nil
}

// ---------------------------------------------------------------------------
// Loans
// ---------------------------------------------------------------------------

func (h *CreditHandler) CreateLoan(ctx context.Context, req *CreateLoanRequest) (*Loan, error) {
	var p parser
	in := dto.CreateLoanRequest{
		ClientID:     req.ClientID,
		Amount:       p.amount("amount", req.Amount),
		InterestRate: p.rate("interest_rate", req.InterestRate),
		Currency:     req.Currency,
		IssueDate:    p.optionalDate("issue_date", req.IssueDate),
		DueDate:      p.date("due_date", req.DueDate),
	}
	if p.err != nil {
		return nil, p.err
	}
	resp, err := h.uc.CreateLoan.Execute(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return toLoan(resp), nil
}

func (h *CreditHandler) DecideLoan(ctx context.Context, req *DecideLoanRequest) (*Loan, error) {
	if err := required("loan_id", req.LoanID); err != nil {
		return nil, err
	}
	resp, err := h.uc.DecideLoan.Execute(ctx, dto.DecideLoanRequest{LoanID: req.LoanID, Approve: req.Approve})
	if err != nil {
		return nil, toStatus(err)
	}
	return toLoan(resp), nil
}

func (h *CreditHandler) PayLoan(ctx context.Context, req *PayLoanRequest) (*PayLoanResponse, error) {
	if err := required("loan_id", req.LoanID); err != nil {
		return nil, err
	}
	var p parser
	in := dto.PayLoanRequest{
		LoanID:         req.LoanID,
		Amount:         p.optionalAmount("amount", req.Amount),
		InterestAmount: p.optionalAmount("interest_amount", req.InterestAmount),
		CapitalAmount:  p.optionalAmount("capital_amount", req.CapitalAmount),
		Method:         req.Method,
		PaidAt:         p.instant("paid_at", req.PaidAt),
	}
	if p.err != nil {
		return nil, p.err
	}
	resp, err := h.uc.PayLoan.Execute(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return &PayLoanResponse{Loan: toLoan(resp.Loan), Payment: toLoanPayment(resp.Payment)}, nil
}

func (h *CreditHandler) GetLoan(ctx context.Context, req *GetLoanRequest) (*Loan, error) {
	if err := required("loan_id", req.LoanID); err != nil {
		return nil, err
	}
	resp, err := h.uc.GetLoan.Execute(ctx, dto.GetLoanRequest{LoanID: req.LoanID})
	if err != nil {
		return nil, toStatus(err)
	}
	return toLoan(resp), nil
}

func (h *CreditHandler) ListClientLoans(ctx context.Context, req *ListClientLoansRequest) (*ListLoansResponse, error) {
	if err := required("client_id", req.ClientID); err != nil {
		return nil, err
	}
	resp, err := h.uc.ListClientLoans.Execute(ctx, dto.ListClientLoansRequest{ClientID: req.ClientID})
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListLoansResponse{Loans: mapAll(resp, toLoan)}, nil
}

func (h *CreditHandler) ListLoanPayments(ctx context.Context, req *ListLoanPaymentsRequest) (*ListLoanPaymentsResponse, error) {
	if err := required("loan_id", req.LoanID); err != nil {
		return nil, err
	}
	resp, err := h.uc.ListLoanPayments.Execute(ctx, dto.ListLoanPaymentsRequest{LoanID: req.LoanID})
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListLoanPaymentsResponse{Payments: mapAll(resp, toLoanPayment)}, nil
}

func (h *CreditHandler) GetLoanHistory(ctx context.Context, req *GetLoanHistoryRequest) (*LoanHistoryResponse, error) {
	if err := required("loan_id", req.LoanID); err != nil {
		return nil, err
	}
	resp, err := h.uc.GetLoanHistory.Execute(ctx, dto.GetLoanHistoryRequest{LoanID: req.LoanID})
	if err != nil {
		return nil, toStatus(err)
	}
	return &LoanHistoryResponse{Entries: mapAll(resp, toHistoryEntry)}, nil
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// stateCauses are validation failures caused by the entity's current state
// rather than by the request itself.
var stateCauses = []error{
	model.ErrAlreadyPaid,
	model.ErrCreditCancelled,
	model.ErrCreditHasPayments,
	model.ErrLoanRejected,
	valueobject.ErrInvalidStatusTransition,
}

// toStatus maps domain error kinds to gRPC codes. Internal details are not
// leaked for unexpected failures.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, model.ErrConcurrentModification):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, model.ErrInvariantViolation):
		return status.Error(codes.Internal, "internal error")
	case errors.Is(err, model.ErrValidation):
		for _, cause := range stateCauses {
			if errors.Is(err, cause) {
				return status.Error(codes.FailedPrecondition, err.Error())
			}
		}
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return status.Errorf(codes.InvalidArgument, "%s is required", field)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// parser keeps the first conversion error so a request can be decoded field
// by field.
type parser struct {
	err error
}

func (p *parser) fail(field, value string, err error) {
	if p.err == nil {
		p.err = status.Errorf(codes.InvalidArgument, "%s %q: %v", field, value, err)
	}
}

func (p *parser) amount(field, s string) decimal.Decimal {
	if s == "" {
		p.fail(field, s, errors.New("is required"))
		return decimal.Zero
	}
	d, err := money.ParseAmount(s)
	if err != nil {
		p.fail(field, s, err)
	}
	return d
}

func (p *parser) optionalAmount(field, s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	return p.amount(field, s)
}

func (p *parser) rate(field, s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		p.fail(field, s, err)
	}
	return d
}

func (p *parser) date(field, s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		p.fail(field, s, fmt.Errorf("want %s", dateLayout))
	}
	return t
}

func (p *parser) optionalDate(field, s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	return p.date(field, s)
}

// instant accepts an RFC 3339 timestamp or a bare date.
func (p *parser) instant(field, s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return t.UTC()
	}
	return p.date(field, s)
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

func mapAll[In, Out any](in []In, fn func(In) *Out) []*Out {
	out := make([]*Out, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

func toCredit(c dto.CreditResponse) *Credit {
	return &Credit{
		ID:                c.ID,
		Code:              c.Code,
		ClientID:          c.ClientID,
		Currency:          c.Currency,
		CapitalAmount:     money.Format(c.CapitalAmount),
		TEA:               c.TEA.String(),
		MonthlyRate:       c.MonthlyRate.String(),
		GraceDays:         int32(c.GraceDays),
		GraceInterest:     money.Format(c.GraceInterest),
		CapitalizedAmount: money.Format(c.CapitalizedAmount),
		InstallmentAmount: money.Format(c.InstallmentAmount),
		InstallmentCount:  int32(c.InstallmentCount),
		StartDate:         formatDate(c.StartDate),
		FirstPaymentDate:  formatDate(c.FirstPaymentDate),
		EndDate:           formatDate(c.EndDate),
		Status:            c.Status,
		Installments:      mapAll(c.Installments, toInstallment),
		CreatedAt:         formatTimestamp(c.CreatedAt),
		UpdatedAt:         formatTimestamp(c.UpdatedAt),
	}
}

func toInstallment(i dto.InstallmentResponse) *Installment {
	out := &Installment{
		ID:                 i.ID,
		CreditID:           i.CreditID,
		Number:             int32(i.Number),
		DueDate:            formatDate(i.DueDate),
		Amount:             money.Format(i.Amount),
		PrincipalDue:       money.Format(i.PrincipalDue),
		InterestDue:        money.Format(i.InterestDue),
		PrincipalPaid:      money.Format(i.PrincipalPaid),
		InterestPaid:       money.Format(i.InterestPaid),
		PrincipalRemaining: money.Format(i.PrincipalRemaining),
		InterestRemaining:  money.Format(i.InterestRemaining),
		Status:             i.Status,
		PaymentMethod:      i.PaymentMethod,
	}
	if i.PaymentDate != nil {
		out.PaymentDate = formatTimestamp(*i.PaymentDate)
	}
	return out
}

func toSchedule(s dto.ScheduleResponse) *Schedule {
	return &Schedule{
		MonthlyRate:       s.MonthlyRate.String(),
		GraceInterest:     money.Format(s.GraceInterest),
		CapitalizedAmount: money.Format(s.CapitalizedAmount),
		InstallmentAmount: money.Format(s.InstallmentAmount),
		TotalInterest:     money.Format(s.TotalInterest),
		TotalAmount:       money.Format(s.TotalAmount),
		Entries: mapAll(s.Entries, func(e dto.AmortizationEntryResponse) *ScheduleEntry {
			return &ScheduleEntry{
				Period:           int32(e.Period),
				DueDate:          formatDate(e.DueDate),
				Principal:        money.Format(e.Principal),
				Interest:         money.Format(e.Interest),
				Total:            money.Format(e.Total),
				RemainingBalance: money.Format(e.RemainingBalance),
			}
		}),
	}
}

func toCreditPayment(p dto.CreditPaymentResponse) *CreditPayment {
	return &CreditPayment{
		ID:                p.ID,
		CreditID:          p.CreditID,
		InstallmentID:     p.InstallmentID,
		InstallmentNumber: int32(p.InstallmentNumber),
		PrincipalAmount:   money.Format(p.PrincipalAmount),
		InterestAmount:    money.Format(p.InterestAmount),
		TotalAmount:       money.Format(p.TotalAmount),
		Method:            p.Method,
		PaidAt:            formatTimestamp(p.PaidAt),
	}
}

func toLoan(l dto.LoanResponse) *Loan {
	return &Loan{
		ID:                l.ID,
		Code:              l.Code,
		ClientID:          l.ClientID,
		Currency:          l.Currency,
		Amount:            money.Format(l.Amount),
		InterestRate:      l.InterestRate.String(),
		InterestAmount:    money.Format(l.InterestAmount),
		TotalAmount:       money.Format(l.TotalAmount),
		CapitalPaid:       money.Format(l.CapitalPaid),
		InterestPaid:      money.Format(l.InterestPaid),
		RemainingCapital:  money.Format(l.RemainingCapital),
		RemainingInterest: money.Format(l.RemainingInterest),
		IssueDate:         formatDate(l.IssueDate),
		DueDate:           formatDate(l.DueDate),
		Status:            l.Status,
		DaysOverdue:       int32(l.DaysOverdue),
		CreatedAt:         formatTimestamp(l.CreatedAt),
		UpdatedAt:         formatTimestamp(l.UpdatedAt),
	}
}

func toLoanPayment(p dto.LoanPaymentResponse) *LoanPayment {
	return &LoanPayment{
		ID:              p.ID,
		LoanID:          p.LoanID,
		CapitalAmount:   money.Format(p.CapitalAmount),
		InterestAmount:  money.Format(p.InterestAmount),
		TotalAmount:     money.Format(p.TotalAmount),
		RequestedAmount: money.Format(p.RequestedAmount),
		Method:          p.Method,
		PaidAt:          formatTimestamp(p.PaidAt),
	}
}

func toHistoryEntry(h dto.LoanHistoryResponse) *LoanHistoryEntry {
	return &LoanHistoryEntry{
		ID:             h.ID,
		LoanID:         h.LoanID,
		TotalAmount:    money.Format(h.TotalAmount),
		InterestAmount: money.Format(h.InterestAmount),
		CapitalPaid:    money.Format(h.CapitalPaid),
		InterestPaid:   money.Format(h.InterestPaid),
		Amount:         money.Format(h.Amount),
		Timestamp:      formatTimestamp(h.Timestamp),
	}
}
