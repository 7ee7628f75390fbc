package grpc

// proto.go defines the gRPC server interface for bib.credit.v1.CreditService.
// It stands in for buf-generated code; messages travel through the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const serviceName = "bib.credit.v1.CreditService"

// ---------------------------------------------------------------------------
// Credit messages
// ---------------------------------------------------------------------------

type CreateCreditRequest struct {
	ClientID         string `json:"client_id"`
	CapitalAmount    string `json:"capital_amount"`
	TEA              string `json:"tea"`
	Currency         string `json:"currency,omitempty"`
	StartDate        string `json:"start_date,omitempty"`
	FirstPaymentDate string `json:"first_payment_date"`
	GraceDays        int32  `json:"grace_days"`
	Installments     int32  `json:"installments"`
}

type SimulateScheduleRequest struct {
	CapitalAmount    string `json:"capital_amount"`
	TEA              string `json:"tea"`
	FirstPaymentDate string `json:"first_payment_date"`
	GraceDays        int32  `json:"grace_days"`
	Installments     int32  `json:"installments"`
}

type GetCreditRequest struct {
	CreditID string `json:"credit_id"`
}

type ListClientCreditsRequest struct {
	ClientID string `json:"client_id"`
}

type ListInstallmentsRequest struct {
	CreditID string `json:"credit_id"`
	Status   string `json:"status,omitempty"`
}

type GetInstallmentBalanceRequest struct {
	InstallmentID string `json:"installment_id"`
}

type PayInstallmentRequest struct {
	InstallmentID string `json:"installment_id"`
	Amount        string `json:"amount"`
	Method        string `json:"method,omitempty"`
	PaidAt        string `json:"paid_at,omitempty"`
}

type ListCreditPaymentsRequest struct {
	CreditID string `json:"credit_id"`
}

type CancelCreditRequest struct {
	CreditID string `json:"credit_id"`
}

type ScheduleEntry struct {
	DueDate          string `json:"due_date"`
	Principal        string `json:"principal"`
	Interest         string `json:"interest"`
	Total            string `json:"total"`
	RemainingBalance string `json:"remaining_balance"`
	Period           int32  `json:"period"`
}

type Schedule struct {
	MonthlyRate       string           `json:"monthly_rate"`
	GraceInterest     string           `json:"grace_interest"`
	CapitalizedAmount string           `json:"capitalized_amount"`
	InstallmentAmount string           `json:"installment_amount"`
	TotalInterest     string           `json:"total_interest"`
	TotalAmount       string           `json:"total_amount"`
	Entries           []*ScheduleEntry `json:"entries"`
}

type Installment struct {
	ID                 string `json:"id"`
	CreditID           string `json:"credit_id"`
	DueDate            string `json:"due_date"`
	Amount             string `json:"amount"`
	PrincipalDue       string `json:"principal_due"`
	InterestDue        string `json:"interest_due"`
	PrincipalPaid      string `json:"principal_paid"`
	InterestPaid       string `json:"interest_paid"`
	PrincipalRemaining string `json:"principal_remaining"`
	InterestRemaining  string `json:"interest_remaining"`
	Status             string `json:"status"`
	PaymentDate        string `json:"payment_date,omitempty"`
	PaymentMethod      string `json:"payment_method,omitempty"`
	Number             int32  `json:"number"`
}

type Credit struct {
	ID                string         `json:"id"`
	Code              string         `json:"code"`
	ClientID          string         `json:"client_id"`
	Currency          string         `json:"currency"`
	CapitalAmount     string         `json:"capital_amount"`
	TEA               string         `json:"tea"`
	MonthlyRate       string         `json:"monthly_rate"`
	GraceInterest     string         `json:"grace_interest"`
	CapitalizedAmount string         `json:"capitalized_amount"`
	InstallmentAmount string         `json:"installment_amount"`
	StartDate         string         `json:"start_date"`
	FirstPaymentDate  string         `json:"first_payment_date"`
	EndDate           string         `json:"end_date"`
	Status            string         `json:"status"`
	CreatedAt         string         `json:"created_at"`
	UpdatedAt         string         `json:"updated_at"`
	Installments      []*Installment `json:"installments,omitempty"`
	GraceDays         int32          `json:"grace_days"`
	InstallmentCount  int32          `json:"installment_count"`
}

type ListCreditsResponse struct {
	Credits []*Credit `json:"credits"`
}

type ListInstallmentsResponse struct {
	Installments []*Installment `json:"installments"`
}

type InstallmentBalance struct {
	InstallmentID      string `json:"installment_id"`
	CreditID           string `json:"credit_id"`
	DueDate            string `json:"due_date"`
	PrincipalRemaining string `json:"principal_remaining"`
	InterestRemaining  string `json:"interest_remaining"`
	TotalRemaining     string `json:"total_remaining"`
	Status             string `json:"status"`
	Number             int32  `json:"number"`
	DaysOverdue        int32  `json:"days_overdue"`
	Overdue            bool   `json:"overdue"`
}

type CreditPayment struct {
	ID                string `json:"id"`
	CreditID          string `json:"credit_id"`
	InstallmentID     string `json:"installment_id"`
	PrincipalAmount   string `json:"principal_amount"`
	InterestAmount    string `json:"interest_amount"`
	TotalAmount       string `json:"total_amount"`
	Method            string `json:"method"`
	PaidAt            string `json:"paid_at"`
	InstallmentNumber int32  `json:"installment_number"`
}

type PayInstallmentResponse struct {
	Installment  *Installment   `json:"installment"`
	Payment      *CreditPayment `json:"payment"`
	CreditStatus string         `json:"credit_status"`
}

type ListCreditPaymentsResponse struct {
	Payments []*CreditPayment `json:"payments"`
}

// ---------------------------------------------------------------------------
// Loan messages
// ---------------------------------------------------------------------------

type CreateLoanRequest struct {
	ClientID     string `json:"client_id"`
	Amount       string `json:"amount"`
	InterestRate string `json:"interest_rate"`
	Currency     string `json:"currency,omitempty"`
	IssueDate    string `json:"issue_date,omitempty"`
	DueDate      string `json:"due_date"`
}

type DecideLoanRequest struct {
	LoanID  string `json:"loan_id"`
	Approve bool   `json:"approve"`
}

// PayLoanRequest takes either Amount or an explicit interest/capital split.
type PayLoanRequest struct {
	LoanID         string `json:"loan_id"`
	Amount         string `json:"amount,omitempty"`
	InterestAmount string `json:"interest_amount,omitempty"`
	CapitalAmount  string `json:"capital_amount,omitempty"`
	Method         string `json:"method,omitempty"`
	PaidAt         string `json:"paid_at,omitempty"`
}

type GetLoanRequest struct {
	LoanID string `json:"loan_id"`
}

type ListClientLoansRequest struct {
	ClientID string `json:"client_id"`
}

type ListLoanPaymentsRequest struct {
	LoanID string `json:"loan_id"`
}

type GetLoanHistoryRequest struct {
	LoanID string `json:"loan_id"`
}

type Loan struct {
	ID                string `json:"id"`
	Code              string `json:"code"`
	ClientID          string `json:"client_id"`
	Currency          string `json:"currency"`
	Amount            string `json:"amount"`
	InterestRate      string `json:"interest_rate"`
	InterestAmount    string `json:"interest_amount"`
	TotalAmount       string `json:"total_amount"`
	CapitalPaid       string `json:"capital_paid"`
	InterestPaid      string `json:"interest_paid"`
	RemainingCapital  string `json:"remaining_capital"`
	RemainingInterest string `json:"remaining_interest"`
	IssueDate         string `json:"issue_date"`
	DueDate           string `json:"due_date"`
	Status            string `json:"status"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
	DaysOverdue       int32  `json:"days_overdue"`
}

type LoanPayment struct {
	ID              string `json:"id"`
	LoanID          string `json:"loan_id"`
	CapitalAmount   string `json:"capital_amount"`
	InterestAmount  string `json:"interest_amount"`
	TotalAmount     string `json:"total_amount"`
	RequestedAmount string `json:"requested_amount"`
	Method          string `json:"method"`
	PaidAt          string `json:"paid_at"`
}

type PayLoanResponse struct {
	Loan    *Loan        `json:"loan"`
	Payment *LoanPayment `json:"payment"`
}

type ListLoansResponse struct {
	Loans []*Loan `json:"loans"`
}

type ListLoanPaymentsResponse struct {
	Payments []*LoanPayment `json:"payments"`
}

type LoanHistoryEntry struct {
	ID             string `json:"id"`
	LoanID         string `json:"loan_id"`
	TotalAmount    string `json:"total_amount"`
	InterestAmount string `json:"interest_amount"`
	CapitalPaid    string `json:"capital_paid"`
	InterestPaid   string `json:"interest_paid"`
	Amount         string `json:"amount"`
	Timestamp      string `json:"timestamp"`
}

type LoanHistoryResponse struct {
	Entries []*LoanHistoryEntry `json:"entries"`
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// CreditServiceServer is the server API for CreditService.
type CreditServiceServer interface {
	CreateCredit(context.Context, *CreateCreditRequest) (*Credit, error)
	SimulateSchedule(context.Context, *SimulateScheduleRequest) (*Schedule, error)
	GetCredit(context.Context, *GetCreditRequest) (*Credit, error)
	ListClientCredits(context.Context, *ListClientCreditsRequest) (*ListCreditsResponse, error)
	ListInstallments(context.Context, *ListInstallmentsRequest) (*ListInstallmentsResponse, error)
	GetInstallmentBalance(context.Context, *GetInstallmentBalanceRequest) (*InstallmentBalance, error)
	PayInstallment(context.Context, *PayInstallmentRequest) (*PayInstallmentResponse, error)
	ListCreditPayments(context.Context, *ListCreditPaymentsRequest) (*ListCreditPaymentsResponse, error)
	CancelCredit(context.Context, *CancelCreditRequest) (*Credit, error)
	CreateLoan(context.Context, *CreateLoanRequest) (*Loan, error)
	DecideLoan(context.Context, *DecideLoanRequest) (*Loan, error)
	PayLoan(context.Context, *PayLoanRequest) (*PayLoanResponse, error)
	GetLoan(context.Context, *GetLoanRequest) (*Loan, error)
	ListClientLoans(context.Context, *ListClientLoansRequest) (*ListLoansResponse, error)
	ListLoanPayments(context.Context, *ListLoanPaymentsRequest) (*ListLoanPaymentsResponse, error)
	GetLoanHistory(context.Context, *GetLoanHistoryRequest) (*LoanHistoryResponse, error)
	mustEmbedUnimplementedCreditServiceServer()
}

// UnimplementedCreditServiceServer provides forward-compatible default implementations.
type UnimplementedCreditServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedCreditServiceServer) CreateCredit(context.Context, *CreateCreditRequest) (*Credit, error) {
	return nil, unimplemented("CreateCredit")
}
func (UnimplementedCreditServiceServer) SimulateSchedule(context.Context, *SimulateScheduleRequest) (*Schedule, error) {
	return nil, unimplemented("SimulateSchedule")
}
func (UnimplementedCreditServiceServer) GetCredit(context.Context, *GetCreditRequest) (*Credit, error) {
	return nil, unimplemented("GetCredit")
}
func (UnimplementedCreditServiceServer) ListClientCredits(context.Context, *ListClientCreditsRequest) (*ListCreditsResponse, error) {
	return nil, unimplemented("ListClientCredits")
}
func (UnimplementedCreditServiceServer) ListInstallments(context.Context, *ListInstallmentsRequest) (*ListInstallmentsResponse, error) {
	return nil, unimplemented("ListInstallments")
}
func (UnimplementedCreditServiceServer) GetInstallmentBalance(context.Context, *GetInstallmentBalanceRequest) (*InstallmentBalance, error) {
	return nil, unimplemented("GetInstallmentBalance")
}
func (UnimplementedCreditServiceServer) PayInstallment(context.Context, *PayInstallmentRequest) (*PayInstallmentResponse, error) {
	return nil, unimplemented("PayInstallment")
}
func (UnimplementedCreditServiceServer) ListCreditPayments(context.Context, *ListCreditPaymentsRequest) (*ListCreditPaymentsResponse, error) {
	return nil, unimplemented("ListCreditPayments")
}
func (UnimplementedCreditServiceServer) CancelCredit(context.Context, *CancelCreditRequest) (*Credit, error) {
	return nil, unimplemented("CancelCredit")
}
func (UnimplementedCreditServiceServer) CreateLoan(context.Context, *CreateLoanRequest) (*Loan, error) {
	return nil, unimplemented("CreateLoan")
}
func (UnimplementedCreditServiceServer) DecideLoan(context.Context, *DecideLoanRequest) (*Loan, error) {
	return nil, unimplemented("DecideLoan")
}
func (UnimplementedCreditServiceServer) PayLoan(context.Context, *PayLoanRequest) (*PayLoanResponse, error) {
	return nil, unimplemented("PayLoan")
}
func (UnimplementedCreditServiceServer) GetLoan(context.Context, *GetLoanRequest) (*Loan, error) {
	return nil, unimplemented("GetLoan")
}
func (UnimplementedCreditServiceServer) ListClientLoans(context.Context, *ListClientLoansRequest) (*ListLoansResponse, error) {
	return nil, unimplemented("ListClientLoans")
}
func (UnimplementedCreditServiceServer) ListLoanPayments(context.Context, *ListLoanPaymentsRequest) (*ListLoanPaymentsResponse, error) {
	return nil, unimplemented("ListLoanPayments")
}
func (UnimplementedCreditServiceServer) GetLoanHistory(context.Context, *GetLoanHistoryRequest) (*LoanHistoryResponse, error) {
	return nil, unimplemented("GetLoanHistory")
}
func (UnimplementedCreditServiceServer) mustEmbedUnimplementedCreditServiceServer() {}

// RegisterCreditServiceServer registers the CreditServiceServer with the gRPC server.
func RegisterCreditServiceServer(s grpclib.ServiceRegistrar, srv CreditServiceServer) {
	s.RegisterService(&creditServiceDesc, srv)
}

var creditServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CreditServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		unary("CreateCredit", CreditServiceServer.CreateCredit),
		unary("SimulateSchedule", CreditServiceServer.SimulateSchedule),
		unary("GetCredit", CreditServiceServer.GetCredit),
		unary("ListClientCredits", CreditServiceServer.ListClientCredits),
		unary("ListInstallments", CreditServiceServer.ListInstallments),
		unary("GetInstallmentBalance", CreditServiceServer.GetInstallmentBalance),
		unary("PayInstallment", CreditServiceServer.PayInstallment),
		unary("ListCreditPayments", CreditServiceServer.ListCreditPayments),
		unary("CancelCredit", CreditServiceServer.CancelCredit),
		unary("CreateLoan", CreditServiceServer.CreateLoan),
		unary("DecideLoan", CreditServiceServer.DecideLoan),
		unary("PayLoan", CreditServiceServer.PayLoan),
		unary("GetLoan", CreditServiceServer.GetLoan),
		unary("ListClientLoans", CreditServiceServer.ListClientLoans),
		unary("ListLoanPayments", CreditServiceServer.ListLoanPayments),
		unary("GetLoanHistory", CreditServiceServer.GetLoanHistory),
	},
	Streams: []grpclib.StreamDesc{},
}

// unary builds the method descriptor generated code would spell out per method.
func unary[Req, Resp any](
	name string,
	call func(CreditServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodDesc {
	fullMethod := "/" + serviceName + "/" + name
	return grpclib.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CreditServiceServer), ctx, in)
			}
			info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CreditServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
