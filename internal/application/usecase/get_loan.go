package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
)

// GetLoanUseCase retrieves a loan by ID.
type GetLoanUseCase struct {
	loanRepo port.LoanRepository
}

// NewGetLoanUseCase wires dependencies.
func NewGetLoanUseCase(loanRepo port.LoanRepository) *GetLoanUseCase {
	return &GetLoanUseCase{loanRepo: loanRepo}
}

// Execute returns a loan response for the given ID.
func (uc *GetLoanUseCase) Execute(ctx context.Context, req dto.GetLoanRequest) (dto.LoanResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}
	return toLoanResponse(loan), nil
}

// ListClientLoansUseCase lists the loans of a client.
type ListClientLoansUseCase struct {
	loanRepo port.LoanRepository
}

// NewListClientLoansUseCase wires dependencies.
func NewListClientLoansUseCase(loanRepo port.LoanRepository) *ListClientLoansUseCase {
	return &ListClientLoansUseCase{loanRepo: loanRepo}
}

// Execute returns the client's loans, newest first.
func (uc *ListClientLoansUseCase) Execute(ctx context.Context, req dto.ListClientLoansRequest) ([]dto.LoanResponse, error) {
	if req.ClientID == "" {
		return nil, model.NewValidationError("loan", "", "client_id", model.ErrMissingClient)
	}
	loans, err := uc.loanRepo.FindByClientID(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("find loans: %w", err)
	}
	out := make([]dto.LoanResponse, len(loans))
	for i, l := range loans {
		out[i] = toLoanResponse(l)
	}
	return out, nil
}

// ListLoanPaymentsUseCase lists the payment records of a loan.
type ListLoanPaymentsUseCase struct {
	paymentRepo port.PaymentRepository
}

// NewListLoanPaymentsUseCase wires dependencies.
func NewListLoanPaymentsUseCase(paymentRepo port.PaymentRepository) *ListLoanPaymentsUseCase {
	return &ListLoanPaymentsUseCase{paymentRepo: paymentRepo}
}

// Execute returns the loan payments in the order they were applied.
func (uc *ListLoanPaymentsUseCase) Execute(ctx context.Context, req dto.ListLoanPaymentsRequest) ([]dto.LoanPaymentResponse, error) {
	payments, err := uc.paymentRepo.FindByLoanID(ctx, req.LoanID)
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}
	out := make([]dto.LoanPaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = toLoanPaymentResponse(p)
	}
	return out, nil
}

// GetLoanHistoryUseCase returns the balance snapshots of a loan.
type GetLoanHistoryUseCase struct {
	historyRepo port.LoanHistoryRepository
}

// NewGetLoanHistoryUseCase wires dependencies.
func NewGetLoanHistoryUseCase(historyRepo port.LoanHistoryRepository) *GetLoanHistoryUseCase {
	return &GetLoanHistoryUseCase{historyRepo: historyRepo}
}

// Execute returns the snapshots oldest first.
func (uc *GetLoanHistoryUseCase) Execute(ctx context.Context, req dto.GetLoanHistoryRequest) ([]dto.LoanHistoryResponse, error) {
	history, err := uc.historyRepo.FindByLoanID(ctx, req.LoanID)
	if err != nil {
		return nil, fmt.Errorf("find loan history: %w", err)
	}
	out := make([]dto.LoanHistoryResponse, len(history))
	for i, h := range history {
		out[i] = toLoanHistoryResponse(h)
	}
	return out, nil
}
