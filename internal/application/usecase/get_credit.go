package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
)

// GetCreditUseCase retrieves a credit with its installments.
type GetCreditUseCase struct {
	creditRepo port.CreditRepository
}

// NewGetCreditUseCase wires dependencies.
func NewGetCreditUseCase(creditRepo port.CreditRepository) *GetCreditUseCase {
	return &GetCreditUseCase{creditRepo: creditRepo}
}

// Execute returns a credit response for the given ID.
func (uc *GetCreditUseCase) Execute(ctx context.Context, req dto.GetCreditRequest) (dto.CreditResponse, error) {
	credit, err := uc.creditRepo.FindByID(ctx, req.CreditID)
	if err != nil {
		return dto.CreditResponse{}, fmt.Errorf("find credit: %w", err)
	}
	return toCreditResponse(credit), nil
}

// ListClientCreditsUseCase lists the credits of a client.
type ListClientCreditsUseCase struct {
	creditRepo port.CreditRepository
}

// NewListClientCreditsUseCase wires dependencies.
func NewListClientCreditsUseCase(creditRepo port.CreditRepository) *ListClientCreditsUseCase {
	return &ListClientCreditsUseCase{creditRepo: creditRepo}
}

// Execute returns the client's credits, newest first.
func (uc *ListClientCreditsUseCase) Execute(ctx context.Context, req dto.ListClientCreditsRequest) ([]dto.CreditResponse, error) {
	if req.ClientID == "" {
		return nil, model.NewValidationError("credit", "", "client_id", model.ErrMissingClient)
	}
	credits, err := uc.creditRepo.FindByClientID(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("find credits: %w", err)
	}
	out := make([]dto.CreditResponse, len(credits))
	for i, c := range credits {
		out[i] = toCreditResponse(c)
	}
	return out, nil
}

// ListInstallmentsUseCase lists the installments of a credit.
type ListInstallmentsUseCase struct {
	installmentRepo port.InstallmentRepository
}

// NewListInstallmentsUseCase wires dependencies.
func NewListInstallmentsUseCase(installmentRepo port.InstallmentRepository) *ListInstallmentsUseCase {
	return &ListInstallmentsUseCase{installmentRepo: installmentRepo}
}

// Execute returns the installments in schedule order. A non-empty status
// filter accepts both canonical and legacy status names.
func (uc *ListInstallmentsUseCase) Execute(ctx context.Context, req dto.ListInstallmentsRequest) ([]dto.InstallmentResponse, error) {
	var filter valueobject.InstallmentStatus
	if req.Status != "" {
		s, err := valueobject.ParseInstallmentStatus(req.Status)
		if err != nil {
			return nil, model.NewValidationError("installment", "", "status", err)
		}
		filter = s
	}

	items, err := uc.installmentRepo.FindByCreditID(ctx, req.CreditID)
	if err != nil {
		return nil, fmt.Errorf("find installments: %w", err)
	}

	out := make([]dto.InstallmentResponse, 0, len(items))
	for _, inst := range items {
		if !filter.IsZero() && !inst.Status().Equal(filter) {
			continue
		}
		out = append(out, toInstallmentResponse(inst))
	}
	return out, nil
}

// GetInstallmentBalanceUseCase reports what is still owed on an installment.
type GetInstallmentBalanceUseCase struct {
	installmentRepo port.InstallmentRepository
	clock           port.Clock
}

// NewGetInstallmentBalanceUseCase wires dependencies.
func NewGetInstallmentBalanceUseCase(installmentRepo port.InstallmentRepository, clock port.Clock) *GetInstallmentBalanceUseCase {
	return &GetInstallmentBalanceUseCase{installmentRepo: installmentRepo, clock: clock}
}

// Execute returns the remaining principal, interest and overdue state.
func (uc *GetInstallmentBalanceUseCase) Execute(
	ctx context.Context,
	req dto.GetInstallmentBalanceRequest,
) (dto.InstallmentBalanceResponse, error) {
	inst, err := uc.installmentRepo.FindByID(ctx, req.InstallmentID)
	if err != nil {
		return dto.InstallmentBalanceResponse{}, fmt.Errorf("find installment: %w", err)
	}
	return toBalanceResponse(inst, uc.clock.Now()), nil
}

// ListCreditPaymentsUseCase lists the payment records of a credit.
type ListCreditPaymentsUseCase struct {
	paymentRepo port.PaymentRepository
}

// NewListCreditPaymentsUseCase wires dependencies.
func NewListCreditPaymentsUseCase(paymentRepo port.PaymentRepository) *ListCreditPaymentsUseCase {
	return &ListCreditPaymentsUseCase{paymentRepo: paymentRepo}
}

// Execute returns the payments in the order they were applied.
func (uc *ListCreditPaymentsUseCase) Execute(ctx context.Context, req dto.ListCreditPaymentsRequest) ([]dto.CreditPaymentResponse, error) {
	payments, err := uc.paymentRepo.FindByCreditID(ctx, req.CreditID)
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}
	out := make([]dto.CreditPaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = toCreditPaymentResponse(p)
	}
	return out, nil
}
