package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/port"
)

// CancelCreditUseCase cancels a credit that has not received any payment.
type CancelCreditUseCase struct {
	creditRepo port.CreditRepository
	publisher  port.EventPublisher
	clock      port.Clock
	logger     *slog.Logger
}

// NewCancelCreditUseCase wires dependencies.
func NewCancelCreditUseCase(
	creditRepo port.CreditRepository,
	publisher port.EventPublisher,
	clock port.Clock,
	logger *slog.Logger,
) *CancelCreditUseCase {
	return &CancelCreditUseCase{
		creditRepo: creditRepo,
		publisher:  publisher,
		clock:      clock,
		logger:     logger,
	}
}

// Execute cancels the credit.
func (uc *CancelCreditUseCase) Execute(ctx context.Context, req dto.CancelCreditRequest) (dto.CreditResponse, error) {
	ctx, span := startSpan(ctx, "CancelCredit")
	defer span.End()

	credit, err := uc.creditRepo.FindByID(ctx, req.CreditID)
	if err != nil {
		return dto.CreditResponse{}, fmt.Errorf("find credit: %w", err)
	}

	credit, err = credit.Cancel(uc.clock.Now())
	if err != nil {
		return dto.CreditResponse{}, fmt.Errorf("cancel credit: %w", err)
	}

	if err := uc.creditRepo.Save(ctx, credit); err != nil {
		span.RecordError(err)
		return dto.CreditResponse{}, fmt.Errorf("save credit: %w", err)
	}

	publish(ctx, uc.logger, uc.publisher, credit.DomainEvents())
	uc.logger.InfoContext(ctx, "credit cancelled", "credit_id", credit.ID())

	return toCreditResponse(credit.ClearEvents()), nil
}
