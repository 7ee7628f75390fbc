package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/event"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/pkg/money"
)

// CreateCreditUseCase prices a credit, generates its schedule and persists
// it with all installments.
type CreateCreditUseCase struct {
	creditRepo port.CreditRepository
	publisher  port.EventPublisher
	clock      port.Clock
	metrics    *Metrics
	logger     *slog.Logger
}

// NewCreateCreditUseCase wires dependencies.
func NewCreateCreditUseCase(
	creditRepo port.CreditRepository,
	publisher port.EventPublisher,
	clock port.Clock,
	metrics *Metrics,
	logger *slog.Logger,
) *CreateCreditUseCase {
	return &CreateCreditUseCase{
		creditRepo: creditRepo,
		publisher:  publisher,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
	}
}

// Execute creates the credit.
func (uc *CreateCreditUseCase) Execute(
	ctx context.Context,
	req dto.CreateCreditRequest,
) (dto.CreditResponse, error) {
	ctx, span := startSpan(ctx, "CreateCredit",
		attribute.String("client.id", req.ClientID),
		attribute.Int("credit.installments", req.Installments),
	)
	defer span.End()

	currency, err := parseCurrency("credit", req.Currency)
	if err != nil {
		return dto.CreditResponse{}, err
	}

	// 1. Price the credit and build its installments.
	credit, err := model.NewCredit(model.CreditTerms{
		ClientID:         req.ClientID,
		CapitalAmount:    req.CapitalAmount,
		TEA:              req.TEA,
		GraceDays:        req.GraceDays,
		Installments:     req.Installments,
		Currency:         currency,
		StartDate:        req.StartDate,
		FirstPaymentDate: req.FirstPaymentDate,
	}, uc.clock.Now())
	if err != nil {
		span.RecordError(err)
		return dto.CreditResponse{}, fmt.Errorf("create credit: %w", err)
	}

	// 2. Persist.
	if err := uc.creditRepo.Save(ctx, credit); err != nil {
		span.RecordError(err)
		return dto.CreditResponse{}, fmt.Errorf("save credit: %w", err)
	}
	uc.metrics.scheduleGenerated(ctx, true)

	// 3. Publish events.
	publish(ctx, uc.logger, uc.publisher, credit.DomainEvents())

	uc.logger.InfoContext(ctx, "credit created",
		"credit_id", credit.ID(),
		"code", credit.Code(),
		"capitalized_amount", credit.CapitalizedAmount().String(),
		"installment_amount", credit.InstallmentAmount().String(),
	)

	return toCreditResponse(credit.ClearEvents()), nil
}

// SimulateScheduleUseCase previews a schedule without persisting anything.
type SimulateScheduleUseCase struct {
	metrics *Metrics
}

// NewSimulateScheduleUseCase wires dependencies.
func NewSimulateScheduleUseCase(metrics *Metrics) *SimulateScheduleUseCase {
	return &SimulateScheduleUseCase{metrics: metrics}
}

// Execute returns the schedule the given terms would produce.
func (uc *SimulateScheduleUseCase) Execute(
	ctx context.Context,
	req dto.SimulateScheduleRequest,
) (dto.ScheduleResponse, error) {
	ctx, span := startSpan(ctx, "SimulateSchedule")
	defer span.End()

	quote, err := model.QuoteCredit(model.CreditTerms{
		CapitalAmount:    req.CapitalAmount,
		TEA:              req.TEA,
		GraceDays:        req.GraceDays,
		Installments:     req.Installments,
		FirstPaymentDate: req.FirstPaymentDate,
	})
	if err != nil {
		span.RecordError(err)
		return dto.ScheduleResponse{}, fmt.Errorf("quote credit: %w", err)
	}
	uc.metrics.scheduleGenerated(ctx, false)

	return toScheduleResponse(quote), nil
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// publish sends events after the state change committed. A broker failure
// is logged and does not fail the request.
func publish(ctx context.Context, logger *slog.Logger, publisher port.EventPublisher, events []event.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.WarnContext(ctx, "publish events failed",
			"count", len(events),
			"error", err,
		)
	}
}

func parseCurrency(entity, code string) (money.Currency, error) {
	if code == "" {
		return money.DefaultCurrency, nil
	}
	c, err := money.NewCurrency(code)
	if err != nil {
		return money.Currency{}, model.NewValidationError(entity, "", "currency", err)
	}
	return c, nil
}
