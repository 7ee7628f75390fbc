package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
)

// statusRefreshAttempts bounds the retries of a credit status update that
// lost a version race against another request.
const statusRefreshAttempts = 3

// PayInstallmentUseCase applies a payment to one installment and then
// recomputes the status of the owning credit.
type PayInstallmentUseCase struct {
	creditRepo      port.CreditRepository
	installmentRepo port.InstallmentRepository
	publisher       port.EventPublisher
	clock           port.Clock
	metrics         *Metrics
	logger          *slog.Logger
}

// NewPayInstallmentUseCase wires dependencies.
func NewPayInstallmentUseCase(
	creditRepo port.CreditRepository,
	installmentRepo port.InstallmentRepository,
	publisher port.EventPublisher,
	clock port.Clock,
	metrics *Metrics,
	logger *slog.Logger,
) *PayInstallmentUseCase {
	return &PayInstallmentUseCase{
		creditRepo:      creditRepo,
		installmentRepo: installmentRepo,
		publisher:       publisher,
		clock:           clock,
		metrics:         metrics,
		logger:          logger,
	}
}

// Execute allocates the payment interest first.
func (uc *PayInstallmentUseCase) Execute(
	ctx context.Context,
	req dto.PayInstallmentRequest,
) (dto.InstallmentPaymentResponse, error) {
	ctx, span := startSpan(ctx, "PayInstallment",
		attribute.String("installment.id", req.InstallmentID),
		attribute.String("payment.amount", req.Amount.String()),
	)
	defer span.End()

	method, err := valueobject.ParsePaymentMethod(req.Method)
	if err != nil {
		return dto.InstallmentPaymentResponse{}, model.NewValidationError("installment", req.InstallmentID, "method", err)
	}

	now := uc.clock.Now()
	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}

	// 1. Resolve the owning credit and make sure it still takes payments.
	current, err := uc.installmentRepo.FindByID(ctx, req.InstallmentID)
	if err != nil {
		return dto.InstallmentPaymentResponse{}, fmt.Errorf("find installment: %w", err)
	}
	credit, err := uc.creditRepo.FindByID(ctx, current.CreditID())
	if err != nil {
		return dto.InstallmentPaymentResponse{}, fmt.Errorf("find credit: %w", err)
	}
	if !credit.AcceptsPayments() {
		return dto.InstallmentPaymentResponse{}, model.NewValidationError("credit", credit.ID(), "status", model.ErrCreditCancelled)
	}

	// 2. Apply the payment under the installment row lock.
	inst, payment, err := uc.installmentRepo.ApplyPayment(ctx, req.InstallmentID,
		func(locked model.Installment) (model.Installment, model.CreditPayment, error) {
			return locked.ApplyPayment(req.Amount, method, paidAt, now)
		})
	if err != nil {
		span.RecordError(err)
		return dto.InstallmentPaymentResponse{}, fmt.Errorf("apply payment: %w", err)
	}
	if payment.TotalAmount.IsZero() {
		// Nothing was written, so there is no payment record to return.
		return dto.InstallmentPaymentResponse{
			Installment:  toInstallmentResponse(inst),
			CreditStatus: credit.Status().String(),
		}, nil
	}
	uc.metrics.installmentPaid(ctx, inst.Status().String(), payment.PrincipalAmount, payment.InterestAmount)

	// 3. Recompute the credit status now that the payment committed.
	creditStatus, _, err := refreshCreditStatus(ctx, uc.creditRepo, uc.publisher, uc.logger, inst.CreditID(), now, now)
	if err != nil {
		uc.logger.WarnContext(ctx, "credit status refresh failed",
			"credit_id", inst.CreditID(),
			"error", err,
		)
		creditStatus = credit.Status()
	}

	// 4. Publish events.
	publish(ctx, uc.logger, uc.publisher, inst.DomainEvents())

	uc.logger.InfoContext(ctx, "installment payment applied",
		"installment_id", inst.ID(),
		"credit_id", inst.CreditID(),
		"principal", payment.PrincipalAmount.String(),
		"interest", payment.InterestAmount.String(),
		"status", inst.Status().String(),
	)

	return dto.InstallmentPaymentResponse{
		Installment:  toInstallmentResponse(inst),
		Payment:      toCreditPaymentResponse(payment),
		CreditStatus: creditStatus.String(),
	}, nil
}

// refreshCreditStatus reloads a credit, recomputes its status and saves it
// when the status moved, retrying on version conflicts. It reports the
// resulting status and whether it changed.
func refreshCreditStatus(
	ctx context.Context,
	creditRepo port.CreditRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
	creditID string,
	today, now time.Time,
) (valueobject.CreditStatus, bool, error) {
	var lastErr error
	for attempt := 0; attempt < statusRefreshAttempts; attempt++ {
		credit, err := creditRepo.FindByID(ctx, creditID)
		if err != nil {
			return valueobject.CreditStatus{}, false, fmt.Errorf("find credit: %w", err)
		}

		refreshed := credit.RefreshStatus(today, now)
		if refreshed.Status().Equal(credit.Status()) {
			return credit.Status(), false, nil
		}

		err = creditRepo.Save(ctx, refreshed)
		if err == nil {
			publish(ctx, logger, publisher, refreshed.DomainEvents())
			return refreshed.Status(), true, nil
		}
		if !errors.Is(err, model.ErrConcurrentModification) {
			return valueobject.CreditStatus{}, false, fmt.Errorf("save credit: %w", err)
		}
		lastErr = err
	}
	return valueobject.CreditStatus{}, false, fmt.Errorf("save credit: %w", lastErr)
}
