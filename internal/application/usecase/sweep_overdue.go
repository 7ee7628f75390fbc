package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/event"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
)

// SweepOverdueUseCase flags installments and loans that passed their due
// date unpaid. It runs periodically from the scheduler.
type SweepOverdueUseCase struct {
	creditRepo      port.CreditRepository
	installmentRepo port.InstallmentRepository
	loanRepo        port.LoanRepository
	publisher       port.EventPublisher
	clock           port.Clock
	metrics         *Metrics
	logger          *slog.Logger
}

// NewSweepOverdueUseCase wires dependencies.
func NewSweepOverdueUseCase(
	creditRepo port.CreditRepository,
	installmentRepo port.InstallmentRepository,
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	clock port.Clock,
	metrics *Metrics,
	logger *slog.Logger,
) *SweepOverdueUseCase {
	return &SweepOverdueUseCase{
		creditRepo:      creditRepo,
		installmentRepo: installmentRepo,
		loanRepo:        loanRepo,
		publisher:       publisher,
		clock:           clock,
		metrics:         metrics,
		logger:          logger,
	}
}

// Execute runs one sweep. A version conflict on a single row is skipped;
// the row is picked up again on the next run.
func (uc *SweepOverdueUseCase) Execute(ctx context.Context) (dto.SweepResult, error) {
	ctx, span := startSpan(ctx, "SweepOverdue")
	defer span.End()

	now := uc.clock.Now()
	today := model.DateOf(now)
	var result dto.SweepResult

	// 1. Installments.
	installments, err := uc.installmentRepo.FindOverdue(ctx, today)
	if err != nil {
		return result, fmt.Errorf("find overdue installments: %w", err)
	}

	touched := make(map[string]struct{})
	var order []string
	for _, inst := range installments {
		marked, changed := inst.MarkOverdue(today, now)
		if !changed {
			continue
		}
		if err := uc.installmentRepo.UpdateStatus(ctx, marked); err != nil {
			if errors.Is(err, model.ErrConcurrentModification) {
				uc.logger.DebugContext(ctx, "installment changed during sweep", "installment_id", inst.ID())
				continue
			}
			return result, fmt.Errorf("update installment %s: %w", inst.ID(), err)
		}
		result.InstallmentsMarked++
		if _, ok := touched[inst.CreditID()]; !ok {
			touched[inst.CreditID()] = struct{}{}
			order = append(order, inst.CreditID())
		}
	}
	uc.metrics.overdue(ctx, "installment", result.InstallmentsMarked)

	// 2. Credits owning a newly overdue installment.
	for _, creditID := range order {
		_, changed, err := refreshCreditStatus(ctx, uc.creditRepo, uc.publisher, uc.logger, creditID, today, now)
		if err != nil {
			uc.logger.WarnContext(ctx, "credit status refresh failed", "credit_id", creditID, "error", err)
			continue
		}
		if changed {
			result.CreditsUpdated++
		}
	}

	// 3. Loans.
	loans, err := uc.loanRepo.FindOverdueCandidates(ctx, today)
	if err != nil {
		return result, fmt.Errorf("find overdue loans: %w", err)
	}

	var loanEvents []event.DomainEvent
	for _, loan := range loans {
		marked, changed := loan.MarkOverdue(today, now)
		if !changed {
			continue
		}
		if err := uc.loanRepo.Save(ctx, marked); err != nil {
			if errors.Is(err, model.ErrConcurrentModification) {
				uc.logger.DebugContext(ctx, "loan changed during sweep", "loan_id", loan.ID())
				continue
			}
			return result, fmt.Errorf("save loan %s: %w", loan.ID(), err)
		}
		if !loan.Status().Equal(marked.Status()) {
			result.LoansMarked++
		}
		loanEvents = append(loanEvents, marked.DomainEvents()...)
	}
	uc.metrics.overdue(ctx, "loan", result.LoansMarked)
	publish(ctx, uc.logger, uc.publisher, loanEvents)

	uc.logger.InfoContext(ctx, "overdue sweep finished",
		"installments_marked", result.InstallmentsMarked,
		"credits_updated", result.CreditsUpdated,
		"loans_marked", result.LoansMarked,
	)
	return result, nil
}
