package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
)

// CreateLoanUseCase registers a new loan in PENDING status.
type CreateLoanUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
	clock     port.Clock
	logger    *slog.Logger
}

// NewCreateLoanUseCase wires dependencies.
func NewCreateLoanUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	clock port.Clock,
	logger *slog.Logger,
) *CreateLoanUseCase {
	return &CreateLoanUseCase{
		loanRepo:  loanRepo,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Execute creates the loan and records its first history snapshot.
func (uc *CreateLoanUseCase) Execute(ctx context.Context, req dto.CreateLoanRequest) (dto.LoanResponse, error) {
	ctx, span := startSpan(ctx, "CreateLoan", attribute.String("client.id", req.ClientID))
	defer span.End()

	currency, err := parseCurrency("loan", req.Currency)
	if err != nil {
		return dto.LoanResponse{}, err
	}

	loan, err := model.NewLoan(model.LoanTerms{
		ClientID:     req.ClientID,
		Amount:       req.Amount,
		InterestRate: req.InterestRate,
		Currency:     currency,
		IssueDate:    req.IssueDate,
		DueDate:      req.DueDate,
	}, uc.clock.Now())
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("create loan: %w", err)
	}

	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		span.RecordError(err)
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	publish(ctx, uc.logger, uc.publisher, loan.DomainEvents())
	uc.logger.InfoContext(ctx, "loan created",
		"loan_id", loan.ID(),
		"code", loan.Code(),
		"total_amount", loan.TotalAmount().String(),
	)

	return toLoanResponse(loan), nil
}

// DecideLoanUseCase approves or rejects a pending loan.
type DecideLoanUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
	clock     port.Clock
	logger    *slog.Logger
}

// NewDecideLoanUseCase wires dependencies.
func NewDecideLoanUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	clock port.Clock,
	logger *slog.Logger,
) *DecideLoanUseCase {
	return &DecideLoanUseCase{
		loanRepo:  loanRepo,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Execute records the decision.
func (uc *DecideLoanUseCase) Execute(ctx context.Context, req dto.DecideLoanRequest) (dto.LoanResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}

	now := uc.clock.Now()
	if req.Approve {
		loan, err = loan.Approve(now)
	} else {
		loan, err = loan.Reject(now)
	}
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("decide loan: %w", err)
	}

	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	publish(ctx, uc.logger, uc.publisher, loan.DomainEvents())
	uc.logger.InfoContext(ctx, "loan decided", "loan_id", loan.ID(), "status", loan.Status().String())

	return toLoanResponse(loan), nil
}
