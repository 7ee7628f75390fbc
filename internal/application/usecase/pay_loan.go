package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
)

// PayLoanUseCase applies a payment to a loan.
type PayLoanUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
	clock     port.Clock
	metrics   *Metrics
	logger    *slog.Logger
}

// NewPayLoanUseCase wires dependencies.
func NewPayLoanUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	clock port.Clock,
	metrics *Metrics,
	logger *slog.Logger,
) *PayLoanUseCase {
	return &PayLoanUseCase{
		loanRepo:  loanRepo,
		publisher: publisher,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute processes a payment against a loan. The payment, the new balances
// and a history snapshot are stored in one transaction.
func (uc *PayLoanUseCase) Execute(ctx context.Context, req dto.PayLoanRequest) (dto.LoanPaymentResult, error) {
	ctx, span := startSpan(ctx, "PayLoan", attribute.String("loan.id", req.LoanID))
	defer span.End()

	method, err := valueobject.ParsePaymentMethod(req.Method)
	if err != nil {
		return dto.LoanPaymentResult{}, model.NewValidationError("loan", req.LoanID, "method", err)
	}

	now := uc.clock.Now()
	payReq := model.LoanPaymentRequest{
		PaidAt:   req.PaidAt,
		Method:   method,
		Amount:   req.Amount,
		Interest: req.InterestAmount,
		Capital:  req.CapitalAmount,
	}

	loan, payment, err := uc.loanRepo.ApplyPayment(ctx, req.LoanID,
		func(locked model.Loan) (model.Loan, model.LoanPayment, error) {
			return locked.ApplyPayment(payReq, now, now)
		})
	if err != nil {
		span.RecordError(err)
		return dto.LoanPaymentResult{}, fmt.Errorf("apply payment: %w", err)
	}
	uc.metrics.loanPaid(ctx, loan.Status().String(), payment.CapitalAmount, payment.InterestAmount)

	publish(ctx, uc.logger, uc.publisher, loan.DomainEvents())

	uc.logger.InfoContext(ctx, "loan payment applied",
		"loan_id", loan.ID(),
		"capital", payment.CapitalAmount.String(),
		"interest", payment.InterestAmount.String(),
		"requested", payment.RequestedAmount.String(),
		"days_overdue", loan.DaysOverdue(),
		"status", loan.Status().String(),
	)

	return dto.LoanPaymentResult{
		Loan:    toLoanResponse(loan),
		Payment: toLoanPaymentResponse(payment),
	}, nil
}
