package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
)

var _ port.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo reads installment and loan payment records.
type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// FindByCreditID returns the payments of a credit in the order they were made.
func (r *PaymentRepo) FindByCreditID(ctx context.Context, creditID string) ([]model.CreditPayment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, credit_id, installment_id, installment_number,
		       principal_amount, interest_amount, total_amount,
		       method, paid_at, created_at
		FROM credit_payments
		WHERE credit_id = $1
		ORDER BY created_at, installment_number
	`, creditID)
	if err != nil {
		return nil, fmt.Errorf("query credit payments: %w", err)
	}
	defer rows.Close()

	var out []model.CreditPayment
	for rows.Next() {
		var (
			p      model.CreditPayment
			method string
		)
		if err := rows.Scan(
			&p.ID, &p.CreditID, &p.InstallmentID, &p.InstallmentNumber,
			&p.PrincipalAmount, &p.InterestAmount, &p.TotalAmount,
			&method, &p.PaidAt, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan credit payment: %w", err)
		}
		if p.Method, err = valueobject.ParsePaymentMethod(method); err != nil {
			return nil, fmt.Errorf("parse payment method: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindByLoanID returns the payments of a loan in the order they were made.
func (r *PaymentRepo) FindByLoanID(ctx context.Context, loanID string) ([]model.LoanPayment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, loan_id, capital_amount, interest_amount, total_amount,
		       requested_amount, method, paid_at, created_at
		FROM loan_payments
		WHERE loan_id = $1
		ORDER BY created_at
	`, loanID)
	if err != nil {
		return nil, fmt.Errorf("query loan payments: %w", err)
	}
	defer rows.Close()

	var out []model.LoanPayment
	for rows.Next() {
		var (
			p      model.LoanPayment
			method string
		)
		if err := rows.Scan(
			&p.ID, &p.LoanID, &p.CapitalAmount, &p.InterestAmount, &p.TotalAmount,
			&p.RequestedAmount, &method, &p.PaidAt, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan loan payment: %w", err)
		}
		if p.Method, err = valueobject.ParsePaymentMethod(method); err != nil {
			return nil, fmt.Errorf("parse payment method: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
