package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
)

var _ port.LoanHistoryRepository = (*LoanHistoryRepo)(nil)

// LoanHistoryRepo reads the append-only loan snapshots written by LoanRepo.
type LoanHistoryRepo struct {
	pool *pgxpool.Pool
}

func NewLoanHistoryRepo(pool *pgxpool.Pool) *LoanHistoryRepo {
	return &LoanHistoryRepo{pool: pool}
}

func (r *LoanHistoryRepo) FindByLoanID(ctx context.Context, loanID string) ([]model.LoanHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, loan_id, total_amount, interest_amount,
		       capital_paid, interest_paid, amount, recorded_at
		FROM loan_history
		WHERE loan_id = $1
		ORDER BY recorded_at, id
	`, loanID)
	if err != nil {
		return nil, fmt.Errorf("query loan history: %w", err)
	}
	defer rows.Close()

	var out []model.LoanHistory
	for rows.Next() {
		var h model.LoanHistory
		if err := rows.Scan(
			&h.ID, &h.LoanID, &h.TotalAmount, &h.InterestAmount,
			&h.CapitalPaid, &h.InterestPaid, &h.Amount, &h.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan loan history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
