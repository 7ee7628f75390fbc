package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
	"github.com/bibbank/credit-service/pkg/money"
	pgutil "github.com/bibbank/credit-service/pkg/postgres"
)

var _ port.LoanRepository = (*LoanRepo)(nil)

const loanColumns = `
	id, code, client_id, currency,
	amount, interest_rate, interest_amount, total_amount,
	capital_paid, interest_paid, remaining_capital, remaining_interest,
	issue_date, due_date, status, days_overdue,
	version, created_at, updated_at`

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	pool *pgxpool.Pool
}

// NewLoanRepo creates a new PostgreSQL-backed loan repository.
func NewLoanRepo(pool *pgxpool.Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

// Save upserts a loan guarded by its version. The first insert also writes
// the opening history snapshot.
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	return pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO loans (` + loanColumns + `)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
			ON CONFLICT (id) DO UPDATE SET
				total_amount       = EXCLUDED.total_amount,
				capital_paid       = EXCLUDED.capital_paid,
				interest_paid      = EXCLUDED.interest_paid,
				remaining_capital  = EXCLUDED.remaining_capital,
				remaining_interest = EXCLUDED.remaining_interest,
				status             = EXCLUDED.status,
				days_overdue       = EXCLUDED.days_overdue,
				version            = loans.version + 1,
				updated_at         = EXCLUDED.updated_at
			WHERE loans.version = $17
			RETURNING (xmax = 0) AS inserted
		`
		var inserted bool
		err := tx.QueryRow(ctx, query, loanArgs(loan)...).Scan(&inserted)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewConflictError("loan", loan.ID())
		}
		if err != nil {
			return fmt.Errorf("save loan: %w", err)
		}
		if !inserted {
			return nil
		}
		return insertSnapshot(ctx, tx, loan.Snapshot())
	})
}

// FindByID retrieves a loan by ID.
func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	loan, err := scanLoanRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return model.Loan{}, notFound(err, "loan", id)
	}
	return loan, nil
}

// FindByClientID retrieves all loans of a client, newest first.
func (r *LoanRepo) FindByClientID(ctx context.Context, clientID string) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE client_id = $1 ORDER BY created_at DESC`
	return r.queryLoans(ctx, query, clientID)
}

// FindOverdueCandidates returns approved or overdue loans due before today.
func (r *LoanRepo) FindOverdueCandidates(ctx context.Context, today time.Time) ([]model.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status IN ('APPROVED', 'OVERDUE') AND due_date < $1
		ORDER BY due_date
	`
	return r.queryLoans(ctx, query, model.DateOf(today))
}

// ApplyPayment locks the loan row, runs fn and stores the new balances, the
// payment record and a history snapshot in one transaction.
func (r *LoanRepo) ApplyPayment(ctx context.Context, id string, fn port.LoanPaymentFunc) (model.Loan, model.LoanPayment, error) {
	var (
		next    model.Loan
		payment model.LoanPayment
	)

	err := pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`
		locked, err := scanLoanRow(tx.QueryRow(ctx, query, id))
		if err != nil {
			return notFound(err, "loan", id)
		}

		next, payment, err = fn(locked)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE loans SET
				total_amount       = $1,
				capital_paid       = $2,
				interest_paid      = $3,
				remaining_capital  = $4,
				remaining_interest = $5,
				status             = $6,
				days_overdue       = $7,
				version            = version + 1,
				updated_at         = $8
			WHERE id = $9
		`,
			next.TotalAmount(), next.CapitalPaid(), next.InterestPaid(),
			next.RemainingCapital(), next.RemainingInterest(),
			next.Status().String(), next.DaysOverdue(), next.UpdatedAt(), next.ID(),
		)
		if err != nil {
			return fmt.Errorf("update loan: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO loan_payments (
				id, loan_id, capital_amount, interest_amount, total_amount,
				requested_amount, method, paid_at, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
			payment.ID, payment.LoanID, payment.CapitalAmount, payment.InterestAmount,
			payment.TotalAmount, payment.RequestedAmount, payment.Method.String(),
			payment.PaidAt, payment.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert loan payment: %w", err)
		}

		return insertSnapshot(ctx, tx, next.Snapshot())
	})
	if err != nil {
		return model.Loan{}, model.LoanPayment{}, err
	}
	return next, payment, nil
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

func loanArgs(l model.Loan) []any {
	return []any{
		l.ID(), l.Code(), l.ClientID(), l.Currency().Code(),
		l.Amount(), l.InterestRate(), l.InterestAmount(), l.TotalAmount(),
		l.CapitalPaid(), l.InterestPaid(), l.RemainingCapital(), l.RemainingInterest(),
		l.IssueDate(), l.DueDate(), l.Status().String(), l.DaysOverdue(),
		l.Version(), l.CreatedAt(), l.UpdatedAt(),
	}
}

func (r *LoanRepo) queryLoans(ctx context.Context, query string, args ...any) ([]model.Loan, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		loan, err := scanLoanRow(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

func scanLoanRow(s scannable) (model.Loan, error) {
	var (
		id, code, clientID, currencyCode    string
		amount, interestRate                decimal.Decimal
		interestAmount, totalAmount         decimal.Decimal
		capitalPaid, interestPaid           decimal.Decimal
		remainingCapital, remainingInterest decimal.Decimal
		issueDate, dueDate                  time.Time
		statusStr                           string
		daysOverdue, version                int
		createdAt, updatedAt                time.Time
	)

	err := s.Scan(
		&id, &code, &clientID, &currencyCode,
		&amount, &interestRate, &interestAmount, &totalAmount,
		&capitalPaid, &interestPaid, &remainingCapital, &remainingInterest,
		&issueDate, &dueDate, &statusStr, &daysOverdue,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Loan{}, fmt.Errorf("scan loan: %w", err)
	}

	status, err := valueobject.ParseLoanStatus(statusStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan status: %w", err)
	}
	currency, err := money.NewCurrency(currencyCode)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan currency: %w", err)
	}

	return model.ReconstructLoan(
		id, code, clientID, currency,
		amount, interestRate, interestAmount, totalAmount,
		capitalPaid, interestPaid,
		remainingCapital, remainingInterest,
		issueDate, dueDate, status, daysOverdue,
		version, createdAt, updatedAt,
	), nil
}

func insertSnapshot(ctx context.Context, q pgutil.Querier, h model.LoanHistory) error {
	_, err := q.Exec(ctx, `
		INSERT INTO loan_history (
			id, loan_id, total_amount, interest_amount,
			capital_paid, interest_paid, amount, recorded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		h.ID, h.LoanID, h.TotalAmount, h.InterestAmount,
		h.CapitalPaid, h.InterestPaid, h.Amount, h.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert loan history: %w", err)
	}
	return nil
}
