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

var _ port.CreditRepository = (*CreditRepo)(nil)

const creditColumns = `
	id, code, client_id, currency,
	capital_amount, tea, monthly_rate,
	grace_days, grace_interest, capitalized_amount,
	installment_amount, installment_count,
	start_date, first_payment_date, end_date,
	status, version, created_at, updated_at`

// CreditRepo implements port.CreditRepository.
type CreditRepo struct {
	pool *pgxpool.Pool
}

// NewCreditRepo creates a new PostgreSQL-backed credit repository.
func NewCreditRepo(pool *pgxpool.Pool) *CreditRepo {
	return &CreditRepo{pool: pool}
}

// Save upserts the credit header. On first insert the installments are
// written in the same transaction; afterwards installments change only
// through InstallmentRepo.
func (r *CreditRepo) Save(ctx context.Context, credit model.Credit) error {
	return pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO credits (` + creditColumns + `)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
			ON CONFLICT (id) DO UPDATE SET
				status     = EXCLUDED.status,
				version    = credits.version + 1,
				updated_at = EXCLUDED.updated_at
			WHERE credits.version = $17
			RETURNING (xmax = 0) AS inserted
		`
		var inserted bool
		err := tx.QueryRow(ctx, query,
			credit.ID(), credit.Code(), credit.ClientID(), credit.Currency().Code(),
			credit.CapitalAmount(), credit.TEA(), credit.MonthlyRate(),
			credit.GraceDays(), credit.GraceInterest(), credit.CapitalizedAmount(),
			credit.InstallmentAmount(), credit.InstallmentCount(),
			credit.StartDate(), credit.FirstPaymentDate(), credit.EndDate(),
			credit.Status().String(), credit.Version(), credit.CreatedAt(), credit.UpdatedAt(),
		).Scan(&inserted)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewConflictError("credit", credit.ID())
		}
		if err != nil {
			return fmt.Errorf("save credit: %w", err)
		}
		if !inserted {
			return nil
		}

		for _, inst := range credit.Installments() {
			if err := insertInstallment(ctx, tx, inst); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID retrieves a credit with its installments.
func (r *CreditRepo) FindByID(ctx context.Context, id string) (model.Credit, error) {
	query := `SELECT ` + creditColumns + ` FROM credits WHERE id = $1`

	credit, err := scanCredit(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return model.Credit{}, notFound(err, "credit", id)
	}

	installments, err := loadInstallments(ctx, r.pool, id)
	if err != nil {
		return model.Credit{}, err
	}
	return credit.WithInstallments(installments), nil
}

// FindByClientID retrieves all credits of a client, newest first.
func (r *CreditRepo) FindByClientID(ctx context.Context, clientID string) ([]model.Credit, error) {
	query := `SELECT ` + creditColumns + ` FROM credits WHERE client_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("query credits: %w", err)
	}
	defer rows.Close()

	var credits []model.Credit
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		credits = append(credits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, c := range credits {
		installments, err := loadInstallments(ctx, r.pool, c.ID())
		if err != nil {
			return nil, err
		}
		credits[i] = c.WithInstallments(installments)
	}
	return credits, nil
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

func scanCredit(s scannable) (model.Credit, error) {
	var (
		id, code, clientID, currencyCode           string
		capitalAmount, tea, monthlyRate            decimal.Decimal
		graceDays                                  int
		graceInterest, capitalized, installmentAmt decimal.Decimal
		installmentCount                           int
		startDate, firstPaymentDate, endDate       time.Time
		statusStr                                  string
		version                                    int
		createdAt, updatedAt                       time.Time
	)

	err := s.Scan(
		&id, &code, &clientID, &currencyCode,
		&capitalAmount, &tea, &monthlyRate,
		&graceDays, &graceInterest, &capitalized,
		&installmentAmt, &installmentCount,
		&startDate, &firstPaymentDate, &endDate,
		&statusStr, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Credit{}, fmt.Errorf("scan credit: %w", err)
	}

	status, err := valueobject.ParseCreditStatus(statusStr)
	if err != nil {
		return model.Credit{}, fmt.Errorf("parse credit status: %w", err)
	}
	currency, err := money.NewCurrency(currencyCode)
	if err != nil {
		return model.Credit{}, fmt.Errorf("parse credit currency: %w", err)
	}

	return model.ReconstructCredit(
		id, code, clientID, currency,
		capitalAmount, tea, monthlyRate,
		graceDays, graceInterest, capitalized, installmentAmt,
		installmentCount,
		startDate, firstPaymentDate, endDate,
		status, nil, version, createdAt, updatedAt,
	), nil
}
