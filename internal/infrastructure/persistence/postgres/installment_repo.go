package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/valueobject"
	pgutil "github.com/bibbank/credit-service/pkg/postgres"
)

var _ port.InstallmentRepository = (*InstallmentRepo)(nil)

const installmentColumns = `
	id, credit_id, number, due_date, amount,
	principal_due, interest_due, principal_paid, interest_paid,
	principal_remaining, interest_remaining,
	status, payment_date, payment_method,
	version, created_at, updated_at`

// InstallmentRepo implements port.InstallmentRepository.
type InstallmentRepo struct {
	pool *pgxpool.Pool
}

// NewInstallmentRepo creates a new PostgreSQL-backed installment repository.
func NewInstallmentRepo(pool *pgxpool.Pool) *InstallmentRepo {
	return &InstallmentRepo{pool: pool}
}

// FindByID retrieves one installment.
func (r *InstallmentRepo) FindByID(ctx context.Context, id string) (model.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE id = $1`
	inst, err := scanInstallment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return model.Installment{}, notFound(err, "installment", id)
	}
	return inst, nil
}

// FindByCreditID retrieves the installments of a credit ordered by number.
func (r *InstallmentRepo) FindByCreditID(ctx context.Context, creditID string) ([]model.Installment, error) {
	return loadInstallments(ctx, r.pool, creditID)
}

// FindOverdue returns unpaid installments of non-cancelled credits whose due
// date is before today.
func (r *InstallmentRepo) FindOverdue(ctx context.Context, today time.Time) ([]model.Installment, error) {
	query := `
		SELECT ` + prefixed("i", installmentColumns) + `
		FROM installments i
		JOIN credits c ON c.id = i.credit_id
		WHERE c.status <> 'CANCELLED'
		  AND i.status IN ('PENDING', 'PARTIALLY_PAID')
		  AND i.due_date < $1
		ORDER BY i.due_date, i.credit_id, i.number
	`
	return queryInstallments(ctx, r.pool, query, model.DateOf(today))
}

// UpdateStatus persists a status change guarded by the installment version.
func (r *InstallmentRepo) UpdateStatus(ctx context.Context, inst model.Installment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE installments
		SET status = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4
	`, inst.Status().String(), inst.UpdatedAt(), inst.ID(), inst.Version())
	if err != nil {
		return fmt.Errorf("update installment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewConflictError("installment", inst.ID())
	}
	return nil
}

// ApplyPayment locks the installment row, runs fn and stores the new
// balances together with the payment record. A zero-amount payment writes
// nothing.
func (r *InstallmentRepo) ApplyPayment(
	ctx context.Context,
	id string,
	fn port.InstallmentPaymentFunc,
) (model.Installment, model.CreditPayment, error) {
	var (
		next    model.Installment
		payment model.CreditPayment
	)

	err := pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `SELECT ` + installmentColumns + ` FROM installments WHERE id = $1 FOR UPDATE`
		locked, err := scanInstallment(tx.QueryRow(ctx, query, id))
		if err != nil {
			return notFound(err, "installment", id)
		}

		next, payment, err = fn(locked)
		if err != nil {
			return err
		}
		if payment.TotalAmount.IsZero() {
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE installments SET
				principal_paid      = $1,
				interest_paid       = $2,
				principal_remaining = $3,
				interest_remaining  = $4,
				status              = $5,
				payment_date        = $6,
				payment_method      = $7,
				version             = version + 1,
				updated_at          = $8
			WHERE id = $9
		`,
			next.PrincipalPaid(), next.InterestPaid(),
			next.PrincipalRemaining(), next.InterestRemaining(),
			next.Status().String(), nullDate(next.PaymentDate()), nullMethod(next.PaymentMethod()),
			next.UpdatedAt(), next.ID(),
		)
		if err != nil {
			return fmt.Errorf("update installment: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO credit_payments (
				id, credit_id, installment_id, installment_number,
				principal_amount, interest_amount, total_amount,
				method, paid_at, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
			payment.ID, payment.CreditID, payment.InstallmentID, payment.InstallmentNumber,
			payment.PrincipalAmount, payment.InterestAmount, payment.TotalAmount,
			payment.Method.String(), payment.PaidAt, payment.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert credit payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Installment{}, model.CreditPayment{}, err
	}
	return next, payment, nil
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

func insertInstallment(ctx context.Context, q pgutil.Querier, inst model.Installment) error {
	_, err := q.Exec(ctx, `
		INSERT INTO installments (`+installmentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (credit_id, number) DO NOTHING
	`,
		inst.ID(), inst.CreditID(), inst.Number(), inst.DueDate(), inst.Amount(),
		inst.PrincipalDue(), inst.InterestDue(), inst.PrincipalPaid(), inst.InterestPaid(),
		inst.PrincipalRemaining(), inst.InterestRemaining(),
		inst.Status().String(), nullDate(inst.PaymentDate()), nullMethod(inst.PaymentMethod()),
		inst.Version(), inst.CreatedAt(), inst.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save installment %d: %w", inst.Number(), err)
	}
	return nil
}

func loadInstallments(ctx context.Context, q pgutil.Querier, creditID string) ([]model.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE credit_id = $1 ORDER BY number`
	return queryInstallments(ctx, q, query, creditID)
}

func queryInstallments(ctx context.Context, q pgutil.Querier, query string, args ...any) ([]model.Installment, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query installments: %w", err)
	}
	defer rows.Close()

	var out []model.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func scanInstallment(s scannable) (model.Installment, error) {
	var (
		id, creditID                          string
		number                                int
		dueDate                               time.Time
		amount, principalDue, interestDue     decimal.Decimal
		principalPaid, interestPaid           decimal.Decimal
		principalRemaining, interestRemaining decimal.Decimal
		statusStr                             string
		paymentDate                           *time.Time
		paymentMethod                         *string
		version                               int
		createdAt, updatedAt                  time.Time
	)

	err := s.Scan(
		&id, &creditID, &number, &dueDate, &amount,
		&principalDue, &interestDue, &principalPaid, &interestPaid,
		&principalRemaining, &interestRemaining,
		&statusStr, &paymentDate, &paymentMethod,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Installment{}, fmt.Errorf("scan installment: %w", err)
	}

	status, err := valueobject.ParseInstallmentStatus(statusStr)
	if err != nil {
		return model.Installment{}, fmt.Errorf("parse installment status: %w", err)
	}

	var method valueobject.PaymentMethod
	if m := stringOrEmpty(paymentMethod); m != "" {
		if method, err = valueobject.ParsePaymentMethod(m); err != nil {
			return model.Installment{}, fmt.Errorf("parse payment method: %w", err)
		}
	}

	return model.ReconstructInstallment(
		id, creditID, number, dueDate,
		amount, principalDue, interestDue,
		principalPaid, interestPaid,
		principalRemaining, interestRemaining,
		status, dateOrZero(paymentDate), method,
		version, createdAt, updatedAt,
	), nil
}

func nullMethod(m valueobject.PaymentMethod) *string {
	if m == "" {
		return nil
	}
	s := m.String()
	return &s
}

// prefixed qualifies every column of a column list with alias.
func prefixed(alias, columns string) string {
	fields := strings.Split(columns, ",")
	for i, f := range fields {
		fields[i] = alias + "." + strings.TrimSpace(f)
	}
	return strings.Join(fields, ", ")
}
