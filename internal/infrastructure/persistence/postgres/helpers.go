package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bibbank/credit-service/internal/domain/model"
)

// scannable is satisfied by pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// nullDate maps the zero time to SQL NULL.
func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func dateOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// notFound converts pgx.ErrNoRows into a domain not-found error.
func notFound(err error, entity, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return model.NewNotFoundError(entity, id)
	}
	return err
}
