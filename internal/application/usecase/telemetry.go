package usecase

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/bibbank/credit-service/internal/application/usecase"

var tracer = otel.Tracer(instrumentationName)

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Metrics holds the business counters exported on /metrics. A nil *Metrics
// records nothing.
type Metrics struct {
	schedules       metric.Int64Counter
	installmentPays metric.Int64Counter
	loanPays        metric.Int64Counter
	allocated       metric.Float64Counter
	overdueMarked   metric.Int64Counter
}

// NewMetrics registers the counters on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.schedules, err = meter.Int64Counter("credit_schedules_generated_total",
		metric.WithDescription("Amortization schedules generated, persisted or simulated")); err != nil {
		return nil, err
	}
	if m.installmentPays, err = meter.Int64Counter("credit_installment_payments_total",
		metric.WithDescription("Payments applied to installments")); err != nil {
		return nil, err
	}
	if m.loanPays, err = meter.Int64Counter("credit_loan_payments_total",
		metric.WithDescription("Payments applied to loans")); err != nil {
		return nil, err
	}
	if m.allocated, err = meter.Float64Counter("credit_amount_allocated_total",
		metric.WithDescription("Money allocated by payments, by component")); err != nil {
		return nil, err
	}
	if m.overdueMarked, err = meter.Int64Counter("credit_overdue_marked_total",
		metric.WithDescription("Installments and loans flagged overdue by the sweep")); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Metrics) scheduleGenerated(ctx context.Context, persisted bool) {
	if m == nil {
		return
	}
	m.schedules.Add(ctx, 1, metric.WithAttributes(attribute.Bool("persisted", persisted)))
}

func (m *Metrics) installmentPaid(ctx context.Context, status string, principal, interest decimal.Decimal) {
	if m == nil {
		return
	}
	m.installmentPays.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.allocate(ctx, "installment", principal, interest)
}

func (m *Metrics) loanPaid(ctx context.Context, status string, capital, interest decimal.Decimal) {
	if m == nil {
		return
	}
	m.loanPays.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.allocate(ctx, "loan", capital, interest)
}

func (m *Metrics) allocate(ctx context.Context, product string, principal, interest decimal.Decimal) {
	p, _ := principal.Float64()
	i, _ := interest.Float64()
	m.allocated.Add(ctx, p, metric.WithAttributes(
		attribute.String("product", product), attribute.String("component", "principal")))
	m.allocated.Add(ctx, i, metric.WithAttributes(
		attribute.String("product", product), attribute.String("component", "interest")))
}

func (m *Metrics) overdue(ctx context.Context, kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.overdueMarked.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}
