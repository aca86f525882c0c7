package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StoreMetrics holds the instruments recorded around every store transaction.
type StoreMetrics struct {
	Transactions        metric.Int64Counter
	TransactionDuration metric.Float64Histogram
	TransactionErrors   metric.Int64Counter
}

// NewStoreMetrics creates the store instruments from the given meter.
func NewStoreMetrics(meter metric.Meter) (*StoreMetrics, error) {
	m := &StoreMetrics{}
	var err error

	m.Transactions, err = meter.Int64Counter("habit.store.transactions",
		metric.WithDescription("Store transactions started"),
	)
	if err != nil {
		return nil, err
	}

	m.TransactionDuration, err = meter.Float64Histogram("habit.store.transaction.duration",
		metric.WithDescription("Store transaction duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.TransactionErrors, err = meter.Int64Counter("habit.store.transaction.errors",
		metric.WithDescription("Store transactions rolled back because of an error"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordTransaction records one finished transaction.
func (m *StoreMetrics) RecordTransaction(ctx context.Context, mode string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("mode", mode))
	m.Transactions.Add(ctx, 1, attrs)
	m.TransactionDuration.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil {
		m.TransactionErrors.Add(ctx, 1, attrs)
	}
}
