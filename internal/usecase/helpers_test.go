package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
)

// conflictRetrier retries domain.ErrVersionConflict up to max extra times.
type conflictRetrier struct {
	max      int
	attempts int
}

func (r *conflictRetrier) Retry(_ context.Context, operation func() error) error {
	for {
		r.attempts++
		err := operation()
		if err == nil || !errors.Is(err, domain.ErrVersionConflict) || r.attempts > r.max {
			return err
		}
	}
}

func newTestMetrics(t *testing.T) *metrics.Metrics {
	t.Helper()
	return metrics.NewWithRegisterer(prometheus.NewRegistry())
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func amountPtr(v int64) *decimal.Decimal {
	d := amount(v)
	return &d
}
