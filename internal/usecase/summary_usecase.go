package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/aggregation"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
)

// SummaryUseCase derives dashboard aggregates from a user's ledger.
// Summaries may be cached; cache entries are keyed by ledger version, so any
// save makes older entries unreachable.
type SummaryUseCase struct {
	ledgerRepo LedgerRepository
	cache      Cache
	cacheTTL   time.Duration
	order      aggregation.SeriesOrder
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// SummaryConfig configures SummaryUseCase.
type SummaryConfig struct {
	// Cache is optional.
	Cache    Cache
	CacheTTL time.Duration
	Order    aggregation.SeriesOrder
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

// NewSummaryUseCase creates a new SummaryUseCase.
func NewSummaryUseCase(ledgerRepo LedgerRepository, cfg SummaryConfig) *SummaryUseCase {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultSummaryCacheTTL
	}
	if cfg.Order == "" {
		cfg.Order = aggregation.OrderChronological
	}

	return &SummaryUseCase{
		ledgerRepo: ledgerRepo,
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
		order:      cfg.Order,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Order returns the monthly series order used by default.
func (uc *SummaryUseCase) Order() aggregation.SeriesOrder {
	return uc.order
}

// Summary returns the full dashboard summary for the owner.
func (uc *SummaryUseCase) Summary(ctx context.Context, ownerID string) (*aggregation.Summary, error) {
	ledger, err := uc.ledgerRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	key := summaryCacheKey(ownerID, ledger.Version, uc.order)
	if cached, ok := uc.cached(ctx, key); ok {
		return cached, nil
	}

	start := time.Now()
	summary := aggregation.Summarize(ledger.Transactions, uc.order, aggregation.DefaultRecentCount)
	if uc.metrics != nil {
		uc.metrics.SummaryDuration.Observe(time.Since(start).Seconds())
	}

	uc.store(ctx, key, &summary)

	return &summary, nil
}

// Totals returns income and expense sums.
func (uc *SummaryUseCase) Totals(ctx context.Context, ownerID string) (aggregation.Totals, error) {
	txns, err := uc.load(ctx, ownerID)
	if err != nil {
		return aggregation.Totals{}, err
	}
	return aggregation.TotalsByType(txns), nil
}

// Monthly returns the monthly net series. An empty order falls back to the
// configured default.
func (uc *SummaryUseCase) Monthly(ctx context.Context, ownerID string, order aggregation.SeriesOrder) ([]aggregation.MonthPoint, error) {
	if order == "" {
		order = uc.order
	}

	txns, err := uc.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return aggregation.MonthlySeries(txns, order), nil
}

// Categories returns per-category magnitudes sorted for charting.
func (uc *SummaryUseCase) Categories(ctx context.Context, ownerID string) ([]aggregation.CategoryTotal, error) {
	txns, err := uc.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return aggregation.SortedCategories(aggregation.CategoryBreakdown(txns)), nil
}

// Calendar returns one cell per day of the given month.
func (uc *SummaryUseCase) Calendar(ctx context.Context, ownerID string, year int, month time.Month) ([]aggregation.CalendarDay, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", domain.ErrValidation)
	}

	txns, err := uc.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return aggregation.MonthCalendar(txns, year, month), nil
}

// DayDetail lists the transactions of one calendar day.
type DayDetail struct {
	Day          aggregation.CalendarDay
	Transactions []domain.Transaction
}

// Day returns the indicator and transactions of a single day.
func (uc *SummaryUseCase) Day(ctx context.Context, ownerID string, day time.Time) (*DayDetail, error) {
	txns, err := uc.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	day = domain.DateOf(day)
	detail := &DayDetail{Transactions: []domain.Transaction{}}
	for _, t := range txns {
		if t.OnDay(day) {
			detail.Transactions = append(detail.Transactions, t)
		}
	}

	cells := aggregation.MonthCalendar(detail.Transactions, day.Year(), day.Month())
	detail.Day = cells[day.Day()-1]

	return detail, nil
}

func (uc *SummaryUseCase) load(ctx context.Context, ownerID string) ([]domain.Transaction, error) {
	ledger, err := uc.ledgerRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return ledger.Transactions, nil
}

func (uc *SummaryUseCase) cached(ctx context.Context, key string) (*aggregation.Summary, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil || len(data) == 0 {
		uc.recordCache("miss")
		return nil, false
	}

	var summary aggregation.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable cached summary")
		if err := uc.cache.Delete(ctx, key); err != nil {
			uc.logger.Warn().Err(err).Str("key", key).Msg("failed to evict cached summary")
		}
		uc.recordCache("miss")
		return nil, false
	}

	uc.recordCache("hit")
	return &summary, true
}

func (uc *SummaryUseCase) store(ctx context.Context, key string, summary *aggregation.Summary) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("failed to encode summary for cache")
		return
	}

	if err := uc.cache.Set(ctx, key, data, uc.cacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("failed to cache summary")
	}
}

func (uc *SummaryUseCase) recordCache(result string) {
	if uc.metrics != nil {
		uc.metrics.SummaryCache.WithLabelValues(result).Inc()
	}
}

func summaryCacheKey(ownerID string, version int64, order aggregation.SeriesOrder) string {
	return fmt.Sprintf("summary:%s:v%d:%s", ownerID, version, order)
}
