package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/pocketledger/internal/aggregation"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
	"github.com/iho/pocketledger/internal/usecase/mocks"
)

func seedLedger(t *testing.T, repo *mocks.FakeLedgerRepository, ownerID string) {
	t.Helper()
	ledger := &domain.UserLedger{
		OwnerID: ownerID,
		Transactions: []domain.Transaction{
			{ID: "1", Description: "Salary", Amount: amount(100), Type: domain.TransactionTypeIncome, Date: date(t, "2024-01-05"), Category: "salary", UserID: ownerID},
			{ID: "2", Description: "Dinner", Amount: amount(40), Type: domain.TransactionTypeExpense, Date: date(t, "2024-01-20"), Category: "food", UserID: ownerID},
			{ID: "3", Description: "Refund", Amount: amount(50), Type: domain.TransactionTypeIncome, Date: date(t, "2024-02-10"), Category: "other", UserID: ownerID},
			{ID: "4", Description: "Groceries", Amount: amount(80), Type: domain.TransactionTypeExpense, Date: date(t, "2024-02-10"), Category: "food", UserID: ownerID},
		},
	}
	require.NoError(t, repo.Save(context.Background(), ledger, domain.AnyVersion))
}

func TestSummaryUseCase_Summary(t *testing.T) {
	repo := mocks.NewFakeLedgerRepository()
	seedLedger(t, repo, "user-1")

	uc := usecase.NewSummaryUseCase(repo, usecase.SummaryConfig{Logger: testLogger()})

	summary, err := uc.Summary(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TransactionCount)
	assert.True(t, summary.NetBalance.Equal(amount(30)), "net %s", summary.NetBalance)
	assert.True(t, summary.Totals.Income.Equal(amount(150)))
	assert.True(t, summary.Totals.Expense.Equal(amount(120)))

	require.Len(t, summary.Monthly, 2)
	assert.Equal(t, "Jan", summary.Monthly[0].Label)
	assert.True(t, summary.Monthly[0].Net.Equal(amount(60)))
	assert.Equal(t, "Feb", summary.Monthly[1].Label)
	assert.True(t, summary.Monthly[1].Net.Equal(amount(-30)))

	require.NotEmpty(t, summary.Categories)
	assert.Equal(t, "food", summary.Categories[0].Category)
	assert.True(t, summary.Categories[0].Amount.Equal(amount(120)))
}

func TestSummaryUseCase_CacheKeyedByVersion(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewFakeLedgerRepository()
	seedLedger(t, repo, "user-1")

	cache := mocks.NewMapCache()
	m := newTestMetrics(t)
	uc := usecase.NewSummaryUseCase(repo, usecase.SummaryConfig{Cache: cache, Metrics: m, Logger: testLogger()})

	first, err := uc.Summary(ctx, "user-1")
	require.NoError(t, err)
	second, err := uc.Summary(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SummaryCache.WithLabelValues("miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SummaryCache.WithLabelValues("hit")))
	assert.True(t, first.NetBalance.Equal(second.NetBalance))
	assert.Equal(t, first.TransactionCount, second.TransactionCount)

	// A save bumps the version, so the next read recomputes.
	ledgers := newLedgerUseCase(t, repo, nil)
	_, err = ledgers.Append(ctx, "user-1", usecase.TransactionInput{
		Description: "Taxi",
		Amount:      amount(10),
		Type:        domain.TransactionTypeExpense,
		Date:        date(t, "2024-02-11"),
	})
	require.NoError(t, err)

	third, err := uc.Summary(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, third.TransactionCount)
	assert.True(t, third.NetBalance.Equal(amount(20)))
	assert.Equal(t, 2, cache.Len())
}

func TestSummaryUseCase_EvictsUnreadableCacheEntry(t *testing.T) {
	repo := mocks.NewFakeLedgerRepository()
	seedLedger(t, repo, "user-1")

	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)
	key := gomock.Any()
	gomock.InOrder(
		cache.EXPECT().Get(gomock.Any(), key).Return([]byte("{not json"), nil),
		cache.EXPECT().Delete(gomock.Any(), key).Return(nil),
		cache.EXPECT().Set(gomock.Any(), key, gomock.Any(), time.Minute).Return(nil),
	)

	uc := usecase.NewSummaryUseCase(repo, usecase.SummaryConfig{Cache: cache, CacheTTL: time.Minute, Logger: testLogger()})

	summary, err := uc.Summary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TransactionCount)
}

func TestSummaryUseCase_MonthlyOrder(t *testing.T) {
	repo := mocks.NewFakeLedgerRepository()
	require.NoError(t, repo.Save(context.Background(), &domain.UserLedger{
		OwnerID: "user-1",
		Transactions: []domain.Transaction{
			{ID: "1", Description: "a", Amount: amount(5), Type: domain.TransactionTypeIncome, Date: date(t, "2024-03-01"), Category: "x"},
			{ID: "2", Description: "b", Amount: amount(5), Type: domain.TransactionTypeIncome, Date: date(t, "2024-01-01"), Category: "x"},
		},
	}, domain.AnyVersion))

	uc := usecase.NewSummaryUseCase(repo, usecase.SummaryConfig{Logger: testLogger()})
	assert.Equal(t, aggregation.OrderChronological, uc.Order())

	chrono, err := uc.Monthly(context.Background(), "user-1", "")
	require.NoError(t, err)
	require.Len(t, chrono, 2)
	assert.Equal(t, "Jan", chrono[0].Label)

	first, err := uc.Monthly(context.Background(), "user-1", aggregation.OrderFirstOccurrence)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "Mar", first[0].Label)
}

func TestSummaryUseCase_CalendarAndDay(t *testing.T) {
	repo := mocks.NewFakeLedgerRepository()
	seedLedger(t, repo, "user-1")
	uc := usecase.NewSummaryUseCase(repo, usecase.SummaryConfig{Logger: testLogger()})

	days, err := uc.Calendar(context.Background(), "user-1", 2024, time.February)
	require.NoError(t, err)
	require.Len(t, days, 29)
	assert.Equal(t, aggregation.IndicatorExpenseDominant, days[9].Indicator)

	_, err = uc.Calendar(context.Background(), "user-1", 2024, 13)
	assert.ErrorIs(t, err, domain.ErrValidation)

	detail, err := uc.Day(context.Background(), "user-1", date(t, "2024-02-10"))
	require.NoError(t, err)
	assert.Len(t, detail.Transactions, 2)
	assert.Equal(t, aggregation.IndicatorExpenseDominant, detail.Day.Indicator)

	empty, err := uc.Day(context.Background(), "user-1", date(t, "2024-02-11"))
	require.NoError(t, err)
	assert.Empty(t, empty.Transactions)
	assert.Equal(t, aggregation.IndicatorNone, empty.Day.Indicator)
}

func TestSummaryUseCase_EmptyLedger(t *testing.T) {
	uc := usecase.NewSummaryUseCase(mocks.NewFakeLedgerRepository(), usecase.SummaryConfig{Logger: testLogger()})

	summary, err := uc.Summary(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, summary.TransactionCount)
	assert.True(t, summary.NetBalance.IsZero())

	totals, err := uc.Totals(context.Background(), "nobody")
	require.NoError(t, err)
	assert.True(t, totals.Income.IsZero())

	categories, err := uc.Categories(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, categories)
}
