package aggregation

import (
	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

// DefaultRecentCount is how many transactions the dashboard lists.
const DefaultRecentCount = 5

// Summary is everything the dashboard renders, computed in one pass over a
// snapshot.
type Summary struct {
	TransactionCount int
	NetBalance       decimal.Decimal
	Totals           Totals
	Monthly          []MonthPoint
	Categories       []CategoryTotal
	Recent           []domain.Transaction
}

// Summarize computes the dashboard summary.
func Summarize(txns []domain.Transaction, order SeriesOrder, recentN int) Summary {
	return Summary{
		TransactionCount: len(txns),
		NetBalance:       NetBalance(txns),
		Totals:           TotalsByType(txns),
		Monthly:          MonthlySeries(txns, order),
		Categories:       SortedCategories(CategoryBreakdown(txns)),
		Recent:           Recent(txns, recentN),
	}
}
