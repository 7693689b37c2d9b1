// Package aggregation derives balances, breakdowns and calendar indicators
// from a ledger snapshot. Every function is pure: it reads the slice it is
// given and never mutates it.
package aggregation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

// Totals holds the unsigned sums per transaction type.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net returns income minus expense.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// CategoryTotal is one slice of the category chart.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
	// Percent is the share of the breakdown total, rounded to one decimal.
	Percent decimal.Decimal
}

// NetBalance sums the signed amounts of all transactions.
func NetBalance(txns []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.SignedAmount())
	}
	return total
}

// TotalsByType sums amounts separately for income and expense.
func TotalsByType(txns []domain.Transaction) Totals {
	totals := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range txns {
		switch t.Type {
		case domain.TransactionTypeIncome:
			totals.Income = totals.Income.Add(t.Amount)
		case domain.TransactionTypeExpense:
			totals.Expense = totals.Expense.Add(t.Amount)
		}
	}
	return totals
}

// CategoryBreakdown sums amounts per category without applying a sign, so
// income and expense in the same category add up.
func CategoryBreakdown(txns []domain.Transaction) map[string]decimal.Decimal {
	breakdown := make(map[string]decimal.Decimal)
	for _, t := range txns {
		sum, ok := breakdown[t.Category]
		if !ok {
			sum = decimal.Zero
		}
		breakdown[t.Category] = sum.Add(t.Amount)
	}
	return breakdown
}

// SortedCategories orders a breakdown by amount descending, then by name.
func SortedCategories(breakdown map[string]decimal.Decimal) []CategoryTotal {
	total := decimal.Zero
	out := make([]CategoryTotal, 0, len(breakdown))
	for category, amount := range breakdown {
		total = total.Add(amount)
		out = append(out, CategoryTotal{Category: category, Amount: amount})
	}

	for i := range out {
		out[i].Percent = decimal.Zero
		if total.IsPositive() {
			out[i].Percent = out[i].Amount.Mul(decimal.NewFromInt(100)).Div(total).Round(1)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})

	return out
}

// Recent returns the last n transactions, newest first.
func Recent(txns []domain.Transaction, n int) []domain.Transaction {
	if n <= 0 {
		return []domain.Transaction{}
	}
	if n > len(txns) {
		n = len(txns)
	}

	out := make([]domain.Transaction, 0, n)
	for i := len(txns) - 1; i >= len(txns)-n; i-- {
		out = append(out, txns[i])
	}
	return out
}
