package aggregation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

// Indicator classifies a calendar day by the transactions that fall on it.
type Indicator string

const (
	IndicatorNone            Indicator = "none"
	IndicatorIncomeOnly      Indicator = "income-only"
	IndicatorExpenseOnly     Indicator = "expense-only"
	IndicatorExpenseDominant Indicator = "expense-dominant"
	IndicatorMixed           Indicator = "mixed"
)

// CalendarDay is one cell of the month calendar.
type CalendarDay struct {
	Date      time.Time
	Income    decimal.Decimal
	Expense   decimal.Decimal
	Count     int
	Indicator Indicator
}

// DayIndicator classifies day. A day with transactions that all have a zero
// amount is mixed, not none.
func DayIndicator(txns []domain.Transaction, day time.Time) Indicator {
	return summarizeDay(txns, day).Indicator
}

// MonthCalendar returns one entry per day of the given month.
func MonthCalendar(txns []domain.Transaction, year int, month time.Month) []CalendarDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	// Bucket once so the month costs O(days + txns).
	byDay := make(map[int][]domain.Transaction)
	for _, t := range txns {
		y, m, d := t.Date.Date()
		if y == year && m == month {
			byDay[d] = append(byDay[d], t)
		}
	}

	days := make([]CalendarDay, 0, 31)
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		days = append(days, summarizeDay(byDay[d.Day()], d))
	}
	return days
}

func summarizeDay(txns []domain.Transaction, day time.Time) CalendarDay {
	cell := CalendarDay{
		Date:    domain.DateOf(day),
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}

	for _, t := range txns {
		if !t.OnDay(day) {
			continue
		}
		cell.Count++
		switch t.Type {
		case domain.TransactionTypeIncome:
			cell.Income = cell.Income.Add(t.Amount)
		case domain.TransactionTypeExpense:
			cell.Expense = cell.Expense.Add(t.Amount)
		}
	}

	cell.Indicator = classify(cell)
	return cell
}

func classify(cell CalendarDay) Indicator {
	switch {
	case cell.Count == 0:
		return IndicatorNone
	case cell.Income.IsPositive() && cell.Expense.IsZero():
		return IndicatorIncomeOnly
	case cell.Income.IsZero() && cell.Expense.IsPositive():
		return IndicatorExpenseOnly
	case cell.Expense.GreaterThan(cell.Income):
		return IndicatorExpenseDominant
	default:
		return IndicatorMixed
	}
}
