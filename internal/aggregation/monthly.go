package aggregation

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

// SeriesOrder selects how MonthlySeries groups and orders months.
type SeriesOrder string

const (
	// OrderChronological groups by year and month and sorts ascending.
	OrderChronological SeriesOrder = "chronological"
	// OrderFirstOccurrence groups by month name only, so the same month of
	// different years merges, and keeps the order in which months were
	// first seen while scanning the ledger.
	OrderFirstOccurrence SeriesOrder = "first-occurrence"
)

// ParseSeriesOrder parses a series order, defaulting to chronological.
func ParseSeriesOrder(s string) (SeriesOrder, error) {
	switch SeriesOrder(s) {
	case "", OrderChronological:
		return OrderChronological, nil
	case OrderFirstOccurrence:
		return OrderFirstOccurrence, nil
	default:
		return "", fmt.Errorf("%w: unknown series order %q", domain.ErrValidation, s)
	}
}

// MonthPoint is the net signed amount of one month.
type MonthPoint struct {
	// Year is zero for first-occurrence series, where years are merged.
	Year  int
	Month time.Month
	Label string
	Net   decimal.Decimal
}

// MonthLabel returns the short month name used as chart label.
func MonthLabel(m time.Month) string {
	return m.String()[:3]
}

// MonthlySeries accumulates signed amounts per month.
func MonthlySeries(txns []domain.Transaction, order SeriesOrder) []MonthPoint {
	if order == OrderFirstOccurrence {
		return firstOccurrenceSeries(txns)
	}
	return chronologicalSeries(txns)
}

func chronologicalSeries(txns []domain.Transaction) []MonthPoint {
	type key struct {
		year  int
		month time.Month
	}

	index := make(map[key]int)
	points := make([]MonthPoint, 0)
	for _, t := range txns {
		k := key{year: t.Date.Year(), month: t.Date.Month()}
		i, ok := index[k]
		if !ok {
			i = len(points)
			index[k] = i
			points = append(points, MonthPoint{
				Year:  k.year,
				Month: k.month,
				Label: MonthLabel(k.month),
				Net:   decimal.Zero,
			})
		}
		points[i].Net = points[i].Net.Add(t.SignedAmount())
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		return points[i].Month < points[j].Month
	})

	return points
}

func firstOccurrenceSeries(txns []domain.Transaction) []MonthPoint {
	index := make(map[string]int)
	points := make([]MonthPoint, 0)
	for _, t := range txns {
		label := MonthLabel(t.Date.Month())
		i, ok := index[label]
		if !ok {
			i = len(points)
			index[label] = i
			points = append(points, MonthPoint{
				Month: t.Date.Month(),
				Label: label,
				Net:   decimal.Zero,
			})
		}
		points[i].Net = points[i].Net.Add(t.SignedAmount())
	}
	return points
}
