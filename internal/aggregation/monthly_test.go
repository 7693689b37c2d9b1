package aggregation

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

func TestMonthlySeries_Chronological(t *testing.T) {
	txns := []domain.Transaction{
		tx("mar", 10, domain.TransactionTypeIncome, "2024-03-02", "a"),
		tx("jan", 50, domain.TransactionTypeIncome, "2024-01-10", "a"),
		tx("dec", 5, domain.TransactionTypeExpense, "2023-12-31", "a"),
		tx("jan2", 20, domain.TransactionTypeExpense, "2024-01-11", "a"),
		tx("jan25", 7, domain.TransactionTypeIncome, "2025-01-01", "a"),
	}

	series := MonthlySeries(txns, OrderChronological)

	expected := []struct {
		year  int
		month time.Month
		net   int64
	}{
		{2023, time.December, -5},
		{2024, time.January, 30},
		{2024, time.March, 10},
		{2025, time.January, 7},
	}

	if len(series) != len(expected) {
		t.Fatalf("expected %d points, got %d: %+v", len(expected), len(series), series)
	}
	for i, e := range expected {
		p := series[i]
		if p.Year != e.year || p.Month != e.month || !p.Net.Equal(decimal.NewFromInt(e.net)) {
			t.Errorf("point %d: expected %d-%s %d, got %d-%s %s", i, e.year, e.month, e.net, p.Year, p.Month, p.Net)
		}
		if p.Label != MonthLabel(e.month) {
			t.Errorf("point %d: expected label %s, got %s", i, MonthLabel(e.month), p.Label)
		}
	}
}

func TestMonthlySeries_FirstOccurrence(t *testing.T) {
	txns := []domain.Transaction{
		tx("mar", 10, domain.TransactionTypeIncome, "2024-03-02", "a"),
		tx("jan", 50, domain.TransactionTypeIncome, "2024-01-10", "a"),
		tx("mar2", 4, domain.TransactionTypeExpense, "2024-03-09", "a"),
		tx("jan25", 7, domain.TransactionTypeIncome, "2025-01-01", "a"),
	}

	series := MonthlySeries(txns, OrderFirstOccurrence)

	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d: %+v", len(series), series)
	}
	if series[0].Label != "Mar" || !series[0].Net.Equal(decimal.NewFromInt(6)) {
		t.Errorf("expected Mar 6 first, got %s %s", series[0].Label, series[0].Net)
	}
	// January of both years merges under one label.
	if series[1].Label != "Jan" || !series[1].Net.Equal(decimal.NewFromInt(57)) {
		t.Errorf("expected Jan 57 second, got %s %s", series[1].Label, series[1].Net)
	}
	if series[0].Year != 0 {
		t.Errorf("expected first-occurrence points to carry no year, got %d", series[0].Year)
	}
}

func TestParseSeriesOrder(t *testing.T) {
	tests := []struct {
		input   string
		want    SeriesOrder
		wantErr bool
	}{
		{input: "", want: OrderChronological},
		{input: "chronological", want: OrderChronological},
		{input: "first-occurrence", want: OrderFirstOccurrence},
		{input: "random", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseSeriesOrder(tt.input)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("ParseSeriesOrder(%q): expected validation error, got %v", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseSeriesOrder(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}
