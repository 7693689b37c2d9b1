package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType says which way a transaction moves the balance.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid checks if the type is income or expense.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// DateLayout is the wire and storage format of transaction dates.
const DateLayout = "2006-01-02"

// Transaction is a single income or expense record. Amount is always a
// non-negative magnitude; the sign comes from Type.
type Transaction struct {
	ID          string
	Description string
	Amount      decimal.Decimal
	Type        TransactionType
	Date        time.Time
	Category    string
	UserID      string
}

// SignedAmount returns the contribution of the transaction to a balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Validate checks the invariants every stored transaction must hold.
func (t Transaction) Validate() error {
	if err := ValidateDescription(t.Description); err != nil {
		return err
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return ValidateCategory(t.Category)
}

// OnDay reports whether the transaction falls on the calendar day of d.
func (t Transaction) OnDay(d time.Time) bool {
	ty, tm, td := t.Date.Date()
	dy, dm, dd := d.Date()
	return ty == dy && tm == dm && td == dd
}

// DateOf truncates t to midnight UTC of its own calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date. RFC 3339 timestamps are accepted too,
// keeping only their calendar day.
func ParseDate(s string) (time.Time, error) {
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return DateOf(ts), nil
}
