package kv

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

type userRecord struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type budgetRecord struct {
	UserID       string              `json:"userId"`
	Version      int64               `json:"version"`
	Transactions []transactionRecord `json:"transactions"`
}

type transactionRecord struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	UserID      string          `json:"userId"`
}

func userToRecord(u *domain.User) userRecord {
	return userRecord{
		ID:        u.ID,
		Username:  u.Username,
		Password:  u.PasswordHash,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func recordToUser(r userRecord) *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.Password,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func transactionToRecord(t domain.Transaction) transactionRecord {
	return transactionRecord{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Date:        t.Date.Format(domain.DateLayout),
		Category:    t.Category,
		UserID:      t.UserID,
	}
}

func recordToTransaction(r transactionRecord) (domain.Transaction, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return domain.Transaction{}, err
	}

	return domain.Transaction{
		ID:          r.ID,
		Description: r.Description,
		Amount:      r.Amount,
		Type:        domain.TransactionType(r.Type),
		Date:        date,
		Category:    r.Category,
		UserID:      r.UserID,
	}, nil
}
