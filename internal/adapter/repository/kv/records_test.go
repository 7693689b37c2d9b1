package kv

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/pocketledger/internal/domain"
)

func TestBudgetsDocumentLayout(t *testing.T) {
	store := NewMemoryStore()
	repo := NewLedgerRepository(store)
	ctx := context.Background()

	ledger := &domain.UserLedger{
		OwnerID: "u1",
		Transactions: []domain.Transaction{{
			ID:          "t1",
			Description: "Salary",
			Amount:      decimal.RequireFromString("100.5"),
			Type:        domain.TransactionTypeIncome,
			Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Category:    "salary",
			UserID:      "u1",
		}},
	}
	require.NoError(t, repo.Save(ctx, ledger, 0))

	raw, err := store.Get(ctx, KeyBudgets)
	require.NoError(t, err)

	var doc []map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc, 1)
	assert.Equal(t, "u1", doc[0]["userId"])
	assert.EqualValues(t, 1, doc[0]["version"])

	txns := doc[0]["transactions"].([]any)
	tx := txns[0].(map[string]any)
	assert.Equal(t, "100.5", tx["amount"])
	assert.Equal(t, "2024-01-05", tx["date"])
	assert.Equal(t, "income", tx["type"])
}

func TestLegacyNumericAmountsDecode(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	legacy := `[{"userId":"u1","transactions":[{"id":"t1","description":"Coffee","amount":3.5,"type":"expense","date":"2024-03-01T00:00:00.000Z","category":"food","userId":"u1"}]}]`
	require.NoError(t, store.Update(ctx, KeyBudgets, func([]byte) ([]byte, error) { return []byte(legacy), nil }))

	ledger, err := NewLedgerRepository(store).Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, ledger.Transactions, 1)
	assert.True(t, ledger.Transactions[0].Amount.Equal(decimal.RequireFromString("3.5")))
	assert.Equal(t, "2024-03-01", ledger.Transactions[0].Date.Format(domain.DateLayout))
	assert.Equal(t, int64(0), ledger.Version)
}

func TestCorruptDocumentIsReported(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Update(ctx, KeyUsers, func([]byte) ([]byte, error) { return []byte("{not json"), nil }))

	_, err := NewUserRepository(store).GetByUsername(ctx, "alice")
	assert.ErrorContains(t, err, "corrupt users document")
}
