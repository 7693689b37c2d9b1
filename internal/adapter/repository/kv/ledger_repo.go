package kv

import (
	"context"
	"fmt"

	"github.com/iho/pocketledger/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository over the budgets
// document. All ledgers share one document, so every save rewrites it
// through Store.Update.
type LedgerRepository struct {
	store Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Get returns the owner's ledger, empty when none was saved yet.
func (r *LedgerRepository) Get(ctx context.Context, ownerID string) (*domain.UserLedger, error) {
	var budgets []budgetRecord
	if err := readDocument(ctx, r.store, KeyBudgets, &budgets); err != nil {
		return nil, err
	}

	ledger := domain.NewUserLedger(ownerID)
	for _, b := range budgets {
		if b.UserID != ownerID {
			continue
		}

		ledger.Version = b.Version
		for _, rec := range b.Transactions {
			t, err := recordToTransaction(rec)
			if err != nil {
				return nil, fmt.Errorf("transaction %s of %s: %w", rec.ID, ownerID, err)
			}
			ledger.Transactions = append(ledger.Transactions, t)
		}
		break
	}

	return ledger, nil
}

// Save overwrites the owner's ledger after checking expectedVersion.
func (r *LedgerRepository) Save(ctx context.Context, ledger *domain.UserLedger, expectedVersion int64) error {
	records := make([]transactionRecord, 0, len(ledger.Transactions))
	for _, t := range ledger.Transactions {
		records = append(records, transactionToRecord(t))
	}

	var newVersion int64
	err := updateDocument(ctx, r.store, KeyBudgets, func(budgets *[]budgetRecord) error {
		idx := -1
		var current int64
		for i, b := range *budgets {
			if b.UserID == ledger.OwnerID {
				idx, current = i, b.Version
				break
			}
		}

		if expectedVersion != domain.AnyVersion && expectedVersion != current {
			return domain.ErrVersionConflict
		}

		newVersion = current + 1
		rec := budgetRecord{UserID: ledger.OwnerID, Version: newVersion, Transactions: records}
		if idx < 0 {
			*budgets = append(*budgets, rec)
		} else {
			(*budgets)[idx] = rec
		}
		return nil
	})
	if err != nil {
		return err
	}

	ledger.Version = newVersion
	return nil
}
