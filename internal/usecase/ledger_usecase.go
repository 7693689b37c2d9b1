package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/aggregation"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
)

// LedgerUseCase handles reads and writes of a user's transaction ledger.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
	idGen      IDGenerator
	retrier    Retrier
	publisher  EventPublisher
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	ledgerRepo LedgerRepository,
	idGen IDGenerator,
	retrier Retrier,
	publisher EventPublisher,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
		idGen:      idGen,
		retrier:    retrier,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
	}
}

// TransactionInput holds the user-editable fields of a transaction.
type TransactionInput struct {
	Description string
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Date        time.Time
	Category    string
}

func (in TransactionInput) apply(t *domain.Transaction) {
	t.Description = in.Description
	t.Amount = in.Amount
	t.Type = in.Type
	t.Date = domain.DateOf(in.Date)
	t.Category = domain.NormalizeCategory(in.Category)
}

// Load returns the owner's transactions in insertion order. An owner without
// a ledger gets an empty slice.
func (uc *LedgerUseCase) Load(ctx context.Context, ownerID string) ([]domain.Transaction, error) {
	ledger, err := uc.ledgerRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return ledger.Snapshot(), nil
}

// Ledger returns the owner's ledger including its version.
func (uc *LedgerUseCase) Ledger(ctx context.Context, ownerID string) (*domain.UserLedger, error) {
	return uc.ledgerRepo.Get(ctx, ownerID)
}

// Append assigns a fresh id to the transaction, adds it to the end of the
// owner's ledger and persists the whole ledger. Concurrent writers are
// detected through the ledger version and the append is retried.
func (uc *LedgerUseCase) Append(ctx context.Context, ownerID string, input TransactionInput) (*domain.Transaction, error) {
	txn := domain.Transaction{
		ID:     uc.idGen.Generate(),
		UserID: ownerID,
	}
	input.apply(&txn)

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	ledger, err := uc.mutate(ctx, ownerID, func(l *domain.UserLedger) error {
		l.Transactions = append(l.Transactions, txn)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsAppended.WithLabelValues(string(txn.Type)).Inc()
	}

	uc.publish(ctx, domain.Event{
		Type:    domain.EventTypeTransactionAppended,
		OwnerID: ownerID,
		Payload: domain.TransactionAppendedEvent{
			TransactionID: txn.ID,
			Type:          string(txn.Type),
			Amount:        txn.Amount.String(),
			Category:      txn.Category,
			Date:          txn.Date.Format(domain.DateLayout),
			LedgerVersion: ledger.Version,
		},
	})

	return &txn, nil
}

// ReplaceAll overwrites the owner's entire ledger with txns. The last writer
// wins. Every transaction must carry a unique id; ownership and category
// defaults are applied before saving.
func (uc *LedgerUseCase) ReplaceAll(ctx context.Context, ownerID string, txns []domain.Transaction) (*domain.UserLedger, error) {
	normalized, err := normalizeLedger(ownerID, txns)
	if err != nil {
		return nil, err
	}

	ledger := &domain.UserLedger{OwnerID: ownerID, Transactions: normalized}

	storeCtx, cancel := context.WithTimeout(ctx, DefaultStorageTimeout)
	defer cancel()

	if err := uc.ledgerRepo.Save(storeCtx, ledger, domain.AnyVersion); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LedgerReplacements.Inc()
		uc.metrics.LedgerSize.Observe(float64(len(normalized)))
	}

	uc.publish(ctx, domain.Event{
		Type:    domain.EventTypeLedgerReplaced,
		OwnerID: ownerID,
		Payload: domain.LedgerReplacedEvent{
			TransactionCount: len(normalized),
			LedgerVersion:    ledger.Version,
		},
	})

	return ledger, nil
}

// normalizeLedger stamps txns with ownerID, truncates dates and fills
// categories, then validates each transaction and the id set.
func normalizeLedger(ownerID string, txns []domain.Transaction) ([]domain.Transaction, error) {
	normalized := make([]domain.Transaction, len(txns))
	for i, t := range txns {
		t.UserID = ownerID
		t.Date = domain.DateOf(t.Date)
		t.Category = domain.NormalizeCategory(t.Category)
		if err := t.Validate(); err != nil {
			return nil, err
		}
		normalized[i] = t
	}

	if err := domain.ValidateUniqueIDs(normalized); err != nil {
		return nil, err
	}

	return normalized, nil
}

// UpdateTransaction replaces the editable fields of one transaction, keeping
// its id and position.
func (uc *LedgerUseCase) UpdateTransaction(ctx context.Context, ownerID, id string, input TransactionInput) (*domain.Transaction, error) {
	var updated domain.Transaction

	_, err := uc.mutate(ctx, ownerID, func(l *domain.UserLedger) error {
		idx := l.IndexOf(id)
		if idx < 0 {
			return domain.ErrTransactionNotFound
		}

		txn := l.Transactions[idx]
		input.apply(&txn)
		if err := txn.Validate(); err != nil {
			return err
		}

		l.Transactions[idx] = txn
		updated = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsEdited.WithLabelValues("update").Inc()
	}

	return &updated, nil
}

// DeleteTransaction removes one transaction from the owner's ledger.
func (uc *LedgerUseCase) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	_, err := uc.mutate(ctx, ownerID, func(l *domain.UserLedger) error {
		idx := l.IndexOf(id)
		if idx < 0 {
			return domain.ErrTransactionNotFound
		}
		l.Transactions = append(l.Transactions[:idx], l.Transactions[idx+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsEdited.WithLabelValues("delete").Inc()
	}

	return nil
}

// Recent returns the last n transactions, newest first.
func (uc *LedgerUseCase) Recent(ctx context.Context, ownerID string, n int) ([]domain.Transaction, error) {
	txns, err := uc.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return aggregation.Recent(txns, n), nil
}

// mutate runs a load-modify-save cycle guarded by the ledger version and
// retries it on conflict. Errors returned by fn abort without saving.
func (uc *LedgerUseCase) mutate(ctx context.Context, ownerID string, fn func(*domain.UserLedger) error) (*domain.UserLedger, error) {
	storeCtx, cancel := context.WithTimeout(ctx, DefaultStorageTimeout)
	defer cancel()

	var saved *domain.UserLedger

	err := uc.retry(storeCtx, func() error {
		ledger, err := uc.ledgerRepo.Get(storeCtx, ownerID)
		if err != nil {
			return err
		}

		expected := ledger.Version
		if err := fn(ledger); err != nil {
			return err
		}

		if err := uc.ledgerRepo.Save(storeCtx, ledger, expected); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) && uc.metrics != nil {
				uc.metrics.VersionConflicts.Inc()
			}
			return err
		}

		saved = ledger
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LedgerSize.Observe(float64(len(saved.Transactions)))
	}

	return saved, nil
}

func (uc *LedgerUseCase) retry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}
	return uc.retrier.Retry(ctx, operation)
}

func (uc *LedgerUseCase) publish(ctx context.Context, event domain.Event) {
	publishEvent(ctx, uc.publisher, uc.logger, event)
}
