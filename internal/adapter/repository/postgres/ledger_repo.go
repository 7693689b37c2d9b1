package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

const (
	selectLedgerVersionQuery = `SELECT version FROM ledgers WHERE owner_id = $1`

	selectLedgerTransactionsQuery = `
		SELECT id, description, amount::text, type, date, category
		FROM ledger_transactions
		WHERE owner_id = $1
		ORDER BY position
	`

	// createLedgerQuery returns no row when another writer created the
	// ledger first.
	createLedgerQuery = `
		INSERT INTO ledgers (owner_id, version, updated_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (owner_id) DO NOTHING
		RETURNING version
	`

	bumpLedgerQuery = `
		UPDATE ledgers
		SET version = version + 1, updated_at = $3
		WHERE owner_id = $1 AND version = $2
		RETURNING version
	`

	upsertLedgerQuery = `
		INSERT INTO ledgers (owner_id, version, updated_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (owner_id) DO UPDATE
		SET version = ledgers.version + 1, updated_at = EXCLUDED.updated_at
		RETURNING version
	`

	deleteLedgerTransactionsQuery = `DELETE FROM ledger_transactions WHERE owner_id = $1`
)

var ledgerTransactionColumns = []string{
	"owner_id", "position", "id", "description", "amount", "type", "date", "category",
}

// LedgerRepository implements usecase.LedgerRepository. The ledger row
// carries the version; its transactions are rewritten in order on save.
type LedgerRepository struct {
	pool pgxPool
	txm  *TxManager
	now  func() time.Time
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepositoryWithPool(pool)
}

func newLedgerRepositoryWithPool(pool pgxPool) *LedgerRepository {
	return &LedgerRepository{
		pool: pool,
		txm:  newTxManagerWithPool(pool),
		now:  time.Now,
	}
}

// Get loads the owner's ledger.
func (r *LedgerRepository) Get(ctx context.Context, ownerID string) (*domain.UserLedger, error) {
	ledger := domain.NewUserLedger(ownerID)

	err := r.pool.QueryRow(ctx, selectLedgerVersionQuery, ownerID).Scan(&ledger.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger version: %w", err)
	}

	rows, err := r.pool.Query(ctx, selectLedgerTransactionsQuery, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t      domain.Transaction
			amount string
			txType string
		)
		if err := rows.Scan(&t.ID, &t.Description, &amount, &txType, &t.Date, &t.Category); err != nil {
			return nil, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid amount %q for transaction %s: %w", amount, t.ID, err)
		}
		t.Type = domain.TransactionType(txType)
		t.Date = domain.DateOf(t.Date)
		t.UserID = ownerID
		ledger.Transactions = append(ledger.Transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ledger, nil
}

// Save rewrites the ledger inside one transaction.
func (r *LedgerRepository) Save(ctx context.Context, ledger *domain.UserLedger, expectedVersion int64) error {
	rows := make([][]any, 0, len(ledger.Transactions))
	for i, t := range ledger.Transactions {
		amount, err := decimalToNumeric(t.Amount)
		if err != nil {
			return fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		rows = append(rows, []any{
			ledger.OwnerID,
			i,
			t.ID,
			t.Description,
			amount,
			string(t.Type),
			dateToPgDate(t.Date),
			t.Category,
		})
	}

	var newVersion int64

	err := r.txm.WithTx(ctx, func(tx pgx.Tx) error {
		version, err := r.bumpVersion(ctx, tx, ledger.OwnerID, expectedVersion)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, deleteLedgerTransactionsQuery, ledger.OwnerID); err != nil {
			return fmt.Errorf("failed to clear ledger transactions: %w", err)
		}

		if len(rows) > 0 {
			if _, err := tx.CopyFrom(ctx, pgx.Identifier{"ledger_transactions"}, ledgerTransactionColumns, pgx.CopyFromRows(rows)); err != nil {
				return fmt.Errorf("failed to write ledger transactions: %w", err)
			}
		}

		newVersion = version
		return nil
	})
	if err != nil {
		return err
	}

	ledger.Version = newVersion
	return nil
}

func (r *LedgerRepository) bumpVersion(ctx context.Context, tx pgx.Tx, ownerID string, expected int64) (int64, error) {
	now := r.now().UTC()

	var row pgx.Row
	switch expected {
	case domain.AnyVersion:
		row = tx.QueryRow(ctx, upsertLedgerQuery, ownerID, now)
	case 0:
		row = tx.QueryRow(ctx, createLedgerQuery, ownerID, now)
	default:
		row = tx.QueryRow(ctx, bumpLedgerQuery, ownerID, expected, now)
	}

	var version int64
	err := row.Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrVersionConflict
	}
	if err != nil {
		return 0, fmt.Errorf("failed to bump ledger version: %w", err)
	}

	return version, nil
}

func decimalToNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("invalid amount %s: %w", d, err)
	}
	return n, nil
}

func dateToPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.DateOf(t), Valid: true}
}
