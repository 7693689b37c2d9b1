// Package kvtest checks that a kv.Store and the repositories built on it
// behave the same on every backend.
package kvtest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/pocketledger/internal/adapter/repository/kv"
	"github.com/iho/pocketledger/internal/domain"
)

// RunStoreSuite runs the shared checks against stores made by newStore.
// Every subtest gets a fresh, empty store.
func RunStoreSuite(t *testing.T, newStore func(t *testing.T) kv.Store) {
	t.Helper()

	t.Run("store get missing", func(t *testing.T) {
		store := newStore(t)
		v, err := store.Get(context.Background(), "nope")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("store update and delete", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Update(ctx, "k", func(cur []byte) ([]byte, error) {
			assert.Nil(t, cur)
			return []byte(`"v1"`), nil
		}))

		v, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `"v1"`, string(v))

		require.NoError(t, store.Update(ctx, "k", func([]byte) ([]byte, error) { return nil, nil }))
		v, err = store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("store update error keeps value", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		boom := errors.New("boom")

		require.NoError(t, store.Update(ctx, "k", func([]byte) ([]byte, error) { return []byte("1"), nil }))
		err := store.Update(ctx, "k", func([]byte) ([]byte, error) { return []byte("2"), boom })
		assert.ErrorIs(t, err, boom)

		v, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "1", string(v))
	})

	t.Run("store ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(context.Background()))
	})

	t.Run("users", func(t *testing.T) {
		testUsers(t, kv.NewUserRepository(newStore(t)))
	})

	t.Run("ledger round trip", func(t *testing.T) {
		testLedgerRoundTrip(t, kv.NewLedgerRepository(newStore(t)))
	})

	t.Run("ledger version conflict", func(t *testing.T) {
		testLedgerVersionConflict(t, kv.NewLedgerRepository(newStore(t)))
	})

	t.Run("ledger concurrent saves", func(t *testing.T) {
		testConcurrentSaves(t, kv.NewLedgerRepository(newStore(t)))
	})

	t.Run("session", func(t *testing.T) {
		testSession(t, kv.NewSessionStore(newStore(t)))
	})
}

func testUsers(t *testing.T, repo *kv.UserRepository) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	alice := &domain.User{ID: "u1", Username: "alice", PasswordHash: "h1", CreatedAt: now, UpdatedAt: now}
	bob := &domain.User{ID: "u2", Username: "bob", PasswordHash: "h2", CreatedAt: now, UpdatedAt: now}

	require.NoError(t, repo.Create(ctx, alice))
	require.NoError(t, repo.Create(ctx, bob))
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{ID: "u3", Username: "alice"}), domain.ErrDuplicateUser)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "h1", got.PasswordHash)
	assert.True(t, got.CreatedAt.Equal(now))

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	renamed := *alice
	renamed.Username = "bob"
	assert.ErrorIs(t, repo.Update(ctx, &renamed), domain.ErrDuplicateUser)

	renamed.Username = "carol"
	require.NoError(t, repo.Update(ctx, &renamed))

	got, err = repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "carol", got.Username)

	_, err = repo.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.ErrorIs(t, repo.Update(ctx, &domain.User{ID: "ghost", Username: "ghost"}), domain.ErrUserNotFound)
}

func sampleTransactions(owner string) []domain.Transaction {
	return []domain.Transaction{
		{
			ID:          "t1",
			Description: "Salary",
			Amount:      decimal.RequireFromString("100.25"),
			Type:        domain.TransactionTypeIncome,
			Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Category:    "salary",
			UserID:      owner,
		},
		{
			ID:          "t2",
			Description: "Groceries",
			Amount:      decimal.NewFromInt(40),
			Type:        domain.TransactionTypeExpense,
			Date:        time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
			Category:    "food",
			UserID:      owner,
		},
	}
}

func testLedgerRoundTrip(t *testing.T, repo *kv.LedgerRepository) {
	ctx := context.Background()

	empty, err := repo.Get(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Version)
	assert.Empty(t, empty.Transactions)

	ledger := &domain.UserLedger{OwnerID: "owner", Transactions: sampleTransactions("owner")}
	require.NoError(t, repo.Save(ctx, ledger, 0))
	assert.Equal(t, int64(1), ledger.Version)

	other := &domain.UserLedger{OwnerID: "other", Transactions: sampleTransactions("other")[:1]}
	require.NoError(t, repo.Save(ctx, other, domain.AnyVersion))

	loaded, err := repo.Get(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.Version)
	require.Len(t, loaded.Transactions, 2)
	for i, want := range ledger.Transactions {
		got := loaded.Transactions[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Description, got.Description)
		assert.True(t, want.Amount.Equal(got.Amount), "amount %s != %s", want.Amount, got.Amount)
		assert.Equal(t, want.Type, got.Type)
		assert.True(t, want.Date.Equal(got.Date))
		assert.Equal(t, want.Category, got.Category)
		assert.Equal(t, want.UserID, got.UserID)
	}

	loadedOther, err := repo.Get(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, loadedOther.Transactions, 1)
}

func testLedgerVersionConflict(t *testing.T, repo *kv.LedgerRepository) {
	ctx := context.Background()

	ledger := &domain.UserLedger{OwnerID: "owner", Transactions: sampleTransactions("owner")}
	require.NoError(t, repo.Save(ctx, ledger, 0))

	stale := &domain.UserLedger{OwnerID: "owner"}
	assert.ErrorIs(t, repo.Save(ctx, stale, 0), domain.ErrVersionConflict)

	require.NoError(t, repo.Save(ctx, &domain.UserLedger{OwnerID: "owner"}, domain.AnyVersion))

	loaded, err := repo.Get(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)
	assert.Empty(t, loaded.Transactions)
}

func testConcurrentSaves(t *testing.T, repo *kv.LedgerRepository) {
	ctx := context.Background()
	const writers = 8

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		conflicts atomic.Int32
	)

	wg.Add(writers)
	for range writers {
		go func() {
			defer wg.Done()
			err := repo.Save(ctx, &domain.UserLedger{OwnerID: "owner", Transactions: sampleTransactions("owner")}, 0)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrVersionConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(writers-1), conflicts.Load())
}

func testSession(t *testing.T, sessions *kv.SessionStore) {
	ctx := context.Background()

	current, err := sessions.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Empty(t, current)

	require.NoError(t, sessions.SetCurrentUser(ctx, "alice"))
	current, err = sessions.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", current)

	require.NoError(t, sessions.ClearCurrentUser(ctx))
	current, err = sessions.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Empty(t, current)
}
