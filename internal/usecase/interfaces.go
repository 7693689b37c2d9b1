package usecase

import (
	"context"
	"time"

	"github.com/iho/pocketledger/internal/domain"
)

// LedgerRepository defines data access for per-user ledgers.
type LedgerRepository interface {
	// Get returns the owner's ledger. A missing ledger is not an error: an
	// empty ledger with Version 0 is returned instead.
	Get(ctx context.Context, ownerID string) (*domain.UserLedger, error)
	// Save overwrites the owner's whole transaction sequence. Unless
	// expectedVersion is domain.AnyVersion, the save fails with
	// domain.ErrVersionConflict when the stored version differs. On success
	// ledger.Version holds the new version.
	Save(ctx context.Context, ledger *domain.UserLedger, expectedVersion int64) error
}

// UserRepository defines data access for credential records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// SessionStore remembers the last authenticated username.
type SessionStore interface {
	SetCurrentUser(ctx context.Context, username string) error
	// CurrentUser returns "" when nobody is logged in.
	CurrentUser(ctx context.Context) (string, error)
	ClearCurrentUser(ctx context.Context) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// PasswordHasher hides how passwords are stored.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues bearer tokens for authenticated users.
type TokenIssuer interface {
	Generate(user *domain.User) (string, error)
}

// Cache defines caching operations.
type Cache interface {
	// Get returns nil and no error on a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release forgets key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// EventPublisher delivers domain events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Retrier re-runs an operation while it fails with a retryable error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
