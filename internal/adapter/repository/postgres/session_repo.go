package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const currentUserKey = "currentUser"

// SessionStore implements usecase.SessionStore on the sessions table.
type SessionStore struct {
	pool pgxPool
	now  func() time.Time
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return newSessionStoreWithPool(pool)
}

func newSessionStoreWithPool(pool pgxPool) *SessionStore {
	return &SessionStore{pool: pool, now: time.Now}
}

// SetCurrentUser remembers username as the last authenticated user.
func (s *SessionStore) SetCurrentUser(ctx context.Context, username string) error {
	query := `
		INSERT INTO sessions (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query, currentUserKey, username, s.now().UTC())
	return err
}

// CurrentUser returns the remembered username or "".
func (s *SessionStore) CurrentUser(ctx context.Context) (string, error) {
	var username string
	err := s.pool.QueryRow(ctx, `SELECT value FROM sessions WHERE key = $1`, currentUserKey).Scan(&username)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}

	return username, err
}

// ClearCurrentUser forgets the remembered username.
func (s *SessionStore) ClearCurrentUser(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE key = $1`, currentUserKey)
	return err
}
