package kv

import (
	"context"
	"encoding/json"
)

// SessionStore implements usecase.SessionStore over the currentUser key.
type SessionStore struct {
	store Store
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(store Store) *SessionStore {
	return &SessionStore{store: store}
}

func (s *SessionStore) SetCurrentUser(ctx context.Context, username string) error {
	return s.store.Update(ctx, KeyCurrentUser, func([]byte) ([]byte, error) {
		return json.Marshal(username)
	})
}

func (s *SessionStore) CurrentUser(ctx context.Context) (string, error) {
	var username string
	if err := readDocument(ctx, s.store, KeyCurrentUser, &username); err != nil {
		return "", err
	}
	return username, nil
}

func (s *SessionStore) ClearCurrentUser(ctx context.Context) error {
	return s.store.Update(ctx, KeyCurrentUser, func([]byte) ([]byte, error) {
		return nil, nil
	})
}
