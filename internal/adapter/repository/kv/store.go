// Package kv persists users, ledgers and the session as JSON documents in
// a key-value store, under the keys the browser build used.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// Document keys.
const (
	KeyUsers       = "users"
	KeyBudgets     = "budgets"
	KeyCurrentUser = "currentUser"
)

// Store is a key-value medium for JSON documents.
type Store interface {
	// Get returns the raw value of key, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Update atomically replaces the value of key with fn(current). current
	// is nil for an absent key and a nil result deletes the key. fn may run
	// more than once; returning an error aborts the update.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

func readDocument(ctx context.Context, store Store, key string, v any) error {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	return decodeDocument(key, raw, v)
}

func decodeDocument(key string, raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("corrupt %s document: %w", key, err)
	}
	return nil
}

// updateDocument decodes the document at key into a fresh T, lets fn modify
// it and writes it back.
func updateDocument[T any](ctx context.Context, store Store, key string, fn func(doc *T) error) error {
	return store.Update(ctx, key, func(current []byte) ([]byte, error) {
		var doc T
		if err := decodeDocument(key, current, &doc); err != nil {
			return nil, err
		}
		if err := fn(&doc); err != nil {
			return nil, err
		}
		return json.Marshal(doc)
	})
}
