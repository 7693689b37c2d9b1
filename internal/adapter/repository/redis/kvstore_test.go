package redis

import (
	"context"
	"testing"

	"github.com/iho/pocketledger/internal/adapter/repository/kv"
	"github.com/iho/pocketledger/internal/adapter/repository/kv/kvtest"
)

func TestKVStore(t *testing.T) {
	kvtest.RunStoreSuite(t, func(t *testing.T) kv.Store {
		client, _ := newTestRedisClient(t)
		t.Cleanup(func() { client.Close() })
		return NewKVStore(client)
	})
}

func TestKVStoreUsesPrefix(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	store := NewKVStore(client)
	if err := kv.NewSessionStore(store).SetCurrentUser(context.Background(), "alice"); err != nil {
		t.Fatalf("set current user: %v", err)
	}

	got, err := mr.Get("pocketledger:" + kv.KeyCurrentUser)
	if err != nil || got != `"alice"` {
		t.Fatalf("expected JSON string under prefixed key, got %q err=%v", got, err)
	}
}
