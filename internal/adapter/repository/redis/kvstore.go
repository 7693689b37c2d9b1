package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const maxWatchAttempts = 50

// KVStore implements kv.Store on Redis strings. Update uses WATCH so a
// concurrent writer forces a re-read instead of a lost update.
type KVStore struct {
	client *redis.Client
	prefix string
}

// NewKVStore creates a new KVStore.
func NewKVStore(client *redis.Client) *KVStore {
	return &KVStore{
		client: client,
		prefix: "pocketledger:",
	}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return v, err
}

func (s *KVStore) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	fullKey := s.prefix + key

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, fullKey).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, fullKey)
			} else {
				pipe.Set(ctx, fullKey, next, 0)
			}
			return nil
		})
		return err
	}

	for range maxWatchAttempts {
		err := s.client.Watch(ctx, txf, fullKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}

	return fmt.Errorf("update %s: too much contention", key)
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
