package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingMarker holds an idempotency key while its request is in flight.
const pendingMarker = "processing"

// DefaultIdempotencyPrefix namespaces Idempotency-Key claims.
const DefaultIdempotencyPrefix = "pocketledger:idempotency:"

// claimAttempts bounds how often a claim is retried when the existing key
// expires between SETNX and GET.
const claimAttempts = 2

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, prefix: DefaultIdempotencyPrefix}
}

// CheckAndSet returns the stored response when key was seen before.
// Otherwise it claims key, storing response or a pending marker when
// response is nil.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	var value any = pendingMarker
	if response != nil {
		value = response
	}

	for range claimAttempts {
		claimed, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
		if err != nil {
			return false, nil, err
		}
		if claimed {
			return false, nil, nil
		}

		existing, err := s.client.Get(ctx, fullKey).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			return false, nil, err
		}
		return true, existing, nil
	}

	return true, []byte(pendingMarker), nil
}

// Update stores the final response for key, replacing the pending marker.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}

// Release deletes key so the request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// IsPending reports whether a stored value is the in-flight marker.
func IsPending(value []byte) bool {
	return string(value) == pendingMarker
}
