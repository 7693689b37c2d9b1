package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCachePrefix namespaces derived data so it never collides with the
// users and budgets documents of the Redis storage backend.
const DefaultCachePrefix = "pocketledger:cache:"

// Cache implements usecase.Cache on Redis strings with expiry.
type Cache struct {
	client *redis.Client
	prefix string
}

// NewCache creates a Cache under DefaultCachePrefix.
func NewCache(client *redis.Client) *Cache {
	return NewCacheWithPrefix(client, DefaultCachePrefix)
}

// NewCacheWithPrefix creates a Cache whose keys all start with prefix.
func NewCacheWithPrefix(client *redis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

// Get returns nil and no error on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := c.client.Get(ctx, c.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return v, nil
}

// Set stores value for ttl. A non-positive ttl disables caching and
// drops any previous value so a stale summary cannot outlive it.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return c.Delete(ctx, key)
	}
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
