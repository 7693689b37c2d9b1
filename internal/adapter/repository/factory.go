// Package repository assembles the storage backend selected in config.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/adapter/repository/kv"
	"github.com/iho/pocketledger/internal/adapter/repository/postgres"
	"github.com/iho/pocketledger/internal/adapter/repository/redis"
	"github.com/iho/pocketledger/internal/adapter/repository/sqlite"
	"github.com/iho/pocketledger/internal/infrastructure/config"
	pginfra "github.com/iho/pocketledger/internal/infrastructure/postgres"
	redisinfra "github.com/iho/pocketledger/internal/infrastructure/redis"
	"github.com/iho/pocketledger/internal/usecase"
)

// Backend bundles the repositories of one storage backend.
type Backend struct {
	Name     string
	Users    usecase.UserRepository
	Ledgers  usecase.LedgerRepository
	Sessions usecase.SessionStore
	// Cache and Idempotency are nil unless Redis is configured.
	Cache       usecase.Cache
	Idempotency usecase.IdempotencyStore

	ping    func(ctx context.Context) error
	cleanup []func() error
}

// Ping reports whether the storage backend is reachable.
func (b *Backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Close releases every connection the backend opened.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.cleanup) - 1; i >= 0; i-- {
		if err := b.cleanup[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Factory opens storage backends.
type Factory struct {
	logger zerolog.Logger
}

// NewFactory creates a new Factory.
func NewFactory(logger zerolog.Logger) *Factory {
	return &Factory{logger: logger}
}

// Open connects to the backend named by cfg.StorageBackend. When REDIS_URL
// is set, the Redis cache and idempotency store are attached regardless of
// the storage backend.
func (f *Factory) Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{Name: cfg.StorageBackend}

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		client, err := redisinfra.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisClient = client
		b.cleanup = append(b.cleanup, client.Close)
		b.Cache = redis.NewCache(client)
		b.Idempotency = redis.NewIdempotencyStore(client)
	}

	var err error
	switch cfg.StorageBackend {
	case config.BackendMemory:
		f.useKV(b, kv.NewMemoryStore())
	case config.BackendSQLite:
		err = f.openSQLite(ctx, b, cfg.SQLitePath)
	case config.BackendRedis:
		if redisClient == nil {
			err = errors.New("redis backend requires REDIS_URL")
			break
		}
		f.useKV(b, redis.NewKVStore(redisClient))
	case config.BackendPostgres:
		err = f.openPostgres(ctx, b, cfg)
	default:
		err = fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
	if err != nil {
		b.Close()
		return nil, err
	}

	f.logger.Info().
		Str("backend", b.Name).
		Bool("cache", b.Cache != nil).
		Bool("idempotency", b.Idempotency != nil).
		Msg("storage backend initialized")

	return b, nil
}

func (f *Factory) useKV(b *Backend, store kv.Store) {
	b.Users = kv.NewUserRepository(store)
	b.Ledgers = kv.NewLedgerRepository(store)
	b.Sessions = kv.NewSessionStore(store)
	b.ping = store.Ping
}

func (f *Factory) openSQLite(ctx context.Context, b *Backend, path string) error {
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	b.cleanup = append(b.cleanup, store.Close)
	f.useKV(b, store)

	f.logger.Info().Str("db_path", path).Msg("sqlite store opened")
	return nil
}

func (f *Factory) openPostgres(ctx context.Context, b *Backend, cfg *config.Config) error {
	if err := pginfra.RunMigrations(cfg.DatabaseURL, f.logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := pginfra.NewPoolWithConfig(ctx, pginfra.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	b.cleanup = append(b.cleanup, closePool(pool))

	b.Users = postgres.NewUserRepository(pool)
	b.Ledgers = postgres.NewLedgerRepository(pool)
	b.Sessions = postgres.NewSessionStore(pool)
	b.ping = pool.Ping
	return nil
}

func closePool(pool *pgxpool.Pool) func() error {
	return func() error {
		pool.Close()
		return nil
	}
}
