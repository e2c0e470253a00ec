package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/procureflow/internal/platform/cache"
	"github.com/odyssey-erp/procureflow/internal/platform/db"
	"github.com/odyssey-erp/procureflow/internal/procurement"
	"github.com/odyssey-erp/procureflow/internal/snapshot"
)

// Backend bundles the snapshot store selected by SNAPSHOT_BACKEND with the
// connections it owns.
type Backend struct {
	Snapshots procurement.SnapshotStore
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	logger    *slog.Logger
}

// OpenBackend connects the configured snapshot backend. Redis is also
// connected when notifications are enabled so callers can reuse it.
func OpenBackend(ctx context.Context, cfg *Config, logger *slog.Logger) (*Backend, error) {
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Backend{logger: logger}

	if cfg.NeedsRedis() {
		client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, err
		}
		b.Redis = client
	}

	switch cfg.SnapshotBackend {
	case BackendPostgres:
		pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Pool = pool
		store := snapshot.NewPostgres(pool, cfg.SnapshotID)
		if err := store.EnsureSchema(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.Snapshots = store
	case BackendRedis:
		b.Snapshots = snapshot.NewRedis(b.Redis)
	case BackendMemory:
		b.Snapshots = snapshot.NewMemory()
	default:
		b.Close()
		return nil, fmt.Errorf("app: unknown snapshot backend %q", cfg.SnapshotBackend)
	}
	logger.Info("snapshot backend ready", slog.String("backend", cfg.SnapshotBackend))
	return b, nil
}

// Health pings whichever connections the backend holds.
func (b *Backend) Health(ctx context.Context) error {
	if b.Pool != nil {
		if err := b.Pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if b.Redis != nil {
		if err := b.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close releases every connection.
func (b *Backend) Close() {
	if b.Pool != nil {
		b.Pool.Close()
	}
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			b.logger.Warn("redis close", slog.Any("error", err))
		}
	}
}

// AsynqRedisOpts returns the queue connection settings.
func (c *Config) AsynqRedisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}
