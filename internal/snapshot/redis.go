package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// RedisKey holds the serialized store.
	RedisKey = "procureflow:snapshot"
	// RedisVersionKey is incremented on every save.
	RedisVersionKey = "procureflow:snapshot:version"
)

// Redis stores the snapshot under a single key.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis wraps client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

// Load returns the stored payload, or nil when the key does not exist.
func (r *Redis) Load(ctx context.Context) ([]byte, error) {
	payload, err := r.client.Get(ctx, RedisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: redis get: %w", err)
	}
	return payload, nil
}

// Save writes the payload and bumps the version atomically.
func (r *Redis) Save(ctx context.Context, payload []byte) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, RedisKey, payload, 0)
		pipe.Incr(ctx, RedisVersionKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("snapshot: redis set: %w", err)
	}
	return nil
}

// Version reports how many saves have happened; zero when none.
func (r *Redis) Version(ctx context.Context) (int64, error) {
	v, err := r.client.Get(ctx, RedisVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("snapshot: redis version: %w", err)
	}
	return v, nil
}
