package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey holds the catalog document when the redis driver is used.
const DefaultRedisKey = "catalog:sellers"

// RedisSource reads the catalog document from a single Redis string key,
// written by the registration flow (or `salvoctl catalog push`).
type RedisSource struct {
	rdb redis.Cmdable
	key string
}

// NewRedisSource creates a RedisSource. An empty key means DefaultRedisKey.
func NewRedisSource(rdb redis.Cmdable, key string) *RedisSource {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSource{rdb: rdb, key: key}
}

// Snapshot reads the catalog. A missing key yields an empty snapshot.
func (s *RedisSource) Snapshot(ctx context.Context) (*Snapshot, error) {
	// redis/go-redis/v9: Get returns redis.Nil when the key doesn't exist.
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.key, err)
	}
	return Parse(data)
}

// Publish replaces the stored catalog with snap. TTL=0, no expiration.
func (s *RedisSource) Publish(ctx context.Context, snap *Snapshot) error {
	data, err := snap.Marshal()
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key, data, 0).Err()
}
