package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jceconsulta/internal/jce"
)

// RedisStore is the shared consultation cache. Entries are JSON-encoded
// records with the configured TTL; all service instances share one cache.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed consultation cache.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get fetches the cached record for a cédula.
func (s *RedisStore) Get(ctx context.Context, cedula string) (*jce.Record, bool, error) {
	raw, err := s.client.Get(ctx, recordKey(cedula)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var rec jce.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return &rec, true, nil
}

// Put stores the record for a cédula with the configured TTL.
func (s *RedisStore) Put(ctx context.Context, cedula string, rec *jce.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := s.client.Set(ctx, recordKey(cedula), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}
