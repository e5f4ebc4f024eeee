package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jceconsulta/internal/ratelimit/models"
)

// takeScript mirrors take() in bucket.go as a single atomic Redis operation:
// refill both windows for the elapsed time, consume one token from each when
// both have capacity, and report the retry hint of the most restrictive
// exhausted window. Keys expire after the configured idle period so
// abandoned buckets clean themselves up.
var takeScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local short_cap = tonumber(ARGV[2])
local short_rate = tonumber(ARGV[3])
local short_period = tonumber(ARGV[4])
local long_cap = tonumber(ARGV[5])
local long_rate = tonumber(ARGV[6])
local long_period = tonumber(ARGV[7])
local ttl = tonumber(ARGV[8])

local st = redis.call('HMGET', KEYS[1], 'short', 'long', 'updated')
local short_tokens = tonumber(st[1])
local long_tokens = tonumber(st[2])
local updated = tonumber(st[3])

if not short_tokens then
  short_tokens = short_cap
  long_tokens = long_cap
  updated = now
end

local elapsed = now - updated
if elapsed < 0 then elapsed = 0 end

short_tokens = math.min(short_cap, short_tokens + elapsed * short_rate / short_period)
long_tokens = math.min(long_cap, long_tokens + elapsed * long_rate / long_period)

local allowed = 0
local retry = 0

if short_tokens >= 1 and long_tokens >= 1 then
  allowed = 1
  short_tokens = short_tokens - 1
  long_tokens = long_tokens - 1
else
  if short_tokens < 1 then
    retry = (1 - short_tokens) * short_period / short_rate
  end
  if long_tokens < 1 then
    local wait = (1 - long_tokens) * long_period / long_rate
    if wait > retry then retry = wait end
  end
end

redis.call('HSET', KEYS[1], 'short', short_tokens, 'long', long_tokens, 'updated', now)
redis.call('PEXPIRE', KEYS[1], ttl)

local remaining = math.floor(math.min(short_tokens, long_tokens))
return {allowed, remaining, math.ceil(retry)}
`)

// RedisStore is the shared bucket store. All instances of the service
// consult the same counters, so limits hold across the whole deployment.
type RedisStore struct {
	client redis.Scripter
	limits models.Limits
	expiry time.Duration
	now    func() time.Time
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisClock replaces the time source. Used by integration tests.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisStore) { s.now = now }
}

// NewRedisStore creates a Redis-backed two-window bucket store.
func NewRedisStore(client redis.Scripter, limits models.Limits, expiry time.Duration, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		limits: limits,
		expiry: expiry,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Take atomically consumes one token from both windows of the bucket for key.
func (s *RedisStore) Take(ctx context.Context, key string) (*models.Result, error) {
	now := s.now()

	raw, err := takeScript.Run(ctx, s.client, []string{key},
		now.UnixMilli(),
		s.limits.ShortCapacity(),
		s.limits.RequestsPerMinute,
		shortPeriod.Milliseconds(),
		s.limits.LongCapacity(),
		s.limits.RequestsPerHour,
		longPeriod.Milliseconds(),
		s.expiry.Milliseconds(),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("bucket take: %w", err)
	}

	vals, ok := raw.([]interface{})
	if !ok || len(vals) != 3 {
		return nil, fmt.Errorf("bucket take: unexpected script reply %v", raw)
	}
	allowed, _ := vals[0].(int64)
	remaining, _ := vals[1].(int64)
	retryMs, _ := vals[2].(int64)

	res := &models.Result{
		Allowed:   allowed == 1,
		Limit:     s.limits.ShortCapacity(),
		Remaining: int(remaining),
		ResetAt:   now,
	}
	if !res.Allowed {
		res.RetryAfter = time.Duration(retryMs) * time.Millisecond
		res.ResetAt = now.Add(res.RetryAfter)
	}
	return res, nil
}
