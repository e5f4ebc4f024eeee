package bucket

import (
	"context"
	"sync"
	"time"

	"jceconsulta/internal/ratelimit/models"
)

// MemoryStore is the in-process bucket store. It backs tests and serves as
// the degraded-mode fallback when the shared store is unreachable, so
// behavior stays bounded during an outage instead of admitting everything.
type MemoryStore struct {
	mu      sync.Mutex
	limits  models.Limits
	expiry  time.Duration
	buckets map[string]state
	now     func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock replaces the time source. Used by tests to drive refill.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates an in-memory two-window bucket store. Entries idle
// longer than expiry are dropped opportunistically on access.
func NewMemoryStore(limits models.Limits, expiry time.Duration, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		limits:  limits,
		expiry:  expiry,
		buckets: make(map[string]state),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Take consumes one token from both windows of the bucket for key, creating
// a full bucket on first sight.
func (s *MemoryStore) Take(ctx context.Context, key string) (*models.Result, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictIdle(now)

	st, ok := s.buckets[key]
	if !ok {
		st = newState(now, s.limits)
	}

	st, res := take(st, now, s.limits)
	s.buckets[key] = st
	return &res, nil
}

// evictIdle drops buckets untouched for longer than the expiry period.
// Idle buckets are fully refilled anyway, so dropping them is lossless.
func (s *MemoryStore) evictIdle(now time.Time) {
	for key, st := range s.buckets {
		if now.Sub(st.updated) > s.expiry {
			delete(s.buckets, key)
		}
	}
}
