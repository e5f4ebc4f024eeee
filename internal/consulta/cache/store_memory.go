package cache

import (
	"context"
	"sync"
	"time"

	"jceconsulta/internal/jce"
)

// MemoryStore is an in-process consultation cache. It backs tests and
// single-instance deployments that run without Redis.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	rec       jce.Record
	expiresAt time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock replaces the time source. Used by tests to drive expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates an in-memory consultation cache.
func NewMemoryStore(ttl time.Duration, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get fetches the cached record for a cédula, treating expired entries as
// misses.
func (s *MemoryStore) Get(ctx context.Context, cedula string) (*jce.Record, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[recordKey(cedula)]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expiresAt) {
		return nil, false, nil
	}
	rec := entry.rec
	return &rec, true, nil
}

// Put stores the record for a cédula with the configured TTL.
func (s *MemoryStore) Put(ctx context.Context, cedula string, rec *jce.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[recordKey(cedula)] = memoryEntry{
		rec:       *rec,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}
