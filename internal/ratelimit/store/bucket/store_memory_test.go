package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"jceconsulta/internal/ratelimit/models"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx context.Context
	now time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) newStore(limits models.Limits) *MemoryStore {
	return NewMemoryStore(limits, time.Hour, WithClock(func() time.Time { return s.now }))
}

func (s *MemoryStoreSuite) TestShortWindow() {
	limits := models.Limits{RequestsPerMinute: 60, RequestsPerHour: 10000, BurstCapacity: 10}
	store := s.newStore(limits)

	s.Run("fresh client gets capacity plus burst back to back", func() {
		var res *models.Result
		var err error
		for range limits.ShortCapacity() {
			res, err = store.Take(s.ctx, "rl:ip:10.0.0.1")
			s.Require().NoError(err)
			s.Require().True(res.Allowed)
		}
		s.Equal(0, res.Remaining)
	})

	s.Run("next request denied with retry hint", func() {
		res, err := store.Take(s.ctx, "rl:ip:10.0.0.1")
		s.Require().NoError(err)
		s.False(res.Allowed)
		s.Positive(res.RetryAfter)
		s.LessOrEqual(res.RetryAfter, time.Second)
	})

	s.Run("tokens refill with elapsed time", func() {
		// 60 per minute refills one token per second.
		s.now = s.now.Add(time.Second)
		res, err := store.Take(s.ctx, "rl:ip:10.0.0.1")
		s.Require().NoError(err)
		s.True(res.Allowed)

		res, err = store.Take(s.ctx, "rl:ip:10.0.0.1")
		s.Require().NoError(err)
		s.False(res.Allowed)
	})
}

func (s *MemoryStoreSuite) TestLongWindowBindsWithoutBurst() {
	limits := models.Limits{RequestsPerMinute: 1000, RequestsPerHour: 5, BurstCapacity: 100}
	store := s.newStore(limits)

	for range 5 {
		res, err := store.Take(s.ctx, "rl:ip:10.0.0.2")
		s.Require().NoError(err)
		s.Require().True(res.Allowed)
	}

	res, err := store.Take(s.ctx, "rl:ip:10.0.0.2")
	s.Require().NoError(err)
	s.False(res.Allowed)
	// The hour window is the restrictive one: 1/5 of an hour per token.
	s.Greater(res.RetryAfter, time.Minute)
}

func (s *MemoryStoreSuite) TestKeysAreIndependent() {
	limits := models.Limits{RequestsPerMinute: 1, RequestsPerHour: 100, BurstCapacity: 0}
	store := s.newStore(limits)

	res, err := store.Take(s.ctx, "rl:ip:10.0.0.3")
	s.Require().NoError(err)
	s.True(res.Allowed)

	res, err = store.Take(s.ctx, "rl:ip:10.0.0.3")
	s.Require().NoError(err)
	s.False(res.Allowed)

	res, err = store.Take(s.ctx, "rl:ip:10.0.0.4")
	s.Require().NoError(err)
	s.True(res.Allowed)
}

func (s *MemoryStoreSuite) TestIdleBucketsEvicted() {
	limits := models.Limits{RequestsPerMinute: 1, RequestsPerHour: 100, BurstCapacity: 0}
	store := s.newStore(limits)

	_, err := store.Take(s.ctx, "rl:ip:10.0.0.5")
	s.Require().NoError(err)
	s.Len(store.buckets, 1)

	s.now = s.now.Add(2 * time.Hour)
	_, err = store.Take(s.ctx, "rl:ip:10.0.0.6")
	s.Require().NoError(err)
	s.Len(store.buckets, 1)
}

func (s *MemoryStoreSuite) TestConcurrent() {
	limits := models.Limits{RequestsPerMinute: 100, RequestsPerHour: 10000, BurstCapacity: 0}
	store := NewMemoryStore(limits, time.Hour, WithClock(func() time.Time {
		return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for range 200 {
		wg.Go(func() {
			res, err := store.Take(s.ctx, "rl:ip:10.0.0.7")
			s.Require().NoError(err)
			if res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		})
	}

	wg.Wait()
	s.Equal(limits.ShortCapacity(), allowed)
}
