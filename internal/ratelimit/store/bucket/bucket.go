// Package bucket implements the two-window token bucket used for admission
// control. Tokens refill greedily: they accrue proportionally to elapsed
// time and are capped at window capacity. Both windows are evaluated and
// consumed together so a client can never spend short-window burst beyond
// its hourly allowance.
package bucket

import (
	"time"

	"jceconsulta/internal/ratelimit/models"
)

const (
	shortPeriod = time.Minute
	longPeriod  = time.Hour
)

// state carries fractional token counts so greedy refill loses nothing to
// rounding between checks.
type state struct {
	shortTokens float64
	longTokens  float64
	updated     time.Time
}

// take refills both windows for the elapsed time and consumes one token from
// each if both have capacity. It is the single source of truth for the
// bucket math; the memory store calls it directly and the Redis script
// mirrors it.
func take(st state, now time.Time, limits models.Limits) (state, models.Result) {
	shortCap := float64(limits.ShortCapacity())
	longCap := float64(limits.LongCapacity())

	elapsed := now.Sub(st.updated)
	if elapsed < 0 {
		elapsed = 0
	}

	st.shortTokens = refill(st.shortTokens, shortCap, float64(limits.RequestsPerMinute), shortPeriod, elapsed)
	st.longTokens = refill(st.longTokens, longCap, float64(limits.RequestsPerHour), longPeriod, elapsed)
	st.updated = now

	res := models.Result{Limit: limits.ShortCapacity()}

	if st.shortTokens >= 1 && st.longTokens >= 1 {
		st.shortTokens--
		st.longTokens--
		res.Allowed = true
		res.Remaining = int(min(st.shortTokens, st.longTokens))
		res.ResetAt = now
		return st, res
	}

	// The more restrictive window determines the retry hint.
	var wait time.Duration
	if st.shortTokens < 1 {
		wait = timeToToken(st.shortTokens, float64(limits.RequestsPerMinute), shortPeriod)
	}
	if st.longTokens < 1 {
		if w := timeToToken(st.longTokens, float64(limits.RequestsPerHour), longPeriod); w > wait {
			wait = w
		}
	}

	res.RetryAfter = wait
	res.ResetAt = now.Add(wait)
	return st, res
}

func refill(tokens, capacity, rate float64, period time.Duration, elapsed time.Duration) float64 {
	tokens += rate * float64(elapsed) / float64(period)
	if tokens > capacity {
		return capacity
	}
	return tokens
}

// timeToToken returns how long until a bucket below one token reaches one.
func timeToToken(tokens, rate float64, period time.Duration) time.Duration {
	missing := 1 - tokens
	return time.Duration(missing * float64(period) / rate)
}

// newState returns a full bucket, which makes the first ShortCapacity
// requests of a fresh client admissible back to back.
func newState(now time.Time, limits models.Limits) state {
	return state{
		shortTokens: float64(limits.ShortCapacity()),
		longTokens:  float64(limits.LongCapacity()),
		updated:     now,
	}
}
