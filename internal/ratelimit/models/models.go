// Package models holds the shared types of the ratelimit module.
package models

import (
	"time"
)

// KeyPrefixIP namespaces per client address buckets in the shared store.
const KeyPrefixIP = "rl:ip:"

// ClientKey derives the bucket key for a client address.
func ClientKey(addr string) string {
	return KeyPrefixIP + addr
}

// Limits defines the two-window admission policy: a short window with burst
// allowance and a long window without one. A request is admitted only when
// both windows have capacity; admission consumes one token from each.
type Limits struct {
	RequestsPerMinute int
	RequestsPerHour   int
	BurstCapacity     int
}

// ShortCapacity is the effective short-window capacity including burst.
func (l Limits) ShortCapacity() int {
	return l.RequestsPerMinute + l.BurstCapacity
}

// LongCapacity is the long-window capacity. No burst applies.
func (l Limits) LongCapacity() int {
	return l.RequestsPerHour
}

// Result is the outcome of one admission check.
type Result struct {
	Allowed bool
	// Limit is the short-window capacity, reported in rate limit headers.
	Limit int
	// Remaining is the lower of the two windows' whole tokens left.
	Remaining int
	// RetryAfter is how long until the most restrictive exhausted window
	// accrues a token. Zero when allowed.
	RetryAfter time.Duration
	// ResetAt is the instant a token becomes available again.
	ResetAt time.Time
}
