// Package security carries small, broadly-applicable safety helpers used
// across the detection engines: a token-bucket rate limiter for bounding
// the remote-access engine's reverse DNS lookups (spec §5: "the DNS
// reverse lookup (bounded by OS timeouts)" is a suspension point, and an
// engine with many suspicious connections should not hammer a resolver),
// and restrictive file permission helpers for the runtime directory the
// native host and coordinator share.
package security

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited names the rate-limit condition. RateLimiter itself
// never returns it: exhaustion shows as Allow returning false.
var ErrRateLimited = errors.New("security: rate limit exceeded")

// RateLimiter is a token-bucket limiter: rate tokens/second, burst max.
type RateLimiter struct {
	mu         sync.Mutex
	rate       float64
	burst      float64
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a limiter starting with a full bucket.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		rate:       ratePerSecond,
		burst:      float64(burst),
		tokens:     float64(burst),
		lastRefill: time.Now(),
	}
}

// Allow reports whether an operation may proceed now, consuming a token
// if so. It never blocks.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now
	r.tokens = min(r.burst, r.tokens+elapsed*r.rate)

	if r.tokens < 1 {
		return false
	}
	r.tokens--
	return true
}
