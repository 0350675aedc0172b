package platform

import (
	"context"
	"fmt"
	"net"

	"integritywatch/internal/security"
)

// RateLimitedReverseDNS wraps the standard library's reverse DNS
// resolver with a token-bucket limiter so a process with many
// suspicious connections cannot drive unbounded resolver traffic.
type RateLimitedReverseDNS struct {
	limiter *security.RateLimiter
	resolver *net.Resolver
}

// NewRateLimitedReverseDNS builds a resolver allowing ratePerSecond
// lookups sustained, bursting up to burst.
func NewRateLimitedReverseDNS(ratePerSecond float64, burst int) *RateLimitedReverseDNS {
	return &RateLimitedReverseDNS{
		limiter:  security.NewRateLimiter(ratePerSecond, burst),
		resolver: net.DefaultResolver,
	}
}

// Lookup implements ReverseDNSProber. Rate-limited calls return an empty
// hostname rather than an error — the caller treats "no hostname" as
// inconclusive, not a probe failure.
func (r *RateLimitedReverseDNS) Lookup(ctx context.Context, addr string) (string, error) {
	if !r.limiter.Allow() {
		return "", nil
	}

	names, err := r.resolver.LookupAddr(ctx, addr)
	if err != nil {
		return "", fmt.Errorf("platform: reverse dns %s: %w", addr, err)
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}
