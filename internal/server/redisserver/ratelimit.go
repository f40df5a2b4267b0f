package redisserver

import (
	"sync"

	"golang.org/x/time/rate"
)

// rateLimiterRegistry hands out one token bucket per client IP. A bucket
// lives while at least one connection from its IP is open, so connections
// from the same host share a budget.
type rateLimiterRegistry struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*ipLimiter
}

type ipLimiter struct {
	*rate.Limiter
	refs int
}

func newRateLimiterRegistry(perSecond float64, burst int) *rateLimiterRegistry {
	if burst <= 0 {
		burst = max(1, int(perSecond))
	}
	return &rateLimiterRegistry{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*ipLimiter),
	}
}

// acquire returns the limiter for ip and takes a reference on it.
func (r *rateLimiterRegistry) acquire(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[ip]
	if !ok {
		l = &ipLimiter{Limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[ip] = l
	}
	l.refs++
	return l.Limiter
}

// release drops a reference taken by acquire.
func (r *rateLimiterRegistry) release(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[ip]
	if !ok {
		return
	}
	l.refs--
	if l.refs <= 0 {
		delete(r.limiters, ip)
	}
}

func (r *rateLimiterRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
