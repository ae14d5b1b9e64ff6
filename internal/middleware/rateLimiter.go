package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands each client address its own token bucket.
// Buckets untouched for limiterIdleTTL are dropped on the next sweep.
type IPRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		clients:   make(map[string]*clientLimiter),
		limit:     r,
		burst:     b,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (i *IPRateLimiter) Allow(ip string) bool {
	return i.limiterFor(ip).Allow()
}

func (i *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()
	now := i.now()
	if now.Sub(i.lastSweep) > limiterIdleTTL {
		i.sweepLocked(now)
	}
	c, ok := i.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(i.limit, i.burst)}
		i.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

func (i *IPRateLimiter) sweepLocked(now time.Time) {
	for ip, c := range i.clients {
		if now.Sub(c.lastSeen) > limiterIdleTTL {
			delete(i.clients, ip)
		}
	}
	i.lastSweep = now
}

func (i *IPRateLimiter) tracked() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.clients)
}

//TODO: move the per-IP limiters to redis once more than one API instance runs
