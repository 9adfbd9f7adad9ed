package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTimeout     = 10 * time.Minute
)

// shopRateLimiter throttles merchant API requests per shop using a token
// bucket per tenant. A zero rate disables throttling entirely.
type shopRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*shopLimiterEntry
	rate      rate.Limit
	burst     int
	cleanupAt time.Time
}

type shopLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newShopRateLimiter(requestsPerSecond float64, burst int) *shopRateLimiter {
	return &shopRateLimiter{
		limiters:  make(map[string]*shopLimiterEntry),
		rate:      rate.Limit(requestsPerSecond),
		burst:     burst,
		cleanupAt: time.Now().Add(limiterCleanupInterval),
	}
}

// Allow reports whether a request from the given shop should proceed.
func (l *shopRateLimiter) Allow(shop string) bool {
	if l.rate <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Now().After(l.cleanupAt) {
		l.cleanup()
		l.cleanupAt = time.Now().Add(limiterCleanupInterval)
	}

	entry, exists := l.limiters[shop]
	if !exists {
		entry = &shopLimiterEntry{
			limiter:  rate.NewLimiter(l.rate, l.burst),
			lastSeen: time.Now(),
		}
		l.limiters[shop] = entry
	}

	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// cleanup drops buckets for shops idle past the timeout. Must be called with
// mu held.
func (l *shopRateLimiter) cleanup() {
	cutoff := time.Now().Add(-limiterIdleTimeout)
	for shop, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, shop)
		}
	}
}

// ActiveShops returns the number of shops with a live bucket.
func (l *shopRateLimiter) ActiveShops() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
