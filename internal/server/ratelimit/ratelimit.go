// Package ratelimit provides per-client token bucket rate limiting for
// the interview API. Login attempts get a much tighter budget than the
// session polling endpoints.
package ratelimit

import (
	"os"
	"sync"
	"time"
)

// Limits per minute. The session endpoints are polled continuously by the
// interviewer UI, so the default budget is generous.
const (
	defaultPerMinute = 240
	loginPerMinute   = 10
)

// staleAfter is how long an idle client's bucket survives before cleanup.
const staleAfter = 10 * time.Minute

type bucket struct {
	capacity   int
	refillRate float64
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

func (b *bucket) take(now time.Time) bool {
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > float64(b.capacity) {
		b.tokens = float64(b.capacity)
	}
	b.lastRefill = now
	b.lastAccess = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Limiter tracks a token bucket per client and endpoint class.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	enabled bool
	stop    chan struct{}
	done    sync.Once
}

// NewLimiter creates a rate limiter. Set RATE_LIMIT_ENABLED=false to
// disable it entirely (local development).
func NewLimiter() *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		enabled: os.Getenv("RATE_LIMIT_ENABLED") != "false",
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a request from clientID to path may proceed.
func (l *Limiter) Allow(clientID, path string) bool {
	if !l.enabled {
		return true
	}

	limit := defaultPerMinute
	if path == "/login" {
		limit = loginPerMinute
	}
	key := clientID + "|" + path

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			capacity:   limit,
			refillRate: float64(limit) / 60.0,
			tokens:     float64(limit),
			lastRefill: time.Now(),
		}
		l.buckets[key] = b
	}
	return b.take(time.Now())
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	l.done.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for key, b := range l.buckets {
				if now.Sub(b.lastAccess) > staleAfter {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
