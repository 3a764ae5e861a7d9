// Package ratelimit keeps one token bucket per key (client IP, view id).
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limit configures a keyed limiter. Zero fields fall back to 60/min, burst 10.
type Limit struct {
	PerMinute int
	Burst     int
}

func (l Limit) normalized() Limit {
	if l.PerMinute <= 0 {
		l.PerMinute = 60
	}
	if l.Burst <= 0 {
		l.Burst = 10
	}
	return l
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed hands out a rate.Limiter per key.
type Keyed struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

// New creates a keyed limiter.
func New(l Limit) *Keyed {
	l = l.normalized()
	return &Keyed{
		limit:   rate.Every(time.Minute / time.Duration(l.PerMinute)),
		burst:   l.Burst,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow reports whether a request for key may proceed now.
func (k *Keyed) Allow(key string) bool {
	now := k.now()
	return k.get(key, now).AllowN(now, 1)
}

func (k *Keyed) get(key string, now time.Time) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// Forget drops the bucket for key.
func (k *Keyed) Forget(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.buckets, key)
}

// Prune drops buckets idle for longer than idle and returns how many went.
func (k *Keyed) Prune(idle time.Duration) int {
	cutoff := k.now().Add(-idle)

	k.mu.Lock()
	defer k.mu.Unlock()
	n := 0
	for key, b := range k.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(k.buckets, key)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}
