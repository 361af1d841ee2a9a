// Package ratelimiter implements a token-bucket limiter keyed by an
// arbitrary identity (IP, email, or a global key). Idle buckets expire so
// the map does not grow without bound.
package ratelimiter

import (
	"sync"
	"time"
)

type bucket struct {
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
	mu         sync.Mutex
	timer      *time.Timer
	identity   string
	parent     *Limiter
}

// Limiter manages one token bucket per identity.
type Limiter struct {
	buckets        map[string]*bucket
	mu             sync.RWMutex
	rate           float64
	capacity       float64
	expirationTime time.Duration
}

// New creates a Limiter refilling rate tokens per second up to capacity.
// Buckets idle for expirationTime are dropped.
func New(rate, capacity float64, expirationTime time.Duration) *Limiter {
	return &Limiter{
		buckets:        make(map[string]*bucket),
		rate:           rate,
		capacity:       capacity,
		expirationTime: expirationTime,
	}
}

func (l *Limiter) cleanup(identity string) {
	l.mu.Lock()
	delete(l.buckets, identity)
	l.mu.Unlock()
}

// resetTimer may be called from the read-locked fast path in getBucket,
// so the timer is guarded by the bucket's own mutex.
func (b *bucket) resetTimer() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.parent.expirationTime, func() {
		b.parent.cleanup(b.identity)
	})
}

func (l *Limiter) getBucket(identity string) *bucket {
	l.mu.RLock()
	b, exists := l.buckets[identity]
	l.mu.RUnlock()

	if exists {
		b.resetTimer()
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if b, exists = l.buckets[identity]; exists {
		b.resetTimer()
		return b
	}

	b = &bucket{
		tokens:     l.capacity,
		capacity:   l.capacity,
		rate:       l.rate,
		lastRefill: time.Now(),
		identity:   identity,
		parent:     l,
	}
	l.buckets[identity] = b
	b.resetTimer()

	return b
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()

	b.tokens += elapsed * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Allow reports whether a request for identity may proceed now.
func (l *Limiter) Allow(identity string) bool {
	return l.getBucket(identity).allow()
}

// Stop cancels all expiration timers.
func (l *Limiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.buckets {
		b.mu.Lock()
		if b.timer != nil {
			b.timer.Stop()
		}
		b.mu.Unlock()
	}
}

// Common presets

func OnceInSecond() *Limiter { return New(1, 1, time.Hour) }
func Rps10() *Limiter        { return New(10, 10, time.Hour) }
func Rps100() *Limiter       { return New(100, 100, time.Hour) }
