// Package ratelimit implements a sliding-window admission limiter.
//
// State is process-local and intentionally not shared across instances:
// each instance enforces its own quota and a fresh process starts every
// key at zero. Cross-instance limiting would need an external shared
// counter store.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter admits up to Quota events per Window for each key.
type Limiter struct {
	mu     sync.Mutex
	window time.Duration
	quota  int
	seen   map[string][]time.Time
	now    func() time.Time
}

// New creates a limiter allowing quota admissions per window.
func New(quota int, window time.Duration) *Limiter {
	return &Limiter{
		window: window,
		quota:  quota,
		seen:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Admit records an admission attempt for key. When the trailing window
// already holds quota admissions it returns false together with the time
// until the oldest admission leaves the window, usable as a Retry-After.
func (l *Limiter) Admit(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.seen[key][:0]
	for _, t := range l.seen[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.quota {
		l.seen[key] = kept
		retryAfter := kept[0].Sub(cutoff)
		if retryAfter <= 0 {
			retryAfter = time.Second
		}
		return false, retryAfter
	}

	l.seen[key] = append(kept, now)
	return true, 0
}

// Remaining reports how many admissions key has left in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	n := 0
	for _, t := range l.seen[key] {
		if t.After(cutoff) {
			n++
		}
	}
	if n >= l.quota {
		return 0
	}
	return l.quota - n
}
