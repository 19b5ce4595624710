// Package ratelimit provides a keyed fixed-window request counter.
package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// Limiter allows at most max attempts per key in each fixed window. A window opens on the first
// attempt after the previous one reset, so bursts straddling a window boundary are accepted.
type Limiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string]*window
}

// New returns a Limiter that allows max attempts per key every d.
func New(d time.Duration, max int) *Limiter {
	return &Limiter{
		window:  d,
		max:     max,
		entries: make(map[string]*window),
	}
}

// Allow records an attempt for key at now and reports whether it is within the limit.
// Rejected attempts are not counted.
func (l *Limiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.entries[key]
	if !ok || now.After(w.resetAt) {
		l.entries[key] = &window{count: 1, resetAt: now.Add(l.window)}
		return l.max > 0
	}
	if w.count >= l.max {
		return false
	}
	w.count++
	return true
}

// Sweep drops entries whose window has reset by now and returns how many were removed.
func (l *Limiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, w := range l.entries {
		if now.After(w.resetAt) {
			delete(l.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration {
	return l.window
}
