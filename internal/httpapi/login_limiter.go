package httpapi

import (
	"sync"
	"time"
)

// loginLimiter is a small in-memory sliding window limiter keyed by IP and
// email. State is per process; a restart clears it.
type loginLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string][]time.Time
}

func newLoginLimiter(window time.Duration, max int) *loginLimiter {
	return &loginLimiter{
		window:  window,
		max:     max,
		entries: make(map[string][]time.Time),
	}
}

func (l *loginLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	ts := l.entries[key]

	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 && len(ts) > 0 {
		// Every attempt aged out; drop the key so the map cannot grow
		// without bound across many distinct emails.
		delete(l.entries, key)
		ts = nil
	} else {
		ts = kept
	}

	if len(ts) >= l.max {
		l.entries[key] = ts
		return false
	}

	l.entries[key] = append(ts, now)
	return true
}
