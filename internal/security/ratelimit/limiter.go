package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window request limiter keyed by caller identity
// (user id for authenticated requests, remote address otherwise).
type Limiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	maxReqs int
	window  time.Duration
	done    chan struct{}
}

func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	l := &Limiter{
		buckets: make(map[string][]time.Time),
		maxReqs: maxRequests,
		window:  window,
		done:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow records a request for key and reports whether it is within the
// window budget.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.buckets[key][:0]
	for _, t := range l.buckets[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.maxReqs {
		l.buckets[key] = recent
		return false
	}

	l.buckets[key] = append(recent, now)
	return true
}

// sweep drops buckets that have gone idle for a full window.
func (l *Limiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-l.window)
			l.mu.Lock()
			for key, times := range l.buckets {
				if len(times) == 0 || !times[len(times)-1].After(cutoff) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop terminates the background sweeper.
func (l *Limiter) Stop() {
	close(l.done)
}
