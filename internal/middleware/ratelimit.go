package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter caps requests per key over a fixed window. It guards the
// unauthenticated auth endpoints against credential stuffing; keys are
// client IPs.
type RateLimiter struct {
	mu      sync.Mutex
	counts  map[string]*window
	limit   int
	per     time.Duration
	done    chan struct{}
	closeMu sync.Once
}

type window struct {
	count int
	start time.Time
}

// NewRateLimiter allows limit requests per key per window.
func NewRateLimiter(limit int, per time.Duration) *RateLimiter {
	l := &RateLimiter{
		counts: make(map[string]*window),
		limit:  limit,
		per:    per,
		done:   make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Allow reports whether the key has budget left in the current window.
func (l *RateLimiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.counts[key]
	if !ok || now.Sub(w.start) >= l.per {
		l.counts[key] = &window{count: 1, start: now}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// cleanup drops expired windows so the map does not grow with every client
// ever seen.
func (l *RateLimiter) cleanup() {
	ticker := time.NewTicker(l.per)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for key, w := range l.counts {
				if now.Sub(w.start) >= l.per {
					delete(l.counts, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (l *RateLimiter) Close() {
	l.closeMu.Do(func() { close(l.done) })
}

// Middleware rejects over-limit requests with 429, keyed by client IP.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			key = r.RemoteAddr
		}
		if !l.Allow(key) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
