package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type bucket struct {
	count int
	until time.Time
}

// rateLimiter is a fixed-window per-IP counter. Expired buckets are swept
// whenever a window is opened, so the map stays bounded by the set of IPs
// seen in the last window.
type rateLimiter struct {
	limit int
	per   time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
}

func newRateLimiter(limit int, per time.Duration) *rateLimiter {
	return &rateLimiter{limit: limit, per: per, buckets: make(map[string]*bucket)}
}

func (l *rateLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok || now.After(b.until) {
		for key, other := range l.buckets {
			if now.After(other.until) {
				delete(l.buckets, key)
			}
		}
		b = &bucket{count: 0, until: now.Add(l.per)}
		l.buckets[ip] = b
	}
	if b.count >= l.limit {
		return false
	}
	b.count++
	return true
}

func (l *rateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimit applies a fixed-window per-IP limit.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	limiter := newRateLimiter(limit, per)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(clientIPForRateLimit(r), time.Now()) {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}
	return "unknown"
}
