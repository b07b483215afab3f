package httputil

import (
	"net/http"
	"sync"
)

// Limiter bounds concurrent in-flight requests per client IP and globally.
type Limiter struct {
	mu       sync.Mutex
	inFlight map[string]int
	total    int
	maxPerIP int
	maxTotal int
}

// NewLimiter creates a Limiter allowing maxPerIP concurrent requests per
// client and maxTotal overall. A non-positive maxTotal defaults to 1000.
func NewLimiter(maxPerIP, maxTotal int) *Limiter {
	if maxTotal <= 0 {
		maxTotal = 1000
	}
	return &Limiter{
		inFlight: make(map[string]int),
		maxPerIP: maxPerIP,
		maxTotal: maxTotal,
	}
}

// Acquire registers a request for ip. It returns false when the client or
// global limit has been reached.
func (l *Limiter) Acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.total >= l.maxTotal {
		return false
	}
	if l.inFlight[ip] >= l.maxPerIP {
		return false
	}

	l.inFlight[ip]++
	l.total++
	return true
}

// Release ends a request registered by Acquire.
func (l *Limiter) Release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.inFlight[ip]--
	l.total--
	if l.inFlight[ip] <= 0 {
		delete(l.inFlight, ip)
	}
}

// Count returns the number of in-flight requests for ip.
func (l *Limiter) Count(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight[ip]
}

// Middleware rejects requests over the limit with 429.
func (l *Limiter) Middleware(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r, trustProxy)
			if !l.Acquire(ip) {
				w.Header().Set("Retry-After", "1")
				WriteError(w, http.StatusTooManyRequests, "too many concurrent requests")
				return
			}
			defer l.Release(ip)
			next.ServeHTTP(w, r)
		})
	}
}
