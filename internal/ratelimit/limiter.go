package ratelimit

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces requests per endpoint host
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter allowing requestsPerMinute per endpoint.
// A non-positive rate disables pacing.
func NewLimiter(requestsPerMinute float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  perMinute(requestsPerMinute),
		defaultBurst: burst,
	}
}

// Wait blocks until a request to the endpoint is allowed
func (l *Limiter) Wait(ctx context.Context, endpoint string) error {
	return l.getLimiter(Key(endpoint)).Wait(ctx)
}

// getLimiter returns the rate limiter for a host
func (l *Limiter) getLimiter(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[host]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[host] = limiter

	return limiter
}

// Key reduces an endpoint to the host it is paced by.
// Values that are not URLs, such as provider names, are used as-is.
func Key(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return endpoint
	}
	return parsed.Host
}

func perMinute(requestsPerMinute float64) rate.Limit {
	if requestsPerMinute <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Duration(float64(time.Minute) / requestsPerMinute))
}
