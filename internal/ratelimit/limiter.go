// Package ratelimit throttles outbound requests per target host so batched
// fetches cannot overwhelm a single listing site.
package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter is the interface the fetcher consumes. Implementations throttle
// on a per-host basis.
type Limiter interface {
	// Wait blocks until a request for the given URL can proceed, or the
	// context is cancelled.
	Wait(ctx context.Context, urlStr string) error

	// Allow reports whether a request for the given URL could proceed
	// immediately without blocking.
	Allow(urlStr string) bool
}

// HostLimiter implements per-host token-bucket rate limiting.
type HostLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	perHost  rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing requestsPerSecond per host with
// the given burst capacity. Non-positive arguments fall back to defaults.
func NewHostLimiter(requestsPerSecond float64, burst int) *HostLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2.0
	}
	if burst <= 0 {
		burst = 4
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until the host bucket for urlStr has a token available.
func (hl *HostLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	host := hostOf(urlStr)
	if host == "" {
		// Unparseable URL; let it proceed and fail at request time.
		return nil
	}
	return hl.limiterFor(host).Wait(ctx)
}

// Allow reports whether a token is immediately available for urlStr's host.
func (hl *HostLimiter) Allow(urlStr string) bool {
	host := hostOf(urlStr)
	if host == "" {
		return true
	}
	return hl.limiterFor(host).Allow()
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.RLock()
	lim, ok := hl.limiters[host]
	hl.mu.RUnlock()
	if ok {
		return lim
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()
	if lim, ok := hl.limiters[host]; ok {
		return lim
	}
	lim = rate.NewLimiter(hl.perHost, hl.burst)
	hl.limiters[host] = lim
	return lim
}

func hostOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}
