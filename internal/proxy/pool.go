// Package proxy rotates outbound requests across a configured proxy list.
package proxy

import (
	"sync"
	"time"
)

// failureCooldown is how long a proxy that produced a failed attempt is
// skipped before being tried again.
const failureCooldown = 5 * time.Minute

// Pool hands out proxies round-robin, skipping ones that failed recently.
// An empty pool hands out the empty string, meaning direct connection.
type Pool struct {
	mu      sync.Mutex
	proxies []string
	index   int
	failed  map[string]time.Time
}

// NewPool creates a Pool over the given proxy URLs.
func NewPool(proxies []string) *Pool {
	return &Pool{
		proxies: proxies,
		failed:  make(map[string]time.Time),
	}
}

// Next returns the next proxy that is not in its failure cooldown. If every
// proxy is cooling down it returns the current one anyway rather than
// stalling the fetch.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	start := p.index
	for {
		candidate := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		failedAt, cooling := p.failed[candidate]
		if !cooling {
			return candidate
		}
		if time.Since(failedAt) >= failureCooldown {
			delete(p.failed, candidate)
			return candidate
		}
		if p.index == start {
			return candidate
		}
	}
}

// MarkFailed puts a proxy into cooldown after a failed attempt.
func (p *Pool) MarkFailed(proxy string) {
	if proxy == "" {
		return
	}
	p.mu.Lock()
	p.failed[proxy] = time.Now()
	p.mu.Unlock()
}

// MarkHealthy clears a proxy's cooldown after a successful attempt.
func (p *Pool) MarkHealthy(proxy string) {
	if proxy == "" {
		return
	}
	p.mu.Lock()
	delete(p.failed, proxy)
	p.mu.Unlock()
}

// Size returns the number of configured proxies.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}
