package proxy

import (
	"strings"
	"sync"
	"time"
)

// DefaultCooldown is how long a failed proxy is skipped
const DefaultCooldown = 5 * time.Minute

// Pool rotates through the configured proxies, one per collection run.
// A nil *Pool is valid and always hands out the direct connection ("").
type Pool struct {
	proxies  []string
	index    int
	cooldown time.Duration
	failed   map[string]time.Time
	mu       sync.Mutex
	now      func() time.Time
}

// NewPool creates a Pool. Blank entries are dropped; an empty list yields nil.
func NewPool(proxies []string, cooldown time.Duration) *Pool {
	cleaned := make([]string, 0, len(proxies))
	for _, p := range proxies {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Pool{
		proxies:  cleaned,
		cooldown: cooldown,
		failed:   make(map[string]time.Time),
		now:      time.Now,
	}
}

// ParseList splits a comma separated proxy list as given on the command line
func ParseList(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Next returns the next healthy proxy. When every proxy is cooling down the
// rotation continues anyway rather than stalling the run.
func (p *Pool) Next() string {
	if p == nil {
		return ""
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.index
	for {
		candidate := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		failedAt, ok := p.failed[candidate]
		if !ok {
			return candidate
		}
		if p.now().Sub(failedAt) >= p.cooldown {
			delete(p.failed, candidate)
			return candidate
		}
		if p.index == start {
			return candidate
		}
	}
}

// MarkFailed puts a proxy on cooldown
func (p *Pool) MarkFailed(proxy string) {
	if p == nil || proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = p.now()
}

// MarkHealthy clears the failure status of a proxy
func (p *Pool) MarkHealthy(proxy string) {
	if p == nil || proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}

// Len returns the number of configured proxies
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.proxies)
}
