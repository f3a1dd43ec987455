// Package identity issues outbound HTTP client identities. Several of the
// tracked news sites block the default Go user agent, so every request goes
// out under a rotating browser identity.
package identity

import (
	"math/rand"
	"sync"
	"time"
)

// Provider hands out a User-Agent string per request.
type Provider interface {
	Next() string
}

// Static always returns the same identity. Used in tests.
type Static string

func (s Static) Next() string { return string(s) }

var browserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.0.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
}

// Pool rotates over a fixed set of browser user agents in random order.
type Pool struct {
	mu     sync.Mutex
	agents []string
	rnd    *rand.Rand
}

func NewPool() *Pool {
	return &Pool{
		agents: browserAgents,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agents[p.rnd.Intn(len(p.agents))]
}
