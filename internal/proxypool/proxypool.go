// Package proxypool implements a thread-safe round-robin proxy selector,
// modeled on original_source/src/proxy_pool.py and shaped like the
// teacher's internal/ratelimit.Limiter: a small mutex-guarded struct with
// a rotating cursor, generalized from "tokens" to "next proxy pair".
package proxypool

import (
	"sync"

	"github.com/nyxaria/kmfetch/pkg/models"
)

// Pool round-robins over a configured list of proxy pairs. A nil or empty
// Pool yields no proxy for every request, matching "absent or null pool
// yields no proxy" (§4.4).
type Pool struct {
	mu     sync.Mutex
	pairs  []models.ProxyPair
	cursor int
}

// New returns a Pool over the given pairs. An empty slice is valid and
// always yields the zero ProxyPair.
func New(pairs []models.ProxyPair) *Pool {
	return &Pool{pairs: pairs}
}

// Next returns the next proxy pair in rotation, or the zero value if the
// pool is empty.
func (p *Pool) Next() models.ProxyPair {
	if p == nil || len(p.pairs) == 0 {
		return models.ProxyPair{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	pair := p.pairs[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.pairs)
	return pair
}
