// Package memory is an in-process map provider with per-entry expiry.
// Writes are visible to the next read, which makes it the default backend
// and the one used in tests.
package memory

import (
	"context"
	"sync"
	"time"

	pr "github.com/unkn0wn-root/pagecache/provider"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type Provider struct {
	mu         sync.RWMutex
	m          map[string]entry
	maxEntries int
	now        func() time.Time
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	// MaxEntries rejects new keys once reached (0 = unbounded). Existing keys
	// can always be overwritten. Expired entries are evicted first.
	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries"`
}

func New(cfg Config) *Provider {
	return &Provider{
		m:          make(map[string]entry),
		maxEntries: cfg.MaxEntries,
		now:        time.Now,
	}
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	e, ok := p.m[key]
	p.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && p.now().After(e.exp) {
		// expired - clean up lazily
		p.mu.Lock()
		if cur, ok := p.m[key]; ok && cur.exp.Equal(e.exp) {
			delete(p.m, key)
		}
		p.mu.Unlock()
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	now := p.now()
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.m[key]; !exists && p.maxEntries > 0 && len(p.m) >= p.maxEntries {
		p.evictExpiredLocked(now)
		if len(p.m) >= p.maxEntries {
			return false, nil
		}
	}
	p.m[key] = entry{v: value, exp: exp}
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.m, key)
	p.mu.Unlock()
	return nil
}

func (p *Provider) Reset(_ context.Context) error {
	p.mu.Lock()
	p.m = make(map[string]entry)
	p.mu.Unlock()
	return nil
}

func (p *Provider) Close(_ context.Context) error { return nil }

// Len reports the number of stored entries, expired ones included.
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.m)
}

func (p *Provider) evictExpiredLocked(now time.Time) {
	for k, e := range p.m {
		if !e.exp.IsZero() && now.After(e.exp) {
			delete(p.m, k)
		}
	}
}
