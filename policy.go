package pagecache

import (
	"time"

	"github.com/unkn0wn-root/pagecache/internal/util"
)

// policy is the key policy resolved once at construction.
type policy struct {
	pages      []Page
	predicate  Predicate
	keyFn      KeyFunc
	hostPrefix bool
	defaultTTL time.Duration
}

// IsCacheable reports whether route may be served from the cache.
// A custom predicate decides alone. Otherwise SPA fallbacks are never
// cacheable and route must match at least one configured page.
func (c *Cache) IsCacheable(route string, rc *RequestContext) bool {
	return c.policy.cacheable(route, rc)
}

// CacheKey returns the storage key and TTL for a request. ok is false when
// the request is not cacheable or no key could be derived for it.
func (c *Cache) CacheKey(route string, rc *RequestContext) (key string, ttl time.Duration, ok bool) {
	return c.policy.cacheKey(route, rc)
}

func (p *policy) cacheable(route string, rc *RequestContext) bool {
	if p.predicate != nil {
		return p.predicate(route, rc)
	}
	if rc.isSPA() {
		return false
	}
	for _, pg := range p.pages {
		if pg.Match(route) {
			return true
		}
	}
	return false
}

func (p *policy) deriveKey(route string, rc *RequestContext) (Key, bool) {
	if p.keyFn != nil {
		k, ok := p.keyFn(route, rc)
		if !ok || k.name == "" {
			return Key{}, false
		}
		return k, true
	}
	// Without a hostname the request is not attributable to a site; skip it
	// even when keys are not host-prefixed.
	hostname := rc.ResolveHostname()
	if hostname == "" || route == "" {
		return Key{}, false
	}
	if p.hostPrefix {
		return KeyName(util.HostKey(hostname, route)), true
	}
	return KeyName(route), true
}

func (p *policy) cacheKey(route string, rc *RequestContext) (string, time.Duration, bool) {
	if !p.cacheable(route, rc) {
		return "", 0, false
	}
	k, ok := p.deriveKey(route, rc)
	if !ok {
		return "", 0, false
	}
	if ttl, explicit := k.TTL(); explicit {
		return k.name, ttl, true
	}
	return k.name, p.defaultTTL, true
}
