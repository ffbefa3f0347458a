package pagecache

import (
	"context"
	"time"
)

// Render serves route from the cache when possible and falls back to the
// wrapped renderer otherwise. Cache failures never fail the request: a broken
// store degrades to plain rendering. Render errors are returned untouched.
func (c *Cache) Render(ctx context.Context, route string, rc *RequestContext) (*Result, error) {
	c.maybePersistVersion()

	key, ttl, ok := c.policy.cacheKey(route, rc)
	if !ok || !c.renderer.Ready() {
		c.hooks.Bypass(route)
		return c.renderer.Render(ctx, route, rc)
	}

	res, age, hit, err := c.lookup(ctx, key)
	switch {
	case err != nil:
		c.hooks.LookupError(key, err)
	case hit:
		c.hooks.Hit(key, age)
		return res, nil
	default:
		c.hooks.Miss(key)
	}

	if !c.coalesce {
		return c.renderAndStore(ctx, key, ttl, route, rc)
	}

	// Followers get the leader's result pointer; Result is treated as
	// read-only once returned. The shared render outlives the leader's
	// cancellation so a disconnecting client cannot fail the followers.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.flight.Do(key, func() (any, error) {
		return c.renderAndStore(shared, key, ttl, route, rc)
	})
	if v == nil {
		return nil, err
	}
	return v.(*Result), err
}

// Ready reports whether the wrapped renderer is ready.
func (c *Cache) Ready() bool { return c.renderer.Ready() }

func (c *Cache) renderAndStore(ctx context.Context, key string, ttl time.Duration, route string, rc *RequestContext) (*Result, error) {
	res, err := c.renderer.Render(ctx, route, rc)
	if err != nil || res == nil || res.Failed() || res.Redirected {
		return res, err
	}
	c.storeAsync(key, res, ttl)
	return res, nil
}

// storeAsync encodes res now, so later mutation by the caller cannot leak
// into the entry, and writes it in the background.
func (c *Cache) storeAsync(key string, res *Result, ttl time.Duration) {
	b, err := c.encode(res)
	if err != nil {
		c.log.Debug("encode failed; entry not stored", Fields{"key": key, "err": err})
		c.hooks.StoreError(key, err)
		return
	}
	c.goBackground(func(ctx context.Context) {
		ok, err := c.provider.Set(ctx, key, b, 1, ttl)
		switch {
		case err != nil:
			c.log.Debug("store write failed", Fields{"key": key, "err": err})
			c.hooks.StoreError(key, err)
		case !ok:
			c.hooks.StoreRejected(key)
		}
	})
}
