package pagecache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	c "github.com/unkn0wn-root/pagecache/codec"
	"github.com/unkn0wn-root/pagecache/internal/wire"
	pr "github.com/unkn0wn-root/pagecache/provider"
	"github.com/unkn0wn-root/pagecache/store"
)

// Cache is the handle returned to the host. It wraps a Renderer with the
// cache-aside protocol and is itself a Renderer. Safe for concurrent use.
type Cache struct {
	renderer Renderer
	provider pr.Provider
	codec    c.Codec[Result]
	policy   policy
	log      Logger
	hooks    Hooks
	now      func() time.Time

	version    string
	versionKey string
	// versionChecked is closed once ensureFresh returns. versionOK is true
	// when the guard left the store consistent with version.
	versionChecked chan struct{}
	versionOK      atomic.Bool
	versionSaved   atomic.Bool
	persisting     atomic.Bool

	coalesce bool
	flight   singleflight.Group

	// base carries values of the construction context without its cancellation.
	base    context.Context
	mu      sync.Mutex
	closing bool
	bg      sync.WaitGroup
	closed  sync.Once
}

var _ Renderer = (*Cache)(nil)

func newCache(ctx context.Context, r Renderer, opts Options) (*Cache, error) {
	if opts.Disabled {
		return nil, ErrDisabled
	}
	if r == nil {
		return nil, ErrNilRenderer
	}
	if len(opts.Pages) == 0 && opts.IsCacheable == nil {
		return nil, ErrNoPages
	}

	p := opts.Provider
	if p == nil {
		var err error
		p, err = store.New(ctx, opts.Store)
		if err != nil {
			return nil, err
		}
	}

	codec := opts.Codec
	if codec == nil {
		codec = c.JSON[Result]{}
	}
	if opts.MaxEntryBytes > 0 {
		codec = c.Limit[Result]{Inner: codec, Max: opts.MaxEntryBytes}
	}

	cc := &Cache{
		renderer: r,
		provider: p,
		codec:    codec,
		policy: policy{
			pages:      append([]Page(nil), opts.Pages...),
			predicate:  opts.IsCacheable,
			keyFn:      opts.Key,
			hostPrefix: opts.UseHostPrefix,
			defaultTTL: max(coalesce(opts.DefaultTTL, opts.Store.TTL), 0),
		},
		log:            coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:          opts.Hooks,
		now:            time.Now,
		version:        opts.Version,
		versionKey:     coalesce(opts.VersionKey, defaultVersionKey),
		versionChecked: make(chan struct{}),
		coalesce:       opts.CoalesceMisses,
		base:           context.WithoutCancel(ctx),
	}

	if cc.hooks == nil {
		cc.hooks = NopHooks{}
	}

	cc.goBackground(cc.ensureFresh)
	return cc, nil
}

// goBackground runs fn on its own goroutine with a context detached from any
// request. Close waits for every fn started before it.
func (c *Cache) goBackground(fn func(ctx context.Context)) bool {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		return false
	}
	c.bg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.bg.Done()
		fn(c.base)
	}()
	return true
}

// Provider returns the underlying store.
func (c *Cache) Provider() pr.Provider { return c.provider }

// Get reads and decodes the entry stored under key. A corrupt entry is
// deleted and reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) (*Result, bool, error) {
	if err := c.checkKey(key); err != nil {
		return nil, false, &OpError{Op: "get", Key: key, Err: err}
	}
	res, _, ok, err := c.lookup(ctx, key)
	if err != nil {
		return nil, false, &OpError{Op: "get", Key: key, Err: err}
	}
	return res, ok, nil
}

// Set encodes r and stores it under key, synchronously.
// ttl == 0 uses the default TTL; ttl < 0 stores without expiry.
func (c *Cache) Set(ctx context.Context, key string, r *Result, ttl time.Duration) error {
	if err := c.checkKey(key); err != nil {
		return &OpError{Op: "set", Key: key, Err: err}
	}
	if r == nil {
		return &OpError{Op: "set", Key: key, Err: errors.New("nil result")}
	}
	switch {
	case ttl == 0:
		ttl = c.policy.defaultTTL
	case ttl < 0:
		ttl = 0
	}
	b, err := c.encode(r)
	if err != nil {
		return &OpError{Op: "set", Key: key, Err: err}
	}
	ok, err := c.provider.Set(ctx, key, b, 1, ttl)
	if err != nil {
		return &OpError{Op: "set", Key: key, Err: err}
	}
	if !ok {
		c.hooks.StoreRejected(key)
	}
	return nil
}

// Delete removes key from the store.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.checkKey(key); err != nil {
		return &OpError{Op: "delete", Key: key, Err: err}
	}
	if err := c.provider.Del(ctx, key); err != nil {
		return &OpError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Reset wipes the store, version marker included. The marker is written
// again on the next rendered request.
func (c *Cache) Reset(ctx context.Context) error {
	if err := c.provider.Reset(ctx); err != nil {
		return &OpError{Op: "reset", Err: err}
	}
	c.versionSaved.Store(false)
	c.log.Info("cache reset", Fields{"version": c.version})
	return nil
}

// Close waits for pending background writes and then closes the provider.
// Calls after the first return nil.
func (c *Cache) Close(ctx context.Context) error {
	var err error
	c.closed.Do(func() {
		c.mu.Lock()
		c.closing = true
		c.mu.Unlock()

		c.bg.Wait()
		err = c.provider.Close(ctx)
	})
	return err
}

func (c *Cache) checkKey(key string) error {
	switch {
	case key == "":
		return ErrEmptyKey
	case key == c.versionKey:
		return ErrReservedKey
	}
	return nil
}

// lookup fetches key and unwraps it. Undecodable bytes are deleted and
// count as a miss, not an error.
func (c *Cache) lookup(ctx context.Context, key string) (*Result, time.Duration, bool, error) {
	raw, ok, err := c.provider.Get(ctx, key)
	if err != nil {
		return nil, 0, false, err
	}
	if !ok || len(raw) == 0 {
		return nil, 0, false, nil
	}
	e, err := wire.Decode(raw)
	if err != nil {
		c.selfHeal(ctx, key, err)
		return nil, 0, false, nil
	}
	res, err := c.codec.Decode(e.Payload)
	if err != nil {
		c.selfHeal(ctx, key, err)
		return nil, 0, false, nil
	}
	return &res, max(c.now().Sub(e.StoredAt), 0), true, nil
}

func (c *Cache) selfHeal(ctx context.Context, key string, cause error) {
	c.hooks.DecodeError(key, cause)
	if err := c.provider.Del(ctx, key); err != nil {
		c.log.Debug("delete of corrupt entry failed", Fields{"key": key, "err": err})
	}
}

func (c *Cache) encode(r *Result) ([]byte, error) {
	payload, err := c.codec.Encode(*r)
	if err != nil {
		return nil, err
	}
	return wire.Encode(payload, c.now()), nil
}
