package pagecache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/pagecache/codec"
	pr "github.com/unkn0wn-root/pagecache/provider"
	"github.com/unkn0wn-root/pagecache/store"
)

// Renderer is the expensive operation being cached.
type Renderer interface {
	// Render produces the result for route. A returned error is a render
	// failure and is passed to the caller untouched.
	Render(ctx context.Context, route string, rc *RequestContext) (*Result, error)
	// Ready reports whether the renderer can serve cached content yet.
	// While false, every request bypasses the cache.
	Ready() bool
}

// RendererFunc adapts a function to Renderer. It is always ready.
type RendererFunc func(ctx context.Context, route string, rc *RequestContext) (*Result, error)

func (f RendererFunc) Render(ctx context.Context, route string, rc *RequestContext) (*Result, error) {
	return f(ctx, route, rc)
}

func (RendererFunc) Ready() bool { return true }

// Predicate decides cacheability for a request. When set in Options it fully
// replaces the Pages allowlist and the SPA check.
type Predicate func(route string, rc *RequestContext) bool

// KeyFunc derives the cache key for a cacheable request. Returning ok=false
// skips caching for that request.
type KeyFunc func(route string, rc *RequestContext) (k Key, ok bool)

// Key is the output of a KeyFunc: a key name with or without its own TTL.
type Key struct {
	name   string
	ttl    time.Duration
	hasTTL bool
}

// KeyName is a key whose TTL falls back to the store default.
func KeyName(name string) Key { return Key{name: name} }

// KeyWithTTL is a key with an explicit TTL. ttl <= 0 means no expiry.
func KeyWithTTL(name string, ttl time.Duration) Key {
	return Key{name: name, ttl: max(ttl, 0), hasTTL: true}
}

func (k Key) Name() string { return k.name }

// TTL returns the explicit TTL and whether one was set.
func (k Key) TTL() (time.Duration, bool) { return k.ttl, k.hasTTL }

// Options configure a Cache. Pages (or IsCacheable) and a store are the only
// required parts; others have sensible defaults.
type Options struct {
	// Disabled makes Attach install nothing and New fail with ErrDisabled.
	Disabled bool

	// Pages is the cacheable-path allowlist, checked in order.
	Pages []Page
	// IsCacheable, if set, replaces the Pages allowlist and SPA check entirely.
	IsCacheable Predicate
	// Key, if set, replaces the default key deriver.
	Key KeyFunc
	// UseHostPrefix makes the default key "<hostname>/<route>".
	UseHostPrefix bool

	// Provider is a pre-constructed store. If nil, one is built from Store.
	Provider pr.Provider
	// Store configures the backend built by the store factory when Provider is nil.
	// Store.TTL is also the default entry TTL unless DefaultTTL is set.
	Store store.Config
	// DefaultTTL applies to keys without an explicit TTL. 0 => Store.TTL; both 0 => no expiry.
	DefaultTTL time.Duration

	// Version is the current application version. A different persisted
	// marker wipes the store once at startup. Empty disables the guard.
	Version string
	// VersionKey is the reserved marker key. "" => "appVersion".
	VersionKey string

	Codec          c.Codec[Result] // nil => JSON
	MaxEntryBytes  int             // > 0 wraps Codec in codec.Limit
	CoalesceMisses bool            // concurrent misses on one key share a single render

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
}

// New builds a Cache around r. Unlike Attach it reports configuration
// problems as errors. The version guard starts in the background; New does
// not wait for it.
func New(ctx context.Context, r Renderer, opts Options) (*Cache, error) {
	return newCache(ctx, r, opts)
}
