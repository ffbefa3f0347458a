package pagecache

import "time"

// Hooks are lightweight callbacks for cache events.
// Implementations MUST be cheap and non-blocking: they run on the request path.
// Wrap slow sinks with hooks/async.
type Hooks interface {
	// A lookup found a valid entry. age is the time since it was stored.
	Hit(key string, age time.Duration)
	// A lookup found nothing under key.
	Miss(key string)
	// The request was rendered without touching the store
	// (not cacheable, no key, or renderer not ready).
	Bypass(route string)

	// The provider failed on Get; the request falls back to rendering.
	LookupError(key string, err error)
	// A stored entry could not be unframed or decoded and was deleted.
	DecodeError(key string, err error)

	// Provider returned ok=false on Set (backpressure/eviction).
	StoreRejected(key string)
	// Encoding or writing a fresh render failed.
	StoreError(key string, err error)

	// The version guard wiped the store. from is "" when no marker existed.
	VersionReset(from, to string)
	// The version marker could not be read; no reset was issued.
	VersionCheckError(err error)
	// The version marker was written.
	VersionSaved(version string)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) Hit(string, time.Duration)   {}
func (NopHooks) Miss(string)                 {}
func (NopHooks) Bypass(string)               {}
func (NopHooks) LookupError(string, error)   {}
func (NopHooks) DecodeError(string, error)   {}
func (NopHooks) StoreRejected(string)        {}
func (NopHooks) StoreError(string, error)    {}
func (NopHooks) VersionReset(string, string) {}
func (NopHooks) VersionCheckError(error)     {}
func (NopHooks) VersionSaved(string)         {}

// MultiHooks fans every event out to hs in order. Nil entries are skipped.
func MultiHooks(hs ...Hooks) Hooks {
	out := make(multiHooks, 0, len(hs))
	for _, h := range hs {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

type multiHooks []Hooks

func (m multiHooks) Hit(k string, age time.Duration) {
	for _, h := range m {
		h.Hit(k, age)
	}
}

func (m multiHooks) Miss(k string) {
	for _, h := range m {
		h.Miss(k)
	}
}

func (m multiHooks) Bypass(route string) {
	for _, h := range m {
		h.Bypass(route)
	}
}

func (m multiHooks) LookupError(k string, err error) {
	for _, h := range m {
		h.LookupError(k, err)
	}
}

func (m multiHooks) DecodeError(k string, err error) {
	for _, h := range m {
		h.DecodeError(k, err)
	}
}

func (m multiHooks) StoreRejected(k string) {
	for _, h := range m {
		h.StoreRejected(k)
	}
}

func (m multiHooks) StoreError(k string, err error) {
	for _, h := range m {
		h.StoreError(k, err)
	}
}

func (m multiHooks) VersionReset(from, to string) {
	for _, h := range m {
		h.VersionReset(from, to)
	}
}

func (m multiHooks) VersionCheckError(err error) {
	for _, h := range m {
		h.VersionCheckError(err)
	}
}

func (m multiHooks) VersionSaved(v string) {
	for _, h := range m {
		h.VersionSaved(v)
	}
}
