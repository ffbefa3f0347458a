// Package asynchook moves hook delivery off the request path.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    HitEvery:  100, // sample hit logs: ~every 100th
//	    MissEvery: 10,
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := pagecache.New(ctx, renderer, pagecache.Options{
//	    Pages: []pagecache.Page{pagecache.Prefix("/blog")},
//	    Hooks: hooks, // or `raw` if you don’t want async
//	})
//
// Events are dropped when the queue is full.
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/pagecache"
)

type Hooks struct {
	inner   pagecache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ pagecache.Hooks = (*Hooks)(nil)

func New(inner pagecache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for range workers {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close stops accepting events and drains the queue.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the queue was full
// or the hooks were closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(k string, age time.Duration) { h.try(func() { h.inner.Hit(k, age) }) }
func (h *Hooks) Miss(k string)                   { h.try(func() { h.inner.Miss(k) }) }
func (h *Hooks) Bypass(route string)             { h.try(func() { h.inner.Bypass(route) }) }
func (h *Hooks) LookupError(k string, err error) { h.try(func() { h.inner.LookupError(k, err) }) }
func (h *Hooks) DecodeError(k string, err error) { h.try(func() { h.inner.DecodeError(k, err) }) }
func (h *Hooks) StoreRejected(k string)          { h.try(func() { h.inner.StoreRejected(k) }) }
func (h *Hooks) StoreError(k string, err error)  { h.try(func() { h.inner.StoreError(k, err) }) }
func (h *Hooks) VersionReset(from, to string)    { h.try(func() { h.inner.VersionReset(from, to) }) }
func (h *Hooks) VersionCheckError(err error)     { h.try(func() { h.inner.VersionCheckError(err) }) }
func (h *Hooks) VersionSaved(v string)           { h.try(func() { h.inner.VersionSaved(v) }) }
