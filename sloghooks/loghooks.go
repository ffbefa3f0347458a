package sloghooks

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/pagecache"
	"github.com/unkn0wn-root/pagecache/internal/util"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery    uint64
	MissEvery   uint64
	BypassEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr    atomic.Uint64
	missCtr   atomic.Uint64
	bypassCtr atomic.Uint64
}

var _ pagecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return util.Redact(k)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(key string, age time.Duration) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("pagecache.hit",
		"key", h.redact(key),
		"age", age)
}

func (h *Hooks) Miss(key string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("pagecache.miss", "key", h.redact(key))
}

func (h *Hooks) Bypass(route string) {
	if h.l == nil || !sample(h.opts.BypassEvery, &h.bypassCtr) {
		return
	}
	h.l.Debug("pagecache.bypass", "route", h.redact(route))
}

func (h *Hooks) LookupError(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("pagecache.lookup_error",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) DecodeError(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("pagecache.decode_error",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) StoreRejected(key string) {
	if h.l == nil {
		return
	}
	h.l.Info("pagecache.store_rejected", "key", h.redact(key))
}

func (h *Hooks) StoreError(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("pagecache.store_error",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) VersionReset(from, to string) {
	if h.l == nil {
		return
	}
	h.l.Info("pagecache.version_reset",
		"from", from,
		"to", to)
}

func (h *Hooks) VersionCheckError(err error) {
	if h.l == nil {
		return
	}
	h.l.Error("pagecache.version_check_error", "err", err)
}

func (h *Hooks) VersionSaved(version string) {
	if h.l == nil {
		return
	}
	h.l.Debug("pagecache.version_saved", "version", version)
}
