package pagecache

import (
	"context"
	"errors"

	c "github.com/unkn0wn-root/pagecache/codec"
)

// The marker is stored as raw UTF-8 so operators can read it with any client.
var markerCodec c.Codec[string] = c.String{}

// ensureFresh compares the persisted version marker with the configured
// version and wipes the store when they differ. A missing marker counts as
// different. If the marker cannot be read nothing is reset: a transient
// backend error must not wipe a shared store on every restart. The check is
// not retried.
//
// versionChecked is closed when the guard is done, whatever the outcome.
func (c *Cache) ensureFresh(ctx context.Context) {
	defer close(c.versionChecked)
	if c.version == "" {
		return
	}

	raw, ok, err := c.provider.Get(ctx, c.versionKey)
	if err != nil {
		c.log.Warn("cache version check failed; skipping reset", Fields{"err": err})
		c.hooks.VersionCheckError(err)
		return
	}
	var stored string
	if ok {
		stored, _ = markerCodec.Decode(raw)
	}
	if ok && stored == c.version {
		c.versionOK.Store(true)
		return
	}

	c.log.Info("cache version changed", Fields{"from": stored, "to": c.version})
	if err := c.provider.Reset(ctx); err != nil {
		c.log.Error("cache reset failed", Fields{"err": err})
		c.hooks.VersionCheckError(err)
		return
	}
	c.hooks.VersionReset(stored, c.version)
	c.versionOK.Store(true)
}

// persistVersionOnce writes the version marker unless it is already saved.
// It does nothing until ensureFresh has finished, so the marker can never
// land before the reset it follows. If ensureFresh could not read the marker
// or its reset failed, the marker is never written by this process: the
// store was not verified against this version. Concurrent callers may write
// the marker twice; the flag is only raised after a write succeeded.
func (c *Cache) persistVersionOnce(ctx context.Context) error {
	if c.version == "" || c.versionSaved.Load() {
		return nil
	}
	select {
	case <-c.versionChecked:
	default:
		return nil
	}
	if !c.versionOK.Load() {
		return nil
	}

	b, err := markerCodec.Encode(c.version)
	if err != nil {
		return err
	}
	ok, err := c.provider.Set(ctx, c.versionKey, b, 1, 0)
	if err != nil {
		return err
	}
	if !ok {
		return errMarkerRejected
	}
	c.versionSaved.Store(true)
	c.hooks.VersionSaved(c.version)
	return nil
}

var errMarkerRejected = errors.New("pagecache: version marker rejected by provider")

// maybePersistVersion schedules persistVersionOnce off the request path.
func (c *Cache) maybePersistVersion() {
	if c.version == "" || c.versionSaved.Load() {
		return
	}
	select {
	case <-c.versionChecked:
	default:
		return
	}
	if !c.versionOK.Load() || !c.persisting.CompareAndSwap(false, true) {
		return
	}
	c.goBackground(func(ctx context.Context) {
		defer c.persisting.Store(false)
		if err := c.persistVersionOnce(ctx); err != nil {
			c.log.Debug("version marker write failed", Fields{"err": err})
		}
	})
}

// VersionChecked is closed once the startup version check has finished.
// With an empty Version it is closed immediately.
func (c *Cache) VersionChecked() <-chan struct{} { return c.versionChecked }

// Version returns the configured application version.
func (c *Cache) Version() string { return c.version }
