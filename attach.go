package pagecache

import (
	"context"
)

// Attach wraps r with the cache described by opts. It is the host-facing
// entry point and prefers serving uncached over failing startup:
//
//   - disabled options or a nil renderer return r unchanged and a nil Cache;
//   - a missing page allowlist logs a warning and returns r unchanged;
//   - store construction errors are returned.
//
// On success the returned Renderer is the Cache itself.
func Attach(ctx context.Context, r Renderer, opts Options) (Renderer, *Cache, error) {
	log := coalesce[Logger](opts.Logger, NopLogger{})
	if opts.Disabled || r == nil {
		return r, nil, nil
	}
	if len(opts.Pages) == 0 && opts.IsCacheable == nil {
		log.Warn("page cache configuration is missing", Fields{})
		return r, nil, nil
	}

	c, err := New(ctx, r, opts)
	if err != nil {
		return r, nil, err
	}
	log.Info("page cache attached", Fields{
		"pages":   len(opts.Pages),
		"version": opts.Version,
	})
	return c, c, nil
}
