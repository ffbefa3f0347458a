package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/pagecache/store"
)

const sample = `
listen: ":9090"
content: ./site
log:
  level: debug
cache:
  pages:
    - /blog
    - "re:^/docs/v[0-9]+/"
  use_host_prefix: true
  default_ttl: 90s
  version: 1.0.1
  codec: cbor
  store:
    kind: ristretto
    ttl: 10m
    ristretto:
      num_counters: 1000
      max_cost: 100
      buffer_items: 64
`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pagecache.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeFile(t, sample))
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Listen)
	require.Equal(t, "./site", cfg.Content)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, cfg.Cache.Enabled)
	require.Equal(t, []string{"/blog", "re:^/docs/v[0-9]+/"}, cfg.Cache.Pages)
	require.Equal(t, 90*time.Second, cfg.Cache.DefaultTTL)
	require.Equal(t, store.KindRistretto, cfg.Cache.Store.Kind)
	require.Equal(t, 10*time.Minute, cfg.Cache.Store.TTL)
	require.EqualValues(t, 1000, cfg.Cache.Store.Ristretto.NumCounters)

	opts, err := cfg.Cache.Options()
	require.NoError(t, err)
	require.False(t, opts.Disabled)
	require.Len(t, opts.Pages, 2)
	require.True(t, opts.Pages[1].Match("/docs/v3/x"))
	require.Equal(t, "1.0.1", opts.Version)
	require.NotNil(t, opts.Codec)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PAGECACHE_LISTEN", ":7000")
	t.Setenv("PAGECACHE_CACHE_STORE_KIND", "redis")
	t.Setenv("PAGECACHE_CACHE_STORE_REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("PAGECACHE_CACHE_ENABLED", "false")

	cfg, err := Load(writeFile(t, sample))
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.Listen)
	require.Equal(t, store.KindRedis, cfg.Cache.Store.Kind)
	require.Equal(t, "redis://localhost:6379/2", cfg.Cache.Store.Redis.URL)

	opts, err := cfg.Cache.Options()
	require.NoError(t, err)
	require.True(t, opts.Disabled)
}

func TestDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Listen)
	require.Equal(t, store.KindMemory, cfg.Cache.Store.Kind)
	require.Equal(t, "json", cfg.Cache.Codec)
	require.Empty(t, cfg.Cache.Pages)
}

func TestBareNumberTTLsAreSeconds(t *testing.T) {
	cfg, err := Load(writeFile(t, "cache:\n  pages: [/blog]\n  default_ttl: 1.5\n  store:\n    ttl: 60\n"))
	require.NoError(t, err)
	require.Equal(t, 60*time.Second, cfg.Cache.Store.TTL)
	require.Equal(t, 1500*time.Millisecond, cfg.Cache.DefaultTTL)

	t.Setenv("PAGECACHE_CACHE_STORE_TTL", "120")
	cfg, err = Load("")
	require.NoError(t, err)
	require.Equal(t, 2*time.Minute, cfg.Cache.Store.TTL)

	t.Setenv("PAGECACHE_CACHE_STORE_TTL", "90s")
	cfg, err = Load("")
	require.NoError(t, err)
	require.Equal(t, 90*time.Second, cfg.Cache.Store.TTL)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "listen: \"\"\n"))
	require.ErrorContains(t, err, "listen")

	_, err = Cache{Pages: []string{"re:("}}.Options()
	require.Error(t, err)

	_, err = Cache{Codec: "xml"}.Options()
	require.Error(t, err)
}
