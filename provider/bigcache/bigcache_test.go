package bigcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{LifeWindow: time.Minute, Shards: 16, MaxEntriesInWindow: 128})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestRoundTripAndMiss(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	_, ok, err := p.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = p.Set(ctx, "/blog", []byte("page"), 1, 0)
	require.NoError(t, err)
	require.True(t, ok)

	got, ok, err := p.Get(ctx, "/blog")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("page"), got)

	require.NoError(t, p.Del(ctx, "/blog"))
	require.NoError(t, p.Del(ctx, "/blog"), "deleting a missing key is not an error")
}

func TestResetEmptiesAllShards(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)
	for _, k := range []string{"a", "b", "c"} {
		_, err := p.Set(ctx, k, []byte(k), 1, 0)
		require.NoError(t, err)
	}
	require.Equal(t, 3, p.Len())

	require.NoError(t, p.Reset(ctx))
	require.Zero(t, p.Len())
}
