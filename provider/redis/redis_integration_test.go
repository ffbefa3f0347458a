//go:build integration

package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a throwaway redis:7-alpine container.
func setupRedis(t *testing.T) goredis.UniversalClient {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() {
		_ = client.Close()
		_ = container.Terminate(context.Background())
	})
	return client
}

func TestRedisProvider(t *testing.T) {
	ctx := context.Background()
	client := setupRedis(t)

	p, err := New(Config{Client: client, Prefix: "pages"})
	require.NoError(t, err)
	require.NoError(t, p.Ping(ctx))

	_, ok, err := p.Get(ctx, "/a")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = p.Set(ctx, "/a", []byte("A"), 1, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ttl, err := client.TTL(ctx, "pages:/a").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	_, err = p.Set(ctx, "appVersion", []byte("1.0.0"), 1, 0)
	require.NoError(t, err)
	ttl, err = client.TTL(ctx, "pages:appVersion").Result()
	require.NoError(t, err)
	require.Equal(t, time.Duration(-1), ttl, "ttl 0 stores without expiry")

	got, ok, err := p.Get(ctx, "/a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("A"), got)
}

func TestRedisPrefixedResetLeavesForeignKeys(t *testing.T) {
	ctx := context.Background()
	client := setupRedis(t)

	require.NoError(t, client.Set(ctx, "other:key", "keep", 0).Err())

	p, err := New(Config{Client: client, Prefix: "pages"})
	require.NoError(t, err)
	for i := 0; i < 250; i++ {
		_, err := p.Set(ctx, "/p/"+strconv.Itoa(i), []byte("x"), 1, 0)
		require.NoError(t, err)
	}

	require.NoError(t, p.Reset(ctx))

	n, err := client.Keys(ctx, "pages:*").Result()
	require.NoError(t, err)
	require.Empty(t, n)

	v, err := client.Get(ctx, "other:key").Result()
	require.NoError(t, err)
	require.Equal(t, "keep", v)
}
