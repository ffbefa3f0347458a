package promhooks

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := New(reg)
	require.NoError(t, err)

	h.Hit("k", 3*time.Second)
	h.Hit("k", time.Second)
	h.Miss("k")
	h.StoreError("k", errors.New("x"))
	h.VersionReset("1", "2")

	require.Equal(t, 2.0, testutil.ToFloat64(h.events.WithLabelValues(EventHit)))
	require.Equal(t, 1.0, testutil.ToFloat64(h.events.WithLabelValues(EventMiss)))
	require.Equal(t, 0.0, testutil.ToFloat64(h.events.WithLabelValues(EventBypass)))
	require.Equal(t, 1.0, testutil.ToFloat64(h.events.WithLabelValues(EventStoreError)))
	require.Equal(t, 1.0, testutil.ToFloat64(h.versionResets))
	require.Equal(t, 1, testutil.CollectAndCount(h.hitAge))

	// 7 event series plus the four single metrics
	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Equal(t, 11, n)
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	require.Error(t, err)
	require.Panics(t, func() { MustNew(reg) })
}
