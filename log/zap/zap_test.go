package zap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/pagecache"
)

func TestFieldsReachZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Warn("store write failed", pagecache.Fields{"key": "/a", "err": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 1)
	e := entries[0]
	require.Equal(t, zapcore.WarnLevel, e.Level)
	require.Equal(t, "pagecache", e.LoggerName)
	ctx := e.ContextMap()
	require.Equal(t, "/a", ctx["key"])
	require.Equal(t, "boom", ctx["error"])
}

func TestLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := New(zap.New(core))

	l.Debug("dropped", nil)
	l.Error("kept", nil)

	require.Equal(t, 1, logs.FilterMessage("kept").Len())
	require.Zero(t, logs.FilterMessage("dropped").Len())
}
