package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newBuf() (*bytes.Buffer, *slog.Logger) {
	var buf bytes.Buffer
	return &buf, slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestKeysAreRedacted(t *testing.T) {
	buf, l := newBuf()
	h := New(l, Options{})

	h.DecodeError("example.com/secret", errors.New("bad frame"))

	out := buf.String()
	require.Contains(t, out, "pagecache.decode_error")
	require.NotContains(t, out, "secret")
	require.Contains(t, out, "bad frame")
}

func TestCustomRedactor(t *testing.T) {
	buf, l := newBuf()
	h := New(l, Options{Redact: func(k string) string { return "<" + k + ">" }})

	h.Miss("/a")
	require.Contains(t, buf.String(), "key=</a>")
}

func TestHitSampling(t *testing.T) {
	buf, l := newBuf()
	h := New(l, Options{HitEvery: 3})

	for range 9 {
		h.Hit("k", time.Second)
	}
	require.Equal(t, 3, strings.Count(buf.String(), "pagecache.hit"))
}

func TestNilLogger(t *testing.T) {
	h := New(nil, Options{})
	require.NotPanics(t, func() {
		h.VersionReset("1.0.0", "1.0.1")
		h.StoreError("k", errors.New("x"))
	})
}
