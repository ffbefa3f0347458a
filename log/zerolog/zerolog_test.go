package zerolog

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/pagecache"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(zerolog.New(&buf).Level(zerolog.DebugLevel))

	l.Error("cache reset failed", pagecache.Fields{"err": errors.New("boom"), "version": "1.0.1"})

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "error", got["level"])
	require.Equal(t, "cache reset failed", got["message"])
	require.Equal(t, "boom", got["error"])
	require.Equal(t, "1.0.1", got["version"])
	require.Equal(t, "pagecache", got["component"])
}

func TestDisabledLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(zerolog.New(&buf).Level(zerolog.WarnLevel))

	l.Debug("x", pagecache.Fields{"k": "v"})
	require.Zero(t, buf.Len())
}
