package pagecache

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/a", nil)
	req.Host = "WWW.Example.com:443"

	rc := FromRequest(req)
	require.Equal(t, "www.example.com", rc.Hostname)
	require.Equal(t, "WWW.Example.com:443", rc.Host)
	require.Same(t, req, rc.Request)
	require.Equal(t, "www.example.com", rc.ResolveHostname())
}

func TestResolveHostnameEmpty(t *testing.T) {
	var rc *RequestContext
	require.Empty(t, rc.ResolveHostname())
	require.Empty(t, (&RequestContext{}).ResolveHostname())
}

func TestResultFailed(t *testing.T) {
	var nilRes *Result
	require.False(t, nilRes.Failed())
	require.False(t, (&Result{}).Failed())

	res := &Result{Error: &RenderError{StatusCode: 404, Message: "no such page"}}
	require.True(t, res.Failed())
	require.Equal(t, "render error: status 404: no such page", res.Error.Error())
	require.Equal(t, "render error: status 500", (&RenderError{StatusCode: 500}).Error())
}

func TestMultiHooks(t *testing.T) {
	a, b := newRecHooks(), newRecHooks()
	h := MultiHooks(a, nil, b)

	h.Miss("k")
	h.VersionReset("", "1")
	require.Equal(t, 1, a.count("miss"))
	require.Equal(t, 1, b.count("version_reset"))
}

func TestOpError(t *testing.T) {
	err := &OpError{Op: "reset", Err: ErrEmptyKey}
	require.Equal(t, "pagecache: reset: pagecache: empty key", err.Error())
	require.ErrorIs(t, err, ErrEmptyKey)
	require.Contains(t, (&OpError{Op: "get", Key: "/a", Err: ErrEmptyKey}).Error(), `"/a"`)
}
