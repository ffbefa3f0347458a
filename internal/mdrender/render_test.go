package mdrender

import (
	"context"
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var site = fstest.MapFS{
	"index.md":       {Data: []byte("---\ntitle: Home\n---\n# Welcome\n")},
	"blog/post-1.md": {Data: []byte("---\ntitle: First\n---\nHello <script>alert(1)</script>**world**\n")},
	"blog/index.md":  {Data: []byte("# Blog\n")},
	"old.md":         {Data: []byte("---\nredirect: /blog/post-1\nstatus: 301\n---\n")},
	"gone.md":        {Data: []byte("---\ntitle: Gone\nstatus: 410\n---\nremoved\n")},
	"notes.txt":      {Data: []byte("ignored")},
}

func TestRenderPage(t *testing.T) {
	r := New(site)
	require.NoError(t, r.Warm())
	require.True(t, r.Ready())

	res, err := r.Render(context.Background(), "/blog/post-1?utm=x", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.False(t, res.Failed())

	body := string(res.Body)
	require.Contains(t, body, "<title>First</title>")
	require.Contains(t, body, "<strong>world</strong>")
	require.NotContains(t, body, "<script>")

	id := http.Header(res.Header).Get(HeaderRenderID)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
}

func TestIndexPages(t *testing.T) {
	r := New(site)
	require.NoError(t, r.Warm())

	res, err := r.Render(context.Background(), "/", nil)
	require.NoError(t, err)
	require.Contains(t, string(res.Body), "Welcome")

	res, err = r.Render(context.Background(), "/blog", nil)
	require.NoError(t, err)
	require.Contains(t, string(res.Body), "Blog")
}

func TestRedirectAndStatus(t *testing.T) {
	r := New(site)
	require.NoError(t, r.Warm())

	res, err := r.Render(context.Background(), "/old", nil)
	require.NoError(t, err)
	require.True(t, res.Redirected)
	require.Equal(t, http.StatusMovedPermanently, res.StatusCode)
	require.Equal(t, "/blog/post-1", http.Header(res.Header).Get("Location"))

	res, err = r.Render(context.Background(), "/gone", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusGone, res.StatusCode)
}

func TestNotFound(t *testing.T) {
	r := New(site)
	res, err := r.Render(context.Background(), "/missing", nil)
	require.NoError(t, err)
	require.True(t, res.Failed())
	require.Equal(t, http.StatusNotFound, res.Error.StatusCode)
}

func TestReadThroughBeforeWarm(t *testing.T) {
	r := New(site)
	require.False(t, r.Ready())

	res, err := r.Render(context.Background(), "/blog/post-1", nil)
	require.NoError(t, err)
	require.Contains(t, string(res.Body), "First")
}

func TestFreshIDPerRender(t *testing.T) {
	r := New(site)
	require.NoError(t, r.Warm())

	a, err := r.Render(context.Background(), "/", nil)
	require.NoError(t, err)
	b, err := r.Render(context.Background(), "/", nil)
	require.NoError(t, err)
	require.NotEqual(t, http.Header(a.Header).Get(HeaderRenderID), http.Header(b.Header).Get(HeaderRenderID))
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(site).Render(ctx, "/", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBadFrontmatter(t *testing.T) {
	r := New(fstest.MapFS{"x.md": {Data: []byte("---\ntitle: [\n---\n")}})
	require.ErrorIs(t, r.Warm(), ErrInvalidFrontmatter)

	_, _, err := splitFrontmatter([]byte("---\ntitle: x\n"))
	require.ErrorIs(t, err, ErrInvalidFrontmatter)

	meta, body, err := splitFrontmatter([]byte("plain"))
	require.NoError(t, err)
	require.Empty(t, meta.Title)
	require.Equal(t, "plain", string(body))
}
