package pagecache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Host = "Example.com:8080"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerServesThroughCache(t *testing.T) {
	r := &countingRenderer{fn: func(route string) (*Result, error) {
		return &Result{
			Body:   []byte("<p>" + route + "</p>"),
			Header: map[string][]string{"Content-Type": {"text/html; charset=utf-8"}},
		}, nil
	}}
	cc := newTestCache(t, newMemProvider(), r, func(o *Options) { o.UseHostPrefix = true })
	h := NewHandler(cc, HandlerOptions{})

	for range 2 {
		rec := serve(h, http.MethodGet, "/blog/a?x=1")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "<p>/blog/a?x=1</p>", rec.Body.String())
		require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		settle(cc)
	}
	require.EqualValues(t, 1, r.calls.Load())

	_, ok, err := cc.Get(context.Background(), "example.com/blog/a?x=1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestHandlerSPANeverCached(t *testing.T) {
	r := &countingRenderer{}
	cc := newTestCache(t, newMemProvider(), r, nil)
	h := NewHandler(cc, HandlerOptions{SPA: func(req *http.Request) bool {
		return strings.HasPrefix(req.URL.Path, "/blog/app")
	}})

	for range 2 {
		serve(h, http.MethodGet, "/blog/app/route")
		settle(cc)
	}
	require.EqualValues(t, 2, r.calls.Load())
}

func TestHandlerStatuses(t *testing.T) {
	tests := []struct {
		name     string
		res      *Result
		err      error
		wantCode int
		wantLoc  string
	}{
		{"error flag", &Result{Body: []byte("nope"), Error: &RenderError{StatusCode: 404}}, nil, 404, ""},
		{"explicit", &Result{StatusCode: 201}, nil, 201, ""},
		{"redirect", &Result{Redirected: true, Header: map[string][]string{"Location": {"/new"}}}, nil, 302, "/new"},
		{"render error", nil, errors.New("boom"), 500, ""},
		{"nil result", nil, nil, 500, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(RendererFunc(func(context.Context, string, *RequestContext) (*Result, error) {
				return tt.res, tt.err
			}), HandlerOptions{})
			rec := serve(h, http.MethodGet, "/x")
			require.Equal(t, tt.wantCode, rec.Code)
			require.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
		})
	}
}

func TestHandlerMethods(t *testing.T) {
	h := NewHandler(RendererFunc(func(context.Context, string, *RequestContext) (*Result, error) {
		return &Result{Body: []byte("ok")}, nil
	}), HandlerOptions{})

	rec := serve(h, http.MethodPost, "/x")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))

	rec = serve(h, http.MethodHead, "/x")
	require.Equal(t, http.StatusOK, rec.Code)
}
