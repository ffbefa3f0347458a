// Package mdrender renders markdown pages with YAML frontmatter into HTML.
// It is the renderer behind the pagecached demo server.
package mdrender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/unkn0wn-root/pagecache"
)

// HeaderRenderID carries a fresh id per render. A cached response repeats
// the id of the render that produced it.
const HeaderRenderID = "X-Render-Id"

const defaultLayout = `<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body><main>{{.Content}}</main></body></html>
`

type page struct {
	meta Meta
	body []byte
}

// Renderer serves "<route>.md" or "<route>/index.md" from fsys.
type Renderer struct {
	fsys   fs.FS
	md     goldmark.Markdown
	policy *bluemonday.Policy
	layout *template.Template

	mu    sync.RWMutex
	pages map[string]*page // keyed by file path
	ready atomic.Bool
}

var _ pagecache.Renderer = (*Renderer)(nil)

// New returns a renderer that is not ready until Warm succeeds.
func New(fsys fs.FS) *Renderer {
	return &Renderer{
		fsys:   fsys,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
		layout: template.Must(template.New("layout").Parse(defaultLayout)),
		pages:  make(map[string]*page),
	}
}

// Warm parses every markdown file once and marks the renderer ready.
func (r *Renderer) Warm() error {
	pages := make(map[string]*page)
	err := fs.WalkDir(r.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".md" {
			return nil
		}
		pg, err := r.parse(p)
		if err != nil {
			return err
		}
		pages[p] = pg
		return nil
	})
	if err != nil {
		return fmt.Errorf("mdrender: warm: %w", err)
	}

	r.mu.Lock()
	r.pages = pages
	r.mu.Unlock()
	r.ready.Store(true)
	return nil
}

// Ready reports whether Warm has completed.
func (r *Renderer) Ready() bool { return r.ready.Load() }

// Render produces the HTML page for route. Unknown routes yield a result
// flagged with a 404 RenderError rather than a Go error.
func (r *Renderer) Render(ctx context.Context, route string, _ *pagecache.RequestContext) (*pagecache.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pg, err := r.lookup(route)
	if errors.Is(err, fs.ErrNotExist) {
		return notFound(route), nil
	}
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set(HeaderRenderID, uuid.NewString())

	if pg.meta.Redirect != "" {
		header.Set("Location", pg.meta.Redirect)
		return &pagecache.Result{
			StatusCode: statusOr(pg.meta.Status, http.StatusFound),
			Header:     header,
			Redirected: true,
		}, nil
	}

	var md bytes.Buffer
	if err := r.md.Convert(pg.body, &md); err != nil {
		return nil, fmt.Errorf("mdrender: convert %s: %w", route, err)
	}
	var out bytes.Buffer
	err = r.layout.Execute(&out, map[string]any{
		"Title":   pg.meta.Title,
		"Content": template.HTML(r.policy.SanitizeBytes(md.Bytes())),
	})
	if err != nil {
		return nil, fmt.Errorf("mdrender: layout %s: %w", route, err)
	}

	header.Set("Content-Type", "text/html; charset=utf-8")
	return &pagecache.Result{
		Body:       out.Bytes(),
		StatusCode: statusOr(pg.meta.Status, http.StatusOK),
		Header:     header,
	}, nil
}

func (r *Renderer) lookup(route string) (*page, error) {
	for _, p := range candidates(route) {
		r.mu.RLock()
		pg, ok := r.pages[p]
		r.mu.RUnlock()
		if ok {
			return pg, nil
		}
		if r.ready.Load() {
			continue
		}
		// not warmed yet: read through
		pg, err := r.parse(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return pg, err
	}
	return nil, fs.ErrNotExist
}

func (r *Renderer) parse(p string) (*page, error) {
	b, err := fs.ReadFile(r.fsys, p)
	if err != nil {
		return nil, err
	}
	meta, body, err := splitFrontmatter(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return &page{meta: meta, body: body}, nil
}

// candidates maps a request URI to file paths, most specific first.
//
//	"/blog/post?x=1" -> "blog/post.md", "blog/post/index.md"
//	"/"              -> "index.md"
func candidates(route string) []string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	clean := strings.TrimPrefix(path.Clean("/"+route), "/")
	if clean == "" {
		return []string{"index.md"}
	}
	return []string{clean + ".md", path.Join(clean, "index.md")}
}

func notFound(route string) *pagecache.Result {
	return &pagecache.Result{
		Body:       []byte("page not found\n"),
		StatusCode: http.StatusNotFound,
		Header:     map[string][]string{"Content-Type": {"text/plain; charset=utf-8"}},
		Error:      &pagecache.RenderError{StatusCode: http.StatusNotFound, Message: "no page for " + route},
	}
}

func statusOr(s, def int) int {
	if s == 0 {
		return def
	}
	return s
}
