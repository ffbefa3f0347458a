package pagecache

import (
	"net/http"
)

// HandlerOptions configure NewHandler.
type HandlerOptions struct {
	// SPA marks requests that are single-page-app fallbacks. Such requests
	// are rendered but never cached. Nil marks none.
	SPA func(*http.Request) bool
	// Logger receives render failures. Nil disables logging.
	Logger Logger
}

// NewHandler serves GET and HEAD requests by rendering the request URI
// through r. Typically r is a *Cache.
//
// Status is taken from the result, then from its error flag, then defaults to
// 200 (302 for redirects). A render error is answered with 500.
func NewHandler(r Renderer, opts HandlerOptions) http.Handler {
	log := coalesce[Logger](opts.Logger, NopLogger{})
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		rc := FromRequest(req)
		if opts.SPA != nil {
			rc.SPA = opts.SPA(req)
		}
		route := req.URL.RequestURI()

		res, err := r.Render(req.Context(), route, rc)
		if err != nil || res == nil {
			log.Error("render failed", Fields{"route": route, "err": err})
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		h := w.Header()
		for k, vs := range res.Header {
			for _, v := range vs {
				h.Add(k, v)
			}
		}
		w.WriteHeader(statusOf(res))
		_, _ = w.Write(res.Body)
	})
}

func statusOf(res *Result) int {
	switch {
	case res.StatusCode != 0:
		return res.StatusCode
	case res.Error != nil && res.Error.StatusCode != 0:
		return res.Error.StatusCode
	case res.Redirected:
		return http.StatusFound
	case res.Error != nil:
		return http.StatusInternalServerError
	}
	return http.StatusOK
}
