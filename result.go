package pagecache

import (
	"fmt"
	"net/http"

	"github.com/unkn0wn-root/pagecache/internal/util"
)

// Result is the output of one render. It is what gets cached.
type Result struct {
	Body       []byte              `json:"body" msgpack:"body" cbor:"1,keyasint"`
	StatusCode int                 `json:"status,omitempty" msgpack:"status,omitempty" cbor:"2,keyasint,omitempty"`
	Header     map[string][]string `json:"header,omitempty" msgpack:"header,omitempty" cbor:"3,keyasint,omitempty"`
	// Error flags an application-level failure (e.g. a 404 page). Such results
	// are returned to the caller but never stored.
	Error *RenderError `json:"error,omitempty" msgpack:"error,omitempty" cbor:"4,keyasint,omitempty"`
	// Redirected results are returned but never stored.
	Redirected bool `json:"redirected,omitempty" msgpack:"redirected,omitempty" cbor:"5,keyasint,omitempty"`
}

// Failed reports whether the result carries an application-level error.
func (r *Result) Failed() bool { return r != nil && r.Error != nil }

// RenderError is the application-level error flag of a Result.
type RenderError struct {
	StatusCode int    `json:"statusCode" msgpack:"statusCode" cbor:"1,keyasint"`
	Message    string `json:"message,omitempty" msgpack:"message,omitempty" cbor:"2,keyasint,omitempty"`
}

func (e *RenderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("render error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("render error: status %d: %s", e.StatusCode, e.Message)
}

// RequestContext is the per-request input the key policy reads.
// The cache never mutates it.
type RequestContext struct {
	// Hostname is the explicit hostname (no port). Checked first.
	Hostname string
	// Host is the raw host, possibly with a port. Checked second.
	Host string
	// Header holds the underlying request headers; its "Host" entry is checked last.
	Header http.Header
	// SPA marks a single-page-app fallback render, which is never cacheable.
	SPA bool
	// Request is the originating HTTP request, if any. Custom predicates and
	// key functions may read it.
	Request *http.Request
}

// FromRequest builds a RequestContext from an HTTP request.
func FromRequest(r *http.Request) *RequestContext {
	return &RequestContext{
		Hostname: util.NormalizeHost(r.Host),
		Host:     r.Host,
		Header:   r.Header,
		Request:  r,
	}
}

// ResolveHostname returns the first non-empty of Hostname, Host and the Host
// header, or "" when none is set. A nil context resolves to "".
func (rc *RequestContext) ResolveHostname() string {
	if rc == nil {
		return ""
	}
	if rc.Hostname != "" {
		return rc.Hostname
	}
	if rc.Host != "" {
		return rc.Host
	}
	if rc.Header != nil {
		return rc.Header.Get("Host")
	}
	return ""
}

func (rc *RequestContext) isSPA() bool { return rc != nil && rc.SPA }
