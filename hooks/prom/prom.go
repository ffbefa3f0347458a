// Package promhooks exports cache events as Prometheus metrics.
package promhooks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/pagecache"
)

// Event label values of pagecache_events_total.
const (
	EventHit           = "hit"
	EventMiss          = "miss"
	EventBypass        = "bypass"
	EventLookupError   = "lookup_error"
	EventDecodeError   = "decode_error"
	EventStoreRejected = "store_rejected"
	EventStoreError    = "store_error"
)

type Hooks struct {
	events        *prometheus.CounterVec
	hitAge        prometheus.Histogram
	versionResets prometheus.Counter
	versionErrors prometheus.Counter
	versionSaves  prometheus.Counter
}

var _ pagecache.Hooks = (*Hooks)(nil)

// New registers the cache metrics on reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Hooks, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &Hooks{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagecache_events_total",
				Help: "Total number of page cache events by type",
			},
			[]string{"event"},
		),
		hitAge: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pagecache_hit_age_seconds",
				Help:    "Age of cached entries at the time they were served",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1s .. ~3d
			},
		),
		versionResets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pagecache_version_resets_total",
			Help: "Total number of store wipes caused by a version change",
		}),
		versionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pagecache_version_check_errors_total",
			Help: "Total number of failed version marker checks",
		}),
		versionSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pagecache_version_saves_total",
			Help: "Total number of version marker writes",
		}),
	}
	for _, c := range []prometheus.Collector{h.events, h.hitAge, h.versionResets, h.versionErrors, h.versionSaves} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	// expose every series from the start, even at zero
	for _, ev := range []string{EventHit, EventMiss, EventBypass, EventLookupError, EventDecodeError, EventStoreRejected, EventStoreError} {
		h.events.WithLabelValues(ev)
	}
	return h, nil
}

// MustNew is like New but panics on registration errors.
func MustNew(reg prometheus.Registerer) *Hooks {
	h, err := New(reg)
	if err != nil {
		panic(err)
	}
	return h
}

func (h *Hooks) Hit(_ string, age time.Duration) {
	h.events.WithLabelValues(EventHit).Inc()
	h.hitAge.Observe(age.Seconds())
}

func (h *Hooks) Miss(string)               { h.events.WithLabelValues(EventMiss).Inc() }
func (h *Hooks) Bypass(string)             { h.events.WithLabelValues(EventBypass).Inc() }
func (h *Hooks) LookupError(string, error) { h.events.WithLabelValues(EventLookupError).Inc() }
func (h *Hooks) DecodeError(string, error) { h.events.WithLabelValues(EventDecodeError).Inc() }
func (h *Hooks) StoreRejected(string)      { h.events.WithLabelValues(EventStoreRejected).Inc() }
func (h *Hooks) StoreError(string, error)  { h.events.WithLabelValues(EventStoreError).Inc() }

func (h *Hooks) VersionReset(string, string) { h.versionResets.Inc() }
func (h *Hooks) VersionCheckError(error)     { h.versionErrors.Inc() }
func (h *Hooks) VersionSaved(string)         { h.versionSaves.Inc() }
