// Package otelhooks records cache events with OpenTelemetry metric instruments.
package otelhooks

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/unkn0wn-root/pagecache"
)

const instrumentationName = "github.com/unkn0wn-root/pagecache"

// attribute sets are precomputed: hooks run on the request path
var (
	attrHit           = metric.WithAttributes(attribute.String("pagecache.event", "hit"))
	attrMiss          = metric.WithAttributes(attribute.String("pagecache.event", "miss"))
	attrBypass        = metric.WithAttributes(attribute.String("pagecache.event", "bypass"))
	attrLookupError   = metric.WithAttributes(attribute.String("pagecache.event", "lookup_error"))
	attrDecodeError   = metric.WithAttributes(attribute.String("pagecache.event", "decode_error"))
	attrStoreRejected = metric.WithAttributes(attribute.String("pagecache.event", "store_rejected"))
	attrStoreError    = metric.WithAttributes(attribute.String("pagecache.event", "store_error"))
)

type Hooks struct {
	events  metric.Int64Counter
	hitAge  metric.Float64Histogram
	version metric.Int64Counter
}

var _ pagecache.Hooks = (*Hooks)(nil)

// New creates the instruments on meter. A nil meter uses the global provider.
func New(meter metric.Meter) (*Hooks, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}

	events, err := meter.Int64Counter(
		"pagecache.events",
		metric.WithDescription("Page cache events by type"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	hitAge, err := meter.Float64Histogram(
		"pagecache.hit.age",
		metric.WithDescription("Age of cached entries when served"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	version, err := meter.Int64Counter(
		"pagecache.version",
		metric.WithDescription("Version guard outcomes"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	return &Hooks{events: events, hitAge: hitAge, version: version}, nil
}

func (h *Hooks) Hit(_ string, age time.Duration) {
	ctx := context.Background()
	h.events.Add(ctx, 1, attrHit)
	h.hitAge.Record(ctx, age.Seconds())
}

func (h *Hooks) Miss(string)               { h.events.Add(context.Background(), 1, attrMiss) }
func (h *Hooks) Bypass(string)             { h.events.Add(context.Background(), 1, attrBypass) }
func (h *Hooks) LookupError(string, error) { h.events.Add(context.Background(), 1, attrLookupError) }
func (h *Hooks) DecodeError(string, error) { h.events.Add(context.Background(), 1, attrDecodeError) }
func (h *Hooks) StoreRejected(string)      { h.events.Add(context.Background(), 1, attrStoreRejected) }
func (h *Hooks) StoreError(string, error)  { h.events.Add(context.Background(), 1, attrStoreError) }

func (h *Hooks) VersionReset(from, to string) {
	h.version.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("pagecache.outcome", "reset"),
		attribute.String("pagecache.version", to),
	))
}

func (h *Hooks) VersionCheckError(error) {
	h.version.Add(context.Background(), 1, metric.WithAttributes(attribute.String("pagecache.outcome", "check_error")))
}

func (h *Hooks) VersionSaved(v string) {
	h.version.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("pagecache.outcome", "saved"),
		attribute.String("pagecache.version", v),
	))
}
