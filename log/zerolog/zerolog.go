// Package zerolog adapts rs/zerolog to pagecache.Logger.
package zerolog

import (
	"github.com/rs/zerolog"

	"github.com/unkn0wn-root/pagecache"
)

var _ pagecache.Logger = Logger{}

type Logger struct{ L zerolog.Logger }

// New adds component=pagecache to every event.
func New(l zerolog.Logger) Logger {
	return Logger{L: l.With().Str("component", "pagecache").Logger()}
}

func (z Logger) Debug(msg string, f pagecache.Fields) { emit(z.L.Debug(), msg, f) }
func (z Logger) Info(msg string, f pagecache.Fields)  { emit(z.L.Info(), msg, f) }
func (z Logger) Warn(msg string, f pagecache.Fields)  { emit(z.L.Warn(), msg, f) }
func (z Logger) Error(msg string, f pagecache.Fields) { emit(z.L.Error(), msg, f) }

// emit is a no-op for disabled levels: zerolog returns a nil event.
func emit(e *zerolog.Event, msg string, f pagecache.Fields) {
	if e == nil {
		return
	}
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			e = e.Err(err)
			continue
		}
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}
