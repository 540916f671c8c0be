package regionbuf

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record and reports every level disabled.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

var (
	silent  = slog.New(discard{})
	current atomic.Pointer[slog.Logger]
)

// SetLogger routes regionbuf's log records to l. Tables log nothing until
// this is called; nil makes them silent again. Records carry the "regionbuf:"
// prefix. Store growth and releases of unknown regions are logged at Debug,
// failed allocations and unmapping errors at Warn.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
}

// Logger returns the logger set with SetLogger
func Logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return silent
}
