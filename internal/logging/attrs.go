package logging

import (
	"context"
	"log/slog"
	"time"
)

const (
	// FieldComponent names the record target matched by filter directives.
	FieldComponent = "component"
	// FieldSpanID carries the span identifier on span lifecycle records.
	FieldSpanID = "span_id"
	// FieldTimeBusy is the time a span spent entered, reported on close.
	FieldTimeBusy = "time.busy"
	// FieldTimeIdle is the time a span spent open but not entered, reported on close.
	FieldTimeIdle = "time.idle"
)

type Attr = slog.Attr

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger creates a logger whose records target component.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// NoopHandler discards all log output. It is the Disabled layer.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
