package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"disklog/internal/config"
)

// State tells whether a Logger writes to a file.
type State int

const (
	// StateDisabled discards every record.
	StateDisabled State = iota
	// StateActive appends records to the configured log file.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	default:
		return "disabled"
	}
}

// Logger is the assembled layer: an Active file handler or the Disabled
// no-op handler, always behind a severity Filter. The state is fixed at
// assembly.
type Logger struct {
	state      State
	layer      slog.Handler
	sink       *FileSink
	filter     *Filter
	handler    slog.Handler
	spanEvents config.SpanEvent
	logger     *slog.Logger
}

func newLogger(layer *FileHandler, filter *Filter) *Logger {
	l := &Logger{state: StateDisabled, layer: NoopHandler{}, filter: filter}
	if layer != nil {
		l.state = StateActive
		l.layer = layer
		l.sink = layer.Sink()
		l.spanEvents = layer.SpanEvents()
	}
	l.handler = newFilterHandler(l.layer, filter)
	l.logger = slog.New(l.handler)
	return l
}

// Assemble builds the logger described by cfg and returns it together with
// the effective configuration. When the sink cannot be built a diagnostic
// line is written to diag (os.Stderr when nil), the effective config has
// Enabled forced to false, and a Disabled logger is returned. cfg itself is
// never modified. Invalid filter directives are reported to diag as well;
// the remaining directives still apply.
func Assemble(cfg config.Logging, diag io.Writer) (*Logger, config.Logging) {
	if diag == nil {
		diag = os.Stderr
	}
	effective := cfg

	layer, err := BuildSink(effective)
	if err != nil {
		fmt.Fprintf(diag, "failed to enable logging into %s log-file: %v\n", effective.LogFileOrEmpty(), err)
		effective.Enabled = config.Ptr(false)
		layer = nil
	}

	filter, err := BuildFilter(effective)
	if err != nil {
		fmt.Fprintf(diag, "ignoring invalid log_level directives: %v\n", err)
	}

	return newLogger(layer, filter), effective
}

// NewFromConfig assembles a logger from application config. A nil config
// uses repository defaults.
func NewFromConfig(cfg *config.Config, diag io.Writer) (*Logger, config.Logging) {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	return Assemble(cfg.Logging, diag)
}

// State reports whether records reach a file.
func (l *Logger) State() State {
	return l.state
}

// Active is shorthand for State() == StateActive.
func (l *Logger) Active() bool {
	return l.state == StateActive
}

// Filter returns the severity filter attached to the logger.
func (l *Logger) Filter() *Filter {
	return l.filter
}

// Handler returns the filtered layer, suitable for slog.New or for
// composing into a host handler.
func (l *Logger) Handler() slog.Handler {
	return l.handler
}

// Slog returns a *slog.Logger over Handler.
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

// SpanEvents returns the span lifecycle events that are recorded. A
// Disabled logger records none.
func (l *Logger) SpanEvents() config.SpanEvent {
	return l.spanEvents
}

// LogFile returns the path records are appended to, or "" when Disabled.
func (l *Logger) LogFile() string {
	if l.sink == nil {
		return ""
	}
	return l.sink.Path()
}

// StartSpan opens a span named name under the span carried by ctx, emits
// its new event, and returns a context carrying it. The span is not entered;
// call Enter/Exit or Run around the work it covers.
func (l *Logger) StartSpan(ctx context.Context, name string, attrs ...Attr) (context.Context, *Span) {
	span := newSpan(ctx, l, name, attrs)
	span.emit(config.SpanNew, "new")
	return span.ctx, span
}

// Flush writes buffered records to the log file.
func (l *Logger) Flush() error {
	if l.sink == nil {
		return nil
	}
	return l.sink.Flush()
}

// Close flushes and closes the log file. The logger stays usable; records
// written afterwards are dropped.
func (l *Logger) Close() error {
	if l.sink == nil {
		return nil
	}
	return l.sink.Close()
}
