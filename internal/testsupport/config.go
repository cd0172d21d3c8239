package testsupport

import (
	"path/filepath"
	"testing"

	"disklog/internal/config"
)

// LoggingOption customizes the generated logging configuration.
type LoggingOption func(*loggingBuilder)

type loggingBuilder struct {
	baseDir string
	cfg     config.Logging
}

// NewLogging produces an enabled logging config whose log file lives in a
// fresh temp directory, then applies opts.
func NewLogging(t testing.TB, opts ...LoggingOption) config.Logging {
	t.Helper()

	base := t.TempDir()
	builder := &loggingBuilder{
		baseDir: base,
		cfg: config.Logging{
			Enabled:  config.Ptr(true),
			LogFile:  config.Ptr(filepath.Join(base, "test.log")),
			LogLevel: config.Ptr("info"),
		},
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLevel sets the filter directives.
func WithLevel(level string) LoggingOption {
	return func(b *loggingBuilder) {
		b.cfg.LogLevel = config.Ptr(level)
	}
}

// WithSpanEvents sets the recorded span events.
func WithSpanEvents(events ...config.SpanEvent) LoggingOption {
	return func(b *loggingBuilder) {
		set := config.SpanEvents(events)
		if set == nil {
			set = config.SpanEvents{}
		}
		b.cfg.SpanEvents = &set
	}
}

// WithUnopenableLogFile points the log file into a directory that does not
// exist, so opening it fails.
func WithUnopenableLogFile() LoggingOption {
	return func(b *loggingBuilder) {
		b.cfg.LogFile = config.Ptr(filepath.Join(b.baseDir, "missing", "test.log"))
	}
}
