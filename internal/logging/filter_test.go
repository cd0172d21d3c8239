package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"disklog/internal/config"
)

func TestParseFilterEmptyUsesDefault(t *testing.T) {
	filter, err := ParseFilter("")
	if err != nil {
		t.Fatalf("ParseFilter returned error: %v", err)
	}
	if filter.LevelFor("anything") != DefaultLevel {
		t.Fatalf("default level = %v, want %v", filter.LevelFor("anything"), DefaultLevel)
	}
	if filter.Allows("", slog.LevelWarn) {
		t.Fatal("default filter should reject warn")
	}
	if !filter.Allows("", slog.LevelError) {
		t.Fatal("default filter should admit error")
	}
}

func TestParseFilterDirectives(t *testing.T) {
	filter, err := ParseFilter("info, sink=debug,sink.flush=warn,noisy=off,net/http=trace")
	if err != nil {
		t.Fatalf("ParseFilter returned error: %v", err)
	}
	tests := []struct {
		target string
		want   slog.Level
	}{
		{"", slog.LevelInfo},
		{"other", slog.LevelInfo},
		{"sink", slog.LevelDebug},
		{"sink/open", slog.LevelDebug},
		{"sink.flush", slog.LevelWarn},
		{"sink.flush.retry", slog.LevelWarn},
		{"sinkhole", slog.LevelInfo},
		{"noisy::inner", LevelOff},
		{"net/http", LevelTrace},
	}
	for _, tc := range tests {
		if got := filter.LevelFor(tc.target); got != tc.want {
			t.Errorf("LevelFor(%q) = %v, want %v", tc.target, got, tc.want)
		}
	}
	if filter.Allows("noisy", slog.LevelError) {
		t.Fatal("off directive should reject everything")
	}
	if filter.MinLevel() != LevelTrace {
		t.Fatalf("MinLevel = %v, want trace", filter.MinLevel())
	}
}

func TestParseFilterBareTargetMeansTrace(t *testing.T) {
	filter, err := ParseFilter("warn,spans")
	if err != nil {
		t.Fatalf("ParseFilter returned error: %v", err)
	}
	if !filter.Allows("spans", LevelTrace) {
		t.Fatal("bare target should admit trace")
	}
	if filter.Allows("other", slog.LevelInfo) {
		t.Fatal("global warn should reject info")
	}
}

func TestParseFilterIsLossy(t *testing.T) {
	filter, err := ParseFilter("debug,sink=loud,=info,bad{field}=info,db=warn")
	if err == nil {
		t.Fatal("expected error for invalid directives")
	}
	var filterErr *FilterError
	if !errors.As(err, &filterErr) {
		t.Fatalf("expected *FilterError, got %T", err)
	}
	if len(filterErr.Errs) != 3 {
		t.Fatalf("expected 3 dropped directives, got %d: %v", len(filterErr.Errs), err)
	}
	var directiveErr *DirectiveError
	if !errors.As(err, &directiveErr) || directiveErr.Directive != "sink=loud" {
		t.Fatalf("expected first dropped directive sink=loud, got %v", directiveErr)
	}
	if filter.LevelFor("other") != slog.LevelDebug {
		t.Fatalf("valid global directive lost: %v", filter.LevelFor("other"))
	}
	if filter.LevelFor("db") != slog.LevelWarn {
		t.Fatalf("valid target directive lost: %v", filter.LevelFor("db"))
	}
	if filter.LevelFor("sink") != slog.LevelDebug {
		t.Fatalf("invalid directive should fall back to global: %v", filter.LevelFor("sink"))
	}
}

func TestParseFilterLaterDirectiveWins(t *testing.T) {
	filter, err := ParseFilter("db=warn,db=debug,info,error")
	if err != nil {
		t.Fatalf("ParseFilter returned error: %v", err)
	}
	if filter.String() != "error,db=debug" {
		t.Fatalf("String() = %q", filter.String())
	}
}

func TestBuildFilterUnsetLevel(t *testing.T) {
	filter, err := BuildFilter(config.Logging{})
	if err != nil {
		t.Fatalf("BuildFilter returned error: %v", err)
	}
	if filter.String() != DefaultFilter().String() {
		t.Fatalf("unset level should yield default filter, got %q", filter.String())
	}

	filter, err = BuildFilter(config.Logging{LogLevel: config.Ptr("INFO")})
	if err != nil {
		t.Fatalf("BuildFilter returned error: %v", err)
	}
	if filter.LevelFor("") != slog.LevelInfo {
		t.Fatalf("level = %v, want info", filter.LevelFor(""))
	}
}

type recordingHandler struct {
	records *[]slog.Record
	attrs   []slog.Attr
}

func (h recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h recordingHandler) Handle(_ context.Context, r slog.Record) error {
	*h.records = append(*h.records, r)
	return nil
}

func (h recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return recordingHandler{records: h.records, attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...)}
}

func (h recordingHandler) WithGroup(string) slog.Handler { return h }

func TestFilterHandlerRoutesByComponent(t *testing.T) {
	filter, err := ParseFilter("warn,sink=debug")
	if err != nil {
		t.Fatalf("ParseFilter returned error: %v", err)
	}
	var records []slog.Record
	logger := slog.New(newFilterHandler(recordingHandler{records: &records}, filter))

	logger.Info("dropped: global is warn")
	logger.Info("kept: record names sink", String(FieldComponent, "sink"))
	NewComponentLogger(logger, "sink").Debug("kept: bound component")
	NewComponentLogger(logger, "other").Info("dropped: other is warn")
	logger.Warn("kept: warn passes global")
	logger.WithGroup("g").Info("dropped: grouped component is not a target", String(FieldComponent, "sink"))

	if len(records) != 3 {
		for _, r := range records {
			t.Logf("record: %s", r.Message)
		}
		t.Fatalf("got %d records, want 3", len(records))
	}
	for _, r := range records {
		if r.Message[:4] != "kept" {
			t.Fatalf("unexpected record %q", r.Message)
		}
	}
}

func TestFilterHandlerRecordComponentOverridesBound(t *testing.T) {
	filter, err := ParseFilter("error,sink=debug,other=warn")
	if err != nil {
		t.Fatalf("ParseFilter returned error: %v", err)
	}
	var records []slog.Record
	logger := NewComponentLogger(slog.New(newFilterHandler(recordingHandler{records: &records}, filter)), "other")

	logger.Debug("kept: record retargets to sink", String(FieldComponent, "sink"))
	logger.Info("dropped: other is warn")
	logger.Warn("kept: other admits warn")

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2: %v", len(records), messages(records))
	}
	for _, r := range records {
		if r.Message[:4] != "kept" {
			t.Fatalf("unexpected record %q", r.Message)
		}
	}
}

func TestFilterHandlerEnabledUsesMostPermissiveDirective(t *testing.T) {
	filter, err := ParseFilter("error,sink=debug")
	if err != nil {
		t.Fatalf("ParseFilter returned error: %v", err)
	}
	var records []slog.Record
	base := newFilterHandler(recordingHandler{records: &records}, filter)
	ctx := context.Background()

	if !base.Enabled(ctx, slog.LevelDebug) {
		t.Fatal("handler must stay open to any directive")
	}
	other := base.WithAttrs([]slog.Attr{String(FieldComponent, "other")})
	if !other.Enabled(ctx, slog.LevelDebug) {
		t.Fatal("bound component must not rule out a record retargeted to sink")
	}
	if other.Enabled(ctx, LevelTrace) {
		t.Fatal("no directive admits trace")
	}

	quiet, err := ParseFilter("off")
	if err != nil {
		t.Fatalf("ParseFilter returned error: %v", err)
	}
	if newFilterHandler(recordingHandler{records: &records}, quiet).Enabled(ctx, slog.LevelError) {
		t.Fatal("off everywhere should disable the handler")
	}
}
