package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"disklog/internal/config"
	"disklog/internal/logging"
	"disklog/internal/testsupport"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestAssembleActiveWritesFilteredRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.log")
	base := config.Logging{LogLevel: config.Ptr("info")}
	base.Merge(config.Logging{Enabled: config.Ptr(true), LogFile: config.Ptr(path)})

	var diag bytes.Buffer
	logger, effective := logging.Assemble(base, &diag)
	if diag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %q", diag.String())
	}
	if logger.State() != logging.StateActive {
		t.Fatalf("state = %v, want active", logger.State())
	}
	if !effective.IsEnabled() || effective.LogFileOrEmpty() != path {
		t.Fatalf("unexpected effective config %+v", effective)
	}
	if logger.Filter().LevelFor("") != slog.LevelInfo {
		t.Fatalf("filter level = %v, want info", logger.Filter().LevelFor(""))
	}
	if logger.LogFile() != path {
		t.Fatalf("LogFile() = %q", logger.LogFile())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log file to be created: %v", err)
	}

	log := logger.Slog()
	log.Debug("hidden debug")
	log.Info("visible info", slog.String("key", "value with space"), logging.Int("n", 3))
	log.Warn("visible warn", slog.Group("req", slog.String("id", "r1")))
	logging.NewComponentLogger(log, "sink").Info("component record")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	content := readFile(t, path)
	if strings.Contains(content, "hidden debug") {
		t.Fatalf("debug record should be filtered: %q", content)
	}
	for _, want := range []string{
		` INFO visible info key="value with space" n=3`,
		` WARN visible warn req.id=r1`,
		` INFO [sink] component record`,
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in log, got %q", want, content)
		}
	}
	if strings.Contains(content, "\x1b[") {
		t.Fatalf("log file must not contain ANSI escapes: %q", content)
	}
}

func TestAssembleInvalidLogFileFallsBackToDisabled(t *testing.T) {
	cfg := testsupport.NewLogging(t, testsupport.WithUnopenableLogFile(), testsupport.WithLevel("debug"))
	path := cfg.LogFileOrEmpty()

	var diag bytes.Buffer
	logger, effective := logging.Assemble(cfg, &diag)

	if logger == nil {
		t.Fatal("assembly must always return a logger")
	}
	if logger.State() != logging.StateDisabled {
		t.Fatalf("state = %v, want disabled", logger.State())
	}
	if effective.Enabled == nil || *effective.Enabled {
		t.Fatalf("expected effective enabled=false, got %v", effective.Enabled)
	}
	if !*cfg.Enabled {
		t.Fatal("caller config must not be mutated")
	}
	wantPrefix := "failed to enable logging into " + path + " log-file: "
	if !strings.HasPrefix(diag.String(), wantPrefix) {
		t.Fatalf("diagnostic = %q, want prefix %q", diag.String(), wantPrefix)
	}
	if strings.Count(diag.String(), "\n") != 1 {
		t.Fatalf("expected exactly one diagnostic line, got %q", diag.String())
	}
	if logger.Filter().LevelFor("") != slog.LevelDebug {
		t.Fatal("filter should still be built from log_level")
	}

	logger.Slog().Error("goes nowhere")
	if err := logger.Close(); err != nil {
		t.Fatalf("close on disabled logger: %v", err)
	}
}

func TestAssembleMissingLogFileUsesEmptyPlaceholder(t *testing.T) {
	var diag bytes.Buffer
	logger, effective := logging.Assemble(config.Logging{Enabled: config.Ptr(true)}, &diag)

	if logger.Active() {
		t.Fatal("expected disabled logger")
	}
	if effective.IsEnabled() {
		t.Fatal("expected enabled to be forced false")
	}
	want := "failed to enable logging into  log-file: " + logging.ErrMissingLogFile.Error() + "\n"
	if diag.String() != want {
		t.Fatalf("diagnostic = %q, want %q", diag.String(), want)
	}
}

func TestAssembleEmptyConfigIsDisabled(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var diag bytes.Buffer
	logger, effective := logging.Assemble(config.Logging{}, &diag)

	if logger.State() != logging.StateDisabled {
		t.Fatalf("state = %v, want disabled", logger.State())
	}
	if effective.Enabled != nil {
		t.Fatal("disabled-by-default must not touch the enabled field")
	}
	if diag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %q", diag.String())
	}
	if logger.Filter().String() != logging.DefaultFilter().String() {
		t.Fatalf("filter = %q, want default", logger.Filter().String())
	}
	if logger.SpanEvents() != config.SpanNone {
		t.Fatalf("disabled logger records no span events, got %v", logger.SpanEvents())
	}
	logger.Slog().Error("discarded")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no filesystem writes, found %d entries", len(entries))
	}
}

func TestAssembleReportsInvalidDirectives(t *testing.T) {
	var diag bytes.Buffer
	logger, _ := logging.Assemble(config.Logging{LogLevel: config.Ptr("warn,db=chatty")}, &diag)

	if !strings.HasPrefix(diag.String(), "ignoring invalid log_level directives: ") {
		t.Fatalf("unexpected diagnostic %q", diag.String())
	}
	if !strings.Contains(diag.String(), "db=chatty") {
		t.Fatalf("diagnostic should name the directive: %q", diag.String())
	}
	if logger.Filter().LevelFor("") != slog.LevelWarn {
		t.Fatal("valid directives must survive")
	}
}

func TestAssembleRespectsSpanEvents(t *testing.T) {
	cfg := testsupport.NewLogging(t, testsupport.WithSpanEvents(config.SpanActive))
	path := cfg.LogFileOrEmpty()
	logger, _ := logging.Assemble(cfg, &bytes.Buffer{})

	if logger.SpanEvents() != config.SpanEnter|config.SpanExit {
		t.Fatalf("span events = %v", logger.SpanEvents())
	}

	ctx, span := logger.StartSpan(context.Background(), "job", logging.Int("id", 7))
	span.Run(func(ctx context.Context) {
		logger.Slog().InfoContext(ctx, "working")
	})
	span.End()
	logger.Slog().InfoContext(ctx, "after")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	content := readFile(t, path)
	if strings.Contains(content, " new ") || strings.Contains(content, " close ") {
		t.Fatalf("new/close records should be suppressed: %q", content)
	}
	for _, want := range []string{"job{id=7}: enter", "job{id=7}: working", "job{id=7}: exit"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in log, got %q", want, content)
		}
	}
}

func TestNewFromConfigNilUsesDefaults(t *testing.T) {
	logger, effective := logging.NewFromConfig(nil, &bytes.Buffer{})
	if logger.Active() {
		t.Fatal("defaults leave logging disabled")
	}
	if effective.LevelOrEmpty() != "info" {
		t.Fatalf("effective level = %q, want info", effective.LevelOrEmpty())
	}
}
