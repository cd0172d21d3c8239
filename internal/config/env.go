package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables consulted by FromEnv.
const (
	EnvEnabled    = "DISKLOG_ENABLED"
	EnvLogFile    = "DISKLOG_LOG_FILE"
	EnvLogLevel   = "DISKLOG_LOG_LEVEL"
	EnvSpanEvents = "DISKLOG_SPAN_EVENTS"
)

// FromEnv builds a configuration layer from DISKLOG_* variables. A variable
// that is not set leaves its field unset. DISKLOG_ENABLED set to an empty
// string is treated as unset.
func FromEnv() (Config, error) {
	var cfg Config
	if value, ok := os.LookupEnv(EnvEnabled); ok && strings.TrimSpace(value) != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvEnabled, err)
		}
		cfg.Logging.Enabled = Ptr(enabled)
	}
	if value, ok := os.LookupEnv(EnvLogFile); ok {
		cfg.Logging.LogFile = Ptr(value)
	}
	if value, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.Logging.LogLevel = Ptr(value)
	}
	if value, ok := os.LookupEnv(EnvSpanEvents); ok {
		events, err := ParseSpanEvents(value)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvSpanEvents, err)
		}
		cfg.Logging.SpanEvents = &events
	}
	return cfg, nil
}
