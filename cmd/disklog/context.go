package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"disklog/internal/config"
)

const (
	flagEnabled    = "enabled"
	flagLogFile    = "log-file"
	flagLogLevel   = "log-level"
	flagSpanEvents = "span-events"
)

type commandContext struct {
	configFlag     string
	enabledFlag    bool
	logFileFlag    string
	logLevelFlag   string
	spanEventsFlag string
}

// loadConfig resolves the file and environment layers, then overlays the
// logging flags that were given explicitly.
func (c *commandContext) loadConfig(cmd *cobra.Command) (*config.Config, string, bool, error) {
	cfg, path, exists, err := config.Load(strings.TrimSpace(c.configFlag))
	if err != nil {
		return nil, "", false, err
	}
	flagCfg, err := c.flagLayer(cmd.Flags())
	if err != nil {
		return nil, "", false, err
	}
	cfg.Merge(flagCfg)
	return cfg, path, exists, nil
}

func (c *commandContext) flagLayer(flags *pflag.FlagSet) (config.Config, error) {
	var cfg config.Config
	if flags.Changed(flagEnabled) {
		cfg.Logging.Enabled = config.Ptr(c.enabledFlag)
	}
	if flags.Changed(flagLogFile) {
		path := strings.TrimSpace(c.logFileFlag)
		if path != "" {
			expanded, err := config.ExpandPath(path)
			if err != nil {
				return cfg, fmt.Errorf("--%s: %w", flagLogFile, err)
			}
			path = expanded
		}
		cfg.Logging.LogFile = config.Ptr(path)
	}
	if flags.Changed(flagLogLevel) {
		cfg.Logging.LogLevel = config.Ptr(strings.TrimSpace(c.logLevelFlag))
	}
	if flags.Changed(flagSpanEvents) {
		events, err := config.ParseSpanEvents(c.spanEventsFlag)
		if err != nil {
			return cfg, fmt.Errorf("--%s: %w", flagSpanEvents, err)
		}
		cfg.Logging.SpanEvents = &events
	}
	return cfg, nil
}
