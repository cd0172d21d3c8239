package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	return c.normalizeLogging()
}

func (c *Config) normalizeLogging() error {
	if c.Logging.LogFile != nil {
		trimmed := strings.TrimSpace(*c.Logging.LogFile)
		if trimmed != "" {
			expanded, err := expandPath(trimmed)
			if err != nil {
				return fmt.Errorf("logging.log_file: %w", err)
			}
			trimmed = expanded
		}
		c.Logging.LogFile = &trimmed
	}
	if c.Logging.LogLevel != nil {
		trimmed := strings.TrimSpace(*c.Logging.LogLevel)
		c.Logging.LogLevel = &trimmed
	}
	return nil
}
