package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Validate reports settings that will keep the log sink from being built.
// Load does not call it: a bad logging section downgrades logging to
// disabled at startup instead of refusing to run.
func (c *Config) Validate() error {
	return c.validateLogging()
}

func (c *Config) validateLogging() error {
	if !c.Logging.IsEnabled() {
		return nil
	}
	if c.Logging.LogFile == nil {
		return errors.New("logging.log_file is required when logging.enabled is true")
	}
	if *c.Logging.LogFile == "" {
		return errors.New("logging.log_file must not be empty")
	}
	dir := filepath.Dir(*c.Logging.LogFile)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("logging.log_file directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("logging.log_file directory %q is not a directory", dir)
	}
	return nil
}
