package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging describes the on-disk logging layer. A nil field is unset and
// yields to whatever another layer provides.
type Logging struct {
	Enabled    *bool       `toml:"enabled,omitempty"`
	LogFile    *string     `toml:"log_file,omitempty"`
	LogLevel   *string     `toml:"log_level,omitempty"`
	SpanEvents *SpanEvents `toml:"span_events,omitempty"`
}

// Config encapsulates all configuration values for disklog.
type Config struct {
	Logging Logging `toml:"logging"`
}

// Merge overlays other onto l field by field: a set field in other wins,
// an unset one keeps l's current value. Values are copied, so later changes
// to other do not leak into l.
func (l *Logging) Merge(other Logging) {
	if other.Enabled != nil {
		l.Enabled = Ptr(*other.Enabled)
	}
	if other.LogFile != nil {
		l.LogFile = Ptr(*other.LogFile)
	}
	if other.LogLevel != nil {
		l.LogLevel = Ptr(*other.LogLevel)
	}
	if other.SpanEvents != nil {
		events := slices.Clone(*other.SpanEvents)
		if events == nil {
			events = SpanEvents{}
		}
		l.SpanEvents = &events
	}
}

// Merge overlays other onto c.
func (c *Config) Merge(other Config) {
	c.Logging.Merge(other.Logging)
}

// IsEnabled resolves an unset enabled flag to false.
func (l Logging) IsEnabled() bool {
	return l.Enabled != nil && *l.Enabled
}

// LogFileOrEmpty returns the configured log file or "".
func (l Logging) LogFileOrEmpty() string {
	if l.LogFile == nil {
		return ""
	}
	return *l.LogFile
}

// LevelOrEmpty returns the raw filter directives or "".
func (l Logging) LevelOrEmpty() string {
	if l.LogLevel == nil {
		return ""
	}
	return *l.LogLevel
}

// ResolvedSpanEvents returns the configured span events, or
// DefaultSpanEvents when none are configured.
func (l Logging) ResolvedSpanEvents() SpanEvent {
	if l.SpanEvents == nil {
		return DefaultSpanEvents
	}
	return l.SpanEvents.Mask()
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/disklog/config.toml")
}

// Load locates and parses a configuration file, layers environment
// overrides on top of it, and normalizes paths. A missing file is not an
// error; defaults are returned and exists is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		fileCfg, err := decodeFile(resolvedPath)
		if err != nil {
			return nil, "", false, err
		}
		cfg.Merge(fileCfg)
	}

	envCfg, err := FromEnv()
	if err != nil {
		return nil, "", false, err
	}
	cfg.Merge(envCfg)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string) (Config, error) {
	var cfg Config
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Encode renders c as TOML. Unset fields are omitted.
func (c Config) Encode() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("disklog.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
