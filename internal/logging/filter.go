package logging

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"disklog/internal/config"
)

const (
	// LevelTrace sits below slog.LevelDebug for the most verbose records.
	LevelTrace = slog.Level(-8)
	// LevelOff disables every record for the matching target.
	LevelOff = slog.Level(math.MaxInt32)
	// DefaultLevel applies when no global directive is given.
	DefaultLevel = slog.LevelError
)

// Filter holds per-target minimum severities parsed from a directive list
// such as "info,sink=debug,net/http=off". Targets are component names; a
// directive covers its target and any component below it.
type Filter struct {
	global     slog.Level
	directives []directive
}

type directive struct {
	target string
	level  slog.Level
}

// DirectiveError describes one directive dropped while parsing a filter.
type DirectiveError struct {
	Directive string
	Reason    string
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("directive %q: %s", e.Directive, e.Reason)
}

// FilterError lists every directive that was dropped.
type FilterError struct {
	Errs []*DirectiveError
}

func (e *FilterError) Error() string {
	parts := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}

func (e *FilterError) Unwrap() []error {
	errs := make([]error, len(e.Errs))
	for i, err := range e.Errs {
		errs[i] = err
	}
	return errs
}

// DefaultFilter admits records at DefaultLevel and above for every target.
func DefaultFilter() *Filter {
	return &Filter{global: DefaultLevel}
}

// ParseFilter parses a comma separated directive list. Each directive is a
// bare level (global minimum), "target=level", or a bare target (everything
// for that target). Parsing is lossy: invalid directives are dropped, the
// valid ones still form the returned filter, and the error is a
// *FilterError naming each dropped directive. The returned filter is never
// nil.
func ParseFilter(directives string) (*Filter, error) {
	filter := DefaultFilter()
	var errs []*DirectiveError

	for _, raw := range strings.Split(directives, ",") {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		target, levelText, hasLevel := strings.Cut(text, "=")
		if !hasLevel {
			if level, ok := parseLevelName(text); ok {
				filter.global = level
				continue
			}
			if reason := checkTarget(text); reason != "" {
				errs = append(errs, &DirectiveError{Directive: text, Reason: reason})
				continue
			}
			filter.set(text, LevelTrace)
			continue
		}
		target = strings.TrimSpace(target)
		if reason := checkTarget(target); reason != "" {
			errs = append(errs, &DirectiveError{Directive: text, Reason: reason})
			continue
		}
		level, ok := parseLevelName(levelText)
		if !ok {
			errs = append(errs, &DirectiveError{Directive: text, Reason: fmt.Sprintf("unknown level %q", strings.TrimSpace(levelText))})
			continue
		}
		filter.set(target, level)
	}

	slices.SortStableFunc(filter.directives, func(a, b directive) int {
		return len(b.target) - len(a.target)
	})

	if len(errs) > 0 {
		return filter, &FilterError{Errs: errs}
	}
	return filter, nil
}

// BuildFilter parses cfg.LogLevel, treating an unset level as "".
func BuildFilter(cfg config.Logging) (*Filter, error) {
	return ParseFilter(cfg.LevelOrEmpty())
}

func (f *Filter) set(target string, level slog.Level) {
	for i := range f.directives {
		if f.directives[i].target == target {
			f.directives[i].level = level
			return
		}
	}
	f.directives = append(f.directives, directive{target: target, level: level})
}

// LevelFor returns the minimum severity admitted for target. The longest
// matching directive wins; without one the global level applies.
func (f *Filter) LevelFor(target string) slog.Level {
	for _, d := range f.directives {
		if targetMatches(target, d.target) {
			return d.level
		}
	}
	return f.global
}

// Allows reports whether a record at level addressed to target passes.
func (f *Filter) Allows(target string, level slog.Level) bool {
	threshold := f.LevelFor(target)
	return threshold != LevelOff && level >= threshold
}

// MinLevel is the most verbose level any target admits.
func (f *Filter) MinLevel() slog.Level {
	threshold := f.global
	for _, d := range f.directives {
		if d.level < threshold {
			threshold = d.level
		}
	}
	return threshold
}

// String renders the filter back into directive syntax.
func (f *Filter) String() string {
	parts := make([]string, 0, len(f.directives)+1)
	parts = append(parts, levelName(f.global))
	for _, d := range f.directives {
		parts = append(parts, d.target+"="+levelName(d.level))
	}
	return strings.Join(parts, ",")
}

func targetMatches(target, prefix string) bool {
	if !strings.HasPrefix(target, prefix) {
		return false
	}
	rest := target[len(prefix):]
	return rest == "" || rest[0] == '.' || rest[0] == '/' || strings.HasPrefix(rest, "::")
}

func checkTarget(target string) string {
	if target == "" {
		return "empty target"
	}
	if i := strings.IndexFunc(target, func(r rune) bool {
		return r <= ' ' || strings.ContainsRune(`[]{}"=`, r)
	}); i >= 0 {
		return fmt.Sprintf("unsupported character %q in target", target[i])
	}
	return ""
}

func parseLevelName(value string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	case "off":
		return LevelOff, true
	default:
		return 0, false
	}
}

func levelName(level slog.Level) string {
	switch {
	case level == LevelOff:
		return "off"
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	case level >= slog.LevelDebug:
		return "debug"
	default:
		return "trace"
	}
}
