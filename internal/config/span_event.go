package config

import (
	"fmt"
	"strings"
)

// SpanEvent selects span lifecycle transitions that are written as log
// records. Values are bit flags so composite kinds (active, full) combine
// the single transitions they stand for.
type SpanEvent uint8

const (
	// SpanNew fires when a span is created.
	SpanNew SpanEvent = 1 << iota
	// SpanEnter fires each time a span is entered.
	SpanEnter
	// SpanExit fires each time a span is exited.
	SpanExit
	// SpanClose fires when a span ends; the record carries busy/idle timings.
	SpanClose

	// SpanNone disables span lifecycle records.
	SpanNone SpanEvent = 0
	// SpanActive is shorthand for enter and exit.
	SpanActive = SpanEnter | SpanExit
	// SpanFull enables every transition.
	SpanFull = SpanNew | SpanEnter | SpanExit | SpanClose
)

// DefaultSpanEvents is used when span_events is not configured.
const DefaultSpanEvents = SpanNew | SpanClose

var spanEventNames = []struct {
	name  string
	event SpanEvent
}{
	{"new", SpanNew},
	{"enter", SpanEnter},
	{"exit", SpanExit},
	{"close", SpanClose},
}

// ParseSpanEvent maps a single span event name to its flags.
func ParseSpanEvent(value string) (SpanEvent, error) {
	switch name := strings.ToLower(strings.TrimSpace(value)); name {
	case "none":
		return SpanNone, nil
	case "active":
		return SpanActive, nil
	case "full":
		return SpanFull, nil
	default:
		for _, candidate := range spanEventNames {
			if candidate.name == name {
				return candidate.event, nil
			}
		}
		return SpanNone, fmt.Errorf("unknown span event %q (want new, enter, exit, close, active, full or none)", value)
	}
}

// Has reports whether every flag in kind is set.
func (e SpanEvent) Has(kind SpanEvent) bool {
	return e&kind == kind
}

func (e SpanEvent) String() string {
	switch e {
	case SpanNone:
		return "none"
	case SpanActive:
		return "active"
	case SpanFull:
		return "full"
	}
	parts := make([]string, 0, len(spanEventNames))
	for _, candidate := range spanEventNames {
		if e.Has(candidate.event) {
			parts = append(parts, candidate.name)
		}
	}
	return strings.Join(parts, "|")
}

// MarshalText implements encoding.TextMarshaler.
func (e SpanEvent) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *SpanEvent) UnmarshalText(text []byte) error {
	parsed, err := ParseSpanEvent(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// SpanEvents is the configured set of span event kinds.
type SpanEvents []SpanEvent

// ParseSpanEvents reads a comma separated list such as "new,close".
// An empty list yields an empty, non-nil set.
func ParseSpanEvents(value string) (SpanEvents, error) {
	events := SpanEvents{}
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		event, err := ParseSpanEvent(part)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// Mask folds the set into a single flag value.
func (s SpanEvents) Mask() SpanEvent {
	var mask SpanEvent
	for _, event := range s {
		mask |= event
	}
	return mask
}

func (s SpanEvents) String() string {
	return s.Mask().String()
}
