package logging

import (
	"context"
	"log/slog"
)

// filterHandler applies a Filter in front of a layer. The record target is
// the component attribute: one carried by the record wins over one bound
// with WithAttrs before any group was opened.
type filterHandler struct {
	next      slog.Handler
	filter    *Filter
	component string
	grouped   bool
}

func newFilterHandler(next slog.Handler, filter *Filter) slog.Handler {
	if next == nil {
		next = NoopHandler{}
	}
	if filter == nil {
		filter = DefaultFilter()
	}
	return &filterHandler{next: next, filter: filter}
}

func (h *filterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	// A record may still name its own component, overriding any bound one,
	// so only the most permissive directive can rule it out here.
	threshold := h.filter.MinLevel()
	if threshold == LevelOff || level < threshold {
		return false
	}
	return h.next.Enabled(ctx, level)
}

func (h *filterHandler) Handle(ctx context.Context, record slog.Record) error {
	target := h.component
	if !h.grouped {
		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == FieldComponent {
				target = attrString(attr.Value)
			}
			return true
		})
	}
	if !h.filter.Allows(target, record.Level) {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *filterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	if !h.grouped {
		for _, attr := range attrs {
			if attr.Key == FieldComponent {
				clone.component = attrString(attr.Value)
			}
		}
	}
	return &clone
}

func (h *filterHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.next = h.next.WithGroup(name)
	if name != "" {
		clone.grouped = true
	}
	return &clone
}
