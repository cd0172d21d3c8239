package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"

	"disklog/internal/config"
)

// FileHandler is the Active layer: it formats each record as one plain-text
// line (no ANSI decoration) and appends it to its sink.
type FileHandler struct {
	writer     io.Writer
	sink       *FileSink
	spanEvents config.SpanEvent
	attrs      []slog.Attr
	groups     []string
}

// NewFileHandler builds a layer writing to sink and emitting the given span
// lifecycle events.
func NewFileHandler(sink *FileSink, spanEvents config.SpanEvent) *FileHandler {
	return &FileHandler{writer: sink, sink: sink, spanEvents: spanEvents}
}

// Sink returns the file sink owned by the handler.
func (h *FileHandler) Sink() *FileSink {
	return h.sink
}

// SpanEvents returns the span lifecycle events this layer records.
func (h *FileHandler) SpanEvents() config.SpanEvent {
	return h.spanEvents
}

// Enabled always accepts; severity decisions belong to the Filter.
func (h *FileHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *FileHandler) Handle(ctx context.Context, record slog.Record) error {
	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})

	var component string
	filtered := make([]kv, 0, len(kvs))
	for _, kv := range kvs {
		if kv.key == FieldComponent {
			component = attrString(kv.value)
			continue
		}
		filtered = append(filtered, kv)
	}
	filtered = dedupeKVsByKey(filtered)

	var buf bytes.Buffer
	buf.Grow(128 + len(filtered)*24)

	buf.WriteString(formatTimestamp(record.Time))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	if component != "" {
		buf.WriteString(" [")
		buf.WriteString(sanitizeMessage(component))
		buf.WriteByte(']')
	}
	if span := SpanFromContext(ctx); span != nil {
		buf.WriteByte(' ')
		writeSpanChain(&buf, span)
		buf.WriteByte(':')
	}
	if msg := sanitizeMessage(record.Message); msg != "" {
		buf.WriteByte(' ')
		buf.WriteString(msg)
	}
	for _, kv := range filtered {
		buf.WriteByte(' ')
		buf.WriteString(kv.key)
		buf.WriteByte('=')
		buf.WriteString(formatValue(kv.value))
	}
	buf.WriteByte('\n')

	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *FileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *FileHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *FileHandler) clone() *FileHandler {
	clone := &FileHandler{
		writer:     h.writer,
		sink:       h.sink,
		spanEvents: h.spanEvents,
	}
	if len(h.attrs) > 0 {
		clone.attrs = make([]slog.Attr, len(h.attrs))
		copy(clone.attrs, h.attrs)
	}
	if len(h.groups) > 0 {
		clone.groups = make([]string, len(h.groups))
		copy(clone.groups, h.groups)
	}
	return clone
}

// writeSpanChain renders the span and its ancestors root first, for
// example "request{id=7}:query".
func writeSpanChain(buf *bytes.Buffer, span *Span) {
	chain := make([]*Span, 0, 4)
	for s := span; s != nil; s = s.parent {
		chain = append(chain, s)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		s := chain[i]
		buf.WriteString(sanitizeMessage(s.name))
		var kvs []kv
		flattenAttrs(&kvs, nil, s.attrs)
		kvs = slices.DeleteFunc(kvs, func(field kv) bool { return field.key == FieldComponent })
		if len(kvs) > 0 {
			buf.WriteByte('{')
			for j, kv := range kvs {
				if j > 0 {
					buf.WriteByte(' ')
				}
				buf.WriteString(kv.key)
				buf.WriteByte('=')
				buf.WriteString(formatValue(kv.value))
			}
			buf.WriteByte('}')
		}
		if i > 0 {
			buf.WriteByte(':')
		}
	}
}

type kv struct {
	key   string
	value slog.Value
}

func dedupeKVsByKey(attrs []kv) []kv {
	if len(attrs) < 2 {
		return attrs
	}
	positions := make(map[string]int, len(attrs))
	deduped := make([]kv, 0, len(attrs))
	for _, attr := range attrs {
		if attr.key == "" {
			continue
		}
		if pos, ok := positions[attr.key]; ok {
			deduped[pos].value = attr.value
			continue
		}
		positions[attr.key] = len(deduped)
		deduped = append(deduped, attr)
	}
	return deduped
}

func flattenAttrs(dst *[]kv, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, prefix, attr)
	}
}

func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append([]string(nil), prefix...), attr.Key)
		}
		flattenAttrs(dst, next, attr.Value.Group())
		return
	}
	key := attr.Key
	if len(prefix) > 0 {
		key = strings.Join(append(append([]string(nil), prefix...), key), ".")
	}
	if key == "" {
		return
	}
	*dst = append(*dst, kv{key: key, value: attr.Value})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return " WARN"
	case level >= slog.LevelInfo:
		return " INFO"
	case level >= slog.LevelDebug:
		return "DEBUG"
	default:
		return "TRACE"
	}
}
