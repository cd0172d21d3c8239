package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"disklog/internal/config"
)

type spanKey struct{}

// ContextWithSpan returns ctx carrying span; records logged with the
// returned context are prefixed with the span chain.
func ContextWithSpan(ctx context.Context, span *Span) context.Context {
	return context.WithValue(ctx, spanKey{}, span)
}

// SpanFromContext returns the innermost span carried by ctx, if any.
func SpanFromContext(ctx context.Context) *Span {
	if ctx == nil {
		return nil
	}
	span, _ := ctx.Value(spanKey{}).(*Span)
	return span
}

// Span is a named unit of work whose lifecycle transitions are recorded
// according to the logger's span event set.
type Span struct {
	logger *Logger
	parent *Span
	id     string
	name   string
	attrs  []slog.Attr
	target string
	ctx    context.Context

	mu        sync.Mutex
	created   time.Time
	entered   int
	lastEnter time.Time
	busy      time.Duration
	ended     bool
}

// ID returns the span identifier.
func (s *Span) ID() string {
	return s.id
}

// Name returns the span name.
func (s *Span) Name() string {
	return s.name
}

// Parent returns the enclosing span, or nil for a root span.
func (s *Span) Parent() *Span {
	return s.parent
}

// Enter marks the span as executing. Nested Enter calls are counted; busy
// time accrues from the outermost Enter to the matching Exit.
func (s *Span) Enter() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	if s.entered == 0 {
		s.lastEnter = time.Now()
	}
	s.entered++
	s.mu.Unlock()
	s.emit(config.SpanEnter, "enter")
}

// Exit marks the span as no longer executing.
func (s *Span) Exit() {
	s.mu.Lock()
	if s.ended || s.entered == 0 {
		s.mu.Unlock()
		return
	}
	s.entered--
	if s.entered == 0 {
		s.busy += time.Since(s.lastEnter)
	}
	s.mu.Unlock()
	s.emit(config.SpanExit, "exit")
}

// End closes the span. The close record reports busy and idle time.
// Calling End more than once has no effect.
func (s *Span) End() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	now := time.Now()
	if s.entered > 0 {
		s.busy += now.Sub(s.lastEnter)
		s.entered = 0
	}
	busy := s.busy
	idle := now.Sub(s.created) - busy
	if idle < 0 {
		idle = 0
	}
	s.mu.Unlock()
	s.emit(config.SpanClose, "close", Duration(FieldTimeBusy, busy), Duration(FieldTimeIdle, idle))
}

// Run enters the span, calls fn with the span's context, and exits.
func (s *Span) Run(fn func(ctx context.Context)) {
	s.Enter()
	defer s.Exit()
	fn(s.ctx)
}

func (s *Span) emit(kind config.SpanEvent, msg string, attrs ...slog.Attr) {
	if s.logger == nil || !s.logger.spanEvents.Has(kind) {
		return
	}
	handler := s.logger.handler
	if !handler.Enabled(s.ctx, slog.LevelInfo) {
		return
	}
	record := slog.NewRecord(time.Now(), slog.LevelInfo, msg, 0)
	if s.target != "" {
		record.AddAttrs(String(FieldComponent, s.target))
	}
	record.AddAttrs(String(FieldSpanID, s.id))
	record.AddAttrs(attrs...)
	_ = handler.Handle(s.ctx, record)
}

func newSpan(ctx context.Context, logger *Logger, name string, attrs []slog.Attr) *Span {
	if ctx == nil {
		ctx = context.Background()
	}
	parent := SpanFromContext(ctx)
	span := &Span{
		logger:  logger,
		parent:  parent,
		id:      uuid.NewString(),
		name:    name,
		attrs:   attrs,
		created: time.Now(),
	}
	for _, attr := range attrs {
		if attr.Key == FieldComponent {
			span.target = attrString(attr.Value)
		}
	}
	if span.target == "" && parent != nil {
		span.target = parent.target
	}
	span.ctx = ContextWithSpan(ctx, span)
	return span
}
