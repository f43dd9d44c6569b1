package trace

import (
	"context"
	"time"
)

type tracerKey struct{}

type spanKey struct{}

// WithTracer attaches t to ctx; a nil t detaches tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// SpanID returns the id of the innermost span started through ctx, 0 when
// there is none.
func SpanID(ctx context.Context) uint64 {
	if ctx != nil {
		if id, ok := ctx.Value(spanKey{}).(uint64); ok {
			return id
		}
	}
	return 0
}

// Span is an open interval of the trace. A nil or filtered Span is valid and
// does nothing.
type Span struct {
	t       Tracer
	id      uint64
	parent  uint64
	gid     uint64
	scope   Scope
	name    string
	started time.Time
	attrs   map[string]string
}

// Start opens a span under the current span of ctx and returns a context in
// which it is current. Spans the level filters out leave ctx unchanged, so
// their children attach to the nearest recorded ancestor.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	sp := Begin(FromContext(ctx), scope, name, SpanID(ctx))
	if sp == nil {
		return ctx, nil
	}
	return context.WithValue(ctx, spanKey{}, sp.id), sp
}

// Begin opens a span with an explicit parent id. It returns nil when t does
// not record scope.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Level().Admits(scope) {
		return nil
	}
	sp := &Span{
		t:       t,
		id:      spanCounter.Add(1),
		parent:  parent,
		gid:     goroutineID(),
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	sp.emit(KindBegin, sp.started, "", nil)
	return sp
}

// Set records an attribute reported with the end event.
func (s *Span) Set(key, value string) *Span {
	if s == nil {
		return nil
	}
	if s.attrs == nil {
		s.attrs = make(map[string]string, 2)
	}
	s.attrs[key] = value
	return s
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	now := time.Now()
	s.emit(KindEnd, now, detail, s.attrs)
	return now.Sub(s.started)
}

// ID is 0 for a nil span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

func (s *Span) emit(kind Kind, at time.Time, detail string, attrs map[string]string) {
	s.t.Emit(&Event{
		Time:      at,
		Kind:      kind,
		Scope:     s.scope,
		Span:      s.id,
		Parent:    s.parent,
		Goroutine: s.gid,
		Name:      s.name,
		Detail:    detail,
		Attrs:     attrs,
	})
}

// Mark records an instant event under the current span of ctx.
func Mark(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Level().Admits(scope) {
		return
	}
	t.Emit(&Event{
		Time:      time.Now(),
		Kind:      KindPoint,
		Scope:     scope,
		Parent:    SpanID(ctx),
		Goroutine: goroutineID(),
		Name:      name,
		Detail:    detail,
	})
}
