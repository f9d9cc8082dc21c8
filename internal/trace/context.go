package trace

import "context"

type tracerKey struct{}

type scopeKey struct{}

// scope is what a context knows about the span it runs under.
type scope struct {
	span   uint64
	target string
}

// WithTracer attaches t to ctx.
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

func scopeOf(ctx context.Context) scope {
	if ctx != nil {
		if s, ok := ctx.Value(scopeKey{}).(scope); ok {
			return s
		}
	}
	return scope{}
}

// CurrentSpan returns the span ctx runs under, or 0.
func CurrentSpan(ctx context.Context) uint64 {
	return scopeOf(ctx).span
}

// TargetOf returns the backend ctx is lowering for, or "".
func TargetOf(ctx context.Context) string {
	return scopeOf(ctx).target
}

// ForTarget tags every event started under the returned context with target.
func ForTarget(ctx context.Context, target string) context.Context {
	s := scopeOf(ctx)
	s.target = target
	return context.WithValue(ctx, scopeKey{}, s)
}

// Start opens a span under the one ctx runs in and returns a context whose
// children nest inside it.
func Start(ctx context.Context, sc Scope, name string) (context.Context, *Span) {
	s := scopeOf(ctx)
	span := begin(FromContext(ctx), sc, name, s.span, s.target)
	if span.ID() != 0 {
		s.span = span.ID()
		ctx = context.WithValue(ctx, scopeKey{}, s)
	}
	return ctx, span
}

// Note emits an instant event under the span ctx runs in.
func Note(ctx context.Context, sc Scope, name, detail string) {
	s := scopeOf(ctx)
	point(FromContext(ctx), sc, name, detail, s.span, s.target)
}
