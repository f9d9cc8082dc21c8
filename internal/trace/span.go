package trace

import (
	"sync/atomic"
	"time"
)

var seq, spans atomic.Uint64

// Span is an open stage, step or unit. A nil or disabled span still
// measures its duration.
type Span struct {
	tracer Tracer
	ev     Event
	start  time.Time
}

// Begin opens a span under parent and emits its begin event.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, parent, "")
}

func begin(t Tracer, scope Scope, name string, parent uint64, target string) *Span {
	now := time.Now()
	if !enabled(t) || !t.Level().Keeps(scope) {
		return &Span{start: now}
	}
	s := &Span{tracer: t, start: now, ev: Event{
		Scope:  scope,
		Span:   spans.Add(1),
		Parent: parent,
		Target: target,
		Name:   name,
	}}
	ev := s.ev
	ev.Time, ev.Kind = now, KindBegin
	t.Emit(&ev)
	return s
}

// Set attaches an attribute reported with the end event.
func (s *Span) Set(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.ev.Attrs == nil {
		s.ev.Attrs = make(map[string]string)
	}
	s.ev.Attrs[key] = value
	return s
}

// End emits the end event and returns how long the span was open.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	d := time.Since(s.start)
	if s.tracer == nil {
		return d
	}
	ev := s.ev
	ev.Time, ev.Kind, ev.Detail = time.Now(), KindEnd, detail
	s.tracer.Emit(&ev)
	return d
}

// ID is zero for spans that were not recorded.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.ev.Span
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	point(t, scope, name, detail, parent, "")
}

func point(t Tracer, scope Scope, name, detail string, parent uint64, target string) {
	if !enabled(t) || !t.Level().Keeps(scope) {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindPoint,
		Scope:  scope,
		Parent: parent,
		Target: target,
		Name:   name,
		Detail: detail,
	})
}
