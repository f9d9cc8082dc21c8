package trace

import (
	"io"
	"sync"
)

// Ring keeps the last events of a build in memory.
type Ring struct {
	mu    sync.Mutex
	buf   []Event
	next  int
	count int
	level Level
}

// NewRing returns a ring holding up to size events; size <= 0 means 4096.
func NewRing(size int, level Level) *Ring {
	if size <= 0 {
		size = 4096
	}
	return &Ring{buf: make([]Event, size), level: level}
}

func (r *Ring) Emit(ev *Event) {
	if !r.level.Keeps(ev.Scope) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = *ev
	r.buf[r.next].Seq = seq.Add(1)
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *Ring) Level() Level { return r.level }

func (r *Ring) Close() error { return nil }

// Events returns the retained events, oldest first.
func (r *Ring) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, 0, r.count)
	start := (r.next - r.count + len(r.buf)) % len(r.buf)
	for i := range r.count {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// ForTarget returns the retained events raised while lowering target.
func (r *Ring) ForTarget(target string) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Target == target {
			out = append(out, ev)
		}
	}
	return out
}

// Dump writes the retained events with times relative to the oldest one.
func (r *Ring) Dump(w io.Writer, format Format) error {
	events := r.Events()
	if len(events) == 0 {
		return nil
	}
	base := events[0].Time
	for i := range events {
		if _, err := w.Write(render(&events[i], format, events[i].Time.Sub(base), 0)); err != nil {
			return err
		}
	}
	return nil
}
