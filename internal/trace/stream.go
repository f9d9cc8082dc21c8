package trace

import (
	"io"
	"os"
	"sync"
	"time"
)

// Stream writes every event as soon as it is emitted.
type Stream struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	start  time.Time
	depth  map[uint64]int
}

// NewStream returns a stream tracer writing to w.
func NewStream(w io.Writer, level Level, format Format) *Stream {
	if format == FormatAuto {
		format = FormatText
	}
	return &Stream{w: w, level: level, format: format, start: time.Now(), depth: make(map[uint64]int)}
}

func (s *Stream) Emit(ev *Event) {
	if s.level == LevelError || !s.level.Keeps(ev.Scope) {
		return
	}
	ev.Seq = seq.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	d := 0
	if ev.Parent != 0 {
		d = s.depth[ev.Parent] + 1
	}
	switch ev.Kind {
	case KindBegin:
		s.depth[ev.Span] = d
	case KindEnd:
		d = s.depth[ev.Span]
		delete(s.depth, ev.Span)
	}
	// A failing trace sink never fails the build.
	_, _ = s.w.Write(render(ev, s.format, ev.Time.Sub(s.start), d))
}

func (s *Stream) Level() Level { return s.level }

// Close closes the destination unless it is stdout or stderr.
func (s *Stream) Close() error {
	if s.w == os.Stdout || s.w == os.Stderr {
		return nil
	}
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
