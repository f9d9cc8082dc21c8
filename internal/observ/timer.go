// Package observ measures where a build spends its time.
package observ

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Timer records laps of named build stages. Targets are lowered in
// parallel, so laps may overlap and may be started from several goroutines.
// A nil Timer records nothing.
type Timer struct {
	mu   sync.Mutex
	laps []*Lap
	now  func() time.Time
}

// Lap is one timed stage.
type Lap struct {
	timer *Timer
	name  string
	start time.Time
	dur   time.Duration
	note  string
	done  bool
}

func NewTimer() *Timer { return &Timer{now: time.Now} }

// Start opens a lap named name.
func (t *Timer) Start(name string) *Lap {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	lap := &Lap{timer: t, name: name, start: t.clock()}
	t.laps = append(t.laps, lap)
	return lap
}

// Stop closes the lap with an optional note. Stopping twice keeps the first
// measurement.
func (l *Lap) Stop(note string) {
	if l == nil {
		return
	}
	l.timer.mu.Lock()
	defer l.timer.mu.Unlock()
	if l.done {
		return
	}
	l.done = true
	l.dur = l.timer.clock().Sub(l.start)
	l.note = note
}

func (t *Timer) clock() time.Time {
	if t.now == nil {
		return time.Now()
	}
	return t.now()
}

// PhaseReport is the serializable form of one stopped lap.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report lists stopped laps in start order. WallMS runs from the earliest
// start to the latest end, so overlapping laps are not counted twice.
type Report struct {
	WallMS float64       `json:"wall_ms"`
	Phases []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	laps := slices.Clone(t.laps)
	t.mu.Unlock()

	laps = slices.DeleteFunc(laps, func(l *Lap) bool { return !l.done })
	if len(laps) == 0 {
		return Report{}
	}
	slices.SortStableFunc(laps, func(a, b *Lap) int { return a.start.Compare(b.start) })

	var r Report
	first, last := laps[0].start, laps[0].start
	for _, l := range laps {
		if end := l.start.Add(l.dur); end.After(last) {
			last = end
		}
		r.Phases = append(r.Phases, PhaseReport{Name: l.name, DurationMS: millis(l.dur), Note: l.note})
	}
	r.WallMS = millis(last.Sub(first))
	return r
}

// Summary renders the report as an aligned table with each lap's share of
// the wall time.
func (t *Timer) Summary() string {
	r := t.Report()
	width := len("wall")
	for _, p := range r.Phases {
		width = max(width, len(p.Name))
	}
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		share := 0.0
		if r.WallMS > 0 {
			share = 100 * p.DurationMS / r.WallMS
		}
		fmt.Fprintf(&sb, "  %-*s %9.2f ms %5.1f%%", width, p.Name, p.DurationMS, share)
		if p.Note != "" {
			sb.WriteString("  " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-*s %9.2f ms\n", width, "wall", r.WallMS)
	return sb.String()
}

// Slowest returns the stopped lap with the longest duration.
func (t *Timer) Slowest() (PhaseReport, bool) {
	r := t.Report()
	if len(r.Phases) == 0 {
		return PhaseReport{}, false
	}
	return slices.MaxFunc(r.Phases, func(a, b PhaseReport) int { return cmp.Compare(a.DurationMS, b.DurationMS) }), true
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
