package diag

import (
	"sync"

	"flintc/internal/source"
)

// Reporter receives diagnostics from the collector, the passes and the
// pipeline checks.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// BagReporter adds every diagnostic to Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// LockedReporter lets targets lowered in parallel share one reporter.
type LockedReporter struct {
	mu   sync.Mutex
	next Reporter
}

func NewLockedReporter(next Reporter) *LockedReporter {
	return &LockedReporter{next: next}
}

func (r *LockedReporter) Report(d Diagnostic) {
	if r == nil || r.next == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next.Report(d)
}

// DedupReporter forwards each diagnostic once. Trait members copied into
// several conforming types are walked once per copy and report through it.
type DedupReporter struct {
	next Reporter
	seen map[identity]bool
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[identity]bool)}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil || r.seen[d.identity()] {
		return
	}
	r.seen[d.identity()] = true
	if r.next != nil {
		r.next.Report(d)
	}
}

// Pending is a diagnostic that has not been reported yet.
type Pending struct {
	to   Reporter
	d    Diagnostic
	sent bool
}

// ReportError starts an error diagnostic; call Emit to report it.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *Pending {
	return &Pending{to: r, d: NewError(code, primary, msg)}
}

// ReportWarning starts a warning diagnostic; call Emit to report it.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *Pending {
	return &Pending{to: r, d: New(SevWarning, code, primary, msg)}
}

func (p *Pending) WithNote(sp source.Span, msg string) *Pending {
	if p != nil {
		p.d = p.d.WithNote(sp, msg)
	}
	return p
}

// Emit reports the diagnostic. Later calls do nothing.
func (p *Pending) Emit() {
	if p == nil || p.sent {
		return
	}
	p.sent = true
	if p.to != nil {
		p.to.Report(p.d)
	}
}

// Diagnostic returns the diagnostic without reporting it.
func (p *Pending) Diagnostic() Diagnostic {
	if p == nil {
		return Diagnostic{}
	}
	return p.d
}
