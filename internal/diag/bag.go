package diag

import (
	"cmp"
	"slices"
)

// Bag collects diagnostics up to a limit. It is not safe for concurrent
// use; wrap its reporter in a LockedReporter.
type Bag struct {
	items []Diagnostic
	limit int
}

// NewBag returns a bag keeping at most limit diagnostics; limit <= 0 means
// no limit.
func NewBag(limit int) *Bag {
	if limit < 0 {
		limit = 0
	}
	return &Bag{limit: limit}
}

// Add appends d unless the bag is full. It reports whether d was kept.
func (b *Bag) Add(d Diagnostic) bool {
	if b.full() {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) full() bool {
	return b.limit > 0 && len(b.items) >= b.limit
}

// Limit returns the configured limit, 0 when unbounded.
func (b *Bag) Limit() int { return b.limit }

// Count returns the number of diagnostics at or above sev.
func (b *Bag) Count(sev Severity) int {
	if b == nil {
		return 0
	}
	n := 0
	for i := range b.items {
		if b.items[i].Severity >= sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether anything blocks lowering.
func (b *Bag) HasErrors() bool { return b.Count(SevError) > 0 }

func (b *Bag) HasWarnings() bool { return b.Count(SevWarning) > 0 }

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// Items returns the diagnostics. The slice aliases the bag.
func (b *Bag) Items() []Diagnostic {
	if b == nil {
		return nil
	}
	return b.items
}

// Merge appends everything in other. A bounded bag grows its limit so that
// no diagnostic of other is lost.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if b.limit > 0 {
		b.limit = max(b.limit, len(b.items)+len(other.items))
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by position, errors before warnings on the same
// span, then by code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		if x.Primary != y.Primary {
			if x.Primary.Before(y.Primary) {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(y.Severity, x.Severity); c != 0 {
			return c
		}
		return cmp.Compare(x.Code, y.Code)
	})
}

// Dedup drops repeats of the same code, span and message, keeping the first.
func (b *Bag) Dedup() {
	seen := make(map[identity]bool, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		id := d.identity()
		if seen[id] {
			return true
		}
		seen[id] = true
		return false
	})
}
