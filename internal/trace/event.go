package trace

import "time"

// Kind tells span boundaries apart from instant events.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindPoint:
		return "point"
	}
	return "unknown"
}

// Scope is the granularity of an event. Coarser scopes have lower values.
type Scope uint8

const (
	// ScopeBuild covers a whole compile or build invocation.
	ScopeBuild Scope = iota + 1
	// ScopeStage covers one pipeline stage.
	ScopeStage
	// ScopeStep covers one rewrite pass or the lowering of one target.
	ScopeStep
	// ScopeUnit covers one contract or function handled by a step.
	ScopeUnit
)

func (s Scope) String() string {
	switch s {
	case ScopeBuild:
		return "build"
	case ScopeStage:
		return "stage"
	case ScopeStep:
		return "step"
	case ScopeUnit:
		return "unit"
	}
	return "unknown"
}

// Event is one recorded trace entry.
type Event struct {
	Time   time.Time
	Seq    uint64
	Kind   Kind
	Scope  Scope
	Span   uint64 // zero for points
	Parent uint64
	Target string // backend being lowered, if any
	Name   string // "stage:layout", "pass:resolve-traits", "lower:evm"
	Detail string
	Attrs  map[string]string
}
