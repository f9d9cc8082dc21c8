package trace

import (
	"fmt"
	"strings"
)

// Level selects the finest scope a tracer keeps.
type Level uint8

const (
	LevelOff Level = iota
	// LevelError keeps stage events in the ring only, for fault dumps.
	LevelError
	LevelStage
	LevelStep
	LevelUnit
)

var levelNames = [...]string{"off", "error", "stage", "step", "unit"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel reads a --trace-level value.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if s == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (expected %s)", s, strings.Join(levelNames[:], "|"))
}

// finest is the finest scope this level keeps; zero keeps nothing.
func (l Level) finest() Scope {
	switch l {
	case LevelError, LevelStage:
		return ScopeStage
	case LevelStep:
		return ScopeStep
	case LevelUnit:
		return ScopeUnit
	}
	return 0
}

// Keeps reports whether events of scope are recorded at this level.
// LevelError records stage boundaries so a ring has context to dump.
func (l Level) Keeps(scope Scope) bool {
	return scope <= l.finest()
}
