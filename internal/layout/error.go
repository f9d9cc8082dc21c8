package layout

import (
	"fmt"
	"strings"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursive indicates a type that contains itself by value.
	LayoutErrRecursive LayoutErrorKind = iota + 1
	LayoutErrUnknownType
	LayoutErrUnknownProperty
	LayoutErrOverflow
	LayoutErrNegativeLength
)

// LayoutError is an internal fatal error: upstream analysis guarantees
// that declared types are known, finite and sized.
type LayoutError struct {
	Kind     LayoutErrorKind
	Type     string
	Property string   // for LayoutErrUnknownProperty
	Cycle    []string // for LayoutErrRecursive
	Err      error    // for LayoutErrNegativeLength
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursive:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("type %s contains itself by value", e.Type)
		}
		return fmt.Sprintf("type %s contains itself by value (cycle: %s)", e.Type, strings.Join(e.Cycle, " -> "))
	case LayoutErrUnknownType:
		return fmt.Sprintf("unknown type %s", e.Type)
	case LayoutErrUnknownProperty:
		return fmt.Sprintf("type %s has no property %s", e.Type, e.Property)
	case LayoutErrOverflow:
		return fmt.Sprintf("size of %s overflows", e.Type)
	case LayoutErrNegativeLength:
		if e.Err != nil {
			return fmt.Sprintf("array length conversion error (%s): %v", e.Type, e.Err)
		}
		return fmt.Sprintf("negative array length in %s", e.Type)
	default:
		return fmt.Sprintf("layout error kind=%d type %s", e.Kind, e.Type)
	}
}
