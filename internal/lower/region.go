package lower

import (
	"flintc/internal/ast"
)

// RegionKind tells which address space a base pointer lives in.
type RegionKind uint8

const (
	// RegionStorage is persistent contract state.
	RegionStorage RegionKind = iota
	// RegionMemory is call-scoped scratch space.
	RegionMemory
	// RegionDynamic is decided at run time by a flag local, set to 1 for memory.
	RegionDynamic
)

func (k RegionKind) String() string {
	switch k {
	case RegionStorage:
		return "storage"
	case RegionMemory:
		return "memory"
	case RegionDynamic:
		return "dynamic"
	}
	return "unknown"
}

// Region is the address space of a place. Flag names the local holding the
// memory flag when Kind is RegionDynamic.
type Region struct {
	Kind RegionKind
	Flag string
}

func Storage() Region { return Region{Kind: RegionStorage} }

func Memory() Region { return Region{Kind: RegionMemory} }

func Dynamic(flag string) Region { return Region{Kind: RegionDynamic, Flag: flag} }

func (r Region) String() string {
	if r.Kind == RegionDynamic {
		return "dynamic(" + r.Flag + ")"
	}
	return r.Kind.String()
}

// FieldRef names one property of a struct or contract and its word offset.
type FieldRef struct {
	Owner  string
	Name   string
	Offset int
	Type   ast.Type
}

// Collection describes the collection a subscript or length applies to.
type Collection struct {
	Type   ast.Type
	Stride int
	Region Region
}

// Elem is the element (or value) type.
func (c Collection) Elem() ast.Type { return *c.Type.Elem }

// IsDict reports whether c is keyed.
func (c Collection) IsDict() bool { return c.Type.Kind == ast.TypeDict }

// IsFixed reports whether c is a fixed-size array.
func (c Collection) IsFixed() bool { return c.Type.Kind == ast.TypeFixedArray }

// ArithOp enumerates arithmetic primitives.
type ArithOp uint8

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithDiv
	ArithMod
	ArithPow
)

func (op ArithOp) String() string {
	switch op {
	case ArithAdd:
		return "add"
	case ArithSub:
		return "sub"
	case ArithMul:
		return "mul"
	case ArithDiv:
		return "div"
	case ArithMod:
		return "mod"
	case ArithPow:
		return "power"
	}
	return "unknown"
}

// CompareOp enumerates comparisons.
type CompareOp uint8

const (
	CompareEq CompareOp = iota
	CompareNeq
	CompareLt
	CompareLte
	CompareGt
	CompareGte
)

// LogicOp enumerates boolean connectives.
type LogicOp uint8

const (
	LogicAnd LogicOp = iota
	LogicOr
)

// arithOf maps a source operator to its primitive and whether it is checked.
func arithOf(op ast.Op) (ArithOp, bool, bool) {
	switch op {
	case ast.OpAdd:
		return ArithAdd, true, true
	case ast.OpSub:
		return ArithSub, true, true
	case ast.OpMul:
		return ArithMul, true, true
	case ast.OpDiv:
		return ArithDiv, true, true
	case ast.OpMod:
		return ArithMod, true, true
	case ast.OpPow:
		return ArithPow, true, true
	case ast.OpOverflowAdd:
		return ArithAdd, false, true
	case ast.OpOverflowSub:
		return ArithSub, false, true
	case ast.OpOverflowMul:
		return ArithMul, false, true
	}
	return 0, false, false
}

func compareOf(op ast.Op) (CompareOp, bool) {
	switch op {
	case ast.OpEq:
		return CompareEq, true
	case ast.OpNeq:
		return CompareNeq, true
	case ast.OpLt:
		return CompareLt, true
	case ast.OpLte:
		return CompareLte, true
	case ast.OpGt:
		return CompareGt, true
	case ast.OpGte:
		return CompareGte, true
	}
	return 0, false
}
