package layout

import (
	"fortio.org/safecast"

	"flintc/internal/ast"
	"flintc/internal/env"
)

// FieldLayout is the placement of one property inside its type.
type FieldLayout struct {
	Name   string
	Type   ast.Type
	Offset int
	Size   int
}

// TypeLayout is the word layout of a struct or contract.
type TypeLayout struct {
	Name   string
	Size   int
	Fields []FieldLayout
}

// Field returns the layout of the named property.
func (l TypeLayout) Field(name string) (FieldLayout, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldLayout{}, false
}

// Engine computes sizes and offsets from the environment. Every query
// recomputes from the declarations, so two call sites asking for the same
// field always agree.
type Engine struct {
	Target Target
	Env    *env.Environment
}

// New creates an Engine for the specified target.
func New(target Target, e *env.Environment) *Engine {
	return &Engine{Target: target, Env: e}
}

type layoutState struct {
	stack []string
	index map[string]int
	sizes *cache
}

func newLayoutState() *layoutState {
	return &layoutState{index: make(map[string]int, 8), sizes: newCache()}
}

// SizeOf returns the size of t in words.
func (e *Engine) SizeOf(t ast.Type) (int, error) {
	n, err := e.sizeOf(t, newLayoutState())
	if err != nil {
		return 0, err
	}
	return n, nil
}

// LayoutOf computes the layout of a named struct or contract.
func (e *Engine) LayoutOf(typeName string) (TypeLayout, error) {
	ti, ok := e.Env.Type(typeName)
	if !ok {
		return TypeLayout{}, &LayoutError{Kind: LayoutErrUnknownType, Type: typeName}
	}
	state := newLayoutState()
	state.index[typeName] = 0
	state.stack = append(state.stack, typeName)

	out := TypeLayout{Name: typeName, Fields: make([]FieldLayout, 0, len(ti.Properties))}
	offset := 0
	for _, p := range ti.OrderedProperties() {
		t := p.Type.ReplaceSelf(typeName)
		size, err := e.sizeOf(t, state)
		if err != nil {
			return TypeLayout{}, err
		}
		out.Fields = append(out.Fields, FieldLayout{Name: p.Name, Type: t, Offset: offset, Size: size})
		next, ok := checkedAdd(offset, size)
		if !ok {
			return TypeLayout{}, &LayoutError{Kind: LayoutErrOverflow, Type: typeName}
		}
		offset = next
	}
	out.Size = offset
	return out, nil
}

// Offset returns the word offset of property within typeName: the sum of
// the sizes of the properties declared before it.
func (e *Engine) Offset(typeName, property string) (int, error) {
	l, err := e.LayoutOf(typeName)
	if err != nil {
		return 0, err
	}
	f, ok := l.Field(property)
	if !ok {
		return 0, &LayoutError{Kind: LayoutErrUnknownProperty, Type: typeName, Property: property}
	}
	return f.Offset, nil
}

// Bytes converts a word count to bytes on the engine's target.
func (e *Engine) Bytes(words int) (uint64, error) {
	n, ok := checkedMul(words, e.Target.WordBytes)
	if !ok {
		return 0, &LayoutError{Kind: LayoutErrOverflow, Type: e.Target.Name}
	}
	return safecast.Conv[uint64](n)
}

// StateSlot is the word reserved after a contract's properties for its
// current type-state.
func (e *Engine) StateSlot(contract string) (int, error) {
	l, err := e.LayoutOf(contract)
	if err != nil {
		return 0, err
	}
	return l.Size, nil
}
