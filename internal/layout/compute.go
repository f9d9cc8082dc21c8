package layout

import (
	"math"

	"fortio.org/safecast"

	"flintc/internal/ast"
	"flintc/internal/env"
)

func (e *Engine) sizeOf(t ast.Type, state *layoutState) (int, error) {
	switch t.Kind {
	case ast.TypeBasic:
		switch t.Basic {
		case ast.BasicVoid, ast.BasicEvent:
			return 0, nil
		}
		return 1, nil
	case ast.TypeRange, ast.TypeAny:
		return 0, nil
	case ast.TypeArray, ast.TypeDict:
		// The header slot: element count or hashing seed.
		return 1, nil
	case ast.TypeInout:
		return e.sizeOf(*t.Elem, state)
	case ast.TypeFixedArray:
		return e.fixedArraySize(t, state)
	case ast.TypeNamed:
		return e.namedSize(t.Name, state)
	case ast.TypeSelf:
		return 0, &LayoutError{Kind: LayoutErrUnknownType, Type: "Self"}
	}
	return 0, &LayoutError{Kind: LayoutErrUnknownType, Type: t.String()}
}

func (e *Engine) fixedArraySize(t ast.Type, state *layoutState) (int, error) {
	n, err := safecast.Conv[uint32](t.Size)
	if err != nil {
		return 0, &LayoutError{Kind: LayoutErrNegativeLength, Type: t.String(), Err: err}
	}
	elem, err := e.sizeOf(*t.Elem, state)
	if err != nil {
		return 0, err
	}
	total, ok := checkedMul(int(n), elem)
	if !ok {
		return 0, &LayoutError{Kind: LayoutErrOverflow, Type: t.String()}
	}
	return total, nil
}

func (e *Engine) namedSize(name string, state *layoutState) (int, error) {
	if n, ok := state.sizes.get(name); ok {
		return n, nil
	}
	ti, ok := e.Env.Type(name)
	if !ok {
		return 0, &LayoutError{Kind: LayoutErrUnknownType, Type: name}
	}
	if idx, ok := state.index[name]; ok {
		cycle := append(append([]string(nil), state.stack[idx:]...), name)
		return 0, &LayoutError{Kind: LayoutErrRecursive, Type: name, Cycle: cycle}
	}

	var size int
	switch ti.Kind {
	case env.KindEnum:
		return e.sizeOf(ti.Hidden, state)
	case env.KindTrait:
		return 0, &LayoutError{Kind: LayoutErrUnknownType, Type: name}
	default:
		state.index[name] = len(state.stack)
		state.stack = append(state.stack, name)
		for _, p := range ti.OrderedProperties() {
			n, err := e.sizeOf(p.Type.ReplaceSelf(name), state)
			if err != nil {
				return 0, err
			}
			var ok bool
			if size, ok = checkedAdd(size, n); !ok {
				return 0, &LayoutError{Kind: LayoutErrOverflow, Type: name}
			}
		}
		state.stack = state.stack[:len(state.stack)-1]
		delete(state.index, name)
	}
	state.sizes.put(name, size)
	return size, nil
}

func checkedAdd(a, b int) (int, bool) {
	if b > 0 && a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

func checkedMul(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}
