package lower

import (
	"flintc/internal/ast"
)

// Value lowers e as an rvalue.
func (l *Lowerer[E, S]) Value(e *ast.Expr) E { return l.value(e) }

func (l *Lowerer[E, S]) value(e *ast.Expr) E {
	switch d := e.Data.(type) {
	case ast.LiteralData:
		lit, ok := DecodeLiteral(d)
		if !ok {
			l.fatalf(e.Span, "malformed %s literal", d.Kind)
		}
		return l.Emit.Literal(lit)
	case ast.IdentData:
		return l.ident(e, d)
	case ast.SelfData:
		return l.Emit.SelfRef(l.fc)
	case ast.BracketedData:
		return l.value(d.Inner)
	case ast.InoutData:
		return l.value(d.Inner)
	case ast.NotData:
		return l.Emit.Not(l.value(d.Operand))
	case ast.BinaryData:
		return l.binary(e, d)
	case ast.CallData:
		return l.call(e, d, nil)
	case ast.SubscriptData:
		return l.read(l.placeOf(e))
	case ast.ArrayLitData:
		return l.arrayLiteral(e, d)
	}
	l.fatalf(e.Span, "no lowering for %s expression %s", e.Kind, e)
	var zero E
	return zero
}

// ident applies the identifier rule: locals by name, unannotated names as
// top-level constants, everything else as a property of the receiver.
func (l *Lowerer[E, S]) ident(e *ast.Expr, d ast.IdentData) E {
	if local, ok := l.isLocalRef(d); ok {
		return l.read(l.localPlace(local))
	}
	if d.EnclosingType == "" {
		return l.Emit.Global(d.Name)
	}
	return l.read(l.memberPlace(l.receiverPlace(), e))
}

func (l *Lowerer[E, S]) binary(e *ast.Expr, d ast.BinaryData) E {
	if d.Op == ast.OpDot {
		return l.member(e, d)
	}
	if d.Op.IsAssignment() {
		l.fatalf(e.Span, "assignment %s used as a value", e)
	}
	if op, checked, ok := arithOf(d.Op); ok {
		return l.Emit.Arith(op, checked, l.value(d.Lhs), l.value(d.Rhs))
	}
	if op, ok := compareOf(d.Op); ok {
		return l.Emit.Compare(op, l.value(d.Lhs), l.value(d.Rhs))
	}
	switch d.Op {
	case ast.OpAnd:
		return l.Emit.Logic(LogicAnd, l.value(d.Lhs), l.value(d.Rhs))
	case ast.OpOr:
		return l.Emit.Logic(LogicOr, l.value(d.Lhs), l.value(d.Rhs))
	}
	l.fatalf(e.Span, "unsupported operator %s", d.Op)
	var zero E
	return zero
}

// member applies the property access rule. The special cases are checked
// in order before falling back to an offset from the base.
func (l *Lowerer[E, S]) member(e *ast.Expr, d ast.BinaryData) E {
	if name := d.Rhs.IdentName(); name == "size" {
		lt := l.fc.typeOf(d.Lhs)
		if lt.Kind == ast.TypeFixedArray {
			return l.Emit.Word(lt.Size)
		}
		if lt.IsCollection() {
			base := l.basePlace(d.Lhs)
			return l.Emit.Length(base.addr, l.collection(base))
		}
	}
	if name := d.Rhs.IdentName(); name != "" && l.isEnumCase(d.Lhs, name) {
		enum := l.fc.typeOf(d.Lhs).Name
		ti, _ := l.fc.Env.Type(enum)
		return l.value(ti.CaseValues[name])
	}
	if call, ok := d.Rhs.Data.(ast.CallData); ok {
		base := l.basePlace(d.Lhs)
		return l.call(d.Rhs, call, &base)
	}
	return l.read(l.memberPlace(l.basePlace(d.Lhs), d.Rhs))
}

// isEnumCase reports whether lhs names an enum declaring the case.
func (l *Lowerer[E, S]) isEnumCase(lhs *ast.Expr, name string) bool {
	id, ok := lhs.Data.(ast.IdentData)
	if !ok {
		return false
	}
	if _, local := l.isLocalRef(id); local || !l.fc.Env.IsEnum(id.Name) {
		return false
	}
	ti, _ := l.fc.Env.Type(id.Name)
	v, ok := ti.CaseValues[name]
	return ok && v != nil
}

// arrayLiteral evaluates the elements in order and hands them to the
// emitter, which builds a fresh dynamic array.
func (l *Lowerer[E, S]) arrayLiteral(e *ast.Expr, d ast.ArrayLitData) E {
	return l.arrayLiteralOf(e, d, l.fc.typeOf(e))
}

// arrayLiteralOf builds the literal as t, which is a dynamic array or a
// fixed array of exactly as many elements.
func (l *Lowerer[E, S]) arrayLiteralOf(e *ast.Expr, d ast.ArrayLitData, t ast.Type) E {
	if t.Kind == ast.TypeFixedArray && t.Size != len(d.Elems) {
		l.fatalf(e.Span, "array literal of %d elements for %s", len(d.Elems), t)
	}
	if len(d.Elems) > 0 && l.isAggregate(*t.Elem) {
		l.fatalf(e.Span, "array literal of aggregates")
	}
	elems := make([]E, len(d.Elems))
	for i, el := range d.Elems {
		elems[i] = l.value(el)
	}
	pre, v := l.Emit.ArrayLiteral(t, elems, l.Emit.LocalName(l.fc.Fresh("array")))
	l.pre = append(l.pre, pre...)
	return v
}
