package lower

import (
	"flintc/internal/ast"
)

// place is an addressable location. Scalar locals have no address and are
// read and written by name.
type place[E any] struct {
	addr    E
	region  Region
	typ     ast.Type
	local   string
	isLocal bool
}

// operand is a value together with the region it points into when it is
// an aggregate base pointer.
type operand[E any] struct {
	value  E
	region Region
}

func (l *Lowerer[E, S]) receiverPlace() place[E] {
	t := ast.NamedType(l.fc.EnclosingType)
	if l.fc.InStruct {
		return place[E]{addr: l.Emit.Receiver(l.fc), region: l.fc.ReceiverRegion, typ: t}
	}
	return place[E]{addr: l.Emit.Receiver(l.fc), region: Storage(), typ: t}
}

func (l *Lowerer[E, S]) localPlace(local ast.Local) place[E] {
	name := l.Emit.LocalName(local.Name)
	t := local.Type.Deref()
	if !l.isAggregate(t) {
		return place[E]{typ: t, local: name, isLocal: true}
	}
	region := Memory()
	if local.Param {
		region = Dynamic(MemFlag(name))
	}
	return place[E]{addr: l.Emit.LocalRef(name, local.Param), region: region, typ: t, local: name, isLocal: true}
}

// isLocalRef reports whether e names a local rather than a property.
func (l *Lowerer[E, S]) isLocalRef(d ast.IdentData) (ast.Local, bool) {
	if d.EnclosingType != "" {
		return ast.Local{}, false
	}
	return l.fc.Scope.Lookup(d.Name)
}

// addressable reports whether placeOf accepts e.
func (l *Lowerer[E, S]) addressable(e *ast.Expr) bool {
	switch d := e.Data.(type) {
	case ast.IdentData:
		if _, ok := l.isLocalRef(d); ok {
			return true
		}
		return d.EnclosingType != ""
	case ast.SelfData, ast.SubscriptData:
		return true
	case ast.BracketedData:
		return l.addressable(d.Inner)
	case ast.InoutData:
		return l.addressable(d.Inner)
	case ast.BinaryData:
		if d.Op != ast.OpDot {
			return false
		}
		switch rd := d.Rhs.Data.(type) {
		case ast.IdentData:
			if l.isEnumCase(d.Lhs, rd.Name) {
				return false
			}
			return !(rd.Name == "size" && l.fc.typeOf(d.Lhs).IsCollection())
		case ast.SubscriptData:
			return true
		}
	}
	return false
}

// placeOf computes the address of an assignable expression.
func (l *Lowerer[E, S]) placeOf(e *ast.Expr) place[E] {
	switch d := e.Data.(type) {
	case ast.IdentData:
		if local, ok := l.isLocalRef(d); ok {
			return l.localPlace(local)
		}
		if d.EnclosingType == "" {
			l.fatalf(e.Span, "%s is neither a local nor a property", d.Name)
		}
		// A bare property is an implicit access through the receiver.
		return l.memberPlace(l.receiverPlace(), e)
	case ast.SelfData:
		return l.receiverPlace()
	case ast.BracketedData:
		return l.placeOf(d.Inner)
	case ast.InoutData:
		return l.placeOf(d.Inner)
	case ast.BinaryData:
		if d.Op == ast.OpDot {
			return l.memberPlace(l.basePlace(d.Lhs), d.Rhs)
		}
	case ast.SubscriptData:
		return l.elementPlace(l.basePlace(d.Base), d.Index)
	}
	l.fatalf(e.Span, "%s expression %s is not addressable", e.Kind, e)
	return place[E]{}
}

// basePlace is placeOf for the left side of an access, accepting values
// such as call results, which are scratch-memory aggregates.
func (l *Lowerer[E, S]) basePlace(e *ast.Expr) place[E] {
	if l.addressable(e) {
		return l.placeOf(e)
	}
	return place[E]{addr: l.value(e), region: Memory(), typ: l.fc.typeOf(e)}
}

// memberPlace resolves rhs relative to base: the offset comes from the
// layout of base's type and the region is inherited from base.
func (l *Lowerer[E, S]) memberPlace(base place[E], rhs *ast.Expr) place[E] {
	switch d := rhs.Data.(type) {
	case ast.IdentData:
		if base.typ.Kind != ast.TypeNamed {
			l.fatalf(rhs.Span, "property %s of non-nominal type %s", d.Name, base.typ)
		}
		owner := base.typ.Name
		offset, err := l.Layout.Offset(owner, d.Name)
		if err != nil {
			Wrap(l.fc.Name(), rhs.Span, "offset of "+owner+"."+d.Name, err)
		}
		t, _ := l.fc.Env.PropertyType(owner, d.Name)
		t = t.Deref()
		f := FieldRef{Owner: owner, Name: d.Name, Offset: offset, Type: t}
		return place[E]{addr: l.Emit.Field(base.addr, f, base.region), region: base.region, typ: t}
	case ast.SubscriptData:
		return l.elementPlace(l.memberPlace(base, d.Base), d.Index)
	case ast.BinaryData:
		if d.Op == ast.OpDot {
			return l.memberPlace(l.memberPlace(base, d.Lhs), d.Rhs)
		}
	case ast.BracketedData:
		return l.memberPlace(base, d.Inner)
	}
	l.fatalf(rhs.Span, "unsupported member %s", rhs)
	return place[E]{}
}

func (l *Lowerer[E, S]) collection(base place[E]) Collection {
	if !base.typ.IsCollection() {
		Fatalf(l.fc.Name(), l.fc.Function.Decl.Span, "subscript of non-collection type %s", base.typ)
	}
	return Collection{Type: base.typ, Stride: l.size(*base.typ.Elem), Region: base.region}
}

// elementPlace addresses base[index]. Array accesses are always bounds
// checked; the check is part of the address so it runs before any load or
// store through it.
func (l *Lowerer[E, S]) elementPlace(base place[E], index *ast.Expr) place[E] {
	c := l.collection(base)
	key := l.value(index)
	if c.IsDict() {
		return place[E]{addr: l.Emit.KeyedElement(base.addr, key, c), region: base.region, typ: c.Elem()}
	}
	checked := l.Emit.BoundsCheck(key, l.length(base.addr, c))
	return place[E]{addr: l.Emit.Element(base.addr, checked, c), region: base.region, typ: c.Elem()}
}

// length is a constant for fixed arrays and a header load otherwise.
func (l *Lowerer[E, S]) length(base E, c Collection) E {
	if c.IsFixed() {
		return l.Emit.Word(c.Type.Size)
	}
	return l.Emit.Length(base, c)
}

// read yields the value stored at p. Aggregates are their base pointer.
func (l *Lowerer[E, S]) read(p place[E]) E {
	if l.isAggregate(p.typ) {
		return p.addr
	}
	if p.isLocal {
		return l.Emit.Local(p.local)
	}
	return l.Emit.Load(p.addr, p.region)
}

// write stores v into p. Aggregates are copied word by word unless the
// target is a local, which is rebound to the new base pointer.
func (l *Lowerer[E, S]) write(p place[E], v operand[E]) S {
	if p.isLocal && (!l.isAggregate(p.typ) || v.region.Kind == RegionMemory) {
		return l.Emit.Assign(p.local, v.value)
	}
	if l.isAggregate(p.typ) {
		return l.Emit.Copy(p.addr, v.value, p.typ, l.size(p.typ), p.region, v.region)
	}
	return l.Emit.Store(p.addr, v.value, p.region)
}

// operandAs lowers e as a value of type want. An array literal takes the
// shape of the fixed array it initializes.
func (l *Lowerer[E, S]) operandAs(e *ast.Expr, want ast.Type) operand[E] {
	inner := e
	for inner.Kind == ast.ExprBracketed {
		inner = inner.Data.(ast.BracketedData).Inner
	}
	if d, ok := inner.Data.(ast.ArrayLitData); ok && want.Kind == ast.TypeFixedArray {
		return operand[E]{value: l.arrayLiteralOf(inner, d, want), region: Memory()}
	}
	return l.operand(e)
}

// operand lowers e, keeping the region of aggregate base pointers.
func (l *Lowerer[E, S]) operand(e *ast.Expr) operand[E] {
	if l.isAggregate(l.fc.typeOf(e)) && l.addressable(e) {
		p := l.placeOf(e)
		return operand[E]{value: p.addr, region: p.region}
	}
	return operand[E]{value: l.value(e), region: Memory()}
}
