package move

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"flintc/internal/ast"
	"flintc/internal/env"
	"flintc/internal/lower"
	"flintc/internal/source"
)

const (
	// ThisName is the receiver parameter of contract and struct functions.
	ThisName = "this"
	// constructing stands in for the receiver while an initializer still
	// holds the fields in locals.
	constructing = "flint$constructing"
	// ResourceName is the resource holding a contract's state.
	ResourceName = "T"
)

// FieldLocal names the local holding property name during construction.
func FieldLocal(name string) string { return "flint$this$" + name }

var u64Max = new(big.Int).SetUint64(^uint64(0))

// emitter spells the lowering primitives in Move IR. Every address is a
// mutable reference; loads dereference it and stores write through it.
type emitter struct {
	env *env.Environment
}

var _ lower.Emitter[Expr, Stmt] = (*emitter)(nil)

func newEmitter(e *env.Environment) *emitter {
	return &emitter{env: e}
}

// typeName spells t as a Move type.
func (m *emitter) typeName(t ast.Type) string {
	switch t.Kind {
	case ast.TypeBasic:
		switch t.Basic {
		case ast.BasicInt:
			return "u64"
		case ast.BasicBool:
			return "bool"
		case ast.BasicAddress:
			return "address"
		case ast.BasicString:
			return "bytearray"
		}
	case ast.TypeNamed:
		switch {
		case m.env.IsStruct(t.Name):
			return "Self." + t.Name
		case m.env.IsContract(t.Name):
			return "Self." + ResourceName
		case m.env.IsEnum(t.Name):
			ti, _ := m.env.Type(t.Name)
			return m.typeName(ti.Hidden)
		}
	case ast.TypeArray, ast.TypeFixedArray:
		return "vector<" + m.typeName(*t.Elem) + ">"
	case ast.TypeDict:
		return RuntimeModule + ".FlintMap<" + m.typeName(*t.Key) + ", " + m.typeName(*t.Elem) + ">"
	case ast.TypeInout:
		return m.typeName(*t.Elem)
	}
	lower.Fatalf("", source.Synthetic(), "type %s has no Move spelling", t)
	return ""
}

// paramType is the declared type of a parameter. Aggregates arrive as
// mutable references.
func (m *emitter) paramType(t ast.Type) string {
	if lower.IsAggregate(m.env, t) {
		return "&mut " + m.typeName(t.Deref())
	}
	return m.typeName(t.Deref())
}

func (m *emitter) Literal(l lower.Literal) Expr {
	switch l.Kind {
	case lower.LitBool:
		return Lit{Value: strconv.FormatBool(l.Bool)}
	case lower.LitInt:
		if l.Int.Cmp(u64Max) > 0 {
			lower.Fatalf("", source.Synthetic(), "literal %s does not fit u64", l.Int)
		}
		return Lit{Value: l.Int.String()}
	case lower.LitAddress:
		return Lit{Value: "0x" + l.Int.Text(16)}
	case lower.LitString:
		return Lit{Value: "h\"" + hex.EncodeToString([]byte(l.Text)) + "\""}
	}
	lower.Fatalf("", source.Synthetic(), "literal kind %d", l.Kind)
	return nil
}

func (m *emitter) Local(name string) Expr  { return CopyOf{Name: name} }
func (m *emitter) Global(name string) Expr { return Ident{Name: name} }

func (m *emitter) LocalRef(name string, param bool) Expr {
	if param {
		return Ref{Name: name}
	}
	return Borrow{Name: name}
}

func (m *emitter) Receiver(fc *lower.FunctionContext) Expr {
	if fc.InConstructor {
		return Ident{Name: constructing}
	}
	return Ref{Name: ThisName}
}

func (m *emitter) SelfRef(fc *lower.FunctionContext) Expr {
	if fc.InConstructor {
		lower.Fatalf(fc.Name(), fc.Function.Decl.Span, "self used before all fields are initialized")
	}
	return Ref{Name: ThisName}
}

func (m *emitter) Word(n int) Expr { return Lit{Value: strconv.Itoa(n)} }

func isConstructing(e Expr) bool {
	id, ok := e.(Ident)
	return ok && id.Name == constructing
}

func (m *emitter) Field(base Expr, f lower.FieldRef, _ lower.Region) Expr {
	if isConstructing(base) {
		return Borrow{Name: FieldLocal(f.Name)}
	}
	return BorrowField{Base: base, Field: f.Name}
}

func (m *emitter) Element(base, index Expr, c lower.Collection) Expr {
	return ElemRef{Vec: base, Index: index, Elem: m.typeName(c.Elem())}
}

func (m *emitter) KeyedElement(base, key Expr, c lower.Collection) Expr {
	return MapEntry{Map: base, Key: key, K: m.typeName(*c.Type.Key), V: m.typeName(c.Elem())}
}

// Length of a dictionary is its key count.
func (m *emitter) Length(base Expr, c lower.Collection) Expr {
	if c.IsDict() {
		return Call{Fn: rt("map_size"), TypeArgs: []string{m.typeName(*c.Type.Key), m.typeName(c.Elem())}, Args: []Expr{Freeze{X: base}}}
	}
	return Call{Fn: "Vector.length", TypeArgs: []string{m.typeName(c.Elem())}, Args: []Expr{Freeze{X: base}}}
}

func (m *emitter) BoundsCheck(index, length Expr) Expr {
	return Call{Fn: rt("check_index"), Args: []Expr{index, length}}
}

func (m *emitter) Load(addr Expr, _ lower.Region) Expr {
	switch a := addr.(type) {
	case Borrow:
		return CopyOf{Name: a.Name}
	case MapEntry:
		return Call{Fn: rt("map_get"), TypeArgs: []string{a.K, a.V}, Args: []Expr{Freeze{X: a.Map}, a.Key}}
	}
	return Deref{X: addr}
}

func (m *emitter) Store(addr, value Expr, _ lower.Region) Stmt {
	switch a := addr.(type) {
	case Borrow:
		return Assign{Name: a.Name, Value: value}
	case MapEntry:
		return ExprStmt{Expr: Call{Fn: rt("map_put"), TypeArgs: []string{a.K, a.V}, Args: []Expr{a.Map, a.Key, value}}}
	}
	return StoreRef{Ref: addr, Value: value}
}

// valueOf turns a reference to an aggregate into the aggregate value.
func (m *emitter) valueOf(e Expr) Expr {
	switch e.(type) {
	case Borrow, Ref, BorrowField, ElemRef, MapEntry:
		return m.Load(e, lower.Memory())
	}
	return e
}

func (m *emitter) Copy(dst, src Expr, _ ast.Type, _ int, dr, _ lower.Region) Stmt {
	return m.Store(dst, m.valueOf(src), dr)
}

// Allocate leaves the local unassigned; Move values need no scratch space.
func (m *emitter) Allocate(int) Expr { return Uninit{} }

func (m *emitter) Arith(op lower.ArithOp, checked bool, l, r Expr) Expr {
	if !checked {
		switch op {
		case lower.ArithAdd, lower.ArithSub, lower.ArithMul:
			return Call{Fn: rt("wrapping_" + op.String()), Args: []Expr{l, r}}
		case lower.ArithDiv:
			return Binary{Op: "/", L: l, R: r}
		case lower.ArithMod:
			return Binary{Op: "%", L: l, R: r}
		}
	}
	return Call{Fn: rt(op.String()), Args: []Expr{l, r}}
}

var compareOps = map[lower.CompareOp]string{
	lower.CompareEq:  "==",
	lower.CompareNeq: "!=",
	lower.CompareLt:  "<",
	lower.CompareLte: "<=",
	lower.CompareGt:  ">",
	lower.CompareGte: ">=",
}

func (m *emitter) Compare(op lower.CompareOp, l, r Expr) Expr {
	return Binary{Op: compareOps[op], L: l, R: r}
}

func (m *emitter) Logic(op lower.LogicOp, l, r Expr) Expr {
	if op == lower.LogicAnd {
		return Binary{Op: "&&", L: l, R: r}
	}
	return Binary{Op: "||", L: l, R: r}
}

func (m *emitter) Not(e Expr) Expr { return Not{X: e} }

func (m *emitter) Invoke(fc *lower.FunctionContext, inv lower.Invocation[Expr]) Expr {
	var args []Expr
	switch {
	case inv.HasReceiver:
		if isConstructing(inv.Receiver) {
			lower.Fatalf(fc.Name(), fc.Function.Decl.Span, "call to %s before all fields are initialized", inv.Name)
		}
		args = append(args, inv.Receiver)
	case inv.OwnerKind == env.KindContract:
		if fc.InConstructor {
			lower.Fatalf(fc.Name(), fc.Function.Decl.Span, "call to %s before all fields are initialized", inv.Name)
		}
		args = append(args, Ref{Name: ThisName})
	}
	for _, a := range inv.Args {
		args = append(args, a.Value)
	}
	return Call{Fn: "Self." + inv.Name, Args: args}
}

// ImplicitInit names the zero-argument initializer of a struct.
func ImplicitInit(structName string) string { return structName + "$init" }

func (m *emitter) Construct(_ *lower.FunctionContext, c lower.Construction[Expr]) ([]Stmt, Expr) {
	init := c.Init
	if init == "" {
		init = ImplicitInit(c.Type)
	}
	args := make([]Expr, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.Value
	}
	pre := []Stmt{Let{Name: c.Tmp, Type: "Self." + c.Type, Value: Call{Fn: "Self." + init, Args: args}}}
	return pre, Borrow{Name: c.Tmp}
}

func (m *emitter) ArrayLiteral(t ast.Type, elems []Expr, tmp string) ([]Stmt, Expr) {
	if t.Elem == nil {
		lower.Fatalf("", source.Synthetic(), "array literal of type %s", t)
	}
	elem := m.typeName(*t.Elem)
	pre := []Stmt{Let{Name: tmp, Type: "vector<" + elem + ">", Value: Call{Fn: "Vector.empty", TypeArgs: []string{elem}}}}
	for _, e := range elems {
		pre = append(pre, ExprStmt{Expr: Call{Fn: "Vector.push_back", TypeArgs: []string{elem}, Args: []Expr{Borrow{Name: tmp}, e}}})
	}
	return pre, Borrow{Name: tmp}
}

func (m *emitter) Declare(name string, t ast.Type, init Expr) Stmt {
	return Let{Name: name, Type: m.typeName(t), Value: m.valueOf(init)}
}

func (m *emitter) Assign(name string, value Expr) Stmt {
	return Assign{Name: name, Value: m.valueOf(value)}
}

func (m *emitter) Eval(e Expr, hasValue bool) Stmt {
	return ExprStmt{Expr: e, Discard: hasValue}
}

func (m *emitter) If(cond Expr, then, els []Stmt) Stmt {
	return If{Cond: cond, Then: then, Else: els}
}

// Loop runs init once, then the body followed by post while cond holds.
func (m *emitter) Loop(init []Stmt, cond Expr, post, body []Stmt) Stmt {
	loop := While{Cond: cond, Body: append(append([]Stmt{}, body...), post...)}
	return Seq{Stmts: append(append([]Stmt{}, init...), loop)}
}

func (m *emitter) Return(value Expr, has bool) Stmt {
	if !has {
		return Return{}
	}
	return Return{Value: m.valueOf(value)}
}

func (m *emitter) Assert(cond Expr) Stmt { return Assert{Cond: cond, Code: CodeFatal} }

func (m *emitter) Fatal() Stmt { return Abort{Code: CodeFatal} }

func (m *emitter) Send(Expr, Expr) Stmt {
	lower.Fatalf("", source.Synthetic(), "send has no Move lowering")
	return nil
}

// Event packs the arguments into the event struct and hands it to the
// runtime emitter.
func (m *emitter) Event(ev *ast.EventDecl, args []Expr, _ string) Stmt {
	fields := make([]FieldValue, len(args))
	for i, a := range args {
		fields[i] = FieldValue{Name: ev.Params[i].Name, Value: m.valueOf(a)}
	}
	return ExprStmt{Expr: Call{
		Fn:       rt("emit"),
		TypeArgs: []string{"Self." + ev.Name},
		Args:     []Expr{Pack{Type: ev.Name, Fields: fields}},
	}}
}

func (m *emitter) CallerBinding(name string) Stmt {
	return Let{Name: name, Type: "address", Value: Call{Fn: "get_txn_sender"}}
}

// Render identifies a local by name whatever its transfer mode, so a
// declaration can recognise an initializer naming itself.
func (m *emitter) Render(e Expr) string {
	switch e := e.(type) {
	case CopyOf:
		return e.Name
	case MoveOf:
		return e.Name
	case Borrow:
		return e.Name
	case Ref:
		return e.Name
	}
	return RenderExpr(e)
}

func (m *emitter) LocalName(name string) string { return "_" + name }
