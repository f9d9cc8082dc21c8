package evm

import (
	"math/big"
	"strconv"
	"strings"

	"flintc/internal/ast"
	"flintc/internal/layout"
	"flintc/internal/lower"
	"flintc/internal/source"
)

// emitter spells the lowering primitives in Yul. Storage addresses are
// slot numbers; memory addresses are byte offsets, so memory offsets are
// scaled by the word size.
type emitter struct {
	engine *layout.Engine
}

var _ lower.Emitter[Expr, Stmt] = (*emitter)(nil)

func newEmitter(engine *layout.Engine) *emitter {
	return &emitter{engine: engine}
}

func (m *emitter) bytes(words int) Expr {
	n, err := m.engine.Bytes(words)
	if err != nil {
		lower.Wrap("", source.Synthetic(), "word count", err)
	}
	return lit(strconv.FormatUint(n, 10))
}

func (m *emitter) Literal(l lower.Literal) Expr {
	switch l.Kind {
	case lower.LitBool:
		if l.Bool {
			return lit("1")
		}
		return lit("0")
	case lower.LitInt:
		return lit(l.Int.String())
	case lower.LitAddress:
		return lit("0x" + l.Int.Text(16))
	case lower.LitString:
		return lit(quote(l.Text))
	}
	lower.Fatalf("", source.Synthetic(), "literal kind %d", l.Kind)
	return nil
}

func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func (m *emitter) Local(name string) Expr  { return id(name) }
func (m *emitter) Global(name string) Expr { return id(name) }

func (m *emitter) LocalRef(name string, _ bool) Expr { return id(name) }

func (m *emitter) Receiver(fc *lower.FunctionContext) Expr {
	if fc.InStruct {
		return id(lower.ReceiverName)
	}
	return lit("0")
}

func (m *emitter) SelfRef(fc *lower.FunctionContext) Expr { return m.Receiver(fc) }

func (m *emitter) Word(n int) Expr { return lit(strconv.Itoa(n)) }

// flag is the memory flag passed alongside a base pointer.
func flag(r lower.Region) Expr {
	switch r.Kind {
	case lower.RegionMemory:
		return lit("1")
	case lower.RegionDynamic:
		return id(r.Flag)
	}
	return lit("0")
}

func literalInt(e Expr) (*big.Int, bool) {
	l, ok := e.(Lit)
	if !ok {
		return nil, false
	}
	return new(big.Int).SetString(l.Value, 0)
}

func (m *emitter) offset(base Expr, words int, r lower.Region) Expr {
	if words == 0 {
		return base
	}
	switch r.Kind {
	case lower.RegionStorage:
		if n, ok := literalInt(base); ok {
			return lit(n.Add(n, big.NewInt(int64(words))).String())
		}
		return call("add", base, m.Word(words))
	case lower.RegionMemory:
		return call("add", base, m.bytes(words))
	}
	return call(rt("computeOffset"), base, m.Word(words), flag(r))
}

func (m *emitter) Field(base Expr, f lower.FieldRef, r lower.Region) Expr {
	return m.offset(base, f.Offset, r)
}

func (m *emitter) Element(base, index Expr, c lower.Collection) Expr {
	stride := m.Word(c.Stride)
	scaled := index
	if c.Stride != 1 {
		scaled = call("mul", index, stride)
	}
	if c.IsFixed() {
		switch c.Region.Kind {
		case lower.RegionStorage:
			return call("add", base, scaled)
		case lower.RegionMemory:
			return call("add", base, call("mul", scaled, m.bytes(1)))
		}
		return call(rt("computeOffset"), base, scaled, flag(c.Region))
	}
	switch c.Region.Kind {
	case lower.RegionStorage:
		return call(rt("storageArrayOffset"), base, index)
	case lower.RegionMemory:
		return call("add", call("add", base, m.bytes(1)), call("mul", scaled, m.bytes(1)))
	}
	return call(rt("dynamicArrayOffset"), base, index, stride, flag(c.Region))
}

func (m *emitter) KeyedElement(base, key Expr, c lower.Collection) Expr {
	if c.Region.Kind == lower.RegionMemory {
		lower.Fatalf("", source.Synthetic(), "dictionary %s in memory", c.Type)
	}
	return call(rt("storageDictionaryOffsetForKey"), base, key)
}

// Length loads the header word. Dictionaries count their distinct keys
// there, see inserting.
func (m *emitter) Length(base Expr, c lower.Collection) Expr {
	return m.Load(base, c.Region)
}

// inserting turns a dictionary entry address into one that also records
// the key, so writes through it keep the dictionary size current.
func inserting(addr Expr) Expr {
	if c, ok := addr.(Call); ok && c.Fn == rt("storageDictionaryOffsetForKey") {
		return Call{Fn: rt("dictionaryInsert"), Args: c.Args}
	}
	return addr
}

func (m *emitter) BoundsCheck(index, length Expr) Expr {
	return call(rt("checkIndex"), index, length)
}

func (m *emitter) Load(addr Expr, r lower.Region) Expr {
	switch r.Kind {
	case lower.RegionStorage:
		return call("sload", addr)
	case lower.RegionMemory:
		return call("mload", addr)
	}
	return call(rt("load"), addr, flag(r))
}

func (m *emitter) Store(addr, value Expr, r lower.Region) Stmt {
	switch r.Kind {
	case lower.RegionStorage:
		return exprStmt("sstore", inserting(addr), value)
	case lower.RegionMemory:
		return exprStmt("mstore", addr, value)
	}
	return exprStmt(rt("store"), inserting(addr), value, flag(r))
}

// Copy moves words one at a time. A dynamic array outside memory keeps its
// elements in hashed slots, so it is copied element by element at runtime.
func (m *emitter) Copy(dst, src Expr, t ast.Type, words int, dr, sr lower.Region) Stmt {
	if t.Kind == ast.TypeArray && dr.Kind != lower.RegionMemory {
		stride, err := m.engine.SizeOf(*t.Elem)
		if err != nil {
			lower.Wrap("", source.Synthetic(), "size of "+t.Elem.String(), err)
		}
		return exprStmt(rt("copyDynamicArray"), inserting(dst), flag(dr), src, flag(sr), m.Word(stride))
	}
	b := Block{Stmts: make([]Stmt, 0, words)}
	for i := range words {
		b.Stmts = append(b.Stmts, m.Store(m.offset(dst, i, dr), m.Load(m.offset(src, i, sr), sr), dr))
	}
	return b
}

func (m *emitter) Allocate(words int) Expr {
	return call(rt("allocateMemory"), m.bytes(words))
}

func (m *emitter) Arith(op lower.ArithOp, checked bool, l, r Expr) Expr {
	if checked {
		return call(rt(op.String()), l, r)
	}
	if op == lower.ArithPow {
		return call("exp", l, r)
	}
	return call(op.String(), l, r)
}

func (m *emitter) Compare(op lower.CompareOp, l, r Expr) Expr {
	switch op {
	case lower.CompareEq:
		return call("eq", l, r)
	case lower.CompareNeq:
		return call("iszero", call("eq", l, r))
	case lower.CompareLt:
		return call("lt", l, r)
	case lower.CompareLte:
		return call("iszero", call("gt", l, r))
	case lower.CompareGt:
		return call("gt", l, r)
	}
	return call("iszero", call("lt", l, r))
}

func (m *emitter) Logic(op lower.LogicOp, l, r Expr) Expr {
	if op == lower.LogicAnd {
		return call("and", l, r)
	}
	return call("or", l, r)
}

func (m *emitter) Not(e Expr) Expr { return call("iszero", e) }

func (m *emitter) args(list []lower.Argument[Expr]) []Expr {
	out := make([]Expr, 0, len(list))
	for _, a := range list {
		out = append(out, a.Value)
		if a.Aggregate {
			out = append(out, flag(a.Region))
		}
	}
	return out
}

func (m *emitter) Invoke(_ *lower.FunctionContext, inv lower.Invocation[Expr]) Expr {
	var args []Expr
	if inv.HasReceiver {
		args = append(args, inv.Receiver, flag(inv.ReceiverRegion))
	}
	args = append(args, m.args(inv.Args)...)
	return call(inv.Name, args...)
}

func (m *emitter) Construct(_ *lower.FunctionContext, c lower.Construction[Expr]) ([]Stmt, Expr) {
	pre := []Stmt{Let{Names: ps(c.Tmp), Value: m.Allocate(c.Words)}}
	if c.Init != "" {
		args := append([]Expr{id(c.Tmp), lit("1")}, m.args(c.Args)...)
		pre = append(pre, ExprStmt{Expr: call(c.Init, args...)})
	}
	return pre, id(c.Tmp)
}

// ArrayLiteral lays a dynamic array out as a length header followed by the
// elements. A fixed array has no header.
func (m *emitter) ArrayLiteral(t ast.Type, elems []Expr, tmp string) ([]Stmt, Expr) {
	if t.Kind == ast.TypeFixedArray {
		pre := []Stmt{Let{Names: ps(tmp), Value: m.Allocate(len(elems))}}
		for i, e := range elems {
			pre = append(pre, exprStmt("mstore", m.offset(id(tmp), i, lower.Memory()), e))
		}
		return pre, id(tmp)
	}
	pre := []Stmt{
		Let{Names: ps(tmp), Value: m.Allocate(len(elems) + 1)},
		exprStmt("mstore", id(tmp), m.Word(len(elems))),
	}
	for i, e := range elems {
		pre = append(pre, exprStmt("mstore", m.offset(id(tmp), i+1, lower.Memory()), e))
	}
	return pre, id(tmp)
}

func (m *emitter) Declare(name string, _ ast.Type, init Expr) Stmt {
	return Let{Names: ps(name), Value: init}
}

func (m *emitter) Assign(name string, value Expr) Stmt {
	return Assign{Names: ps(name), Value: value}
}

func (m *emitter) Eval(e Expr, hasValue bool) Stmt {
	if hasValue {
		return exprStmt("pop", e)
	}
	return ExprStmt{Expr: e}
}

func (m *emitter) If(cond Expr, then, els []Stmt) Stmt {
	if len(els) == 0 {
		return If{Cond: cond, Body: block(then...)}
	}
	return Switch{Expr: cond, Cases: []Case{
		{Value: &Lit{Value: "0"}, Body: block(els...)},
		{Body: block(then...)},
	}}
}

func (m *emitter) Loop(init []Stmt, cond Expr, post, body []Stmt) Stmt {
	return For{Init: block(init...), Cond: cond, Post: block(post...), Body: block(body...)}
}

// ReturnVar is the result variable of every user function with a result.
const ReturnVar = "ret"

func (m *emitter) Return(value Expr, has bool) Stmt {
	if !has {
		return Leave{}
	}
	return block(Assign{Names: ps(ReturnVar), Value: value}, Leave{})
}

func (m *emitter) Assert(cond Expr) Stmt {
	return If{Cond: call("iszero", cond), Body: block(exprStmt(rt("fatalError")))}
}

func (m *emitter) Fatal() Stmt { return exprStmt(rt("fatalError")) }

func (m *emitter) Send(address, value Expr) Stmt {
	return exprStmt(rt("send"), value, address)
}

// Event writes the arguments to scratch memory and logs them under the
// Keccak-256 topic of the event signature.
func (m *emitter) Event(ev *ast.EventDecl, args []Expr, tmp string) Stmt {
	b := Block{Stmts: []Stmt{Let{Names: ps(tmp), Value: m.Allocate(len(args))}}}
	for i, a := range args {
		b.Stmts = append(b.Stmts, exprStmt("mstore", m.offset(id(tmp), i, lower.Memory()), a))
	}
	b.Stmts = append(b.Stmts, exprStmt("log1", id(tmp), m.bytes(len(args)), lit(EventTopic(ev))))
	return b
}

func (m *emitter) CallerBinding(name string) Stmt {
	return Let{Names: ps(name), Value: call("caller")}
}

func (m *emitter) Render(e Expr) string { return RenderExpr(e) }

func (m *emitter) LocalName(name string) string { return "_" + name }
