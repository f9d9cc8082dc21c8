package lower

import (
	"math/big"

	"flintc/internal/ast"
	"flintc/internal/env"
)

func (l *Lowerer[E, S]) stmt(s *ast.Stmt) []S {
	switch d := s.Data.(type) {
	case ast.ExprStmtData:
		return l.exprStmt(d.Expr)
	case ast.ReturnData:
		if d.Value == nil {
			var zero E
			return []S{l.Emit.Return(zero, false)}
		}
		return []S{l.Emit.Return(l.value(d.Value), true)}
	case ast.IfData:
		cond := l.value(d.Cond)
		return []S{l.Emit.If(cond, l.Block(d.Then), l.Block(d.Else))}
	case ast.ForData:
		return l.forStmt(s, d)
	case ast.BecomeData:
		return []S{l.become(s, d)}
	case ast.EmitData:
		return []S{l.emitEvent(d)}
	}
	Fatalf(l.fc.Name(), s.Span, "no lowering for %s statement", s.Kind)
	return nil
}

func (l *Lowerer[E, S]) exprStmt(e *ast.Expr) []S {
	switch d := e.Data.(type) {
	case ast.BinaryData:
		if d.Op.IsAssignment() {
			return l.assign(e, d)
		}
		if call, ok := d.Rhs.Data.(ast.CallData); ok && d.Op == ast.OpDot {
			base := l.basePlace(d.Lhs)
			v := l.call(d.Rhs, call, &base)
			return []S{l.Emit.Eval(v, l.hasResult(e))}
		}
	case ast.VarDeclData:
		l.declareLocal(d)
		return []S{l.Emit.Declare(l.Emit.LocalName(d.Name), d.Type, l.zero(e, d.Type))}
	case ast.CallData:
		if env.IsBuiltinFunction(d.Name) {
			return []S{l.builtin(e, d)}
		}
		v := l.call(e, d, nil)
		return []S{l.Emit.Eval(v, l.hasResult(e))}
	case ast.BracketedData:
		return l.exprStmt(d.Inner)
	}
	return []S{l.Emit.Eval(l.value(e), true)}
}

func (l *Lowerer[E, S]) hasResult(e *ast.Expr) bool {
	t := l.fc.typeOf(e)
	return !t.IsBasic(ast.BasicVoid)
}

func (l *Lowerer[E, S]) declareLocal(d ast.VarDeclData) {
	l.fc.Scope.Declare(ast.Local{Name: d.Name, Type: d.Type.ReplaceSelf(l.fc.EnclosingType), Constant: d.Constant})
}

// assign applies the assignment rule: declarations, plain locals, then
// stores through a computed address.
func (l *Lowerer[E, S]) assign(e *ast.Expr, d ast.BinaryData) []S {
	if decl, ok := d.Lhs.Data.(ast.VarDeclData); ok {
		if d.Op != ast.OpAssign {
			l.fatalf(e.Span, "compound assignment to a declaration")
		}
		return l.declare(decl, d.Rhs)
	}
	target := l.placeOf(d.Lhs)
	if op, ok := d.Op.Compound(); ok {
		arith, checked, _ := arithOf(op)
		v := l.Emit.Arith(arith, checked, l.read(target), l.value(d.Rhs))
		return []S{l.write(target, operand[E]{value: v, region: Memory()})}
	}
	return []S{l.write(target, l.operandAs(d.Rhs, target.typ))}
}

// declare emits a local with its initializer. A declaration whose
// initializer is the very name being declared, as produced by parameter
// shadowing, is a no-op and emits nothing.
func (l *Lowerer[E, S]) declare(decl ast.VarDeclData, init *ast.Expr) []S {
	t := decl.Type.ReplaceSelf(l.fc.EnclosingType)
	op := l.operandAs(init, t)
	l.declareLocal(decl)
	name := l.Emit.LocalName(decl.Name)
	if l.Emit.Render(op.value) == name {
		return nil
	}
	if l.isAggregate(t) && op.region.Kind != RegionMemory {
		// Locals own scratch copies of aggregates read from elsewhere.
		words := l.size(t)
		return []S{
			l.Emit.Declare(name, t, l.Emit.Allocate(words)),
			l.Emit.Copy(l.Emit.LocalRef(name, false), op.value, t, words, Memory(), op.region),
		}
	}
	return []S{l.Emit.Declare(name, t, op.value)}
}

// zero is the initial value of a declaration without initializer.
func (l *Lowerer[E, S]) zero(e *ast.Expr, t ast.Type) E {
	t = t.ReplaceSelf(l.fc.EnclosingType)
	switch t.Kind {
	case ast.TypeBasic:
		if t.Basic == ast.BasicBool {
			return l.Emit.Literal(Literal{Kind: LitBool})
		}
		return l.Emit.Word(0)
	case ast.TypeNamed:
		if l.fc.Env.IsStruct(t.Name) {
			return l.construct(e, ast.CallData{Name: t.Name}, env.CallMatch{Kind: env.MatchInitializer})
		}
		if l.fc.Env.IsEnum(t.Name) {
			return l.Emit.Word(0)
		}
	case ast.TypeArray:
		return l.arrayLiteral(e, ast.ArrayLitData{})
	case ast.TypeFixedArray:
		return l.Emit.Allocate(l.size(t))
	}
	l.fatalf(e.Span, "no zero value for local of type %s", t)
	var zero E
	return zero
}

func (l *Lowerer[E, S]) forStmt(s *ast.Stmt, d ast.ForData) []S {
	iter := d.Iterable
	for iter.Kind == ast.ExprBracketed {
		iter = iter.Data.(ast.BracketedData).Inner
	}
	if r, ok := iter.Data.(ast.RangeData); ok {
		return l.rangeLoop(d, r)
	}
	return l.collectionLoop(s, d, iter)
}

// rangeLoop counts from start to end. A range whose literal bounds run
// downwards counts down.
func (l *Lowerer[E, S]) rangeLoop(d ast.ForData, r ast.RangeData) []S {
	start, end := l.value(r.Start), l.value(r.End)
	l.fc.Scope.Declare(ast.Local{Name: d.Var, Type: d.VarType})
	v := l.Emit.LocalName(d.Var)
	bound := l.Emit.LocalName(l.fc.Fresh("end"))
	init := []S{
		l.Emit.Declare(v, d.VarType, start),
		l.Emit.Declare(bound, ast.IntType(), end),
	}
	one := l.Emit.Word(1)
	cur, limit := l.Emit.Local(v), l.Emit.Local(bound)

	var cond E
	step := ArithAdd
	switch {
	case descending(r):
		step = ArithSub
		if r.HalfOpen {
			cond = l.Emit.Compare(CompareGt, cur, limit)
		} else {
			// i + 1 > end still terminates when end is zero.
			cond = l.Emit.Compare(CompareGt, l.Emit.Arith(ArithAdd, false, cur, one), limit)
		}
	case r.HalfOpen:
		cond = l.Emit.Compare(CompareLt, cur, limit)
	default:
		cond = l.Emit.Compare(CompareLte, cur, limit)
	}
	post := []S{l.Emit.Assign(v, l.Emit.Arith(step, false, cur, one))}
	return []S{l.Emit.Loop(init, cond, post, l.Block(d.Body))}
}

func descending(r ast.RangeData) bool {
	start, ok1 := literalInt(r.Start)
	end, ok2 := literalInt(r.End)
	return ok1 && ok2 && start.Cmp(end) > 0
}

func literalInt(e *ast.Expr) (*big.Int, bool) {
	lit, ok := e.Data.(ast.LiteralData)
	if !ok {
		return nil, false
	}
	v, ok := DecodeLiteral(lit)
	if !ok || v.Kind != LitInt {
		return nil, false
	}
	return v.Int, true
}

// collectionLoop visits the elements of an array in index order. Each
// element is read through the same checked address as a subscript.
func (l *Lowerer[E, S]) collectionLoop(s *ast.Stmt, d ast.ForData, iter *ast.Expr) []S {
	base := l.basePlace(iter)
	if base.typ.Kind == ast.TypeDict {
		Fatalf(l.fc.Name(), s.Span, "iteration over dictionary %s", iter)
	}
	c := l.collection(base)
	idx := l.Emit.LocalName(l.fc.Fresh("i"))
	count := l.Emit.LocalName(l.fc.Fresh("count"))
	init := []S{
		l.Emit.Declare(idx, ast.IntType(), l.Emit.Word(0)),
		l.Emit.Declare(count, ast.IntType(), l.length(base.addr, c)),
	}
	cur := l.Emit.Local(idx)
	cond := l.Emit.Compare(CompareLt, cur, l.Emit.Local(count))
	post := []S{l.Emit.Assign(idx, l.Emit.Arith(ArithAdd, false, cur, l.Emit.Word(1)))}

	elem := place[E]{
		addr:   l.Emit.Element(base.addr, l.Emit.BoundsCheck(cur, l.Emit.Local(count)), c),
		region: base.region,
		typ:    c.Elem(),
	}
	l.fc.Scope.Declare(ast.Local{Name: d.Var, Type: d.VarType})
	body := []S{l.Emit.Declare(l.Emit.LocalName(d.Var), d.VarType, l.read(elem))}
	body = append(body, l.Block(d.Body)...)
	return []S{l.Emit.Loop(init, cond, post, body)}
}

// become stores the index of the new type-state in the slot after the
// contract's properties.
func (l *Lowerer[E, S]) become(s *ast.Stmt, d ast.BecomeData) S {
	ti, ok := l.fc.Env.Type(l.fc.EnclosingType)
	if !ok || ti.Kind != env.KindContract {
		Fatalf(l.fc.Name(), s.Span, "become outside a contract")
	}
	idx, ok := ti.StateIndex(d.State)
	if !ok {
		Fatalf(l.fc.Name(), s.Span, "contract %s has no state %s", ti.Name, d.State)
	}
	slot, err := l.Layout.StateSlot(ti.Name)
	if err != nil {
		Wrap(l.fc.Name(), s.Span, "state slot of "+ti.Name, err)
	}
	root := l.receiverPlace()
	f := FieldRef{Owner: ti.Name, Name: StateField, Offset: slot, Type: ast.IntType()}
	return l.Emit.Store(l.Emit.Field(root.addr, f, Storage()), l.Emit.Word(idx), Storage())
}

func (l *Lowerer[E, S]) emitEvent(d ast.EmitData) S {
	call, ok := d.Call.Data.(ast.CallData)
	if !ok {
		l.fatalf(d.Call.Span, "emit of non-call %s", d.Call)
	}
	m := l.fc.Env.MatchCall(call, l.fc.callContext())
	if m.Kind != env.MatchEvent {
		l.fatalf(d.Call.Span, "emit of %s, which is not an event", call.Name)
	}
	bound := l.bindArgs(d.Call, call.Args, m.Event.Decl.Params)
	args := make([]E, len(bound))
	for i, a := range bound {
		args[i] = l.value(a)
	}
	return l.Emit.Event(m.Event.Decl, args, l.Emit.LocalName(l.fc.Fresh("event")))
}
