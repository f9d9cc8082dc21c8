package lower

import (
	"flintc/internal/ast"
	"flintc/internal/env"
)

// call lowers a call in value position. recv is the base of `lhs.f(...)`.
func (l *Lowerer[E, S]) call(e *ast.Expr, d ast.CallData, recv *place[E]) E {
	if recv == nil && env.IsBuiltinFunction(d.Name) {
		l.fatalf(e.Span, "%s does not produce a value", d.Name)
	}
	cc := l.fc.callContext()
	if recv != nil {
		if recv.typ.Kind != ast.TypeNamed {
			l.fatalf(e.Span, "method %s on non-nominal type %s", d.Name, recv.typ)
		}
		cc.Enclosing = recv.typ.Name
	}
	m := l.fc.Env.MatchCall(d, cc)
	switch m.Kind {
	case env.MatchInitializer:
		return l.construct(e, d, m)
	case env.MatchFunction:
		return l.invoke(e, d, m.Function, cc.Enclosing, recv)
	case env.MatchEvent:
		l.fatalf(e.Span, "event %s called outside emit", d.Name)
	default:
		l.fatalf(e.Span, "call %s matches no declaration", e)
	}
	var zero E
	return zero
}

func (l *Lowerer[E, S]) invoke(e *ast.Expr, d ast.CallData, fi *env.FunctionInformation, enclosing string, recv *place[E]) E {
	owner := fi.Owner
	if l.fc.Env.IsTrait(owner) {
		owner = enclosing
	}
	ti, ok := l.fc.Env.Type(owner)
	if !ok {
		l.fatalf(e.Span, "call %s on unknown type %s", d.Name, owner)
	}
	inv := Invocation[E]{
		Name:      Mangle(owner, fi.Decl),
		Owner:     owner,
		OwnerKind: ti.Kind,
		Args:      l.arguments(e, d.Args, fi.Decl.Params),
		HasResult: HasResult(fi.Decl),
	}
	if ti.Kind == env.KindStruct {
		base := l.receiverPlace()
		if recv != nil {
			base = *recv
		}
		inv.Receiver, inv.HasReceiver, inv.ReceiverRegion = base.addr, true, base.region
	}
	return l.Emit.Invoke(l.fc, inv)
}

func (l *Lowerer[E, S]) construct(e *ast.Expr, d ast.CallData, m env.CallMatch) E {
	c := Construction[E]{
		Type:  d.Name,
		Words: l.size(ast.NamedType(d.Name)),
		Tmp:   l.Emit.LocalName(l.fc.Fresh("struct")),
	}
	if m.Function != nil {
		c.Init = Mangle(d.Name, m.Function.Decl)
		c.Args = l.arguments(e, d.Args, m.Function.Decl.Params)
	}
	pre, v := l.Emit.Construct(l.fc, c)
	l.pre = append(l.pre, pre...)
	return v
}

// bindArgs orders args by parameter: labels bind by name, the rest in
// order, and missing parameters take their declared default.
func (l *Lowerer[E, S]) bindArgs(e *ast.Expr, args []ast.Arg, params []*ast.Param) []*ast.Expr {
	out := make([]*ast.Expr, len(params))
	var positional []*ast.Expr
	for _, a := range args {
		if a.Label == "" {
			positional = append(positional, a.Value)
			continue
		}
		bound := false
		for i, p := range params {
			if p.Name == a.Label && out[i] == nil {
				out[i], bound = a.Value, true
				break
			}
		}
		if !bound {
			l.fatalf(e.Span, "argument label %s matches no parameter", a.Label)
		}
	}
	for i, p := range params {
		if out[i] != nil {
			continue
		}
		switch {
		case len(positional) > 0:
			out[i], positional = positional[0], positional[1:]
		case p.Default != nil:
			out[i] = p.Default.Clone()
		default:
			l.fatalf(e.Span, "no argument for parameter %s", p.Name)
		}
	}
	if len(positional) > 0 {
		l.fatalf(e.Span, "too many arguments in %s", e)
	}
	return out
}

func (l *Lowerer[E, S]) arguments(e *ast.Expr, args []ast.Arg, params []*ast.Param) []Argument[E] {
	bound := l.bindArgs(e, args, params)
	out := make([]Argument[E], len(bound))
	for i, arg := range bound {
		if l.isAggregate(params[i].Type) {
			op := l.operand(arg)
			out[i] = Argument[E]{Value: op.value, Aggregate: true, Region: op.region}
			continue
		}
		out[i] = Argument[E]{Value: l.value(arg)}
	}
	return out
}

// builtin lowers assert, fatalError and send in statement position.
func (l *Lowerer[E, S]) builtin(e *ast.Expr, d ast.CallData) S {
	args := make([]*ast.Expr, len(d.Args))
	for i, a := range d.Args {
		args[i] = a.Value
	}
	switch d.Name {
	case "assert":
		if len(args) != 1 {
			l.fatalf(e.Span, "assert takes one argument")
		}
		return l.Emit.Assert(l.value(args[0]))
	case "fatalError":
		return l.Emit.Fatal()
	case "send":
		if len(args) != 2 {
			l.fatalf(e.Span, "send takes an address and a value")
		}
		return l.Emit.Send(l.value(args[0]), l.value(args[1]))
	}
	l.fatalf(e.Span, "unknown builtin %s", d.Name)
	var zero S
	return zero
}
