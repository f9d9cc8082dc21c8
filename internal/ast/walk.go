package ast

// WalkExprs calls fn on every expression of mod in pre-order.
func WalkExprs(mod *Module, fn func(*Expr)) {
	for _, d := range mod.Decls {
		for _, f := range d.Functions() {
			for _, e := range f.Pre {
				walkExpr(e, fn)
			}
			for _, p := range f.Params {
				walkExpr(p.Default, fn)
			}
			walkStmts(f.Body, fn)
		}
	}
}

// Functions returns the members of a behavior, struct or trait declaration.
func (d *Decl) Functions() []*FunctionDecl {
	switch data := d.Data.(type) {
	case BehaviorData:
		return data.Members
	case StructData:
		return data.Members
	case TraitData:
		return data.Members
	}
	return nil
}

func walkStmts(stmts []*Stmt, fn func(*Expr)) {
	for _, s := range stmts {
		switch data := s.Data.(type) {
		case ExprStmtData:
			walkExpr(data.Expr, fn)
		case ReturnData:
			walkExpr(data.Value, fn)
		case IfData:
			walkExpr(data.Cond, fn)
			walkStmts(data.Then, fn)
			walkStmts(data.Else, fn)
		case ForData:
			walkExpr(data.Iterable, fn)
			walkStmts(data.Body, fn)
		case EmitData:
			walkExpr(data.Call, fn)
		}
	}
}

func walkExpr(e *Expr, fn func(*Expr)) {
	if e == nil {
		return
	}
	fn(e)
	switch data := e.Data.(type) {
	case BinaryData:
		walkExpr(data.Lhs, fn)
		walkExpr(data.Rhs, fn)
	case BracketedData:
		walkExpr(data.Inner, fn)
	case CallData:
		for _, a := range data.Args {
			walkExpr(a.Value, fn)
		}
	case SubscriptData:
		walkExpr(data.Base, fn)
		walkExpr(data.Index, fn)
	case RangeData:
		walkExpr(data.Start, fn)
		walkExpr(data.End, fn)
	case ArrayLitData:
		for _, el := range data.Elems {
			walkExpr(el, fn)
		}
	case DictLitData:
		for _, en := range data.Entries {
			walkExpr(en.Key, fn)
			walkExpr(en.Value, fn)
		}
	case InoutData:
		walkExpr(data.Inner, fn)
	case NotData:
		walkExpr(data.Operand, fn)
	}
}
