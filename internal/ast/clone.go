package ast

// Clone deep-copies the module. Rewrite passes run on a clone so no two
// passes ever share a mutable node.
func (m *Module) Clone() *Module {
	if m == nil {
		return nil
	}
	out := &Module{Decls: make([]*Decl, len(m.Decls))}
	for i, d := range m.Decls {
		out.Decls[i] = d.Clone()
	}
	return out
}

func (d *Decl) Clone() *Decl {
	if d == nil {
		return nil
	}
	out := &Decl{Kind: d.Kind, Span: d.Span}
	switch data := d.Data.(type) {
	case ContractData:
		data.Conformances = cloneStrings(data.Conformances)
		data.States = cloneStrings(data.States)
		data.Properties = cloneProperties(data.Properties)
		events := make([]*EventDecl, len(data.Events))
		for i, ev := range data.Events {
			events[i] = &EventDecl{Name: ev.Name, Params: cloneParams(ev.Params), Span: ev.Span}
		}
		data.Events = events
		out.Data = data
	case BehaviorData:
		data.States = cloneStrings(data.States)
		data.CallerProtections = cloneStrings(data.CallerProtections)
		data.Members = cloneFunctions(data.Members)
		out.Data = data
	case StructData:
		data.Conformances = cloneStrings(data.Conformances)
		data.Properties = cloneProperties(data.Properties)
		data.Members = cloneFunctions(data.Members)
		out.Data = data
	case TraitData:
		data.Members = cloneFunctions(data.Members)
		out.Data = data
	case EnumData:
		data.Hidden = data.Hidden.clone()
		cases := make([]*EnumCase, len(data.Cases))
		for i, c := range data.Cases {
			cases[i] = &EnumCase{Name: c.Name, Value: c.Value.Clone(), Span: c.Span}
		}
		data.Cases = cases
		out.Data = data
	default:
		out.Data = d.Data
	}
	return out
}

func (f *FunctionDecl) Clone() *FunctionDecl {
	if f == nil {
		return nil
	}
	out := *f
	out.Params = cloneParams(f.Params)
	if f.Result != nil {
		r := f.Result.clone()
		out.Result = &r
	}
	out.Body = CloneStmts(f.Body)
	out.Pre = cloneExprs(f.Pre)
	out.Post = cloneExprs(f.Post)
	out.Scope = f.Scope.Clone()
	return &out
}

func (s *Stmt) Clone() *Stmt {
	if s == nil {
		return nil
	}
	out := &Stmt{Kind: s.Kind, Span: s.Span}
	switch data := s.Data.(type) {
	case ExprStmtData:
		out.Data = ExprStmtData{Expr: data.Expr.Clone()}
	case ReturnData:
		out.Data = ReturnData{Value: data.Value.Clone()}
	case IfData:
		out.Data = IfData{Cond: data.Cond.Clone(), Then: CloneStmts(data.Then), Else: CloneStmts(data.Else)}
	case ForData:
		out.Data = ForData{Var: data.Var, VarType: data.VarType.clone(), Iterable: data.Iterable.Clone(), Body: CloneStmts(data.Body)}
	case EmitData:
		out.Data = EmitData{Call: data.Call.Clone()}
	default:
		out.Data = s.Data
	}
	return out
}

func (e *Expr) Clone() *Expr {
	if e == nil {
		return nil
	}
	out := &Expr{Kind: e.Kind, Span: e.Span}
	if e.Type != nil {
		t := e.Type.clone()
		out.Type = &t
	}
	switch data := e.Data.(type) {
	case BinaryData:
		out.Data = BinaryData{Op: data.Op, Lhs: data.Lhs.Clone(), Rhs: data.Rhs.Clone()}
	case BracketedData:
		out.Data = BracketedData{Inner: data.Inner.Clone()}
	case CallData:
		args := make([]Arg, len(data.Args))
		for i, a := range data.Args {
			args[i] = Arg{Label: a.Label, Value: a.Value.Clone()}
		}
		out.Data = CallData{Name: data.Name, Args: args}
	case SubscriptData:
		out.Data = SubscriptData{Base: data.Base.Clone(), Index: data.Index.Clone()}
	case VarDeclData:
		data.Type = data.Type.clone()
		out.Data = data
	case RangeData:
		out.Data = RangeData{Start: data.Start.Clone(), End: data.End.Clone(), HalfOpen: data.HalfOpen}
	case ArrayLitData:
		out.Data = ArrayLitData{Elems: cloneExprs(data.Elems)}
	case DictLitData:
		entries := make([]DictEntry, len(data.Entries))
		for i, en := range data.Entries {
			entries[i] = DictEntry{Key: en.Key.Clone(), Value: en.Value.Clone()}
		}
		out.Data = DictLitData{Entries: entries}
	case InoutData:
		out.Data = InoutData{Inner: data.Inner.Clone()}
	case NotData:
		out.Data = NotData{Operand: data.Operand.Clone()}
	default:
		// IdentData, LiteralData, SelfData hold no pointers.
		out.Data = e.Data
	}
	return out
}

// CloneStmts deep-copies a statement list, preserving nil.
func CloneStmts(in []*Stmt) []*Stmt {
	if in == nil {
		return nil
	}
	out := make([]*Stmt, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

func (t Type) clone() Type {
	if t.Elem != nil {
		elem := t.Elem.clone()
		t.Elem = &elem
	}
	if t.Key != nil {
		key := t.Key.clone()
		t.Key = &key
	}
	return t
}

func cloneExprs(in []*Expr) []*Expr {
	if in == nil {
		return nil
	}
	out := make([]*Expr, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

func cloneParams(in []*Param) []*Param {
	if in == nil {
		return nil
	}
	out := make([]*Param, len(in))
	for i, p := range in {
		out[i] = &Param{Name: p.Name, Type: p.Type.clone(), Default: p.Default.Clone(), Span: p.Span}
	}
	return out
}

func cloneProperties(in []*Property) []*Property {
	if in == nil {
		return nil
	}
	out := make([]*Property, len(in))
	for i, p := range in {
		out[i] = &Property{Name: p.Name, Type: p.Type.clone(), Constant: p.Constant, Default: p.Default.Clone(), Span: p.Span}
	}
	return out
}

func cloneFunctions(in []*FunctionDecl) []*FunctionDecl {
	if in == nil {
		return nil
	}
	out := make([]*FunctionDecl, len(in))
	for i, f := range in {
		out[i] = f.Clone()
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
