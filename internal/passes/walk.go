package passes

import (
	"flintc/internal/ast"
)

// walker applies one pass depth-first over a module.
type walker struct {
	pass *Pass
	ctx  *Context
}

func (w *walker) module(mod *ast.Module) {
	for i, d := range mod.Decls {
		mod.Decls[i] = w.decl(d)
	}
}

func (w *walker) decl(d *ast.Decl) *ast.Decl {
	saved := *w.ctx
	defer func() { restore(w.ctx, saved) }()

	w.ctx.EnclosingType = d.Data.TypeName()
	w.ctx.InTrait = d.Kind == ast.DeclTrait
	w.ctx.InBehavior = d.Kind == ast.DeclBehavior
	if b, ok := d.Data.(ast.BehaviorData); ok {
		w.ctx.CallerProtections = b.CallerProtections
		w.ctx.TypeStates = b.States
	}

	if h := w.pass.Process.Decl[d.Kind]; h != nil {
		d = h(w.ctx, d)
	}
	switch data := d.Data.(type) {
	case ast.ContractData:
		w.properties(data.Properties)
	case ast.StructData:
		w.properties(data.Properties)
		w.functions(data.Members)
	case ast.BehaviorData:
		w.functions(data.Members)
	case ast.TraitData:
		w.functions(data.Members)
	}
	if h := w.pass.PostProcess.Decl[d.Kind]; h != nil {
		d = h(w.ctx, d)
	}
	return d
}

func (w *walker) properties(props []*ast.Property) {
	for _, p := range props {
		if p.Default != nil {
			p.Default = w.expr(p.Default)
		}
	}
}

func (w *walker) functions(fns []*ast.FunctionDecl) {
	for i, fn := range fns {
		fns[i] = w.function(fn)
	}
}

func (w *walker) function(f *ast.FunctionDecl) *ast.FunctionDecl {
	saved := *w.ctx
	defer func() { restore(w.ctx, saved) }()

	if f.Scope == nil {
		f.Scope = ast.NewScope(f.Params)
	}
	w.ctx.Function, w.ctx.Scope, w.ctx.InFunction = f, f.Scope, true

	if h := w.pass.Process.Function[f.Kind]; h != nil {
		f = h(w.ctx, f)
		w.ctx.Function, w.ctx.Scope = f, f.Scope
	}
	for i, e := range f.Pre {
		f.Pre[i] = w.expr(e)
	}
	for i, e := range f.Post {
		f.Post[i] = w.expr(e)
	}
	f.Body = w.stmts(f.Body)
	if h := w.pass.PostProcess.Function[f.Kind]; h != nil {
		f = h(w.ctx, f)
	}
	return f
}

// stmts walks a statement list in place, dropping statements a hook removed.
func (w *walker) stmts(list []*ast.Stmt) []*ast.Stmt {
	out := list[:0]
	for _, s := range list {
		if s = w.stmt(s); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (w *walker) stmt(s *ast.Stmt) *ast.Stmt {
	if h := w.pass.Process.Stmt[s.Kind]; h != nil {
		if s = h(w.ctx, s); s == nil {
			return nil
		}
	}
	switch data := s.Data.(type) {
	case ast.ExprStmtData:
		data.Expr = w.expr(data.Expr)
		s.Data = data
	case ast.ReturnData:
		if data.Value != nil {
			data.Value = w.expr(data.Value)
			s.Data = data
		}
	case ast.IfData:
		data.Cond = w.expr(data.Cond)
		data.Then = w.stmts(data.Then)
		data.Else = w.stmts(data.Else)
		s.Data = data
	case ast.ForData:
		data.Iterable = w.expr(data.Iterable)
		data.Body = w.stmts(data.Body)
		s.Data = data
	case ast.EmitData:
		data.Call = w.expr(data.Call)
		s.Data = data
	}
	if h := w.pass.PostProcess.Stmt[s.Kind]; h != nil {
		s = h(w.ctx, s)
	}
	return s
}

func (w *walker) expr(e *ast.Expr) *ast.Expr {
	if e == nil {
		return nil
	}
	if h := w.pass.Process.Expr[e.Kind]; h != nil {
		e = h(w.ctx, e)
	}
	switch data := e.Data.(type) {
	case ast.BinaryData:
		data.Lhs = w.expr(data.Lhs)
		data.Rhs = w.expr(data.Rhs)
		e.Data = data
	case ast.BracketedData:
		data.Inner = w.expr(data.Inner)
		e.Data = data
	case ast.CallData:
		for i := range data.Args {
			data.Args[i].Value = w.expr(data.Args[i].Value)
		}
	case ast.SubscriptData:
		data.Base = w.expr(data.Base)
		data.Index = w.expr(data.Index)
		e.Data = data
	case ast.RangeData:
		data.Start = w.expr(data.Start)
		data.End = w.expr(data.End)
		e.Data = data
	case ast.ArrayLitData:
		for i, el := range data.Elems {
			data.Elems[i] = w.expr(el)
		}
	case ast.DictLitData:
		for i := range data.Entries {
			data.Entries[i].Key = w.expr(data.Entries[i].Key)
			data.Entries[i].Value = w.expr(data.Entries[i].Value)
		}
	case ast.InoutData:
		data.Inner = w.expr(data.Inner)
		e.Data = data
	case ast.NotData:
		data.Operand = w.expr(data.Operand)
		e.Data = data
	}
	if h := w.pass.PostProcess.Expr[e.Kind]; h != nil {
		e = h(w.ctx, e)
	}
	return e
}

// restore resets the position fields of ctx; Env and Reporter stay shared.
func restore(ctx *Context, saved Context) {
	ctx.EnclosingType = saved.EnclosingType
	ctx.InTrait = saved.InTrait
	ctx.InBehavior = saved.InBehavior
	ctx.InFunction = saved.InFunction
	ctx.CallerProtections = saved.CallerProtections
	ctx.TypeStates = saved.TypeStates
	ctx.Function = saved.Function
	ctx.Scope = saved.Scope
}
