package astio

import (
	"fmt"

	"flintc/internal/ast"
	"flintc/internal/source"
)

// FromModule converts a module back into its document form.
func FromModule(mod *ast.Module) *ModuleDoc {
	doc := &ModuleDoc{Decls: make([]DeclDoc, 0, len(mod.Decls))}
	for _, d := range mod.Decls {
		doc.Decls = append(doc.Decls, fromDecl(d))
	}
	return doc
}

func at(sp source.Span) string {
	if sp.IsSynthetic() || (sp.Start.IsZero() && sp.End.IsZero()) {
		return ""
	}
	return fmt.Sprintf("%d:%d-%d:%d", sp.Start.Line, sp.Start.Col, sp.End.Line, sp.End.Col)
}

func fromDecl(d *ast.Decl) DeclDoc {
	out := DeclDoc{At: at(d.Span)}
	switch data := d.Data.(type) {
	case ast.ContractData:
		c := &ContractDoc{
			Name:         data.Name,
			Conformances: data.Conformances,
			States:       data.States,
			Properties:   fromProperties(data.Properties),
		}
		for _, ev := range data.Events {
			c.Events = append(c.Events, EventDoc{Name: ev.Name, Params: fromParams(ev.Params), At: at(ev.Span)})
		}
		out.Contract = c
	case ast.BehaviorData:
		out.Behavior = &BehaviorDoc{
			Contract:    data.Contract,
			States:      data.States,
			Caller:      data.CallerBinding,
			Protections: data.CallerProtections,
			Functions:   fromFunctions(data.Members),
		}
	case ast.StructData:
		out.Struct = &StructDoc{
			Name:         data.Name,
			Conformances: data.Conformances,
			Properties:   fromProperties(data.Properties),
			Functions:    fromFunctions(data.Members),
		}
	case ast.TraitData:
		out.Trait = &TraitDoc{Name: data.Name, Functions: fromFunctions(data.Members)}
	case ast.EnumData:
		e := &EnumDoc{Name: data.Name, Hidden: data.Hidden.String()}
		for _, c := range data.Cases {
			e.Cases = append(e.Cases, CaseDoc{Name: c.Name, Value: fromOptExpr(c.Value), At: at(c.Span)})
		}
		out.Enum = e
	}
	return out
}

func fromProperties(in []*ast.Property) []PropertyDoc {
	var out []PropertyDoc
	for _, p := range in {
		out = append(out, PropertyDoc{Name: p.Name, Type: p.Type.String(), Constant: p.Constant, Default: fromOptExpr(p.Default), At: at(p.Span)})
	}
	return out
}

func fromParams(in []*ast.Param) []ParamDoc {
	var out []ParamDoc
	for _, p := range in {
		out = append(out, ParamDoc{Name: p.Name, Type: p.Type.String(), Default: fromOptExpr(p.Default), At: at(p.Span)})
	}
	return out
}

func fromFunctions(in []*ast.FunctionDecl) []FunctionDoc {
	var out []FunctionDoc
	for _, fn := range in {
		f := FunctionDoc{
			Name:      fn.Name,
			Public:    fn.Public,
			Mutating:  fn.Mutating,
			Signature: fn.SignatureOnly,
			Params:    fromParams(fn.Params),
			Pre:       fromExprs(fn.Pre),
			Post:      fromExprs(fn.Post),
			Body:      fromStmts(fn.Body),
			At:        at(fn.Span),
		}
		switch fn.Kind {
		case ast.FuncInit:
			f.Kind = "init"
		case ast.FuncFallback:
			f.Kind = "fallback"
		}
		if fn.Result != nil {
			f.Result = fn.Result.String()
		}
		out = append(out, f)
	}
	return out
}

func fromStmts(in []*ast.Stmt) []StmtDoc {
	var out []StmtDoc
	for _, s := range in {
		out = append(out, fromStmt(s))
	}
	return out
}

func fromStmt(s *ast.Stmt) StmtDoc {
	out := StmtDoc{At: at(s.Span)}
	switch data := s.Data.(type) {
	case ast.ExprStmtData:
		e := fromExpr(data.Expr)
		out.Expr = &e
	case ast.ReturnData:
		out.Return = &ReturnDoc{Value: fromOptExpr(data.Value)}
	case ast.IfData:
		out.If = &IfDoc{Cond: fromExpr(data.Cond), Then: fromStmts(data.Then), Else: fromStmts(data.Else)}
	case ast.ForData:
		out.For = &ForDoc{Var: data.Var, Type: data.VarType.String(), In: fromExpr(data.Iterable), Body: fromStmts(data.Body)}
	case ast.BecomeData:
		out.Become = data.State
	case ast.EmitData:
		e := fromExpr(data.Call)
		out.Emit = &e
	}
	return out
}

func fromExprs(in []*ast.Expr) []ExprDoc {
	var out []ExprDoc
	for _, e := range in {
		out = append(out, fromExpr(e))
	}
	return out
}

func fromOptExpr(e *ast.Expr) *ExprDoc {
	if e == nil {
		return nil
	}
	out := fromExpr(e)
	return &out
}

func fromExpr(e *ast.Expr) ExprDoc {
	out := ExprDoc{At: at(e.Span)}
	switch data := e.Data.(type) {
	case ast.IdentData:
		out.Ident, out.Enclosing = data.Name, data.EnclosingType
	case ast.LiteralData:
		switch data.Kind {
		case ast.LiteralInt:
			out.Int = data.Text
		case ast.LiteralBool:
			v := data.Bool
			out.Bool = &v
		case ast.LiteralString:
			v := data.Text
			out.Str = &v
		case ast.LiteralAddress:
			out.Addr = data.Text
		case ast.LiteralDecimal:
			out.Decimal = data.Integer + "." + data.Fraction
		}
	case ast.SelfData:
		out.Self = true
	case ast.BinaryData:
		lhs, rhs := fromExpr(data.Lhs), fromExpr(data.Rhs)
		out.Op, out.Lhs, out.Rhs = data.Op.String(), &lhs, &rhs
	case ast.BracketedData:
		out.Group = fromOptExpr(data.Inner)
	case ast.CallData:
		out.Call = data.Name
		for _, a := range data.Args {
			out.Args = append(out.Args, ArgDoc{Label: a.Label, Value: fromExpr(a.Value)})
		}
	case ast.SubscriptData:
		out.Subscript = &SubscriptDoc{Base: fromExpr(data.Base), Index: fromExpr(data.Index)}
	case ast.VarDeclData:
		out.Let = &LetDoc{Name: data.Name, Type: data.Type.String(), Constant: data.Constant}
		return out
	case ast.RangeData:
		out.Range = &RangeDoc{Start: fromExpr(data.Start), End: fromExpr(data.End), HalfOpen: data.HalfOpen}
	case ast.ArrayLitData:
		out.Array = fromExprs(data.Elems)
	case ast.DictLitData:
		for _, en := range data.Entries {
			out.Dict = append(out.Dict, EntryDoc{Key: fromExpr(en.Key), Value: fromExpr(en.Value)})
		}
	case ast.InoutData:
		out.Inout = fromOptExpr(data.Inner)
	case ast.NotData:
		out.Not = fromOptExpr(data.Operand)
	}
	if e.Type != nil && e.Kind != ast.ExprLiteral {
		out.Type = e.Type.String()
	}
	return out
}
