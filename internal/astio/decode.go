package astio

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"flintc/internal/ast"
	"flintc/internal/source"
)

// converter turns documents into AST nodes. Errors are collected so one pass
// reports every malformed node.
type converter struct {
	file source.FileID
	errs []error
}

// ToModule converts a document into a module whose spans point into file.
func ToModule(doc *ModuleDoc, file source.FileID) (*ast.Module, error) {
	c := &converter{file: file}
	mod := &ast.Module{Decls: make([]*ast.Decl, 0, len(doc.Decls))}
	for i := range doc.Decls {
		if d := c.decl(&doc.Decls[i]); d != nil {
			mod.Decls = append(mod.Decls, d)
		}
	}
	return mod, errors.Join(c.errs...)
}

func (c *converter) fail(format string, args ...any) {
	c.errs = append(c.errs, fmt.Errorf(format, args...))
}

// name normalizes an identifier to NFC so that mangled names are stable
// regardless of how the source editor composed them.
func name(s string) string {
	return norm.NFC.String(s)
}

func names(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = name(s)
	}
	return out
}

func (c *converter) span(at string) source.Span {
	if at == "" {
		return source.Span{File: c.file}
	}
	sp, err := source.ParseRange(c.file, at)
	if err != nil {
		c.fail("position %q: %w", at, err)
		return source.Span{File: c.file}
	}
	return sp
}

func (c *converter) typ(s string) ast.Type {
	t, err := ParseType(s)
	if err != nil {
		c.errs = append(c.errs, err)
		return ast.Type{Kind: ast.TypeAny}
	}
	return t
}

func (c *converter) decl(d *DeclDoc) *ast.Decl {
	sp := c.span(d.At)
	switch {
	case d.Contract != nil:
		data := ast.ContractData{
			Name:         name(d.Contract.Name),
			Conformances: names(d.Contract.Conformances),
			States:       names(d.Contract.States),
			Properties:   c.properties(d.Contract.Properties),
		}
		for _, ev := range d.Contract.Events {
			data.Events = append(data.Events, &ast.EventDecl{Name: name(ev.Name), Params: c.params(ev.Params), Span: c.span(ev.At)})
		}
		return &ast.Decl{Kind: ast.DeclContract, Span: sp, Data: data}
	case d.Behavior != nil:
		return &ast.Decl{Kind: ast.DeclBehavior, Span: sp, Data: ast.BehaviorData{
			Contract:          name(d.Behavior.Contract),
			States:            names(d.Behavior.States),
			CallerBinding:     name(d.Behavior.Caller),
			CallerProtections: names(d.Behavior.Protections),
			Members:           c.functions(d.Behavior.Functions),
		}}
	case d.Struct != nil:
		return &ast.Decl{Kind: ast.DeclStruct, Span: sp, Data: ast.StructData{
			Name:         name(d.Struct.Name),
			Conformances: names(d.Struct.Conformances),
			Properties:   c.properties(d.Struct.Properties),
			Members:      c.functions(d.Struct.Functions),
		}}
	case d.Trait != nil:
		return &ast.Decl{Kind: ast.DeclTrait, Span: sp, Data: ast.TraitData{
			Name:    name(d.Trait.Name),
			Members: c.functions(d.Trait.Functions),
		}}
	case d.Enum != nil:
		data := ast.EnumData{Name: name(d.Enum.Name), Hidden: c.typ(d.Enum.Hidden)}
		for _, cs := range d.Enum.Cases {
			data.Cases = append(data.Cases, &ast.EnumCase{Name: name(cs.Name), Value: c.optExpr(cs.Value), Span: c.span(cs.At)})
		}
		return &ast.Decl{Kind: ast.DeclEnum, Span: sp, Data: data}
	}
	c.fail("declaration at %q has no kind", d.At)
	return nil
}

func (c *converter) properties(in []PropertyDoc) []*ast.Property {
	out := make([]*ast.Property, 0, len(in))
	for _, p := range in {
		out = append(out, &ast.Property{
			Name:     name(p.Name),
			Type:     c.typ(p.Type),
			Constant: p.Constant,
			Default:  c.optExpr(p.Default),
			Span:     c.span(p.At),
		})
	}
	return out
}

func (c *converter) params(in []ParamDoc) []*ast.Param {
	out := make([]*ast.Param, 0, len(in))
	for _, p := range in {
		out = append(out, &ast.Param{Name: name(p.Name), Type: c.typ(p.Type), Default: c.optExpr(p.Default), Span: c.span(p.At)})
	}
	return out
}

func (c *converter) functions(in []FunctionDoc) []*ast.FunctionDecl {
	out := make([]*ast.FunctionDecl, 0, len(in))
	for i := range in {
		f := &in[i]
		fn := &ast.FunctionDecl{
			Name:          name(f.Name),
			Params:        c.params(f.Params),
			Body:          c.stmts(f.Body),
			Public:        f.Public,
			Mutating:      f.Mutating,
			SignatureOnly: f.Signature,
			Pre:           c.exprs(f.Pre),
			Post:          c.exprs(f.Post),
			Span:          c.span(f.At),
		}
		switch f.Kind {
		case "", "func":
			fn.Kind = ast.FuncNormal
		case "init":
			fn.Kind = ast.FuncInit
		case "fallback":
			fn.Kind = ast.FuncFallback
		default:
			c.fail("function %s: unknown kind %q", f.Name, f.Kind)
		}
		if f.Result != "" {
			t := c.typ(f.Result)
			fn.Result = &t
		}
		out = append(out, fn)
	}
	return out
}

func (c *converter) stmts(in []StmtDoc) []*ast.Stmt {
	if len(in) == 0 {
		return nil
	}
	out := make([]*ast.Stmt, 0, len(in))
	for i := range in {
		if s := c.stmt(&in[i]); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (c *converter) stmt(s *StmtDoc) *ast.Stmt {
	sp := c.span(s.At)
	switch {
	case s.Expr != nil:
		return &ast.Stmt{Kind: ast.StmtExpr, Span: sp, Data: ast.ExprStmtData{Expr: c.expr(s.Expr)}}
	case s.Return != nil:
		return &ast.Stmt{Kind: ast.StmtReturn, Span: sp, Data: ast.ReturnData{Value: c.optExpr(s.Return.Value)}}
	case s.If != nil:
		return &ast.Stmt{Kind: ast.StmtIf, Span: sp, Data: ast.IfData{
			Cond: c.expr(&s.If.Cond),
			Then: c.stmts(s.If.Then),
			Else: c.stmts(s.If.Else),
		}}
	case s.For != nil:
		data := ast.ForData{Var: name(s.For.Var), Iterable: c.expr(&s.For.In), Body: c.stmts(s.For.Body)}
		if s.For.Type != "" {
			data.VarType = c.typ(s.For.Type)
		} else {
			data.VarType = ast.IntType()
		}
		return &ast.Stmt{Kind: ast.StmtFor, Span: sp, Data: data}
	case s.Become != "":
		return &ast.Stmt{Kind: ast.StmtBecome, Span: sp, Data: ast.BecomeData{State: name(s.Become)}}
	case s.Emit != nil:
		return &ast.Stmt{Kind: ast.StmtEmit, Span: sp, Data: ast.EmitData{Call: c.expr(s.Emit)}}
	}
	c.fail("statement at %q has no kind", s.At)
	return nil
}

func (c *converter) exprs(in []ExprDoc) []*ast.Expr {
	if len(in) == 0 {
		return nil
	}
	out := make([]*ast.Expr, len(in))
	for i := range in {
		out[i] = c.expr(&in[i])
	}
	return out
}

func (c *converter) optExpr(e *ExprDoc) *ast.Expr {
	if e == nil {
		return nil
	}
	return c.expr(e)
}

func (c *converter) expr(e *ExprDoc) *ast.Expr {
	out := &ast.Expr{Span: c.span(e.At)}
	switch {
	case e.Ident != "":
		out.Kind = ast.ExprIdent
		out.Data = ast.IdentData{Name: name(e.Ident), EnclosingType: name(e.Enclosing)}
	case e.Int != "":
		out.Kind = ast.ExprLiteral
		out.Data = ast.LiteralData{Kind: ast.LiteralInt, Text: e.Int}
	case e.Bool != nil:
		out.Kind = ast.ExprLiteral
		out.Data = ast.LiteralData{Kind: ast.LiteralBool, Bool: *e.Bool}
	case e.Str != nil:
		out.Kind = ast.ExprLiteral
		out.Data = ast.LiteralData{Kind: ast.LiteralString, Text: *e.Str}
	case e.Addr != "":
		out.Kind = ast.ExprLiteral
		out.Data = ast.LiteralData{Kind: ast.LiteralAddress, Text: e.Addr}
	case e.Decimal != "":
		out.Kind = ast.ExprLiteral
		out.Data = c.decimal(e.Decimal)
	case e.Self:
		out.Kind = ast.ExprSelf
		out.Data = ast.SelfData{}
	case e.Op != "":
		op, ok := ast.ParseOp(e.Op)
		if !ok || e.Lhs == nil || e.Rhs == nil {
			c.fail("binary expression at %q: bad operator %q or missing operand", e.At, e.Op)
			return ast.Ident("_")
		}
		out.Kind = ast.ExprBinary
		out.Data = ast.BinaryData{Op: op, Lhs: c.expr(e.Lhs), Rhs: c.expr(e.Rhs)}
	case e.Group != nil:
		out.Kind = ast.ExprBracketed
		out.Data = ast.BracketedData{Inner: c.expr(e.Group)}
	case e.Call != "":
		args := make([]ast.Arg, 0, len(e.Args))
		for i := range e.Args {
			args = append(args, ast.Arg{Label: name(e.Args[i].Label), Value: c.expr(&e.Args[i].Value)})
		}
		out.Kind = ast.ExprCall
		out.Data = ast.CallData{Name: name(e.Call), Args: args}
	case e.Subscript != nil:
		out.Kind = ast.ExprSubscript
		out.Data = ast.SubscriptData{Base: c.expr(&e.Subscript.Base), Index: c.expr(&e.Subscript.Index)}
	case e.Let != nil:
		t := c.typ(e.Let.Type)
		out.Kind = ast.ExprVarDecl
		out.Type = &t
		out.Data = ast.VarDeclData{Name: name(e.Let.Name), Type: t, Constant: e.Let.Constant}
	case e.Range != nil:
		out.Kind = ast.ExprRange
		out.Data = ast.RangeData{Start: c.expr(&e.Range.Start), End: c.expr(&e.Range.End), HalfOpen: e.Range.HalfOpen}
	case e.Array != nil:
		out.Kind = ast.ExprArrayLit
		out.Data = ast.ArrayLitData{Elems: c.exprs(e.Array)}
	case e.Dict != nil:
		entries := make([]ast.DictEntry, len(e.Dict))
		for i := range e.Dict {
			entries[i] = ast.DictEntry{Key: c.expr(&e.Dict[i].Key), Value: c.expr(&e.Dict[i].Value)}
		}
		out.Kind = ast.ExprDictLit
		out.Data = ast.DictLitData{Entries: entries}
	case e.Inout != nil:
		out.Kind = ast.ExprInout
		out.Data = ast.InoutData{Inner: c.expr(e.Inout)}
	case e.Not != nil:
		out.Kind = ast.ExprNot
		out.Data = ast.NotData{Operand: c.expr(e.Not)}
	default:
		c.fail("expression at %q has no kind", e.At)
		return ast.Ident("_")
	}
	if e.Type != "" && out.Type == nil {
		t := c.typ(e.Type)
		out.Type = &t
	}
	return out
}

func (c *converter) decimal(text string) ast.LiteralData {
	lit := ast.LiteralData{Kind: ast.LiteralDecimal, Text: text}
	for i := 0; i < len(text); i++ {
		if text[i] == '.' {
			lit.Integer, lit.Fraction = text[:i], text[i+1:]
			return lit
		}
	}
	c.fail("decimal literal %q has no fraction", text)
	lit.Integer = text
	return lit
}
