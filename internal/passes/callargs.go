package passes

import (
	"fmt"
	"slices"

	"flintc/internal/ast"
	"flintc/internal/diag"
	"flintc/internal/env"
)

// CompleteCallArguments fills omitted default-valued parameters of matched
// function, initializer and event calls. Supplied arguments keep their
// position; defaults are inserted where their parameter is declared.
func CompleteCallArguments() Pass {
	done := make(map[*ast.Expr]bool)
	return Pass{
		Name: "complete-call-arguments",
		Process: Hooks{
			Expr: map[ast.ExprKind]ExprHook{
				// A method call is matched against the receiver's type.
				ast.ExprBinary: func(ctx *Context, e *ast.Expr) *ast.Expr {
					if !e.IsDot() {
						return e
					}
					data := e.Data.(ast.BinaryData)
					if data.Rhs.Kind != ast.ExprCall {
						return e
					}
					done[data.Rhs] = true
					owner := ctx.typeOf(data.Lhs).Deref()
					if owner.Kind != ast.TypeNamed {
						return e
					}
					cc := env.CallContext{Enclosing: owner.Name, Scope: ctx.Scope}
					data.Rhs = completeCall(ctx, data.Rhs, cc)
					e.Data = data
					return e
				},
			},
		},
		PostProcess: Hooks{
			Expr: map[ast.ExprKind]ExprHook{
				ast.ExprCall: func(ctx *Context, e *ast.Expr) *ast.Expr {
					if done[e] {
						return e
					}
					return completeCall(ctx, e, ctx.callContext())
				},
			},
		},
		Finish: func(*Context, *ast.Module) { clear(done) },
	}
}

func completeCall(ctx *Context, e *ast.Expr, cc env.CallContext) *ast.Expr {
	call := e.Data.(ast.CallData)
	if env.IsBuiltinFunction(call.Name) {
		return e
	}
	m := ctx.Env.MatchCall(call, cc)
	if m.Kind == env.MatchFailed {
		reportUnmatched(ctx, e, call, m.Candidates)
		return e
	}
	call.Args = completeArgs(m.Params(), call.Args)
	e.Data = call
	return e
}

// completeArgs orders a matched call's arguments by declaration. Labeled
// arguments bind by name first, positional ones fill the remaining
// parameters in order, and what is still unbound takes a copy of its default.
func completeArgs(params []*ast.Param, args []ast.Arg) []ast.Arg {
	bound := make([]*ast.Arg, len(params))
	var rest []ast.Arg
	for i := range args {
		if args[i].Label == "" {
			continue
		}
		idx := slices.IndexFunc(params, func(p *ast.Param) bool { return p.Name == args[i].Label })
		if idx < 0 || bound[idx] != nil {
			rest = append(rest, args[i])
			continue
		}
		bound[idx] = &args[i]
	}
	next := 0
	for i := range args {
		if args[i].Label != "" {
			continue
		}
		for next < len(params) && bound[next] != nil {
			next++
		}
		if next == len(params) {
			rest = append(rest, args[i])
			continue
		}
		bound[next] = &args[i]
	}

	out := make([]ast.Arg, 0, len(params)+len(rest))
	for i, p := range params {
		switch {
		case bound[i] != nil:
			out = append(out, *bound[i])
		case p.Default != nil:
			out = append(out, ast.Arg{Value: p.Default.Clone()})
		}
	}
	return append(out, rest...)
}

func reportUnmatched(ctx *Context, e *ast.Expr, call ast.CallData, candidates []*env.FunctionInformation) {
	if len(candidates) == 1 {
		if code, msg, ok := explainMismatch(candidates[0].Decl.Params, call); ok {
			diag.ReportError(ctx.Reporter, code, e.Span, msg).
				WithNote(candidates[0].Decl.Span, "declared here").Emit()
			return
		}
	}
	if _, isType := ctx.Env.Type(call.Name); isType {
		return
	}
	b := diag.ReportWarning(ctx.Reporter, diag.PassUnmatchedCall, e.Span,
		fmt.Sprintf("call to %s matches no declaration in %s", call.Name, ctx.EnclosingType))
	for _, c := range candidates {
		b.WithNote(c.Decl.Span, "candidate "+c.Decl.DisplayName())
	}
	b.Emit()
}

// explainMismatch names the argument problem of a call against one
// candidate, when the problem is with the argument list itself.
func explainMismatch(params []*ast.Param, call ast.CallData) (diag.Code, string, bool) {
	bound := make([]bool, len(params))
	pos := 0
	for _, a := range call.Args {
		idx := pos
		if a.Label != "" {
			idx = slices.IndexFunc(params, func(p *ast.Param) bool { return p.Name == a.Label })
			if idx < 0 {
				return diag.PassUnknownLabel, fmt.Sprintf("%s has no parameter named %s", call.Name, a.Label), true
			}
		} else {
			for idx < len(params) && bound[idx] {
				idx++
			}
			pos = idx + 1
		}
		if idx >= len(params) {
			return diag.PassTooManyArguments, fmt.Sprintf("too many arguments in call to %s", call.Name), true
		}
		if bound[idx] {
			return diag.PassDuplicateArgument, fmt.Sprintf("argument %s is supplied twice in call to %s", params[idx].Name, call.Name), true
		}
		bound[idx] = true
	}
	for i, p := range params {
		if !bound[i] && p.Default == nil {
			return diag.PassMissingArgument, fmt.Sprintf("missing argument %s in call to %s", p.Name, call.Name), true
		}
	}
	return 0, "", false
}
