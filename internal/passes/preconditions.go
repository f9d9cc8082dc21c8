package passes

import (
	"flintc/internal/ast"
)

// MaterializePreconditions prepends assert(pre) for every declared
// precondition of public contract functions and public initializers. With
// CheckAllFunctions every function with preconditions gets them.
func MaterializePreconditions() Pass {
	hook := func(ctx *Context, f *ast.FunctionDecl) *ast.FunctionDecl {
		if len(f.Pre) == 0 || !wantsRuntimeChecks(ctx, f) {
			return f
		}
		checks := make([]*ast.Stmt, 0, len(f.Pre)+len(f.Body))
		for _, pre := range f.Pre {
			call := ast.Call("assert", ast.Arg{Value: pre.Clone()})
			call.Span = pre.Span
			stmt := ast.ExprStmt(call)
			stmt.Span = pre.Span
			checks = append(checks, stmt)
		}
		f.Body = append(checks, f.Body...)
		return f
	}
	return Pass{
		Name: "materialize-preconditions",
		Process: Hooks{
			Function: map[ast.FuncKind]FunctionHook{
				ast.FuncNormal: hook,
				ast.FuncInit:   hook,
			},
		},
	}
}

func wantsRuntimeChecks(ctx *Context, f *ast.FunctionDecl) bool {
	if ctx.InTrait || f.SignatureOnly {
		return false
	}
	if ctx.Config.CheckAllFunctions {
		return true
	}
	return ctx.InBehavior && f.Public
}

// StripAssertions removes assert(...) statements from every body, nested
// blocks included, for builds whose preconditions were proven externally.
func StripAssertions() Pass {
	return Pass{
		Name: "strip-assertions",
		Process: Hooks{
			Stmt: map[ast.StmtKind]StmtHook{
				ast.StmtExpr: func(_ *Context, s *ast.Stmt) *ast.Stmt {
					if s.IsAssertCall() {
						return nil
					}
					return s
				},
			},
		},
	}
}
