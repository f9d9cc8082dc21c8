package passes

import (
	"flintc/internal/ast"
	"flintc/internal/diag"
	"flintc/internal/env"
)

// Verification selects how declared preconditions are enforced.
type Verification uint8

const (
	// VerificationRuntime turns preconditions into runtime assertions.
	VerificationRuntime Verification = iota
	// VerificationExternal trusts an external prover and drops assertions.
	VerificationExternal
)

func (v Verification) String() string {
	if v == VerificationExternal {
		return "verified"
	}
	return "runtime"
}

// ParseVerification accepts "runtime" and "verified".
func ParseVerification(s string) (Verification, bool) {
	switch s {
	case "", "runtime":
		return VerificationRuntime, true
	case "verified":
		return VerificationExternal, true
	}
	return 0, false
}

// Config is the per-compilation configuration of the pipeline.
type Config struct {
	Verification      Verification
	CheckAllFunctions bool
	MaxDiagnostics    int
}

// Hook signatures. A hook returns the node to keep in place of its argument;
// a statement hook may return nil to drop the statement.
type (
	DeclHook     func(ctx *Context, d *ast.Decl) *ast.Decl
	FunctionHook func(ctx *Context, f *ast.FunctionDecl) *ast.FunctionDecl
	StmtHook     func(ctx *Context, s *ast.Stmt) *ast.Stmt
	ExprHook     func(ctx *Context, e *ast.Expr) *ast.Expr
)

// Hooks are per-kind tables. Kinds without an entry are left untouched.
type Hooks struct {
	Decl     map[ast.DeclKind]DeclHook
	Function map[ast.FuncKind]FunctionHook
	Stmt     map[ast.StmtKind]StmtHook
	Expr     map[ast.ExprKind]ExprHook
}

// Pass is one rewrite. Process hooks run before a node's children are
// walked, PostProcess hooks after. Finish runs once the whole module has
// been walked.
type Pass struct {
	Name        string
	Process     Hooks
	PostProcess Hooks
	Finish      func(ctx *Context, mod *ast.Module)
}

// Context is threaded through one walk.
type Context struct {
	Env      *env.Environment
	Config   Config
	Reporter diag.Reporter
	Module   *ast.Module

	EnclosingType     string
	InTrait           bool
	InBehavior        bool
	InFunction        bool
	CallerProtections []string
	TypeStates        []string
	Function          *ast.FunctionDecl
	Scope             *ast.Scope
}

func (c *Context) callContext() env.CallContext {
	return env.CallContext{
		Enclosing:         c.EnclosingType,
		Scope:             c.Scope,
		CallerProtections: c.CallerProtections,
		TypeStates:        c.TypeStates,
	}
}

// typeOf infers the type of e at the current position.
func (c *Context) typeOf(e *ast.Expr) ast.Type {
	return c.Env.TypeOf(e, c.EnclosingType, c.Scope)
}
