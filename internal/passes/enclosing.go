package passes

import (
	"fmt"

	"flintc/internal/ast"
	"flintc/internal/diag"
)

// AssignEnclosingTypes records local declarations in the function scope and
// marks every member identifier with the type it belongs to. Enum case
// accesses are replaced by the case's hidden value.
func AssignEnclosingTypes() Pass {
	return Pass{
		Name: "enclosing-types",
		Process: Hooks{
			Stmt: map[ast.StmtKind]StmtHook{ast.StmtFor: declareLoopVar},
			Expr: map[ast.ExprKind]ExprHook{
				ast.ExprVarDecl: declareLocal,
				ast.ExprBinary:  annotateMember,
				ast.ExprIdent:   annotateBareProperty,
			},
		},
	}
}

func declareLoopVar(ctx *Context, s *ast.Stmt) *ast.Stmt {
	data := s.Data.(ast.ForData)
	ctx.Scope.Declare(ast.Local{Name: data.Var, Type: data.VarType, Constant: true})
	return s
}

func declareLocal(ctx *Context, e *ast.Expr) *ast.Expr {
	data := e.Data.(ast.VarDeclData)
	if ctx.InFunction {
		ctx.Scope.Declare(ast.Local{Name: data.Name, Type: data.Type.ReplaceSelf(ctx.EnclosingType), Constant: data.Constant})
	}
	return e
}

// annotateBareProperty marks an identifier that is not a local but names a
// property of the enclosing type; it is an implicit self access.
func annotateBareProperty(ctx *Context, e *ast.Expr) *ast.Expr {
	data := e.Data.(ast.IdentData)
	if !ctx.InFunction || data.EnclosingType != "" || ctx.Scope.Contains(data.Name) {
		return e
	}
	if ti, ok := ctx.Env.Type(ctx.EnclosingType); ok {
		if _, isProp := ti.Property(data.Name); isProp {
			data.EnclosingType = ctx.EnclosingType
			e.Data = data
		}
	}
	return e
}

func annotateMember(ctx *Context, e *ast.Expr) *ast.Expr {
	if !e.IsDot() {
		return e
	}
	data := e.Data.(ast.BinaryData)

	if enum := data.Lhs.IdentName(); enum != "" && !ctx.Scope.Contains(enum) && ctx.Env.IsEnum(enum) {
		return enumCase(ctx, e, enum, data.Rhs)
	}

	var owner string
	switch {
	case data.Lhs.Kind == ast.ExprSelf:
		owner = ctx.EnclosingType
	default:
		if t := ctx.typeOf(data.Lhs).Deref(); t.Kind != ast.TypeAny {
			owner = t.String()
		}
	}
	if owner != "" {
		annotateRhs(data.Rhs, owner)
	}
	return e
}

// annotateRhs marks the identifier a member access resolves through. For
// a subscript such as s.items[i] that is the subscript base.
func annotateRhs(rhs *ast.Expr, owner string) {
	switch data := rhs.Data.(type) {
	case ast.IdentData:
		data.EnclosingType = owner
		rhs.Data = data
	case ast.SubscriptData:
		annotateRhs(data.Base, owner)
	}
}

func enumCase(ctx *Context, e *ast.Expr, enum string, rhs *ast.Expr) *ast.Expr {
	ti, _ := ctx.Env.Type(enum)
	name := rhs.IdentName()
	value, ok := ti.CaseValues[name]
	if !ok || value == nil {
		if !ok {
			diag.ReportError(ctx.Reporter, diag.PassUnknownEnumCase, rhs.Span,
				fmt.Sprintf("enum %s has no case %s", enum, name)).Emit()
		}
		if data, isIdent := rhs.Data.(ast.IdentData); isIdent {
			data.EnclosingType = enum
			rhs.Data = data
		}
		return e
	}
	out := value.Clone()
	t := ast.NamedType(enum)
	out.Type = &t
	out.Span = e.Span
	return out
}
