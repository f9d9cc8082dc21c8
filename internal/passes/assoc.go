package passes

import (
	"flintc/internal/ast"
)

// LeftAssociate rotates right-nested member access a.(b.c) into (a.b).c.
// Bracketed operands and other operators are left alone.
func LeftAssociate() Pass {
	return Pass{
		Name: "left-associate",
		Process: Hooks{
			Expr: map[ast.ExprKind]ExprHook{ast.ExprBinary: rotateDot},
		},
	}
}

func rotateDot(_ *Context, e *ast.Expr) *ast.Expr {
	for e.IsDot() {
		outer := e.Data.(ast.BinaryData)
		if !outer.Rhs.IsDot() {
			break
		}
		inner := outer.Rhs.Data.(ast.BinaryData)
		e = &ast.Expr{
			Kind: ast.ExprBinary,
			Type: e.Type,
			Span: e.Span,
			Data: ast.BinaryData{
				Op:  ast.OpDot,
				Lhs: ast.Dot(outer.Lhs, inner.Lhs),
				Rhs: inner.Rhs,
			},
		}
	}
	return e
}
