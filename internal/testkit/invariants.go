package testkit

import (
	"fmt"

	"flintc/internal/ast"
)

// CheckLeftAssociated reports the first unbracketed `.` expression whose
// right operand is itself an unbracketed `.` expression.
func CheckLeftAssociated(mod *ast.Module) error {
	var bad *ast.Expr
	WalkExprs(mod, func(e *ast.Expr) {
		if bad != nil || !e.IsDot() {
			return
		}
		if e.Data.(ast.BinaryData).Rhs.IsDot() {
			bad = e
		}
	})
	if bad != nil {
		return fmt.Errorf("right-nested member access %s", bad)
	}
	return nil
}

// CheckDisjoint reports an expression node reachable from both modules.
func CheckDisjoint(a, b *ast.Module) error {
	seen := make(map[*ast.Expr]bool)
	WalkExprs(a, func(e *ast.Expr) { seen[e] = true })
	var shared *ast.Expr
	WalkExprs(b, func(e *ast.Expr) {
		if shared == nil && seen[e] {
			shared = e
		}
	})
	if shared != nil {
		return fmt.Errorf("node %s is shared between modules", shared)
	}
	return nil
}

// WalkExprs calls fn on every expression of mod in pre-order.
func WalkExprs(mod *ast.Module, fn func(*ast.Expr)) {
	ast.WalkExprs(mod, fn)
}
