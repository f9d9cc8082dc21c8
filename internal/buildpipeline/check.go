package buildpipeline

import (
	"fmt"

	"flintc/internal/ast"
	"flintc/internal/diag"
	"flintc/internal/env"
	"flintc/internal/lower"
	"flintc/internal/source"
)

// checkModule reports problems shared by every target: a module without
// contracts, duplicate initializers, parameters public entry points cannot
// decode and statements after a return.
func checkModule(mod *ast.Module, e *env.Environment, r diag.Reporter) {
	contracts := mod.Contracts()
	if len(contracts) == 0 {
		diag.ReportError(r, diag.LowerNoContracts, source.Synthetic(), "module declares no contracts").Emit()
	}
	for _, d := range contracts {
		name := d.Data.(ast.ContractData).Name
		var first *ast.FunctionDecl
		for _, fi := range lower.ContractFunctions(mod, name) {
			fn := fi.Decl
			if fn.Kind == ast.FuncInit {
				if first != nil {
					diag.ReportError(r, diag.LowerDuplicateInit, fn.Span, fmt.Sprintf("contract %s already has an initializer", name)).
						WithNote(first.Span, "first initializer").
						Emit()
				} else {
					first = fn
				}
			}
			if fn.Kind != ast.FuncInit && !fn.Public {
				continue
			}
			for _, p := range fn.Params {
				if lower.IsAggregate(e, p.Type) {
					diag.ReportError(r, diag.LowerUnsupported, p.Span,
						fmt.Sprintf("parameter %s of %s.%s has aggregate type %s and cannot be decoded from a transaction", p.Name, name, fn.DisplayName(), p.Type)).Emit()
				}
			}
		}
	}
	for _, d := range mod.Decls {
		for _, fn := range d.Functions() {
			checkReachable(fn.Body, r)
		}
	}
}

func checkReachable(stmts []*ast.Stmt, r diag.Reporter) {
	for i, s := range stmts {
		switch data := s.Data.(type) {
		case ast.IfData:
			checkReachable(data.Then, r)
			checkReachable(data.Else, r)
		case ast.ForData:
			checkReachable(data.Body, r)
		}
		if s.Kind == ast.StmtReturn && i+1 < len(stmts) {
			diag.ReportWarning(r, diag.LowerUnreachableCode, stmts[i+1].Span, "statement follows a return").
				WithNote(s.Span, "return is here").
				Emit()
			return
		}
	}
}

// checkTarget reports constructs the target cannot express. Only Move has
// such restrictions: it has no value transfers, no fallback entry point and
// no overloaded public functions.
func checkTarget(mod *ast.Module, target string, r diag.Reporter) {
	if target != "move" {
		return
	}
	ast.WalkExprs(mod, func(e *ast.Expr) {
		if call, ok := e.Data.(ast.CallData); ok && call.Name == "send" {
			diag.ReportError(r, diag.LowerUnsupported, e.Span, "send is not supported by the move target").Emit()
		}
	})
	for _, d := range mod.Contracts() {
		name := d.Data.(ast.ContractData).Name
		public := make(map[string]*ast.FunctionDecl)
		for _, fi := range lower.ContractFunctions(mod, name) {
			fn := fi.Decl
			switch {
			case fn.Kind == ast.FuncFallback:
				diag.ReportError(r, diag.LowerUnsupported, fn.Span, fmt.Sprintf("contract %s: fallback functions are not supported by the move target", name)).Emit()
			case fn.Kind == ast.FuncNormal && fn.Public:
				if prev, ok := public[fn.Name]; ok {
					diag.ReportError(r, diag.LowerUnsupported, fn.Span, fmt.Sprintf("contract %s: public function %s is overloaded", name, fn.Name)).
						WithNote(prev.Span, "other overload").
						Emit()
					continue
				}
				public[fn.Name] = fn
			}
		}
	}
}
