package lower

import (
	"flintc/internal/ast"
	"flintc/internal/env"
)

// ContractFunctions collects the functions of a contract from its behavior
// blocks in the rewritten module, with the capabilities of their block.
func ContractFunctions(mod *ast.Module, contract string) []*env.FunctionInformation {
	var out []*env.FunctionInformation
	for _, d := range mod.Behaviors(contract) {
		b := d.Data.(ast.BehaviorData)
		for _, fn := range b.Members {
			if fn.SignatureOnly {
				continue
			}
			out = append(out, &env.FunctionInformation{
				Decl:              fn,
				Owner:             contract,
				CallerProtections: b.CallerProtections,
				CallerBinding:     b.CallerBinding,
				TypeStates:        b.States,
				Mutating:          fn.Mutating,
			})
		}
	}
	return out
}

// StructFunctions collects the functions of a struct declaration.
func StructFunctions(d *ast.Decl) []*env.FunctionInformation {
	s := d.Data.(ast.StructData)
	out := make([]*env.FunctionInformation, 0, len(s.Members))
	for _, fn := range s.Members {
		if fn.SignatureOnly {
			continue
		}
		out = append(out, &env.FunctionInformation{Decl: fn, Owner: s.Name, Mutating: fn.Mutating})
	}
	return out
}

// Initializer returns the first initializer of fns.
func Initializer(fns []*env.FunctionInformation) (*env.FunctionInformation, bool) {
	for _, fi := range fns {
		if fi.Decl.Kind == ast.FuncInit {
			return fi, true
		}
	}
	return nil, false
}

// IsAggregate reports whether values of t travel as base pointers.
func IsAggregate(e *env.Environment, t ast.Type) bool {
	t = t.Deref()
	switch t.Kind {
	case ast.TypeArray, ast.TypeFixedArray, ast.TypeDict:
		return true
	case ast.TypeNamed:
		return e.IsStruct(t.Name) || e.IsContract(t.Name)
	}
	return false
}

// HasResult reports whether fn returns a value.
func HasResult(fn *ast.FunctionDecl) bool {
	return fn.Result != nil && !fn.Result.IsBasic(ast.BasicVoid)
}
