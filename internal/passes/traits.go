package passes

import (
	"slices"

	"flintc/internal/ast"
	"flintc/internal/env"
)

// ResolveTraits copies trait default functions into the structs and
// contracts that conform without overriding them. Copies get a fresh scope
// and have Self replaced by the conforming type. Trait members are emptied
// at the end since traits are never lowered on their own.
func ResolveTraits() Pass {
	var contractCopies map[string][]*ast.FunctionDecl
	return Pass{
		Name: "resolve-traits",
		Process: Hooks{
			Decl: map[ast.DeclKind]DeclHook{
				ast.DeclStruct: func(ctx *Context, d *ast.Decl) *ast.Decl {
					data := d.Data.(ast.StructData)
					data.Members = append(data.Members, inheritDefaults(ctx, data.Name, data.Conformances, data.Members)...)
					d.Data = data
					return d
				},
				ast.DeclContract: func(ctx *Context, d *ast.Decl) *ast.Decl {
					data := d.Data.(ast.ContractData)
					var own []*ast.FunctionDecl
					for _, b := range ctx.Module.Behaviors(data.Name) {
						own = append(own, b.Data.(ast.BehaviorData).Members...)
					}
					if copies := inheritDefaults(ctx, data.Name, data.Conformances, own); len(copies) > 0 {
						if contractCopies == nil {
							contractCopies = make(map[string][]*ast.FunctionDecl)
						}
						contractCopies[data.Name] = copies
					}
					return d
				},
			},
		},
		Finish: func(ctx *Context, mod *ast.Module) {
			for _, d := range mod.Contracts() {
				name := d.Data.TypeName()
				if copies := contractCopies[name]; len(copies) > 0 {
					mod.Decls = append(mod.Decls, &ast.Decl{
						Kind: ast.DeclBehavior,
						Span: d.Span,
						Data: ast.BehaviorData{Contract: name, CallerProtections: []string{"any"}, Members: copies},
					})
				}
			}
			contractCopies = nil
			for _, d := range mod.Decls {
				if data, ok := d.Data.(ast.TraitData); ok {
					data.Members = nil
					d.Data = data
				}
			}
		},
	}
}

// inheritDefaults returns retargeted copies of the trait functions owner
// inherits and registers them in the environment.
func inheritDefaults(ctx *Context, owner string, conformances []string, own []*ast.FunctionDecl) []*ast.FunctionDecl {
	var out []*ast.FunctionDecl
	for _, traitName := range conformances {
		trait := findTrait(ctx.Module, traitName)
		if trait == nil {
			continue
		}
		for _, def := range trait.Members {
			if def.SignatureOnly || def.Body == nil || overrides(own, def) || overrides(out, def) {
				continue
			}
			cp := retarget(ctx, def.Clone(), traitName, owner)
			out = append(out, cp)
			info := &env.FunctionInformation{Decl: cp, Owner: owner, Mutating: cp.Mutating}
			if ctx.Env.IsContract(owner) {
				info.CallerProtections = []string{"any"}
			}
			ctx.Env.AddFunction(info)
		}
	}
	return out
}

func findTrait(mod *ast.Module, name string) *ast.TraitData {
	for _, d := range mod.Decls {
		if data, ok := d.Data.(ast.TraitData); ok && data.Name == name {
			return &data
		}
	}
	return nil
}

func overrides(own []*ast.FunctionDecl, def *ast.FunctionDecl) bool {
	return slices.ContainsFunc(own, func(f *ast.FunctionDecl) bool {
		return f.Name == def.Name && len(f.Params) == len(def.Params)
	})
}

// retarget rewrites a copied trait function to belong to owner.
func retarget(ctx *Context, fn *ast.FunctionDecl, trait, owner string) *ast.FunctionDecl {
	for _, p := range fn.Params {
		p.Type = p.Type.ReplaceSelf(owner)
	}
	if fn.Result != nil {
		r := fn.Result.ReplaceSelf(owner)
		fn.Result = &r
	}
	fn.Scope = ast.NewScope(fn.Params)

	rewrite := &Pass{Process: Hooks{Expr: map[ast.ExprKind]ExprHook{
		ast.ExprIdent: func(_ *Context, e *ast.Expr) *ast.Expr {
			if data := e.Data.(ast.IdentData); data.EnclosingType == trait {
				data.EnclosingType = owner
				e.Data = data
			}
			return e
		},
		ast.ExprVarDecl: func(_ *Context, e *ast.Expr) *ast.Expr {
			data := e.Data.(ast.VarDeclData)
			data.Type = data.Type.ReplaceSelf(owner)
			e.Data = data
			t := data.Type
			e.Type = &t
			return e
		},
	}}}
	inner := *ctx
	inner.EnclosingType = owner
	w := &walker{pass: rewrite, ctx: &inner}
	return w.function(fn)
}
