package passes

import (
	"context"
	"fmt"

	"flintc/internal/ast"
	"flintc/internal/diag"
	"flintc/internal/env"
	"flintc/internal/trace"
)

// Default returns the standard pass list. Exactly one of the precondition
// passes is included, chosen by cfg.Verification.
func Default(cfg Config) []Pass {
	list := []Pass{
		LeftAssociate(),
		AssignEnclosingTypes(),
		ResolveTraits(),
		CompleteCallArguments(),
	}
	if cfg.Verification == VerificationExternal {
		return append(list, StripAssertions())
	}
	return append(list, MaterializePreconditions())
}

// Run applies passes in order. Each pass works on a fresh deep copy of the
// previous pass's output, so no two passes share mutable nodes. Diagnostics
// never stop the pipeline; callers gate lowering on Bag.HasErrors.
func Run(ctx context.Context, mod *ast.Module, e *env.Environment, passes []Pass, cfg Config) (*ast.Module, *env.Environment, *diag.Bag) {
	bag := diag.NewBag(cfg.MaxDiagnostics)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	for i := range passes {
		p := &passes[i]
		_, span := trace.Start(ctx, trace.ScopeStep, "pass:"+p.Name)
		before := bag.Len()

		mod = mod.Clone()
		pc := &Context{Env: e, Config: cfg, Reporter: reporter, Module: mod}
		w := &walker{pass: p, ctx: pc}
		w.module(mod)
		if p.Finish != nil {
			p.Finish(pc, mod)
		}

		span.Set("diagnostics", fmt.Sprint(bag.Len()-before)).End("")
	}
	return mod, e, bag
}
