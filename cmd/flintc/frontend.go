package main

import (
	"context"

	"flintc/internal/ast"
	"flintc/internal/diag"
	"flintc/internal/driver"
	"flintc/internal/env"
	"flintc/internal/passes"
	"flintc/internal/source"
)

// frontend is a module after collection and the rewrite passes.
type frontend struct {
	Files  *source.FileSet
	Module *ast.Module
	Env    *env.Environment
	Bag    *diag.Bag
}

// runFrontend decodes input and runs collection and the pass pipeline.
func runFrontend(ctx context.Context, input string, cfg passes.Config) (*frontend, error) {
	loaded, err := driver.Load(input)
	if err != nil {
		return nil, err
	}
	bag := diag.NewBag(cfg.MaxDiagnostics)
	e := env.Collect(loaded.Module, diag.BagReporter{Bag: bag})
	mod, e, passBag := passes.Run(ctx, loaded.Module, e, passes.Default(cfg), cfg)
	bag.Merge(passBag)
	return &frontend{Files: loaded.FileSet, Module: mod, Env: e, Bag: bag}, nil
}
