package evm

import (
	"fmt"
	"slices"
	"strings"

	"flintc/internal/ast"
	"flintc/internal/env"
	"flintc/internal/layout"
	"flintc/internal/lower"
	"flintc/internal/source"
)

// FreeMemoryPointer holds the next free scratch address.
const (
	FreeMemoryPointer = "0x40"
	freeMemoryStart   = "0x60"
	runtimeObject     = "runtime"
)

// Program is the Yul output for a module, one object per contract.
type Program struct {
	Objects []*Object
}

// Text renders every object.
func (p *Program) Text() string {
	parts := make([]string, 0, len(p.Objects))
	for _, o := range p.Objects {
		parts = append(parts, RenderObject(o))
	}
	return strings.Join(parts, "\n")
}

// Object returns the object of the named contract.
func (p *Program) Object(name string) (*Object, bool) {
	for _, o := range p.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

type generator struct {
	env    *env.Environment
	engine *layout.Engine
	emit   *emitter
	mod    *ast.Module
}

// Generate lowers every contract of mod. An internal fatal error found
// while lowering is returned as *lower.InternalError and no program is
// produced.
func Generate(mod *ast.Module, e *env.Environment, engine *layout.Engine) (prog *Program, err error) {
	defer lower.Recover(&err)
	g := &generator{env: e, engine: engine, emit: newEmitter(engine), mod: mod}
	prog = &Program{}
	for _, d := range mod.Contracts() {
		prog.Objects = append(prog.Objects, g.contract(d.Data.(ast.ContractData)))
	}
	return prog, nil
}

func (g *generator) contract(c ast.ContractData) *Object {
	fns := lower.ContractFunctions(g.mod, c.Name)
	var defs []Stmt
	for _, fi := range fns {
		defs = append(defs, g.function(fi))
	}
	for _, d := range g.mod.Structs() {
		for _, fi := range lower.StructFunctions(d) {
			defs = append(defs, g.function(fi))
		}
	}
	for _, f := range RuntimeLibrary() {
		defs = append(defs, f)
	}

	ctor := []Stmt{exprStmt("mstore", lit(FreeMemoryPointer), lit(freeMemoryStart))}
	if init, ok := lower.Initializer(fns); ok {
		ctor = append(ctor, g.constructorCall(init)...)
	}
	ctor = append(ctor,
		exprStmt("datacopy", lit("0"), call("dataoffset", lit(quote(runtimeObject))), call("datasize", lit(quote(runtimeObject)))),
		exprStmt("return", lit("0"), call("datasize", lit(quote(runtimeObject)))),
	)
	ctor = append(ctor, defs...)

	run := []Stmt{
		exprStmt("mstore", lit(FreeMemoryPointer), lit(freeMemoryStart)),
		g.dispatch(c.Name, fns),
	}
	run = append(run, defs...)

	return &Object{
		Name:    c.Name,
		Code:    block(ctor...),
		Objects: []*Object{{Name: runtimeObject, Code: block(run...)}},
	}
}

// function defines one user function. Struct functions take the receiver
// pointer and its memory flag first; aggregate parameters carry a flag too.
func (g *generator) function(fi *env.FunctionInformation) FuncDef {
	receiver := lower.Storage()
	var params []string
	if g.env.IsStruct(fi.Owner) {
		receiver = lower.Dynamic(lower.MemFlag(lower.ReceiverName))
		params = append(params, lower.ReceiverName, lower.MemFlag(lower.ReceiverName))
	}
	for _, p := range fi.Decl.Params {
		name := g.emit.LocalName(p.Name)
		params = append(params, name)
		if lower.IsAggregate(g.env, p.Type) {
			params = append(params, lower.MemFlag(name))
		}
	}
	var returns []string
	if lower.HasResult(fi.Decl) {
		returns = []string{ReturnVar}
	}
	fc := lower.NewFunctionContext(g.env, fi, receiver)
	body := lower.New[Expr, Stmt](g.emit, g.engine).Function(fc)
	return FuncDef{Name: lower.Mangle(fi.Owner, fi.Decl), Params: params, Returns: returns, Body: block(body...)}
}

// constructorCall decodes the initializer arguments appended to the code
// and calls the initializer.
func (g *generator) constructorCall(init *env.FunctionInformation) []Stmt {
	n := len(init.Decl.Params)
	inv := lower.Invocation[Expr]{Name: lower.Mangle(init.Owner, init.Decl), Owner: init.Owner, OwnerKind: env.KindContract}
	if n == 0 {
		return []Stmt{g.emit.Eval(g.emit.Invoke(nil, inv), false)}
	}
	const args = "flint$args"
	size := g.emit.bytes(n)
	out := []Stmt{
		Let{Names: ps(args), Value: call(rt("allocateMemory"), size)},
		exprStmt("codecopy", id(args), call("sub", call("codesize"), size), size),
	}
	for i, p := range init.Decl.Params {
		if lower.IsAggregate(g.env, p.Type) {
			lower.Fatalf(init.Owner+".init", p.Span, "initializer parameter %s of aggregate type %s", p.Name, p.Type)
		}
		v := call("mload", g.emit.offset(id(args), i, lower.Memory()))
		inv.Args = append(inv.Args, lower.Argument[Expr]{Value: v})
	}
	return append(out, g.emit.Eval(g.emit.Invoke(nil, inv), false))
}

// dispatch switches on the selector of the incoming call.
func (g *generator) dispatch(contract string, fns []*env.FunctionInformation) Stmt {
	sw := Switch{Expr: call(rt("selector"))}
	seen := make(map[string]string)
	var fallback *env.FunctionInformation
	for _, fi := range fns {
		switch {
		case fi.Decl.Kind == ast.FuncFallback:
			if fallback == nil {
				fallback = fi
			}
			continue
		case fi.Decl.Kind != ast.FuncNormal || !fi.Decl.Public:
			continue
		}
		sel := Selector(fi.Decl)
		sig := Signature(fi.Decl.Name, fi.Decl.Params)
		if prev, dup := seen[sel]; dup {
			lower.Fatalf(contract+"."+fi.Decl.Name, fi.Decl.Span, "selector %s of %s collides with %s", sel, sig, prev)
		}
		seen[sel] = sig
		sw.Cases = append(sw.Cases, Case{Value: &Lit{Value: sel}, Body: block(g.wrapper(contract, fi)...)})
	}
	slices.SortStableFunc(sw.Cases, func(a, b Case) int { return strings.Compare(a.Value.Value, b.Value.Value) })
	def := block(revert())
	if fallback != nil {
		def = block(g.wrapper(contract, fallback)...)
	}
	sw.Cases = append(sw.Cases, Case{Body: def})
	return sw
}

// wrapper checks type-states and caller protections, decodes the
// arguments and returns the result as 32 bytes.
func (g *generator) wrapper(contract string, fi *env.FunctionInformation) []Stmt {
	var out []Stmt
	if cond, ok := g.typeStateCheck(contract, fi); ok {
		out = append(out, If{Cond: call("iszero", cond), Body: block(exprStmt(rt("fatalError")))})
	}
	if cond, ok := g.callerCheck(contract, fi); ok {
		out = append(out, If{Cond: call("iszero", cond), Body: block(exprStmt(rt("fatalError")))})
	}
	inv := lower.Invocation[Expr]{Name: lower.Mangle(contract, fi.Decl), Owner: contract, OwnerKind: env.KindContract}
	for i, p := range fi.Decl.Params {
		if lower.IsAggregate(g.env, p.Type) {
			lower.Fatalf(contract+"."+fi.Decl.Name, p.Span, "public parameter %s of aggregate type %s", p.Name, p.Type)
		}
		decode := rt("decodeAsUInt")
		if abiType(p.Type) == "address" {
			decode = rt("decodeAsAddress")
		}
		inv.Args = append(inv.Args, lower.Argument[Expr]{Value: call(decode, g.emit.Word(i))})
	}
	result := g.emit.Invoke(nil, inv)
	if lower.HasResult(fi.Decl) {
		return append(out, exprStmt(rt("return32Bytes"), result))
	}
	return append(out, ExprStmt{Expr: result})
}

func (g *generator) typeStateCheck(contract string, fi *env.FunctionInformation) (Expr, bool) {
	if len(fi.TypeStates) == 0 || slices.Contains(fi.TypeStates, "any") {
		return nil, false
	}
	ti, _ := g.env.Type(contract)
	slot, err := g.engine.StateSlot(contract)
	if err != nil {
		lower.Wrap(contract, source.Synthetic(), "state slot", err)
	}
	current := call("sload", g.emit.Word(slot))
	var cond Expr
	for _, state := range fi.TypeStates {
		idx, ok := ti.StateIndex(state)
		if !ok {
			lower.Fatalf(contract+"."+fi.Decl.DisplayName(), fi.Decl.Span, "unknown type-state %s", state)
		}
		cond = or(cond, call(rt("isMatchingTypeState"), g.emit.Word(idx), current))
	}
	return cond, true
}

// callerCheck accepts a caller matching any protection. A protection names
// an Address property, an array of addresses, or a zero-argument function
// returning an address.
func (g *generator) callerCheck(contract string, fi *env.FunctionInformation) (Expr, bool) {
	if fi.AnyCaller() {
		return nil, false
	}
	where := contract + "." + fi.Decl.DisplayName()
	ti, _ := g.env.Type(contract)
	var cond Expr
	for _, name := range fi.CallerProtections {
		if p, ok := ti.Property(name); ok {
			offset, err := g.engine.Offset(contract, name)
			if err != nil {
				lower.Wrap(where, fi.Decl.Span, "caller protection "+name, err)
			}
			cond = or(cond, g.protectionCheck(where, fi, p, offset))
			continue
		}
		fn := protectionFunction(ti, name)
		if fn == nil {
			lower.Fatalf(where, fi.Decl.Span, "caller protection %s names no property or function", name)
		}
		cond = or(cond, call(rt("isValidCallerProtection"), call(lower.Mangle(contract, fn.Decl))))
	}
	return cond, true
}

func (g *generator) protectionCheck(where string, fi *env.FunctionInformation, p *env.PropertyInformation, offset int) Expr {
	t := p.Type.Deref()
	switch {
	case t.IsBasic(ast.BasicAddress):
		return call(rt("isValidCallerProtection"), call("sload", g.emit.Word(offset)))
	case t.Kind == ast.TypeArray && t.Elem.IsBasic(ast.BasicAddress):
		return call(rt("isCallerProtectionInArray"), g.emit.Word(offset))
	case t.Kind == ast.TypeFixedArray && t.Elem.IsBasic(ast.BasicAddress):
		return call(rt("isCallerProtectionInFixedArray"), g.emit.Word(offset), g.emit.Word(t.Size))
	}
	lower.Fatalf(where, fi.Decl.Span, "caller protection %s has type %s", p.Name, t)
	return nil
}

func protectionFunction(ti *env.TypeInformation, name string) *env.FunctionInformation {
	for _, fi := range ti.Functions[name] {
		if len(fi.Decl.Params) == 0 && fi.Decl.Result != nil && fi.Decl.Result.IsBasic(ast.BasicAddress) {
			return fi
		}
	}
	return nil
}

func or(acc, next Expr) Expr {
	if acc == nil {
		return next
	}
	return call("or", acc, next)
}

// FunctionNames lists the user functions defined in the runtime object of
// the named contract.
func (p *Program) FunctionNames(contract string) []string {
	o, ok := p.Object(contract)
	if !ok || len(o.Objects) == 0 {
		return nil
	}
	var out []string
	for _, s := range o.Objects[0].Code.Stmts {
		if f, ok := s.(FuncDef); ok && !strings.HasPrefix(f.Name, RuntimePrefix) {
			out = append(out, f.Name)
		}
	}
	return out
}

// Function returns the definition of a user function by mangled name.
func (p *Program) Function(contract, mangled string) (FuncDef, error) {
	o, ok := p.Object(contract)
	if !ok || len(o.Objects) == 0 {
		return FuncDef{}, fmt.Errorf("no contract %s", contract)
	}
	for _, s := range o.Objects[0].Code.Stmts {
		if f, ok := s.(FuncDef); ok && f.Name == mangled {
			return f, nil
		}
	}
	return FuncDef{}, fmt.Errorf("contract %s has no function %s", contract, mangled)
}
