package move

import (
	"slices"
	"strconv"
	"strings"

	"flintc/internal/ast"
	"flintc/internal/env"
	"flintc/internal/layout"
	"flintc/internal/lower"
)

// AddressParam is the account address the public entry points borrow the
// contract resource from.
const AddressParam = "flint$address"

// Program is the Move output: the runtime module followed by one module
// per contract.
type Program struct {
	Modules []*Module
}

// Text renders every module.
func (p *Program) Text() string {
	parts := make([]string, 0, len(p.Modules))
	for _, m := range p.Modules {
		parts = append(parts, RenderModule(m))
	}
	return strings.Join(parts, "\n")
}

// Module returns the named module.
func (p *Program) Module(name string) (*Module, bool) {
	for _, m := range p.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Function returns a function of the named module.
func (m *Module) Function(name string) (FuncDef, bool) {
	for _, f := range m.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return FuncDef{}, false
}

type generator struct {
	env    *env.Environment
	engine *layout.Engine
	emit   *emitter
	mod    *ast.Module
}

// Generate lowers every contract of mod to a Move module. An internal fatal
// error found while lowering is returned as *lower.InternalError and no
// program is produced.
func Generate(mod *ast.Module, e *env.Environment, engine *layout.Engine) (prog *Program, err error) {
	defer lower.Recover(&err)
	g := &generator{env: e, engine: engine, emit: newEmitter(e), mod: mod}
	prog = &Program{Modules: []*Module{Runtime()}}
	for _, d := range mod.Contracts() {
		prog.Modules = append(prog.Modules, g.contract(d.Data.(ast.ContractData)))
	}
	return prog, nil
}

func (g *generator) contract(c ast.ContractData) *Module {
	ti, _ := g.env.Type(c.Name)
	out := &Module{
		Name:    c.Name,
		Imports: []string{"0x0.Vector", "Transaction." + RuntimeModule},
	}
	out.Structs = append(out.Structs, StructDef{Name: ResourceName, Resource: true, Fields: g.fields(ti)})
	for _, d := range g.mod.Structs() {
		s := d.Data.(ast.StructData)
		st, _ := g.env.Type(s.Name)
		out.Structs = append(out.Structs, StructDef{Name: s.Name, Fields: g.fields(st)})
	}
	for _, ev := range c.Events {
		def := StructDef{Name: ev.Name}
		for _, p := range ev.Params {
			def.Fields = append(def.Fields, Field{Name: p.Name, Type: g.emit.typeName(p.Type)})
		}
		out.Structs = append(out.Structs, def)
	}

	fns := lower.ContractFunctions(g.mod, c.Name)
	init, ok := lower.Initializer(fns)
	if !ok {
		init = &env.FunctionInformation{Decl: &ast.FunctionDecl{Kind: ast.FuncInit, Public: true}, Owner: c.Name}
	}
	out.Functions = append(out.Functions, g.constructor(init, ti))

	for _, d := range g.mod.Structs() {
		out.Functions = append(out.Functions, g.structFunctions(d)...)
	}

	public := make(map[string]bool)
	for _, fi := range fns {
		if fi.Decl.Kind == ast.FuncInit {
			continue
		}
		out.Functions = append(out.Functions, g.function(fi))
		if fi.Decl.Kind != ast.FuncNormal || !fi.Decl.Public {
			continue
		}
		if public[fi.Decl.Name] {
			lower.Fatalf(c.Name+"."+fi.Decl.Name, fi.Decl.Span, "public function %s is overloaded", fi.Decl.Name)
		}
		public[fi.Decl.Name] = true
		out.Functions = append(out.Functions, g.wrapper(c.Name, ti, fi))
	}
	return out
}

// fields lists the stored properties of ti in declaration order. Contracts
// with type-states carry the state field last.
func (g *generator) fields(ti *env.TypeInformation) []Field {
	var out []Field
	for _, p := range ti.OrderedProperties() {
		out = append(out, Field{Name: p.Name, Type: g.emit.typeName(p.Type)})
	}
	if ti.Kind == env.KindContract && len(ti.States) > 0 {
		out = append(out, Field{Name: lower.StateField, Type: "u64"})
	}
	return out
}

func (g *generator) params(fn *ast.FunctionDecl) []Param {
	out := make([]Param, 0, len(fn.Params))
	for _, p := range fn.Params {
		out = append(out, Param{Name: g.emit.LocalName(p.Name), Type: g.emit.paramType(p.Type)})
	}
	return out
}

func (g *generator) result(fn *ast.FunctionDecl) string {
	if !lower.HasResult(fn) {
		return ""
	}
	return g.emit.typeName(*fn.Result)
}

func (g *generator) body(fi *env.FunctionInformation, receiver lower.Region) []Stmt {
	fc := lower.NewFunctionContext(g.env, fi, receiver)
	return lower.New[Expr, Stmt](g.emit, g.engine).Function(fc)
}

// function defines a user function taking the receiver reference first.
func (g *generator) function(fi *env.FunctionInformation) FuncDef {
	self := ResourceName
	receiver := lower.Storage()
	if g.env.IsStruct(fi.Owner) {
		self, receiver = fi.Owner, lower.Memory()
	}
	params := append([]Param{{Name: ThisName, Type: "&mut Self." + self}}, g.params(fi.Decl)...)
	return FuncDef{
		Name:   lower.Mangle(fi.Owner, fi.Decl),
		Params: params,
		Result: g.result(fi.Decl),
		Body:   g.body(fi, receiver),
	}
}

// fieldLocals declares one local per property for an initializer body.
// Collections without a default start empty and type-states start at the
// first state.
func (g *generator) fieldLocals(ti *env.TypeInformation) []Stmt {
	var out []Stmt
	for _, p := range ti.OrderedProperties() {
		name := FieldLocal(p.Name)
		ty := g.emit.typeName(p.Type)
		var value Expr = Uninit{}
		t := p.Type.Deref()
		switch t.Kind {
		case ast.TypeArray, ast.TypeFixedArray:
			value = Call{Fn: "Vector.empty", TypeArgs: []string{g.emit.typeName(*t.Elem)}}
		case ast.TypeDict:
			value = Call{Fn: rt("map_empty"), TypeArgs: []string{g.emit.typeName(*t.Key), g.emit.typeName(*t.Elem)}}
		}
		out = append(out, Let{Name: name, Type: ty, Value: value})
	}
	if ti.Kind == env.KindContract && len(ti.States) > 0 {
		out = append(out, Let{Name: FieldLocal(lower.StateField), Type: "u64", Value: Lit{Value: "0"}})
	}
	return out
}

func (g *generator) pack(ti *env.TypeInformation, name string) Pack {
	p := Pack{Type: name}
	for _, f := range g.fields(ti) {
		p.Fields = append(p.Fields, FieldValue{Name: f.Name, Value: MoveOf{Name: FieldLocal(f.Name)}})
	}
	return p
}

// constructor is the public `new` of a contract: it initializes the field
// locals and publishes the resource under the sender's account.
func (g *generator) constructor(init *env.FunctionInformation, ti *env.TypeInformation) FuncDef {
	for _, p := range init.Decl.Params {
		if lower.IsAggregate(g.env, p.Type) {
			lower.Fatalf(ti.Name+".init", p.Span, "initializer parameter %s of aggregate type %s", p.Name, p.Type)
		}
	}
	body := g.fieldLocals(ti)
	body = append(body, g.body(init, lower.Storage())...)
	body = append(body,
		ExprStmt{Expr: Call{Fn: "move_to_sender", TypeArgs: []string{ResourceName}, Args: []Expr{g.pack(ti, ResourceName)}}},
		Return{},
	)
	return FuncDef{Name: "new", Public: true, Params: g.params(init.Decl), Body: body}
}

// structFunctions defines the functions of a struct. Initializers return
// the packed value; a struct without a zero-argument initializer gets one
// that applies the property defaults.
func (g *generator) structFunctions(d *ast.Decl) []FuncDef {
	s := d.Data.(ast.StructData)
	ti, _ := g.env.Type(s.Name)
	var out []FuncDef
	implicit := true
	for _, fi := range lower.StructFunctions(d) {
		if fi.Decl.Kind != ast.FuncInit {
			out = append(out, g.function(fi))
			continue
		}
		if len(fi.Decl.Params) == 0 {
			implicit = false
		}
		out = append(out, g.structInit(fi, ti))
	}
	if implicit {
		fi := &env.FunctionInformation{Decl: &ast.FunctionDecl{Kind: ast.FuncInit}, Owner: s.Name}
		out = append(out, g.structInit(fi, ti))
	}
	return out
}

func (g *generator) structInit(fi *env.FunctionInformation, ti *env.TypeInformation) FuncDef {
	body := g.fieldLocals(ti)
	body = append(body, g.body(fi, lower.Memory())...)
	body = append(body, Return{Value: g.pack(ti, ti.Name)})
	return FuncDef{
		Name:   lower.Mangle(fi.Owner, fi.Decl),
		Params: g.params(fi.Decl),
		Result: "Self." + ti.Name,
		Body:   body,
	}
}

// wrapper is the public entry point of a contract function: it borrows the
// resource, checks type-states and caller protections, then calls the
// user function.
func (g *generator) wrapper(contract string, ti *env.TypeInformation, fi *env.FunctionInformation) FuncDef {
	where := contract + "." + fi.Decl.Name
	params := []Param{{Name: AddressParam, Type: "address"}}
	args := []Expr{MoveOf{Name: ThisName}}
	for _, p := range fi.Decl.Params {
		if lower.IsAggregate(g.env, p.Type) {
			lower.Fatalf(where, p.Span, "public parameter %s of aggregate type %s", p.Name, p.Type)
		}
		name := g.emit.LocalName(p.Name)
		params = append(params, Param{Name: name, Type: g.emit.paramType(p.Type)})
		args = append(args, CopyOf{Name: name})
	}
	body := []Stmt{
		Let{Name: ThisName, Type: "&mut Self." + ResourceName, Value: Call{
			Fn: "borrow_global_mut", TypeArgs: []string{ResourceName}, Args: []Expr{MoveOf{Name: AddressParam}},
		}},
	}
	if cond, ok := g.typeStateCheck(where, ti, fi); ok {
		body = append(body, Assert{Cond: cond, Code: CodeTypeState})
	}
	if cond, ok := g.callerCheck(where, ti, fi); ok {
		body = append(body, Assert{Cond: cond, Code: CodeCaller})
	}
	call := Call{Fn: "Self." + lower.Mangle(contract, fi.Decl), Args: args}
	if lower.HasResult(fi.Decl) {
		body = append(body, Return{Value: call})
	} else {
		body = append(body, ExprStmt{Expr: call}, Return{})
	}
	return FuncDef{
		Name:     fi.Decl.Name,
		Public:   true,
		Params:   params,
		Result:   g.result(fi.Decl),
		Acquires: []string{ResourceName},
		Body:     body,
	}
}

func or(acc, next Expr) Expr {
	if acc == nil {
		return next
	}
	return Binary{Op: "||", L: acc, R: next}
}

func property(name string) Expr {
	return Deref{X: BorrowField{Base: Ref{Name: ThisName}, Field: name}}
}

func (g *generator) typeStateCheck(where string, ti *env.TypeInformation, fi *env.FunctionInformation) (Expr, bool) {
	if len(fi.TypeStates) == 0 || slices.Contains(fi.TypeStates, "any") {
		return nil, false
	}
	var cond Expr
	for _, state := range fi.TypeStates {
		idx, ok := ti.StateIndex(state)
		if !ok {
			lower.Fatalf(where, fi.Decl.Span, "unknown type-state %s", state)
		}
		cond = or(cond, Binary{Op: "==", L: property(lower.StateField), R: Lit{Value: strconv.Itoa(idx)}})
	}
	return cond, true
}

// callerCheck accepts the sender when it matches an Address property, is
// contained in an address array, or equals the result of a zero-argument
// function returning an address.
func (g *generator) callerCheck(where string, ti *env.TypeInformation, fi *env.FunctionInformation) (Expr, bool) {
	if fi.AnyCaller() {
		return nil, false
	}
	sender := Call{Fn: "get_txn_sender"}
	var cond Expr
	for _, name := range fi.CallerProtections {
		if p, ok := ti.Property(name); ok {
			t := p.Type.Deref()
			switch {
			case t.IsBasic(ast.BasicAddress):
				cond = or(cond, Binary{Op: "==", L: property(name), R: sender})
			case (t.Kind == ast.TypeArray || t.Kind == ast.TypeFixedArray) && t.Elem.IsBasic(ast.BasicAddress):
				cond = or(cond, Call{Fn: rt("contains_sender"), Args: []Expr{
					Freeze{X: BorrowField{Base: Ref{Name: ThisName}, Field: name}}, sender,
				}})
			default:
				lower.Fatalf(where, fi.Decl.Span, "caller protection %s has type %s", name, t)
			}
			continue
		}
		var match *env.FunctionInformation
		for _, cand := range ti.Functions[name] {
			if len(cand.Decl.Params) == 0 && cand.Decl.Result != nil && cand.Decl.Result.IsBasic(ast.BasicAddress) {
				match = cand
				break
			}
		}
		if match == nil {
			lower.Fatalf(where, fi.Decl.Span, "caller protection %s names no property or function", name)
		}
		cond = or(cond, Binary{Op: "==", L: Call{
			Fn: "Self." + lower.Mangle(ti.Name, match.Decl), Args: []Expr{Ref{Name: ThisName}},
		}, R: sender})
	}
	return cond, true
}
