package env

import (
	"slices"

	"flintc/internal/ast"
	"flintc/internal/source"
)

// TypeKind classifies a named type.
type TypeKind uint8

const (
	KindContract TypeKind = iota
	KindStruct
	KindTrait
	KindEnum
)

func (k TypeKind) String() string {
	switch k {
	case KindContract:
		return "contract"
	case KindStruct:
		return "struct"
	case KindTrait:
		return "trait"
	case KindEnum:
		return "enum"
	}
	return "unknown"
}

// PropertyInformation describes one stored property.
type PropertyInformation struct {
	Name       string
	Type       ast.Type
	Constant   bool
	HasDefault bool
	Default    *ast.Expr
	Span       source.Span
}

// FunctionInformation describes a function, initializer or fallback together
// with the capability metadata of the block it was declared in. The metadata
// was verified upstream and is only consumed here.
type FunctionInformation struct {
	Decl              *ast.FunctionDecl
	Owner             string
	CallerProtections []string
	CallerBinding     string
	TypeStates        []string
	Mutating          bool
	SignatureOnly     bool
}

// IsPublicEntry reports whether the function is reachable from a transaction.
func (fi *FunctionInformation) IsPublicEntry() bool {
	return fi.Decl.Public || fi.Decl.Kind == ast.FuncInit
}

// AnyCaller reports whether any caller may invoke the function.
func (fi *FunctionInformation) AnyCaller() bool {
	return len(fi.CallerProtections) == 0 || slices.Contains(fi.CallerProtections, "any")
}

// EventInformation describes an event a contract may emit.
type EventInformation struct {
	Decl *ast.EventDecl
}

// TypeInformation is everything the compiler core knows about a named type.
// Properties keeps declaration order; nothing may re-sort it.
type TypeInformation struct {
	Name         string
	Kind         TypeKind
	Properties   []string
	PropertyInfo map[string]*PropertyInformation
	Functions    map[string][]*FunctionInformation
	Initializers []*FunctionInformation
	Fallbacks    []*FunctionInformation
	Conformances []string
	Events       map[string]*EventInformation
	States       []string
	// Enums only.
	Hidden     ast.Type
	Cases      []string
	CaseValues map[string]*ast.Expr
	Span       source.Span
}

func newTypeInformation(name string, kind TypeKind, span source.Span) *TypeInformation {
	return &TypeInformation{
		Name:         name,
		Kind:         kind,
		PropertyInfo: make(map[string]*PropertyInformation),
		Functions:    make(map[string][]*FunctionInformation),
		Events:       make(map[string]*EventInformation),
		CaseValues:   make(map[string]*ast.Expr),
		Span:         span,
	}
}

// Property returns the named property.
func (ti *TypeInformation) Property(name string) (*PropertyInformation, bool) {
	if ti == nil {
		return nil, false
	}
	p, ok := ti.PropertyInfo[name]
	return p, ok
}

// OrderedProperties returns the property records in declaration order.
func (ti *TypeInformation) OrderedProperties() []*PropertyInformation {
	out := make([]*PropertyInformation, 0, len(ti.Properties))
	for _, name := range ti.Properties {
		out = append(out, ti.PropertyInfo[name])
	}
	return out
}

// AllFunctions returns every function in name order, then declaration order.
func (ti *TypeInformation) AllFunctions() []*FunctionInformation {
	names := make([]string, 0, len(ti.Functions))
	for name := range ti.Functions {
		names = append(names, name)
	}
	slices.Sort(names)
	var out []*FunctionInformation
	for _, name := range names {
		out = append(out, ti.Functions[name]...)
	}
	return out
}

// StateIndex returns the index of a type-state, used as its stored value.
func (ti *TypeInformation) StateIndex(state string) (int, bool) {
	i := slices.Index(ti.States, state)
	return i, i >= 0
}

// Environment is the whole-program table of declared types. It is built once
// per compilation, appended to by rewrite passes and read concurrently by
// per-target lowering.
type Environment struct {
	types map[string]*TypeInformation
	order []string
}

// New returns an empty Environment.
func New() *Environment {
	return &Environment{types: make(map[string]*TypeInformation)}
}

// Type looks up a named type.
func (e *Environment) Type(name string) (*TypeInformation, bool) {
	ti, ok := e.types[name]
	return ti, ok
}

// Types returns all types in declaration order.
func (e *Environment) Types() []*TypeInformation {
	out := make([]*TypeInformation, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.types[name])
	}
	return out
}

func (e *Environment) kindOf(name string) (TypeKind, bool) {
	ti, ok := e.types[name]
	if !ok {
		return 0, false
	}
	return ti.Kind, true
}

func (e *Environment) IsContract(name string) bool {
	k, ok := e.kindOf(name)
	return ok && k == KindContract
}

func (e *Environment) IsStruct(name string) bool {
	k, ok := e.kindOf(name)
	return ok && k == KindStruct
}

func (e *Environment) IsTrait(name string) bool {
	k, ok := e.kindOf(name)
	return ok && k == KindTrait
}

func (e *Environment) IsEnum(name string) bool {
	k, ok := e.kindOf(name)
	return ok && k == KindEnum
}

// declare adds a type; it returns false when the name is taken.
func (e *Environment) declare(ti *TypeInformation) bool {
	if _, exists := e.types[ti.Name]; exists {
		return false
	}
	e.types[ti.Name] = ti
	e.order = append(e.order, ti.Name)
	return true
}

// AddFunction registers fi under its owner. Entries are only ever appended.
func (e *Environment) AddFunction(fi *FunctionInformation) {
	ti, ok := e.types[fi.Owner]
	if !ok {
		return
	}
	switch fi.Decl.Kind {
	case ast.FuncInit:
		ti.Initializers = append(ti.Initializers, fi)
	case ast.FuncFallback:
		ti.Fallbacks = append(ti.Fallbacks, fi)
	default:
		ti.Functions[fi.Decl.Name] = append(ti.Functions[fi.Decl.Name], fi)
	}
}

// ConformingFunctions returns the default functions provided by the traits
// typeName conforms to that typeName does not declare itself.
func (e *Environment) ConformingFunctions(typeName string) []*FunctionInformation {
	ti, ok := e.types[typeName]
	if !ok {
		return nil
	}
	var out []*FunctionInformation
	seen := make(map[string]bool)
	for _, traitName := range ti.Conformances {
		trait, ok := e.types[traitName]
		if !ok || trait.Kind != KindTrait {
			continue
		}
		for _, fi := range trait.AllFunctions() {
			if fi.SignatureOnly || seen[fi.Decl.Name] {
				continue
			}
			if e.declaresOwn(ti, fi.Decl) {
				continue
			}
			seen[fi.Decl.Name] = true
			out = append(out, fi)
		}
	}
	return out
}

// declaresOwn reports whether ti declares a function overriding def.
func (e *Environment) declaresOwn(ti *TypeInformation, def *ast.FunctionDecl) bool {
	for _, own := range ti.Functions[def.Name] {
		if own.Owner == ti.Name && len(own.Decl.Params) == len(def.Params) {
			return true
		}
	}
	return false
}

// IsBuiltinFunction reports names handled directly by lowering.
func IsBuiltinFunction(name string) bool {
	switch name {
	case "assert", "fatalError", "send":
		return true
	}
	return false
}
