package ast

import (
	"flintc/internal/source"
)

// DeclKind enumerates top-level declaration kinds.
type DeclKind uint8

const (
	DeclContract DeclKind = iota
	// DeclBehavior is a contract behavior block: functions guarded by
	// caller protections and type-states.
	DeclBehavior
	DeclStruct
	DeclTrait
	DeclEnum
)

func (k DeclKind) String() string {
	switch k {
	case DeclContract:
		return "Contract"
	case DeclBehavior:
		return "Behavior"
	case DeclStruct:
		return "Struct"
	case DeclTrait:
		return "Trait"
	case DeclEnum:
		return "Enum"
	default:
		return "Unknown"
	}
}

// Decl is a top-level declaration.
type Decl struct {
	Kind DeclKind
	Span source.Span
	Data DeclData
}

// DeclData is the interface for declaration-specific data.
type DeclData interface {
	declData()
	// TypeName is the name of the type the declaration belongs to.
	TypeName() string
}

// Property is a stored field of a contract or struct.
type Property struct {
	Name     string
	Type     Type
	Constant bool
	Default  *Expr
	Span     source.Span
}

// EventDecl declares an event a contract can emit.
type EventDecl struct {
	Name   string
	Params []*Param
	Span   source.Span
}

// ContractData holds data for DeclContract.
type ContractData struct {
	Name         string
	Conformances []string
	States       []string
	Properties   []*Property
	Events       []*EventDecl
}

func (ContractData) declData()          {}
func (d ContractData) TypeName() string { return d.Name }

// BehaviorData holds data for DeclBehavior.
type BehaviorData struct {
	Contract          string
	States            []string
	CallerBinding     string
	CallerProtections []string
	Members           []*FunctionDecl
}

func (BehaviorData) declData()          {}
func (d BehaviorData) TypeName() string { return d.Contract }

// StructData holds data for DeclStruct.
type StructData struct {
	Name         string
	Conformances []string
	Properties   []*Property
	Members      []*FunctionDecl
}

func (StructData) declData()          {}
func (d StructData) TypeName() string { return d.Name }

// TraitData holds data for DeclTrait. Members without a body are signatures
// a conforming type must implement; members with a body are defaults.
type TraitData struct {
	Name    string
	Members []*FunctionDecl
}

func (TraitData) declData()          {}
func (d TraitData) TypeName() string { return d.Name }

// EnumCase is one case of an enum. Value is the hidden constant.
type EnumCase struct {
	Name  string
	Value *Expr
	Span  source.Span
}

// EnumData holds data for DeclEnum.
type EnumData struct {
	Name   string
	Hidden Type
	Cases  []*EnumCase
}

func (EnumData) declData()          {}
func (d EnumData) TypeName() string { return d.Name }

// FuncKind distinguishes functions from special declarations.
type FuncKind uint8

const (
	FuncNormal FuncKind = iota
	FuncInit
	FuncFallback
)

func (k FuncKind) String() string {
	switch k {
	case FuncNormal:
		return "Function"
	case FuncInit:
		return "Init"
	case FuncFallback:
		return "Fallback"
	default:
		return "Unknown"
	}
}

// Param is a declared function or event parameter.
type Param struct {
	Name    string
	Type    Type
	Default *Expr
	Span    source.Span
}

// FunctionDecl is a function, initializer or fallback member.
type FunctionDecl struct {
	Kind          FuncKind
	Name          string
	Params        []*Param
	Result        *Type
	Body          []*Stmt
	Public        bool
	Mutating      bool
	SignatureOnly bool
	Pre           []*Expr
	Post          []*Expr
	// Scope lists parameters and locals; it is seeded from the parameters
	// and extended by the enclosing-type pass.
	Scope *Scope
	Span  source.Span
}

// DisplayName is the name used in messages and mangling.
func (f *FunctionDecl) DisplayName() string {
	switch f.Kind {
	case FuncInit:
		return "init"
	case FuncFallback:
		return "fallback"
	}
	return f.Name
}

// ParamTypes returns the declared parameter types in order.
func (f *FunctionDecl) ParamTypes() []Type {
	out := make([]Type, len(f.Params))
	for i, p := range f.Params {
		out[i] = p.Type
	}
	return out
}

// Module is a whole compilation unit.
type Module struct {
	Decls []*Decl
}

// Contracts returns the contract declarations in order.
func (m *Module) Contracts() []*Decl {
	return m.byKind(DeclContract)
}

// Behaviors returns the behavior blocks of contract.
func (m *Module) Behaviors(contract string) []*Decl {
	var out []*Decl
	for _, d := range m.byKind(DeclBehavior) {
		if d.Data.TypeName() == contract {
			out = append(out, d)
		}
	}
	return out
}

// Structs returns the struct declarations in order.
func (m *Module) Structs() []*Decl {
	return m.byKind(DeclStruct)
}

func (m *Module) byKind(kind DeclKind) []*Decl {
	var out []*Decl
	for _, d := range m.Decls {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
