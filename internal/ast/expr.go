package ast

import (
	"flintc/internal/source"
)

// ExprKind enumerates expression kinds.
type ExprKind uint8

const (
	// ExprIdent is a reference to a local, parameter, property or constant.
	ExprIdent ExprKind = iota
	// ExprLiteral is a boolean, integer, decimal, string or address literal.
	ExprLiteral
	// ExprSelf is the implicit receiver `self`.
	ExprSelf
	// ExprBinary covers arithmetic, comparison, assignment and `.` access.
	ExprBinary
	// ExprBracketed is an explicitly parenthesised expression.
	ExprBracketed
	// ExprCall is a function, initializer or event call.
	ExprCall
	// ExprSubscript is base[index].
	ExprSubscript
	// ExprVarDecl declares a local (`let x: T` / `var x: T`).
	ExprVarDecl
	// ExprRange is a..b or a...b.
	ExprRange
	// ExprArrayLit is [a, b, c].
	ExprArrayLit
	// ExprDictLit is [k: v, ...].
	ExprDictLit
	// ExprInout passes a value by reference (&x).
	ExprInout
	// ExprNot is logical negation.
	ExprNot
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprIdent:
		return "Ident"
	case ExprLiteral:
		return "Literal"
	case ExprSelf:
		return "Self"
	case ExprBinary:
		return "Binary"
	case ExprBracketed:
		return "Bracketed"
	case ExprCall:
		return "Call"
	case ExprSubscript:
		return "Subscript"
	case ExprVarDecl:
		return "VarDecl"
	case ExprRange:
		return "Range"
	case ExprArrayLit:
		return "ArrayLit"
	case ExprDictLit:
		return "DictLit"
	case ExprInout:
		return "Inout"
	case ExprNot:
		return "Not"
	default:
		return "Unknown"
	}
}

// Expr is a typed expression node. Type is filled by the front end when it
// is known; env.TypeOf infers it otherwise.
type Expr struct {
	Kind ExprKind
	Type *Type
	Span source.Span
	Data ExprData
}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// IdentData holds data for ExprIdent. EnclosingType is empty for locals and
// constants; the enclosing-type pass fills it for property references.
type IdentData struct {
	Name          string
	EnclosingType string
}

func (IdentData) exprData() {}

// LiteralKind enumerates literal value kinds.
type LiteralKind uint8

const (
	LiteralBool LiteralKind = iota
	LiteralInt
	LiteralDecimal
	LiteralString
	LiteralAddress
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralBool:
		return "bool"
	case LiteralInt:
		return "int"
	case LiteralDecimal:
		return "decimal"
	case LiteralString:
		return "string"
	case LiteralAddress:
		return "address"
	}
	return "unknown"
}

// LiteralData holds data for ExprLiteral. Numbers keep their source text so
// values wider than 64 bits survive untouched.
type LiteralData struct {
	Kind LiteralKind
	Text string // int digits, string contents or 0x-address
	Bool bool
	// Decimal literals are a fixed-point pair.
	Integer  string
	Fraction string
}

func (LiteralData) exprData() {}

// SelfData holds data for ExprSelf.
type SelfData struct{}

func (SelfData) exprData() {}

// BinaryData holds data for ExprBinary.
type BinaryData struct {
	Op  Op
	Lhs *Expr
	Rhs *Expr
}

func (BinaryData) exprData() {}

// BracketedData holds data for ExprBracketed.
type BracketedData struct {
	Inner *Expr
}

func (BracketedData) exprData() {}

// Arg is one call argument. Label is empty for positional arguments.
type Arg struct {
	Label string
	Value *Expr
}

// CallData holds data for ExprCall.
type CallData struct {
	Name string
	Args []Arg
}

func (CallData) exprData() {}

// SubscriptData holds data for ExprSubscript.
type SubscriptData struct {
	Base  *Expr
	Index *Expr
}

func (SubscriptData) exprData() {}

// VarDeclData holds data for ExprVarDecl.
type VarDeclData struct {
	Name     string
	Type     Type
	Constant bool
}

func (VarDeclData) exprData() {}

// RangeData holds data for ExprRange.
type RangeData struct {
	Start    *Expr
	End      *Expr
	HalfOpen bool
}

func (RangeData) exprData() {}

// ArrayLitData holds data for ExprArrayLit.
type ArrayLitData struct {
	Elems []*Expr
}

func (ArrayLitData) exprData() {}

// DictEntry is one key/value pair of a dictionary literal.
type DictEntry struct {
	Key   *Expr
	Value *Expr
}

// DictLitData holds data for ExprDictLit.
type DictLitData struct {
	Entries []DictEntry
}

func (DictLitData) exprData() {}

// InoutData holds data for ExprInout.
type InoutData struct {
	Inner *Expr
}

func (InoutData) exprData() {}

// NotData holds data for ExprNot.
type NotData struct {
	Operand *Expr
}

func (NotData) exprData() {}

// Convenience constructors used by passes and tests.

func Ident(name string) *Expr {
	return &Expr{Kind: ExprIdent, Span: source.Synthetic(), Data: IdentData{Name: name}}
}

func Self() *Expr {
	return &Expr{Kind: ExprSelf, Span: source.Synthetic(), Data: SelfData{}}
}

func IntLit(text string) *Expr {
	t := IntType()
	return &Expr{Kind: ExprLiteral, Type: &t, Span: source.Synthetic(), Data: LiteralData{Kind: LiteralInt, Text: text}}
}

func BoolLit(v bool) *Expr {
	t := BoolType()
	return &Expr{Kind: ExprLiteral, Type: &t, Span: source.Synthetic(), Data: LiteralData{Kind: LiteralBool, Bool: v}}
}

func Binary(op Op, lhs, rhs *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Span: lhs.Span.Cover(rhs.Span), Data: BinaryData{Op: op, Lhs: lhs, Rhs: rhs}}
}

func Dot(lhs, rhs *Expr) *Expr { return Binary(OpDot, lhs, rhs) }

func Bracket(inner *Expr) *Expr {
	return &Expr{Kind: ExprBracketed, Type: inner.Type, Span: inner.Span, Data: BracketedData{Inner: inner}}
}

func Call(name string, args ...Arg) *Expr {
	return &Expr{Kind: ExprCall, Span: source.Synthetic(), Data: CallData{Name: name, Args: args}}
}

func Subscript(base, index *Expr) *Expr {
	return &Expr{Kind: ExprSubscript, Span: base.Span.Cover(index.Span), Data: SubscriptData{Base: base, Index: index}}
}

func VarDecl(name string, t Type, constant bool) *Expr {
	return &Expr{Kind: ExprVarDecl, Type: &t, Span: source.Synthetic(), Data: VarDeclData{Name: name, Type: t, Constant: constant}}
}

// IsDot reports whether e is an unbracketed `.` binary expression.
func (e *Expr) IsDot() bool {
	if e == nil || e.Kind != ExprBinary {
		return false
	}
	return e.Data.(BinaryData).Op == OpDot
}

// IdentName returns the identifier name of e, or "" when e is not an identifier.
func (e *Expr) IdentName() string {
	if e == nil || e.Kind != ExprIdent {
		return ""
	}
	return e.Data.(IdentData).Name
}
