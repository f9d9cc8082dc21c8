package ast

import (
	"flintc/internal/source"
)

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	StmtExpr StmtKind = iota
	StmtReturn
	StmtIf
	StmtFor
	// StmtBecome transitions the contract to another type-state.
	StmtBecome
	// StmtEmit emits an event.
	StmtEmit
)

func (k StmtKind) String() string {
	switch k {
	case StmtExpr:
		return "Expr"
	case StmtReturn:
		return "Return"
	case StmtIf:
		return "If"
	case StmtFor:
		return "For"
	case StmtBecome:
		return "Become"
	case StmtEmit:
		return "Emit"
	default:
		return "Unknown"
	}
}

// Stmt is a statement node.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is the interface for statement-specific data.
type StmtData interface {
	stmtData()
}

// ExprStmtData holds data for StmtExpr.
type ExprStmtData struct {
	Expr *Expr
}

func (ExprStmtData) stmtData() {}

// ReturnData holds data for StmtReturn. Value is nil for a bare return.
type ReturnData struct {
	Value *Expr
}

func (ReturnData) stmtData() {}

// IfData holds data for StmtIf.
type IfData struct {
	Cond *Expr
	Then []*Stmt
	Else []*Stmt
}

func (IfData) stmtData() {}

// ForData holds data for StmtFor. Iterable is a range or a collection.
type ForData struct {
	Var      string
	VarType  Type
	Iterable *Expr
	Body     []*Stmt
}

func (ForData) stmtData() {}

// BecomeData holds data for StmtBecome.
type BecomeData struct {
	State string
}

func (BecomeData) stmtData() {}

// EmitData holds data for StmtEmit. Call is an ExprCall naming the event.
type EmitData struct {
	Call *Expr
}

func (EmitData) stmtData() {}

func ExprStmt(e *Expr) *Stmt {
	return &Stmt{Kind: StmtExpr, Span: e.Span, Data: ExprStmtData{Expr: e}}
}

func Return(e *Expr) *Stmt {
	span := source.Synthetic()
	if e != nil {
		span = e.Span
	}
	return &Stmt{Kind: StmtReturn, Span: span, Data: ReturnData{Value: e}}
}

// IsAssertCall reports whether s is a bare `assert(...)` call statement.
func (s *Stmt) IsAssertCall() bool {
	if s == nil || s.Kind != StmtExpr {
		return false
	}
	e := s.Data.(ExprStmtData).Expr
	return e != nil && e.Kind == ExprCall && e.Data.(CallData).Name == "assert"
}

// EndsWithReturn reports whether the last statement of body is a return.
func EndsWithReturn(body []*Stmt) bool {
	return len(body) > 0 && body[len(body)-1].Kind == StmtReturn
}
