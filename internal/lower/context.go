package lower

import (
	"fmt"

	"flintc/internal/ast"
	"flintc/internal/env"
)

// FunctionContext is created per function by program assembly and dropped
// once the body is lowered.
type FunctionContext struct {
	Env           *env.Environment
	Scope         *ast.Scope
	EnclosingType string
	InStruct      bool
	InConstructor bool
	// ReceiverRegion is where the receiver lives inside struct functions.
	ReceiverRegion Region
	Function       *env.FunctionInformation

	tmpID int
}

// NewFunctionContext prepares the context for fi. The scope is cloned so
// locals declared while lowering do not leak into the AST.
func NewFunctionContext(e *env.Environment, fi *env.FunctionInformation, receiver Region) *FunctionContext {
	scope := fi.Decl.Scope.Clone()
	if scope == nil {
		scope = ast.NewScope(fi.Decl.Params)
	}
	return &FunctionContext{
		Env:            e,
		Scope:          scope,
		EnclosingType:  fi.Owner,
		InStruct:       e.IsStruct(fi.Owner),
		InConstructor:  fi.Decl.Kind == ast.FuncInit,
		ReceiverRegion: receiver,
		Function:       fi,
	}
}

// Name is the function name used in error messages.
func (fc *FunctionContext) Name() string {
	if fc == nil || fc.Function == nil {
		return ""
	}
	return fc.EnclosingType + "." + fc.Function.Decl.DisplayName()
}

// Fresh returns a temporary name unique within the function.
func (fc *FunctionContext) Fresh(hint string) string {
	fc.tmpID++
	return fmt.Sprintf("flint$%s%d", hint, fc.tmpID)
}

func (fc *FunctionContext) typeOf(e *ast.Expr) ast.Type {
	return fc.Env.TypeOf(e, fc.EnclosingType, fc.Scope).Deref()
}

func (fc *FunctionContext) callContext() env.CallContext {
	cc := env.CallContext{Enclosing: fc.EnclosingType, Scope: fc.Scope}
	if fc.Function != nil {
		cc.CallerProtections = fc.Function.CallerProtections
		cc.TypeStates = fc.Function.TypeStates
	}
	return cc
}
