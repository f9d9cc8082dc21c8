package env

import (
	"flintc/internal/ast"
)

func anyType() ast.Type { return ast.Type{Kind: ast.TypeAny} }

// PropertyType returns the declared type of typeName.prop with Self resolved.
func (e *Environment) PropertyType(typeName, prop string) (ast.Type, bool) {
	ti, ok := e.types[typeName]
	if !ok {
		return anyType(), false
	}
	p, ok := ti.PropertyInfo[prop]
	if !ok {
		return anyType(), false
	}
	return p.Type.ReplaceSelf(typeName), true
}

// TypeOf infers the type of expr evaluated inside enclosing with the given
// local scope. Unknown types come back as Any; lowering only needs the type
// where it changes the emitted code.
func (e *Environment) TypeOf(expr *ast.Expr, enclosing string, scope *ast.Scope) ast.Type {
	if expr == nil {
		return ast.VoidType()
	}
	if expr.Type != nil && expr.Type.Kind != ast.TypeAny {
		return expr.Type.ReplaceSelf(enclosing)
	}
	switch data := expr.Data.(type) {
	case ast.IdentData:
		if l, ok := scope.Lookup(data.Name); ok && data.EnclosingType == "" {
			return l.Type.ReplaceSelf(enclosing)
		}
		owner := data.EnclosingType
		if owner == "" {
			owner = enclosing
		}
		if t, ok := e.PropertyType(owner, data.Name); ok {
			return t
		}
		if _, ok := e.types[data.Name]; ok {
			return ast.NamedType(data.Name)
		}
		return anyType()
	case ast.LiteralData:
		switch data.Kind {
		case ast.LiteralBool:
			return ast.BoolType()
		case ast.LiteralString:
			return ast.StringType()
		case ast.LiteralAddress:
			return ast.AddressType()
		}
		return ast.IntType()
	case ast.SelfData:
		if enclosing == "" {
			return anyType()
		}
		return ast.NamedType(enclosing)
	case ast.BinaryData:
		return e.typeOfBinary(data, enclosing, scope)
	case ast.BracketedData:
		return e.TypeOf(data.Inner, enclosing, scope)
	case ast.CallData:
		return e.typeOfCall(data, enclosing)
	case ast.SubscriptData:
		base := e.TypeOf(data.Base, enclosing, scope).Deref()
		if base.IsCollection() {
			return *base.Elem
		}
		return anyType()
	case ast.VarDeclData:
		return data.Type.ReplaceSelf(enclosing)
	case ast.RangeData:
		return ast.RangeOf(e.TypeOf(data.Start, enclosing, scope))
	case ast.ArrayLitData:
		if len(data.Elems) == 0 {
			return ast.ArrayOf(anyType())
		}
		return ast.ArrayOf(e.TypeOf(data.Elems[0], enclosing, scope))
	case ast.DictLitData:
		if len(data.Entries) == 0 {
			return ast.DictOf(anyType(), anyType())
		}
		first := data.Entries[0]
		return ast.DictOf(e.TypeOf(first.Key, enclosing, scope), e.TypeOf(first.Value, enclosing, scope))
	case ast.InoutData:
		return ast.InoutOf(e.TypeOf(data.Inner, enclosing, scope))
	case ast.NotData:
		return ast.BoolType()
	}
	return anyType()
}

func (e *Environment) typeOfBinary(data ast.BinaryData, enclosing string, scope *ast.Scope) ast.Type {
	switch data.Op {
	case ast.OpDot:
		lhs := e.TypeOf(data.Lhs, enclosing, scope).Deref()
		if lhs.Kind == ast.TypeNamed && e.IsEnum(lhs.Name) {
			if name := data.Rhs.IdentName(); name != "" {
				if _, isCase := e.types[lhs.Name].CaseValues[name]; isCase {
					return lhs
				}
			}
		}
		if lhs.IsCollection() && data.Rhs.IdentName() == "size" {
			return ast.IntType()
		}
		if lhs.Kind != ast.TypeNamed {
			return anyType()
		}
		return e.typeOfMember(data.Rhs, lhs.Name, scope)
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte, ast.OpAnd, ast.OpOr:
		return ast.BoolType()
	}
	if data.Op.IsAssignment() {
		return ast.VoidType()
	}
	return ast.IntType()
}

// typeOfMember resolves the right-hand side of a dot against owner.
func (e *Environment) typeOfMember(rhs *ast.Expr, owner string, scope *ast.Scope) ast.Type {
	switch data := rhs.Data.(type) {
	case ast.IdentData:
		t, _ := e.PropertyType(owner, data.Name)
		return t
	case ast.CallData:
		return e.typeOfCall(data, owner)
	case ast.SubscriptData:
		base := e.typeOfMember(data.Base, owner, scope).Deref()
		if base.IsCollection() {
			return *base.Elem
		}
	case ast.BinaryData:
		if data.Op == ast.OpDot {
			lhs := e.typeOfMember(data.Lhs, owner, scope).Deref()
			if lhs.Kind == ast.TypeNamed {
				return e.typeOfMember(data.Rhs, lhs.Name, scope)
			}
		}
	}
	return anyType()
}

func (e *Environment) typeOfCall(data ast.CallData, enclosing string) ast.Type {
	if ti, ok := e.types[data.Name]; ok && ti.Kind == KindStruct {
		return ast.NamedType(data.Name)
	}
	if ti, ok := e.types[enclosing]; ok {
		for _, fi := range ti.Functions[data.Name] {
			if len(data.Args) > len(fi.Decl.Params) {
				continue
			}
			if fi.Decl.Result == nil {
				return ast.VoidType()
			}
			return fi.Decl.Result.ReplaceSelf(enclosing)
		}
		for _, fi := range e.ConformingFunctions(enclosing) {
			if fi.Decl.Name == data.Name && fi.Decl.Result != nil {
				return fi.Decl.Result.ReplaceSelf(enclosing)
			}
		}
	}
	return anyType()
}
