package lower

import (
	"strconv"
	"strings"

	"flintc/internal/ast"
)

// ReceiverName is the implicit receiver parameter of struct functions.
const ReceiverName = "flintSelf"

// MemFlagSuffix marks the companion flag of an aggregate parameter.
const MemFlagSuffix = "$isMem"

// StateField is the reserved property holding a contract's type-state.
const StateField = "flint$state"

// Mangle names a user function as Type$name$ParamTypes.
func Mangle(owner string, fn *ast.FunctionDecl) string {
	var sb strings.Builder
	sb.WriteString(owner)
	sb.WriteByte('$')
	sb.WriteString(fn.DisplayName())
	for _, p := range fn.Params {
		sb.WriteByte('$')
		sb.WriteString(MangleType(p.Type))
	}
	return sb.String()
}

// MangleType spells a type using identifier characters only.
func MangleType(t ast.Type) string {
	switch t.Kind {
	case ast.TypeBasic:
		return t.Basic.String()
	case ast.TypeNamed:
		return t.Name
	case ast.TypeArray:
		return "Array_" + MangleType(*t.Elem)
	case ast.TypeFixedArray:
		return MangleType(*t.Elem) + "_" + strconv.Itoa(t.Size)
	case ast.TypeDict:
		return "Dict_" + MangleType(*t.Key) + "_" + MangleType(*t.Elem)
	case ast.TypeRange:
		return "Range_" + MangleType(*t.Elem)
	case ast.TypeInout:
		return MangleType(*t.Elem)
	case ast.TypeSelf:
		return "Self"
	}
	return "Any"
}

// MemFlag names the memory flag accompanying the local name.
func MemFlag(localName string) string {
	return localName + MemFlagSuffix
}
