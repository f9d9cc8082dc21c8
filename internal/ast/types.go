package ast

import (
	"fmt"
)

// TypeKind enumerates the shapes of Flint types.
type TypeKind uint8

const (
	// TypeBasic is one of the built-in scalar types.
	TypeBasic TypeKind = iota
	// TypeNamed refers to a contract, struct, trait or enum by name.
	// The environment decides which.
	TypeNamed
	// TypeArray is a dynamically-sized array [T].
	TypeArray
	// TypeFixedArray is T[n].
	TypeFixedArray
	// TypeDict is [K: V].
	TypeDict
	// TypeRange is the type of a range expression over T.
	TypeRange
	// TypeInout is a by-reference parameter type.
	TypeInout
	// TypeSelf is the Self placeholder inside traits.
	TypeSelf
	TypeAny
)

// Basic enumerates the built-in scalar types.
type Basic uint8

const (
	BasicInt Basic = iota
	BasicAddress
	BasicBool
	BasicString
	BasicVoid
	BasicEvent
)

func (b Basic) String() string {
	switch b {
	case BasicInt:
		return "Int"
	case BasicAddress:
		return "Address"
	case BasicBool:
		return "Bool"
	case BasicString:
		return "String"
	case BasicVoid:
		return "Void"
	case BasicEvent:
		return "Event"
	default:
		return "Unknown"
	}
}

// ParseBasic maps a type name to a Basic, if it is one.
func ParseBasic(name string) (Basic, bool) {
	switch name {
	case "Int":
		return BasicInt, true
	case "Address":
		return BasicAddress, true
	case "Bool":
		return BasicBool, true
	case "String":
		return BasicString, true
	case "Void":
		return BasicVoid, true
	case "Event":
		return BasicEvent, true
	}
	return 0, false
}

// Type is a raw Flint type without source location.
type Type struct {
	Kind  TypeKind
	Basic Basic  // TypeBasic
	Name  string // TypeNamed
	Elem  *Type  // TypeArray, TypeFixedArray, TypeRange, TypeInout; value type of TypeDict
	Key   *Type  // TypeDict
	Size  int    // TypeFixedArray
}

func BasicType(b Basic) Type { return Type{Kind: TypeBasic, Basic: b} }

func IntType() Type     { return BasicType(BasicInt) }
func AddressType() Type { return BasicType(BasicAddress) }
func BoolType() Type    { return BasicType(BasicBool) }
func StringType() Type  { return BasicType(BasicString) }
func VoidType() Type    { return BasicType(BasicVoid) }

func NamedType(name string) Type { return Type{Kind: TypeNamed, Name: name} }

func ArrayOf(elem Type) Type { return Type{Kind: TypeArray, Elem: &elem} }

func FixedArrayOf(elem Type, n int) Type { return Type{Kind: TypeFixedArray, Elem: &elem, Size: n} }

func DictOf(key, value Type) Type { return Type{Kind: TypeDict, Key: &key, Elem: &value} }

func RangeOf(elem Type) Type { return Type{Kind: TypeRange, Elem: &elem} }

func InoutOf(elem Type) Type { return Type{Kind: TypeInout, Elem: &elem} }

func SelfType() Type { return Type{Kind: TypeSelf} }

func (t Type) IsBasic(b Basic) bool { return t.Kind == TypeBasic && t.Basic == b }

// IsCollection reports whether indexing applies to t.
func (t Type) IsCollection() bool {
	return t.Kind == TypeArray || t.Kind == TypeFixedArray || t.Kind == TypeDict
}

// Deref strips an inout wrapper.
func (t Type) Deref() Type {
	if t.Kind == TypeInout && t.Elem != nil {
		return *t.Elem
	}
	return t
}

// Equal compares types structurally.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case TypeBasic:
		return t.Basic == o.Basic
	case TypeNamed:
		return t.Name == o.Name
	case TypeFixedArray:
		return t.Size == o.Size && t.Elem.Equal(*o.Elem)
	case TypeArray, TypeRange, TypeInout:
		return t.Elem.Equal(*o.Elem)
	case TypeDict:
		return t.Key.Equal(*o.Key) && t.Elem.Equal(*o.Elem)
	}
	return true
}

// ReplaceSelf returns t with every Self replaced by the named type.
func (t Type) ReplaceSelf(name string) Type {
	switch t.Kind {
	case TypeSelf:
		return NamedType(name)
	case TypeArray, TypeFixedArray, TypeRange, TypeInout:
		elem := t.Elem.ReplaceSelf(name)
		t.Elem = &elem
	case TypeDict:
		key, value := t.Key.ReplaceSelf(name), t.Elem.ReplaceSelf(name)
		t.Key, t.Elem = &key, &value
	}
	return t
}

// String renders t in Flint syntax.
func (t Type) String() string {
	switch t.Kind {
	case TypeBasic:
		return t.Basic.String()
	case TypeNamed:
		return t.Name
	case TypeArray:
		return "[" + t.Elem.String() + "]"
	case TypeFixedArray:
		return fmt.Sprintf("%s[%d]", t.Elem.String(), t.Size)
	case TypeDict:
		return "[" + t.Key.String() + ": " + t.Elem.String() + "]"
	case TypeRange:
		return "(" + t.Elem.String() + ")"
	case TypeInout:
		return "inout " + t.Elem.String()
	case TypeSelf:
		return "Self"
	case TypeAny:
		return "Any"
	}
	return "?"
}
