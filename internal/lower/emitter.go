package lower

import (
	"flintc/internal/ast"
	"flintc/internal/env"
)

// Argument is one lowered call argument. Aggregates travel as base pointers
// together with the region they live in.
type Argument[E any] struct {
	Value     E
	Aggregate bool
	Region    Region
}

// Invocation is a resolved call to a user function.
type Invocation[E any] struct {
	Name      string
	Owner     string
	OwnerKind env.TypeKind
	// Receiver is set for struct methods.
	Receiver       E
	HasReceiver    bool
	ReceiverRegion Region
	Args           []Argument[E]
	HasResult      bool
}

// Construction is a struct value built in scratch space. Init is empty for
// the implicit zero-argument initializer.
type Construction[E any] struct {
	Type  string
	Init  string
	Words int
	Args  []Argument[E]
	Tmp   string
}

// Emitter is the set of primitives a backend provides. The shared Lowerer
// decides what is a local, which base pointer applies and when checks fire;
// the emitter only decides how each primitive is spelled.
type Emitter[E, S any] interface {
	Literal(lit Literal) E
	Local(name string) E
	Global(name string) E
	// LocalRef is the base pointer of an aggregate held in a local. Aggregate
	// parameters already arrive as base pointers.
	LocalRef(name string, param bool) E
	// Receiver is the base for implicit property access.
	Receiver(fc *FunctionContext) E
	// SelfRef is the value of an explicit `self`.
	SelfRef(fc *FunctionContext) E
	Word(n int) E

	Field(base E, f FieldRef, r Region) E
	Element(base, index E, c Collection) E
	KeyedElement(base, key E, c Collection) E
	Length(base E, c Collection) E
	// BoundsCheck yields index, aborting first when it is not below length.
	BoundsCheck(index, length E) E

	Load(addr E, r Region) E
	Store(addr, value E, r Region) S
	// Copy moves an aggregate of type t and size words from src to dst.
	Copy(dst, src E, t ast.Type, words int, dr, sr Region) S
	Allocate(words int) E

	Arith(op ArithOp, checked bool, l, r E) E
	Compare(op CompareOp, l, r E) E
	Logic(op LogicOp, l, r E) E
	Not(e E) E
	Invoke(fc *FunctionContext, inv Invocation[E]) E
	Construct(fc *FunctionContext, c Construction[E]) ([]S, E)
	// ArrayLiteral builds elems as a dynamic array, or as a fixed array when
	// t is one.
	ArrayLiteral(t ast.Type, elems []E, tmp string) ([]S, E)

	Declare(name string, t ast.Type, init E) S
	Assign(name string, value E) S
	Eval(e E, hasValue bool) S
	If(cond E, then, els []S) S
	Loop(init []S, cond E, post, body []S) S
	Return(value E, has bool) S
	Assert(cond E) S
	Fatal() S
	Send(address, value E) S
	Event(ev *ast.EventDecl, args []E, tmp string) S
	CallerBinding(name string) S

	Render(e E) string
	LocalName(name string) string
}
