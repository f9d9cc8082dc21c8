package lower

import (
	"flintc/internal/ast"
	"flintc/internal/layout"
	"flintc/internal/source"
)

// Lowerer turns resolved function bodies into backend statements. It holds
// the policy shared by every backend; Emit supplies the spelling.
type Lowerer[E, S any] struct {
	Emit   Emitter[E, S]
	Layout *layout.Engine

	fc *FunctionContext
	// pre collects statements that must run before the statement being
	// lowered, such as scratch allocations for struct values.
	pre []S
}

// New returns a Lowerer over emit.
func New[E, S any](emit Emitter[E, S], engine *layout.Engine) *Lowerer[E, S] {
	return &Lowerer[E, S]{Emit: emit, Layout: engine}
}

// Function lowers the body of fc.Function, including the caller binding and
// property defaults of initializers.
func (l *Lowerer[E, S]) Function(fc *FunctionContext) []S {
	l.fc = fc
	l.pre = nil
	decl := fc.Function.Decl

	var out []S
	if name := fc.Function.CallerBinding; name != "" {
		out = append(out, l.Emit.CallerBinding(l.Emit.LocalName(name)))
	}
	if fc.InConstructor {
		out = append(out, l.propertyDefaults()...)
	}
	out = append(out, l.Block(decl.Body)...)
	return out
}

// Context returns the function currently being lowered.
func (l *Lowerer[E, S]) Context() *FunctionContext { return l.fc }

// Block lowers a statement list.
func (l *Lowerer[E, S]) Block(stmts []*ast.Stmt) []S {
	out := make([]S, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, l.Stmt(s)...)
	}
	return out
}

// Stmt lowers one statement, preceded by whatever it had to hoist.
func (l *Lowerer[E, S]) Stmt(s *ast.Stmt) []S {
	saved := l.pre
	l.pre = nil
	main := l.stmt(s)
	out := append(l.pre, main...)
	l.pre = saved
	return out
}

// propertyDefaults stores declared default values at the start of an
// initializer. Empty collection literals need no code: fresh storage is
// already empty.
func (l *Lowerer[E, S]) propertyDefaults() []S {
	ti, ok := l.fc.Env.Type(l.fc.EnclosingType)
	if !ok {
		return nil
	}
	var out []S
	for _, p := range ti.OrderedProperties() {
		if !p.HasDefault || p.Default == nil || isEmptyCollection(p.Default) {
			continue
		}
		saved := l.pre
		l.pre = nil
		target := l.memberPlace(l.receiverPlace(), ast.Ident(p.Name))
		store := l.write(target, l.operand(p.Default))
		out = append(out, l.pre...)
		out = append(out, store)
		l.pre = saved
	}
	return out
}

func isEmptyCollection(e *ast.Expr) bool {
	switch d := e.Data.(type) {
	case ast.ArrayLitData:
		return len(d.Elems) == 0
	case ast.DictLitData:
		return len(d.Entries) == 0
	}
	return false
}

func (l *Lowerer[E, S]) fatalf(span source.Span, format string, args ...any) {
	Fatalf(l.fc.Name(), span, format, args...)
}

func (l *Lowerer[E, S]) size(t ast.Type) int {
	n, err := l.Layout.SizeOf(t)
	if err != nil {
		Wrap(l.fc.Name(), l.fc.Function.Decl.Span, "size of "+t.String(), err)
	}
	return n
}

func (l *Lowerer[E, S]) isAggregate(t ast.Type) bool {
	return IsAggregate(l.fc.Env, t)
}
