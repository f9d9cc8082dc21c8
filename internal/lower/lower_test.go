package lower_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"flintc/internal/ast"
	"flintc/internal/diag"
	"flintc/internal/env"
	"flintc/internal/layout"
	"flintc/internal/lower"
	"flintc/internal/passes"
)

// textEmitter spells every primitive as a readable call so tests can
// assert on what the shared lowering asked for.
type textEmitter struct{}

func (textEmitter) Literal(lit lower.Literal) string {
	switch lit.Kind {
	case lower.LitBool:
		return fmt.Sprint(lit.Bool)
	case lower.LitString:
		return fmt.Sprintf("%q", lit.Text)
	}
	return lit.Int.String()
}
func (textEmitter) Local(name string) string                 { return name }
func (textEmitter) Global(name string) string                { return "global(" + name + ")" }
func (textEmitter) LocalRef(name string, param bool) string  { return "ref(" + name + ")" }
func (textEmitter) Receiver(fc *lower.FunctionContext) string { return "self@" + fc.ReceiverRegion.String() }
func (textEmitter) SelfRef(fc *lower.FunctionContext) string  { return "self" }
func (textEmitter) Word(n int) string                         { return fmt.Sprint(n) }
func (textEmitter) Field(base string, f lower.FieldRef, _ lower.Region) string {
	return fmt.Sprintf("field(%s,%s)", base, f.Name)
}
func (textEmitter) Element(base, index string, _ lower.Collection) string {
	return fmt.Sprintf("elem(%s,%s)", base, index)
}
func (textEmitter) KeyedElement(base, key string, _ lower.Collection) string {
	return fmt.Sprintf("key(%s,%s)", base, key)
}
func (textEmitter) Length(base string, _ lower.Collection) string { return "len(" + base + ")" }
func (textEmitter) BoundsCheck(index, length string) string {
	return fmt.Sprintf("check(%s,%s)", index, length)
}
func (textEmitter) Load(addr string, r lower.Region) string {
	return fmt.Sprintf("load(%s)", addr)
}
func (textEmitter) Store(addr, value string, _ lower.Region) string {
	return fmt.Sprintf("store(%s,%s)", addr, value)
}
func (textEmitter) Copy(dst, src string, _ ast.Type, words int, _, _ lower.Region) string {
	return fmt.Sprintf("copy(%s,%s,%d)", dst, src, words)
}
func (textEmitter) Allocate(words int) string { return fmt.Sprintf("alloc(%d)", words) }
func (textEmitter) Arith(op lower.ArithOp, checked bool, l, r string) string {
	if checked {
		return fmt.Sprintf("%s!(%s,%s)", op, l, r)
	}
	return fmt.Sprintf("%s(%s,%s)", op, l, r)
}
func (textEmitter) Compare(op lower.CompareOp, l, r string) string {
	return fmt.Sprintf("cmp%d(%s,%s)", op, l, r)
}
func (textEmitter) Logic(op lower.LogicOp, l, r string) string {
	return fmt.Sprintf("logic%d(%s,%s)", op, l, r)
}
func (textEmitter) Not(e string) string { return "not(" + e + ")" }
func (textEmitter) Invoke(_ *lower.FunctionContext, inv lower.Invocation[string]) string {
	args := make([]string, len(inv.Args))
	for i, a := range inv.Args {
		args[i] = a.Value
	}
	return inv.Name + "(" + strings.Join(args, ",") + ")"
}
func (textEmitter) Construct(_ *lower.FunctionContext, c lower.Construction[string]) ([]string, string) {
	return nil, "new(" + c.Type + ")"
}
func (textEmitter) ArrayLiteral(t ast.Type, elems []string, _ string) ([]string, string) {
	return nil, t.String() + "{" + strings.Join(elems, ",") + "}"
}
func (textEmitter) Declare(name string, _ ast.Type, init string) string {
	return "let " + name + " = " + init
}
func (textEmitter) Assign(name, value string) string { return name + " = " + value }
func (textEmitter) Eval(e string, _ bool) string     { return e }
func (textEmitter) If(cond string, then, els []string) string {
	return fmt.Sprintf("if %s {%s} else {%s}", cond, strings.Join(then, "; "), strings.Join(els, "; "))
}
func (textEmitter) Loop(init []string, cond string, post, body []string) string {
	return fmt.Sprintf("for {%s} %s {%s} {%s}", strings.Join(init, "; "), cond, strings.Join(post, "; "), strings.Join(body, "; "))
}
func (textEmitter) Return(value string, has bool) string {
	if !has {
		return "return"
	}
	return "return " + value
}
func (textEmitter) Assert(cond string) string  { return "assert(" + cond + ")" }
func (textEmitter) Fatal() string              { return "fatal" }
func (textEmitter) Send(address, value string) string {
	return fmt.Sprintf("send(%s,%s)", address, value)
}
func (textEmitter) Event(ev *ast.EventDecl, args []string, _ string) string {
	return "emit " + ev.Name + "(" + strings.Join(args, ",") + ")"
}
func (textEmitter) CallerBinding(name string) string { return "let " + name + " = caller()" }
func (textEmitter) Render(e string) string           { return e }
func (textEmitter) LocalName(name string) string     { return "_" + name }

func param(name string, t ast.Type) *ast.Param { return &ast.Param{Name: name, Type: t} }

func result(t ast.Type) *ast.Type { return &t }

// offsetEmitter also spells the layout offset of every field access.
type offsetEmitter struct{ textEmitter }

func (offsetEmitter) Field(base string, f lower.FieldRef, _ lower.Region) string {
	return fmt.Sprintf("field(%s,%s@%d)", base, f.Name, f.Offset)
}

// lowerStruct runs the pass pipeline over a module holding struct S with
// one property and fns, then lowers the function named fn.
func lowerStruct(t *testing.T, name string, fns ...*ast.FunctionDecl) (string, error) {
	t.Helper()
	return lowerWith(t, textEmitter{}, nil, name, fns...)
}

// lowerWith is lowerStruct with another emitter and declarations placed
// after S.
func lowerWith(t *testing.T, em lower.Emitter[string, string], extra []*ast.Decl, name string, fns ...*ast.FunctionDecl) (string, error) {
	t.Helper()
	mod := &ast.Module{Decls: append([]*ast.Decl{{Kind: ast.DeclStruct, Data: ast.StructData{
		Name:       "S",
		Properties: []*ast.Property{{Name: "total", Type: ast.IntType()}},
		Members:    fns,
	}}}, extra...)}
	bag := diag.NewBag(0)
	e := env.Collect(mod, diag.BagReporter{Bag: bag})
	cfg := passes.Config{}
	mod, e, bag = passes.Run(context.Background(), mod, e, passes.Default(cfg), cfg)
	if bag.HasErrors() {
		t.Fatalf("passes: %v", bag.Items())
	}
	for _, fi := range lower.StructFunctions(mod.Decls[0]) {
		if fi.Decl.Name != name {
			continue
		}
		var out []string
		err := func() (err error) {
			defer lower.Recover(&err)
			fc := lower.NewFunctionContext(e, fi, lower.Dynamic(lower.MemFlag(lower.ReceiverName)))
			out = lower.New[string, string](em, layout.New(layout.EVM(), e)).Function(fc)
			return nil
		}()
		return strings.Join(out, "\n"), err
	}
	t.Fatalf("no function %s", name)
	return "", nil
}

func TestParameterRebindIsNoOp(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name:   "f",
		Params: []*ast.Param{param("x", ast.IntType())},
		Result: result(ast.IntType()),
		Body: []*ast.Stmt{
			ast.ExprStmt(ast.Binary(ast.OpAssign, ast.VarDecl("x", ast.IntType(), false), ast.Ident("x"))),
			ast.Return(ast.Ident("x")),
		},
	}
	got, err := lowerStruct(t, "f", fn)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if got != "return _x" {
		t.Fatalf("lowered =\n%s", got)
	}
}

func TestPropertyReadGoesThroughReceiver(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name:   "g",
		Result: result(ast.IntType()),
		Body:   []*ast.Stmt{ast.Return(ast.Ident("total"))},
	}
	got, err := lowerStruct(t, "g", fn)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	want := "return load(field(self@dynamic(" + lower.MemFlag(lower.ReceiverName) + "),total))"
	if got != want {
		t.Fatalf("lowered = %s, want %s", got, want)
	}
}

func TestStructPropertyShadowsContractProperty(t *testing.T) {
	contract := &ast.Decl{Kind: ast.DeclContract, Data: ast.ContractData{
		Name: "C",
		Properties: []*ast.Property{
			{Name: "owner", Type: ast.AddressType()},
			{Name: "count", Type: ast.IntType()},
			{Name: "total", Type: ast.IntType()},
		},
	}}
	fn := &ast.FunctionDecl{
		Name:   "g",
		Result: result(ast.IntType()),
		Body:   []*ast.Stmt{ast.Return(ast.Ident("total"))},
	}
	got, err := lowerWith(t, offsetEmitter{}, []*ast.Decl{contract}, "g", fn)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	want := "return load(field(self@dynamic(" + lower.MemFlag(lower.ReceiverName) + "),total@0))"
	if got != want {
		t.Fatalf("lowered = %s, want %s", got, want)
	}
}

func TestArrayLiteralTakesDeclaredShape(t *testing.T) {
	tests := []struct {
		name string
		typ  ast.Type
		want string
	}{
		{"fixed", ast.FixedArrayOf(ast.IntType(), 3), "let _a = Int[3]{7,8,9}"},
		{"dynamic", ast.ArrayOf(ast.IntType()), "let _a = [Int]{7,8,9}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit := &ast.Expr{Kind: ast.ExprArrayLit, Data: ast.ArrayLitData{Elems: []*ast.Expr{
				ast.IntLit("7"), ast.IntLit("8"), ast.IntLit("9"),
			}}}
			fn := &ast.FunctionDecl{
				Name: "f",
				Body: []*ast.Stmt{ast.ExprStmt(ast.Binary(ast.OpAssign, ast.VarDecl("a", tt.typ, true), lit))},
			}
			got, err := lowerStruct(t, "f", fn)
			if err != nil {
				t.Fatalf("lower: %v", err)
			}
			if got != tt.want {
				t.Fatalf("lowered = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFixedArrayLiteralLengthMismatch(t *testing.T) {
	lit := &ast.Expr{Kind: ast.ExprArrayLit, Data: ast.ArrayLitData{Elems: []*ast.Expr{ast.IntLit("1")}}}
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: []*ast.Stmt{ast.ExprStmt(ast.Binary(ast.OpAssign, ast.VarDecl("a", ast.FixedArrayOf(ast.IntType(), 2), true), lit))},
	}
	_, err := lowerStruct(t, "f", fn)
	var ie *lower.InternalError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want internal error", err)
	}
}

func TestArithmeticCheckedness(t *testing.T) {
	tests := []struct {
		op   ast.Op
		want string
	}{
		{ast.OpAdd, "return add!(_a,_b)"},
		{ast.OpOverflowAdd, "return add(_a,_b)"},
		{ast.OpMul, "return mul!(_a,_b)"},
	}
	for _, tt := range tests {
		fn := &ast.FunctionDecl{
			Name:   "h",
			Params: []*ast.Param{param("a", ast.IntType()), param("b", ast.IntType())},
			Result: result(ast.IntType()),
			Body:   []*ast.Stmt{ast.Return(ast.Binary(tt.op, ast.Ident("a"), ast.Ident("b")))},
		}
		got, err := lowerStruct(t, "h", fn)
		if err != nil {
			t.Fatalf("lower: %v", err)
		}
		if got != tt.want {
			t.Fatalf("%s: lowered = %s, want %s", tt.op, got, tt.want)
		}
	}
}

func TestUnknownExpressionIsInternalError(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "k",
		Body: []*ast.Stmt{ast.ExprStmt(ast.Binary(ast.OpAssign, ast.Ident("nope"), ast.IntLit("1")))},
	}
	_, err := lowerStruct(t, "k", fn)
	var ie *lower.InternalError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want internal error", err)
	}
	if ie.Function != "S.k" {
		t.Fatalf("function = %q", ie.Function)
	}
}

func TestMangle(t *testing.T) {
	fn := &ast.FunctionDecl{Name: "put", Params: []*ast.Param{
		param("k", ast.AddressType()),
		param("v", ast.DictOf(ast.AddressType(), ast.IntType())),
		param("w", ast.FixedArrayOf(ast.IntType(), 4)),
		param("s", ast.InoutOf(ast.NamedType("Wallet"))),
	}}
	if got, want := lower.Mangle("Bank", fn), "Bank$put$Address$Dict_Address_Int$Int_4$Wallet"; got != want {
		t.Fatalf("Mangle = %s, want %s", got, want)
	}
	init := &ast.FunctionDecl{Kind: ast.FuncInit}
	if got := lower.Mangle("Bank", init); got != "Bank$init" {
		t.Fatalf("Mangle(init) = %s", got)
	}
}

func TestDecodeLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   ast.LiteralData
		want string
		ok   bool
	}{
		{"int", ast.LiteralData{Kind: ast.LiteralInt, Text: "1_000"}, "1000", true},
		{"hex", ast.LiteralData{Kind: ast.LiteralInt, Text: "0xff"}, "255", true},
		{"decimal", ast.LiteralData{Kind: ast.LiteralDecimal, Integer: "1", Fraction: "5"}, "1500000000000000000", true},
		{"address", ast.LiteralData{Kind: ast.LiteralAddress, Text: "0x0A"}, "10", true},
		{"bad int", ast.LiteralData{Kind: ast.LiteralInt, Text: "12z"}, "", false},
		{"too precise", ast.LiteralData{Kind: ast.LiteralDecimal, Integer: "0", Fraction: strings.Repeat("1", 19)}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit, ok := lower.DecodeLiteral(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && lit.Int.String() != tt.want {
				t.Fatalf("value = %s, want %s", lit.Int, tt.want)
			}
		})
	}
}
