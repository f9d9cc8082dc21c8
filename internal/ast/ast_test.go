package ast_test

import (
	"testing"

	"flintc/internal/ast"
)

func TestExprStringShowsGrouping(t *testing.T) {
	a, b, c := ast.Ident("a"), ast.Ident("b"), ast.Ident("c")
	tests := []struct {
		expr *ast.Expr
		want string
	}{
		{ast.Dot(a, ast.Dot(b, c)), "a.(b.c)"},
		{ast.Dot(ast.Dot(a, b), c), "(a.b).c"},
		{ast.Dot(a, ast.Bracket(ast.Dot(b, c))), "a.(b.c)"},
		{ast.Binary(ast.OpAssign, ast.Ident("x"), ast.Dot(a, b)), "x = a.b"},
		{ast.Binary(ast.OpMul, ast.Binary(ast.OpAdd, a, b), c), "(a + b) * c"},
		{ast.Subscript(ast.Dot(ast.Self(), ast.Ident("balances")), ast.Ident("k")), "(self.balances)[k]"},
		{ast.Call("transfer", ast.Arg{Value: a}, ast.Arg{Label: "amount", Value: ast.IntLit("5")}), "transfer(a, amount: 5)"},
	}
	for _, tt := range tests {
		if got := tt.expr.String(); got != tt.want {
			t.Fatalf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name:   "deposit",
		Params: []*ast.Param{{Name: "amount", Type: ast.IntType()}},
		Body: []*ast.Stmt{
			ast.ExprStmt(ast.Binary(ast.OpAddAssign, ast.Ident("total"), ast.Ident("amount"))),
		},
	}
	fn.Scope = ast.NewScope(fn.Params)
	mod := &ast.Module{Decls: []*ast.Decl{{
		Kind: ast.DeclStruct,
		Data: ast.StructData{Name: "Vault", Members: []*ast.FunctionDecl{fn}},
	}}}

	cp := mod.Clone()
	cfn := cp.Decls[0].Data.(ast.StructData).Members[0]
	if cfn == fn {
		t.Fatalf("function not copied")
	}
	cfn.Scope.Declare(ast.Local{Name: "tmp", Type: ast.IntType()})
	if fn.Scope.Contains("tmp") {
		t.Fatalf("scope shared between copies")
	}
	lhs := cfn.Body[0].Data.(ast.ExprStmtData).Expr.Data.(ast.BinaryData).Lhs
	lhs.Data = ast.IdentData{Name: "total", EnclosingType: "Vault"}
	orig := fn.Body[0].Data.(ast.ExprStmtData).Expr.Data.(ast.BinaryData).Lhs
	if orig.Data.(ast.IdentData).EnclosingType != "" {
		t.Fatalf("expression shared between copies")
	}
}

func TestTypeHelpers(t *testing.T) {
	dict := ast.DictOf(ast.AddressType(), ast.ArrayOf(ast.SelfType()))
	replaced := dict.ReplaceSelf("Wallet")
	if got := replaced.String(); got != "[Address: [Wallet]]" {
		t.Fatalf("ReplaceSelf = %q", got)
	}
	if dict.String() != "[Address: [Self]]" {
		t.Fatalf("ReplaceSelf mutated its receiver: %q", dict.String())
	}
	if !ast.FixedArrayOf(ast.IntType(), 4).Equal(ast.FixedArrayOf(ast.IntType(), 4)) {
		t.Fatalf("equal fixed arrays compare unequal")
	}
	if ast.FixedArrayOf(ast.IntType(), 4).Equal(ast.FixedArrayOf(ast.IntType(), 5)) {
		t.Fatalf("fixed arrays of different size compare equal")
	}
	if op, ok := ast.ParseOp("&+"); !ok || op != ast.OpOverflowAdd {
		t.Fatalf("ParseOp(&+) = %v, %v", op, ok)
	}
}
