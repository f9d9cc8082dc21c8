package passes_test

import (
	"context"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"flintc/internal/ast"
	"flintc/internal/diag"
	"flintc/internal/env"
	"flintc/internal/passes"
	"flintc/internal/testkit"
)

func exprModule(e *ast.Expr) *ast.Module {
	fn := &ast.FunctionDecl{Name: "f", Body: []*ast.Stmt{ast.ExprStmt(e)}}
	return &ast.Module{Decls: []*ast.Decl{{Kind: ast.DeclStruct, Data: ast.StructData{Name: "S", Members: []*ast.FunctionDecl{fn}}}}}
}

func firstExpr(mod *ast.Module) *ast.Expr {
	fn := mod.Decls[0].Data.(ast.StructData).Members[0]
	return fn.Body[0].Data.(ast.ExprStmtData).Expr
}

// tb is satisfied by both *testing.T and *rapid.T.
type tb interface {
	Helper()
	Fatalf(format string, args ...any)
}

func run(t tb, mod *ast.Module, list []passes.Pass, cfg passes.Config) (*ast.Module, *env.Environment, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(0)
	e := env.Collect(mod, diag.BagReporter{Bag: bag})
	if bag.HasErrors() {
		t.Fatalf("collect: %v", bag.Items())
	}
	return passes.Run(context.Background(), mod, e, list, cfg)
}

func findFunc(mod *ast.Module, owner, name string) *ast.FunctionDecl {
	for _, d := range mod.Decls {
		if d.Data.TypeName() != owner {
			continue
		}
		var members []*ast.FunctionDecl
		switch data := d.Data.(type) {
		case ast.BehaviorData:
			members = data.Members
		case ast.StructData:
			members = data.Members
		case ast.TraitData:
			members = data.Members
		}
		for _, f := range members {
			if f.DisplayName() == name {
				return f
			}
		}
	}
	return nil
}

func TestLeftAssociate(t *testing.T) {
	a, b, c := ast.Ident("a"), ast.Ident("b"), ast.Ident("c")
	tests := []struct {
		name string
		in   *ast.Expr
		want string
	}{
		{"right nested", ast.Dot(a, ast.Dot(b, c)), "(a.b).c"},
		{"already left", ast.Dot(ast.Dot(a, b), c), "(a.b).c"},
		{"other operator", ast.Binary(ast.OpAdd, a, b), "a + b"},
		{"rhs not a member access", ast.Dot(a, ast.Binary(ast.OpAdd, b, c)), "a.(b + c)"},
		{"three levels", ast.Dot(a, ast.Dot(b, ast.Dot(c, ast.Ident("d")))), "((a.b).c).d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, _ := run(t, exprModule(tt.in.Clone()), []passes.Pass{passes.LeftAssociate()}, passes.Config{})
			if got := firstExpr(out).String(); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLeftAssociateKeepsBrackets(t *testing.T) {
	in := ast.Dot(ast.Ident("a"), ast.Bracket(ast.Dot(ast.Ident("b"), ast.Ident("c"))))
	out, _, _ := run(t, exprModule(in), []passes.Pass{passes.LeftAssociate()}, passes.Config{})
	rhs := firstExpr(out).Data.(ast.BinaryData).Rhs
	if rhs.Kind != ast.ExprBracketed {
		t.Fatalf("bracketed operand was rotated: %s", firstExpr(out))
	}
}

func genExpr(depth int) *rapid.Generator[*ast.Expr] {
	return rapid.Custom(func(t *rapid.T) *ast.Expr {
		if depth == 0 || rapid.Bool().Draw(t, "leaf") {
			return ast.Ident(rapid.SampledFrom([]string{"a", "b", "c", "d"}).Draw(t, "name"))
		}
		op := rapid.SampledFrom([]ast.Op{ast.OpDot, ast.OpDot, ast.OpAdd, ast.OpMul}).Draw(t, "op")
		e := ast.Binary(op, genExpr(depth-1).Draw(t, "lhs"), genExpr(depth-1).Draw(t, "rhs"))
		if rapid.IntRange(0, 4).Draw(t, "bracket") == 0 {
			e = ast.Bracket(e)
		}
		return e
	})
}

func countKinds(mod *ast.Module) map[string]int {
	out := make(map[string]int)
	testkit.WalkExprs(mod, func(e *ast.Expr) {
		key := e.Kind.String()
		if data, ok := e.Data.(ast.BinaryData); ok {
			key = data.Op.String()
		}
		out[key]++
	})
	return out
}

func TestLeftAssociateIsIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mod := exprModule(genExpr(4).Draw(rt, "expr"))
		once, _, _ := run(rt, mod, []passes.Pass{passes.LeftAssociate()}, passes.Config{})
		twice, _, _ := run(rt, once, []passes.Pass{passes.LeftAssociate()}, passes.Config{})

		if err := testkit.CheckLeftAssociated(once); err != nil {
			rt.Fatalf("%v", err)
		}
		if a, b := firstExpr(once).String(), firstExpr(twice).String(); a != b {
			rt.Fatalf("second run changed %s into %s", a, b)
		}
		before, after := countKinds(mod), countKinds(once)
		for k, n := range before {
			if after[k] != n {
				rt.Fatalf("%s count changed from %d to %d", k, n, after[k])
			}
		}
	})
}

func bankPipeline(t *testing.T, cfg passes.Config) (*ast.Module, *env.Environment, *diag.Bag) {
	t.Helper()
	mod := testkit.LoadModule(t, "bank")
	out, e, bag := run(t, mod, passes.Default(cfg), cfg)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	return out, e, bag
}

func TestEnclosingTypes(t *testing.T) {
	mod, _, _ := bankPipeline(t, passes.Config{})

	level := findFunc(mod, "Bank", "currentLevel")
	assign := level.Body[0].Data.(ast.ExprStmtData).Expr.Data.(ast.BinaryData)
	lit, ok := assign.Rhs.Data.(ast.LiteralData)
	if !ok || lit.Text != "10" {
		t.Fatalf("enum case not substituted: %s", assign.Rhs)
	}
	if assign.Rhs.Type == nil || assign.Rhs.Type.String() != "Level" {
		t.Fatalf("substituted case lost its enum type")
	}
	if got := assign.Lhs.Data.(ast.IdentData).EnclosingType; got != "Bank" {
		t.Fatalf("bare property annotated with %q", got)
	}

	ret := level.Body[1].Data.(ast.ReturnData).Value.Data.(ast.BinaryData)
	member := ret.Lhs.Data.(ast.BinaryData)
	if got := member.Rhs.Data.(ast.IdentData).EnclosingType; got != "Wallet" {
		t.Fatalf("wallet.total annotated with %q", got)
	}

	deposit := findFunc(mod, "Bank", "deposit")
	var caller ast.IdentData
	testkit.WalkExprs(&ast.Module{Decls: []*ast.Decl{{Kind: ast.DeclStruct, Data: ast.StructData{Members: []*ast.FunctionDecl{deposit}}}}}, func(e *ast.Expr) {
		if e.IdentName() == "caller" {
			caller = e.Data.(ast.IdentData)
		}
	})
	if caller.Name == "" || caller.EnclosingType != "" {
		t.Fatalf("caller binding treated as a property: %+v", caller)
	}

	sumTo := findFunc(mod, "Bank", "sumTo")
	if !sumTo.Scope.Contains("acc") || !sumTo.Scope.Contains("i") {
		t.Fatalf("locals not recorded: %+v", sumTo.Scope)
	}
}

func TestResolveTraits(t *testing.T) {
	mod, e, _ := bankPipeline(t, passes.Config{})

	describe := findFunc(mod, "Wallet", "describe")
	if describe == nil {
		t.Fatalf("default function not copied into Wallet")
	}
	if findFunc(mod, "Countable", "describe") != nil {
		t.Fatalf("trait members not emptied")
	}
	sum := describe.Body[0].Data.(ast.ReturnData).Value.Data.(ast.BinaryData)
	total := sum.Lhs.Data.(ast.BinaryData).Rhs.Data.(ast.IdentData)
	if total.EnclosingType != "Wallet" {
		t.Fatalf("self.total still points at %q", total.EnclosingType)
	}
	wallet, _ := e.Type("Wallet")
	if len(wallet.Functions["describe"]) != 1 {
		t.Fatalf("copy not registered in the environment")
	}
	if len(e.ConformingFunctions("Wallet")) != 0 {
		t.Fatalf("Wallet still inherits unresolved defaults")
	}
}

func TestCompleteCallArguments(t *testing.T) {
	mod, _, _ := bankPipeline(t, passes.Config{})
	useBump := findFunc(mod, "Bank", "useBump")
	got := useBump.Body[0].Data.(ast.ReturnData).Value.String()
	if got != "bump(x, 1, 2)" {
		t.Fatalf("completed call = %s", got)
	}

	deposit := findFunc(mod, "Bank", "deposit")
	emit := deposit.Body[len(deposit.Body)-1].Data.(ast.EmitData).Call.String()
	if emit != "Sent(to: caller, amount: amount)" {
		t.Fatalf("event call changed: %s", emit)
	}
}

func TestCompleteCallKeepsNamedOverride(t *testing.T) {
	mod := testkit.LoadModule(t, "bank")
	useBump := findFunc(mod, "Bank", "useBump")
	useBump.Body[0] = ast.Return(ast.Call("bump",
		ast.Arg{Value: ast.Ident("x")},
		ast.Arg{Label: "c", Value: ast.IntLit("7")},
	))
	out, _, bag := run(t, mod, passes.Default(passes.Config{}), passes.Config{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	got := findFunc(out, "Bank", "useBump").Body[0].Data.(ast.ReturnData).Value.String()
	if got != "bump(x, 1, c: 7)" {
		t.Fatalf("completed call = %s", got)
	}
}

func TestCompleteCallBindsLabelsOutOfOrder(t *testing.T) {
	mod := testkit.LoadModule(t, "bank")
	bump := findFunc(mod, "Bank", "bump")
	bump.Params = append(bump.Params, &ast.Param{Name: "d", Type: ast.IntType(), Default: ast.IntLit("3")})
	useBump := findFunc(mod, "Bank", "useBump")
	useBump.Body[0] = ast.Return(ast.Call("bump",
		ast.Arg{Value: ast.IntLit("9")},
		ast.Arg{Label: "d", Value: ast.IntLit("4")},
		ast.Arg{Label: "b", Value: ast.IntLit("5")},
	))
	out, _, bag := run(t, mod, passes.Default(passes.Config{}), passes.Config{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	call := findFunc(out, "Bank", "useBump").Body[0].Data.(ast.ReturnData).Value
	if n := len(call.Data.(ast.CallData).Args); n != 4 {
		t.Fatalf("completed call %s has %d arguments, want 4", call, n)
	}
	if got := call.String(); got != "bump(9, b: 5, 2, d: 4)" {
		t.Fatalf("completed call = %s", got)
	}
}

func TestCompleteCallImplicitInitializer(t *testing.T) {
	mod := testkit.LoadModule(t, "bank")
	useBump := findFunc(mod, "Bank", "useBump")
	let := ast.Binary(ast.OpAssign, ast.VarDecl("w", ast.NamedType("Wallet"), true), ast.Call("Wallet"))
	useBump.Body = append([]*ast.Stmt{ast.ExprStmt(let)}, useBump.Body...)
	out, _, bag := run(t, mod, passes.Default(passes.Config{}), passes.Config{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	got := findFunc(out, "Bank", "useBump").Body[0].Data.(ast.ExprStmtData).Expr.Data.(ast.BinaryData).Rhs
	if args := got.Data.(ast.CallData).Args; len(args) != 0 {
		t.Fatalf("implicit initializer got arguments: %s", got)
	}
}

func TestUnknownLabelIsAnError(t *testing.T) {
	mod := testkit.LoadModule(t, "bank")
	useBump := findFunc(mod, "Bank", "useBump")
	useBump.Body[0] = ast.Return(ast.Call("bump",
		ast.Arg{Value: ast.Ident("x")},
		ast.Arg{Label: "d", Value: ast.IntLit("7")},
	))
	_, _, bag := run(t, mod, passes.Default(passes.Config{}), passes.Config{})
	if !bag.HasErrors() {
		t.Fatalf("expected an error")
	}
	if code := bag.Items()[0].Code; code != diag.PassUnknownLabel {
		t.Fatalf("code = %s", code.ID())
	}
}

func TestMaterializePreconditions(t *testing.T) {
	mod, _, _ := bankPipeline(t, passes.Config{})
	deposit := findFunc(mod, "Bank", "deposit")
	if !deposit.Body[0].IsAssertCall() {
		t.Fatalf("first statement = %s", deposit.Body[0])
	}
	if got := deposit.Body[0].String(); got != "assert(amount > 0)" {
		t.Fatalf("assertion = %s", got)
	}
}

func TestMaterializePreconditionsSkipsNonPublic(t *testing.T) {
	tests := []struct {
		name   string
		public bool
		want   bool
	}{
		{"public initializer", true, true},
		{"internal initializer", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := testkit.LoadModule(t, "bank")
			init := findFunc(mod, "Bank", "init")
			init.Public = tt.public
			init.Pre = []*ast.Expr{ast.BoolLit(true)}
			out, _, _ := run(t, mod, passes.Default(passes.Config{}), passes.Config{})
			got := findFunc(out, "Bank", "init").Body[0].IsAssertCall()
			if got != tt.want {
				t.Fatalf("asserted = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStripAssertions(t *testing.T) {
	mod := testkit.LoadModule(t, "bank")
	sumTo := findFunc(mod, "Bank", "sumTo")
	assert := func() *ast.Stmt { return ast.ExprStmt(ast.Call("assert", ast.Arg{Value: ast.BoolLit(true)})) }
	sumTo.Body = append([]*ast.Stmt{assert()}, sumTo.Body...)
	loop := sumTo.Body[2].Data.(ast.ForData)
	loop.Body = append(loop.Body, assert())
	sumTo.Body[2].Data = loop

	cfg := passes.Config{Verification: passes.VerificationExternal}
	out, _, _ := run(t, mod, passes.Default(cfg), cfg)
	var left []string
	testkit.WalkExprs(out, func(e *ast.Expr) {
		if call, ok := e.Data.(ast.CallData); ok && call.Name == "assert" {
			left = append(left, e.String())
		}
	})
	if len(left) != 0 {
		t.Fatalf("assertions left: %v", left)
	}
}

func TestDefaultPicksOnePreconditionPass(t *testing.T) {
	for _, v := range []passes.Verification{passes.VerificationRuntime, passes.VerificationExternal} {
		var names []string
		for _, p := range passes.Default(passes.Config{Verification: v}) {
			names = append(names, p.Name)
		}
		joined := strings.Join(names, ",")
		hasRuntime := strings.Contains(joined, "materialize-preconditions")
		hasStrip := strings.Contains(joined, "strip-assertions")
		if hasRuntime == hasStrip {
			t.Fatalf("%s: passes = %s", v, joined)
		}
	}
}

func TestRunLeavesInputUntouched(t *testing.T) {
	mod := testkit.LoadModule(t, "bank")
	before := len(findFunc(mod, "Bank", "deposit").Body)
	out, _, _ := run(t, mod, passes.Default(passes.Config{}), passes.Config{})
	if got := len(findFunc(mod, "Bank", "deposit").Body); got != before {
		t.Fatalf("input body changed from %d to %d statements", before, got)
	}
	if err := testkit.CheckDisjoint(mod, out); err != nil {
		t.Fatalf("%v", err)
	}
}
