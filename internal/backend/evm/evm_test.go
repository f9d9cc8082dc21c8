package evm_test

import (
	"context"
	"slices"
	"strings"
	"testing"

	"flintc/internal/ast"
	"flintc/internal/backend/evm"
	"flintc/internal/buildpipeline"
	"flintc/internal/testkit"
)

func compileBank(t *testing.T) *evm.Program {
	t.Helper()
	data, err := testkit.Fixture("bank")
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	res, err := buildpipeline.Compile(context.Background(), &buildpipeline.CompileRequest{
		Input: "bank.yaml", Data: data, Targets: []string{"evm"},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out, _ := res.Output("evm")
	return out.EVM
}

func TestSelector(t *testing.T) {
	tests := []struct {
		name   string
		params []*ast.Param
		want   string
	}{
		{"transfer", []*ast.Param{{Name: "to", Type: ast.AddressType()}, {Name: "v", Type: ast.IntType()}}, "0xa9059cbb"},
		{"balanceOf", []*ast.Param{{Name: "who", Type: ast.AddressType()}}, "0x70a08231"},
		{"totalSupply", nil, "0x18160ddd"},
	}
	for _, tt := range tests {
		fn := &ast.FunctionDecl{Name: tt.name, Params: tt.params}
		if got := evm.Selector(fn); got != tt.want {
			t.Fatalf("Selector(%s) = %s, want %s", evm.Signature(tt.name, tt.params), got, tt.want)
		}
	}
}

func TestSignatureSpellsABITypes(t *testing.T) {
	params := []*ast.Param{
		{Name: "a", Type: ast.IntType()},
		{Name: "b", Type: ast.BoolType()},
		{Name: "c", Type: ast.StringType()},
		{Name: "d", Type: ast.InoutOf(ast.AddressType())},
	}
	if got, want := evm.Signature("f", params), "f(uint256,bool,bytes32,address)"; got != want {
		t.Fatalf("Signature = %s, want %s", got, want)
	}
}

func TestRuntimeLibraryIsPrefixed(t *testing.T) {
	names := evm.RuntimeNames()
	for _, n := range names {
		if !strings.HasPrefix(n, evm.RuntimePrefix) {
			t.Fatalf("runtime function %s lacks the prefix", n)
		}
	}
	for _, want := range []string{"add", "sub", "mul", "checkIndex", "storageDictionaryOffsetForKey", "copyDynamicArray", "dictionaryInsert"} {
		if !slices.Contains(names, evm.RuntimePrefix+want) {
			t.Fatalf("runtime lacks %s: %v", want, names)
		}
	}
}

func TestBankObjects(t *testing.T) {
	prog := compileBank(t)
	obj, ok := prog.Object("Bank")
	if !ok {
		t.Fatalf("no Bank object")
	}
	if len(obj.Objects) != 1 || obj.Objects[0].Name != "runtime" {
		t.Fatalf("runtime object missing: %+v", obj.Objects)
	}

	names := prog.FunctionNames("Bank")
	for _, want := range []string{"Bank$deposit$Int$Int", "Bank$bump$Int$Int$Int", "Bank$sumTo$Int", "Wallet$deposit$Int"} {
		if !slices.Contains(names, want) {
			t.Fatalf("missing %s in %v", want, names)
		}
	}

	text := prog.Text()
	for _, want := range []string{
		`object "Bank" {`,
		`object "runtime" {`,
		evm.Selector(&ast.FunctionDecl{Name: "deposit", Params: []*ast.Param{{Type: ast.IntType()}, {Type: ast.IntType()}}}),
		evm.Selector(&ast.FunctionDecl{Name: "close"}),
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output lacks %q", want)
		}
	}
	// Private functions get no dispatch case.
	if strings.Contains(text, evm.Selector(&ast.FunctionDecl{Name: "bump", Params: []*ast.Param{{Type: ast.IntType()}, {Type: ast.IntType()}, {Type: ast.IntType()}}})) {
		t.Fatalf("private bump is dispatched")
	}
}

func TestStructFunctionTakesReceiver(t *testing.T) {
	prog := compileBank(t)
	fn, err := prog.Function("Bank", "Wallet$deposit$Int")
	if err != nil {
		t.Fatalf("%v", err)
	}
	if len(fn.Params) != 3 || fn.Params[0] != "flintSelf" {
		t.Fatalf("params = %v", fn.Params)
	}
	if _, err := prog.Function("Bank", "Bank$missing"); err == nil {
		t.Fatalf("lookup of a missing function succeeded")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	a, b := compileBank(t).Text(), compileBank(t).Text()
	if a != b {
		t.Fatalf("outputs differ:\n%s", testkit.LineDiff(a, b))
	}
}
