package astio_test

import (
	"strings"
	"testing"

	"flintc/internal/ast"
	"flintc/internal/astio"
	"flintc/internal/testkit"
)

func TestParseType(t *testing.T) {
	tests := []string{
		"Int", "Address", "Wallet", "[Int]", "Int[4]", "[Address: Int]",
		"(Int)", "inout Wallet", "Self", "[Address: [Int]]", "Int[2][3]",
	}
	for _, src := range tests {
		typ, err := astio.ParseType(src)
		if err != nil {
			t.Fatalf("ParseType(%q): %v", src, err)
		}
		if got := typ.String(); got != src {
			t.Fatalf("ParseType(%q).String() = %q", src, got)
		}
	}
	for _, bad := range []string{"", "[Int", "Int[x]", "Int Int"} {
		if _, err := astio.ParseType(bad); err == nil {
			t.Fatalf("ParseType(%q) succeeded", bad)
		}
	}
}

func TestDecodeBankFixture(t *testing.T) {
	mod := testkit.LoadModule(t, "bank")
	if n := len(mod.Contracts()); n != 1 {
		t.Fatalf("contracts = %d", n)
	}
	bank := mod.Contracts()[0].Data.(ast.ContractData)
	if bank.Properties[1].Type.String() != "[Address: Int]" {
		t.Fatalf("balances type = %s", bank.Properties[1].Type)
	}
	if got := mod.Contracts()[0].Span.Start; got.Line != 1 || got.Col != 1 {
		t.Fatalf("contract span start = %+v", got)
	}
	behaviors := mod.Behaviors("Bank")
	if len(behaviors) != 3 {
		t.Fatalf("behaviors = %d", len(behaviors))
	}
	init := behaviors[0].Data.(ast.BehaviorData).Members[0]
	if init.Kind != ast.FuncInit {
		t.Fatalf("first member kind = %s", init.Kind)
	}
	deposit := behaviors[1].Data.(ast.BehaviorData).Members[0]
	if got := deposit.Body[0].String(); got != "balances[caller] += amount" {
		t.Fatalf("deposit body[0] = %q", got)
	}
	if deposit.Params[1].Default == nil {
		t.Fatalf("memo default lost")
	}
}

func TestMsgpackPreservesModule(t *testing.T) {
	mod := testkit.LoadModule(t, "bank")
	bin, err := astio.EncodeMsgpack(mod)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := astio.Decode(bin, astio.FormatMsgpack, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want, err := astio.EncodeYAML(mod)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	got, err := astio.EncodeYAML(back)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	testkit.Golden(t, string(got), string(want))
}

func TestIdentifiersAreNFC(t *testing.T) {
	// The name below is written with a combining acute accent.
	doc := "decls:\n  - struct:\n      name: \"cafe\u0301\"\n"
	mod, err := astio.Decode([]byte(doc), astio.FormatYAML, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := mod.Decls[0].Data.TypeName(); got != "caf\u00e9" {
		t.Fatalf("name = %q, want composed form", got)
	}
}

func TestDecodeReportsEveryProblem(t *testing.T) {
	doc := `decls:
  - struct:
      name: S
      properties:
        - {name: a, type: "[Int"}
        - {name: b, type: "Int[x]"}
`
	_, err := astio.Decode([]byte(doc), astio.FormatYAML, 0)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !strings.Contains(err.Error(), "[Int") || !strings.Contains(err.Error(), "Int[x]") {
		t.Fatalf("error does not mention both types: %v", err)
	}
}

func TestFormatForPath(t *testing.T) {
	if astio.FormatForPath("m.mp") != astio.FormatMsgpack || astio.FormatForPath("m.yaml") != astio.FormatYAML {
		t.Fatalf("wrong format detection")
	}
}
