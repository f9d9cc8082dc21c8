package move_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"flintc/internal/backend/move"
	"flintc/internal/buildpipeline"
	"flintc/internal/lower"
	"flintc/internal/testkit"
)

func compile(t *testing.T, input string, data []byte) (*move.Program, error) {
	t.Helper()
	res, err := buildpipeline.Compile(context.Background(), &buildpipeline.CompileRequest{
		Input: input, Data: data, Targets: []string{"move"},
	})
	if err != nil {
		return nil, err
	}
	out, _ := res.Output("move")
	return out.Move, nil
}

func compileBank(t *testing.T) *move.Program {
	t.Helper()
	data, err := testkit.Fixture("bank")
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	prog, err := compile(t, "bank.yaml", data)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return prog
}

func TestRuntimeModuleComesFirst(t *testing.T) {
	prog := compileBank(t)
	if len(prog.Modules) != 2 || prog.Modules[0].Name != move.RuntimeModule {
		t.Fatalf("modules = %d, first %q", len(prog.Modules), prog.Modules[0].Name)
	}
	rt := move.Runtime()
	for _, name := range []string{"check_index", "map_get", "map_put", "map_size", "power"} {
		if _, ok := rt.Function(name); !ok {
			t.Fatalf("runtime lacks %s", name)
		}
	}
	text := move.RenderModule(rt)
	if strings.Contains(text, "$") {
		t.Fatalf("rendered runtime keeps unsanitized names:\n%s", text)
	}
}

func TestPublicWrapperBorrowsResource(t *testing.T) {
	prog := compileBank(t)
	bank, ok := prog.Module("Bank")
	if !ok {
		t.Fatalf("no Bank module")
	}
	w, ok := bank.Function("deposit")
	if !ok {
		t.Fatalf("no deposit wrapper")
	}
	if !w.Public || len(w.Params) != 3 || w.Params[0].Name != move.AddressParam {
		t.Fatalf("wrapper params = %+v", w.Params)
	}
	if len(w.Acquires) != 1 || w.Acquires[0] != move.ResourceName {
		t.Fatalf("acquires = %v", w.Acquires)
	}
	if _, ok := bank.Function("bump"); ok {
		t.Fatalf("private bump has a public wrapper")
	}
	if _, ok := bank.Function("new"); !ok {
		t.Fatalf("no constructor")
	}

	text := prog.Text()
	for _, want := range []string{"module Bank {", "borrow_global_mut<T>", "move_to_sender<T>", "Bank__deposit__Int__Int"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output lacks %q", want)
		}
	}
}

const selfInConstructor = `decls:
  - at: "1:1-3:2"
    contract:
      name: C
      properties:
        - {name: x, type: Int, at: "2:3-2:14"}
  - at: "5:1-12:2"
    behavior:
      contract: C
      protections: [any]
      functions:
        - kind: init
          public: true
          at: "6:3-8:4"
          body:
            - expr: {op: "=", lhs: {op: ".", lhs: {self: true}, rhs: {ident: x}}, rhs: {call: helper}}
        - name: helper
          result: Int
          at: "9:3-11:4"
          body:
            - return: {value: {int: "1"}}
`

func TestConstructorCannotUseSelfEarly(t *testing.T) {
	_, err := compile(t, "c.yaml", []byte(selfInConstructor))
	var ie *lower.InternalError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want internal error", err)
	}
	if !strings.Contains(ie.Msg, "before all fields are initialized") {
		t.Fatalf("msg = %q", ie.Msg)
	}
}

func TestDictionarySizeCountsKeys(t *testing.T) {
	data, err := testkit.Fixture("box")
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	prog, err := compile(t, "box.yaml", data)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	text := prog.Text()
	if !strings.Contains(text, "Flint__Runtime.map_size<u64, u64>") {
		t.Fatalf("markCount does not read the key count:\n%s", text)
	}
}

func TestSanitize(t *testing.T) {
	if got := move.Sanitize("Flint$Runtime"); got != "Flint__Runtime" {
		t.Fatalf("Sanitize = %q", got)
	}
}
