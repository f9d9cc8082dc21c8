package layout_test

import (
	"errors"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"flintc/internal/ast"
	"flintc/internal/diag"
	"flintc/internal/env"
	"flintc/internal/layout"
	"flintc/internal/testkit"
)

func collect(t testing.TB, mod *ast.Module) *env.Environment {
	t.Helper()
	bag := diag.NewBag(0)
	e := env.Collect(mod, diag.BagReporter{Bag: bag})
	if bag.HasErrors() {
		t.Fatalf("collect: %v", bag.Items())
	}
	return e
}

func TestBankLayout(t *testing.T) {
	e := collect(t, testkit.LoadModule(t, "bank"))
	for _, target := range []layout.Target{layout.EVM(), layout.Move()} {
		l, err := layout.New(target, e).LayoutOf("Bank")
		if err != nil {
			t.Fatalf("%s: %v", target.Name, err)
		}
		want := []struct {
			name         string
			offset, size int
		}{
			{"owner", 0, 1},
			{"balances", 1, 1},
			{"accounts", 2, 1},
			{"limits", 3, 4},
			{"total", 7, 1},
			{"wallet", 8, 2},
			{"level", 10, 1},
		}
		for i, w := range want {
			f := l.Fields[i]
			if f.Name != w.name || f.Offset != w.offset || f.Size != w.size {
				t.Fatalf("%s: field %d = %+v, want %+v", target.Name, i, f, w)
			}
		}
		if l.Size != 11 {
			t.Fatalf("%s: size = %d", target.Name, l.Size)
		}
	}
}

func TestSizeOf(t *testing.T) {
	e := collect(t, testkit.LoadModule(t, "bank"))
	eng := layout.New(layout.EVM(), e)
	tests := []struct {
		typ  ast.Type
		want int
	}{
		{ast.IntType(), 1},
		{ast.VoidType(), 0},
		{ast.ArrayOf(ast.NamedType("Wallet")), 1},
		{ast.DictOf(ast.AddressType(), ast.NamedType("Wallet")), 1},
		{ast.FixedArrayOf(ast.NamedType("Wallet"), 3), 6},
		{ast.FixedArrayOf(ast.FixedArrayOf(ast.IntType(), 2), 3), 6},
		{ast.NamedType("Level"), 1},
		{ast.RangeOf(ast.IntType()), 0},
	}
	for _, tt := range tests {
		got, err := eng.SizeOf(tt.typ)
		if err != nil {
			t.Fatalf("SizeOf(%s): %v", tt.typ, err)
		}
		if got != tt.want {
			t.Fatalf("SizeOf(%s) = %d, want %d", tt.typ, got, tt.want)
		}
	}
	if n, _ := eng.Bytes(3); n != 96 {
		t.Fatalf("Bytes(3) = %d", n)
	}
	if slot, _ := eng.StateSlot("Bank"); slot != 11 {
		t.Fatalf("StateSlot = %d", slot)
	}
}

func TestLayoutErrors(t *testing.T) {
	mod := &ast.Module{Decls: []*ast.Decl{
		{Kind: ast.DeclStruct, Data: ast.StructData{Name: "Node", Properties: []*ast.Property{
			{Name: "value", Type: ast.IntType()},
			{Name: "next", Type: ast.NamedType("Link")},
		}}},
		{Kind: ast.DeclStruct, Data: ast.StructData{Name: "Link", Properties: []*ast.Property{
			{Name: "node", Type: ast.NamedType("Node")},
		}}},
		{Kind: ast.DeclStruct, Data: ast.StructData{Name: "List", Properties: []*ast.Property{
			{Name: "items", Type: ast.ArrayOf(ast.NamedType("List"))},
		}}},
	}}
	eng := layout.New(layout.EVM(), collect(t, mod))

	_, err := eng.LayoutOf("Node")
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) || lerr.Kind != layout.LayoutErrRecursive {
		t.Fatalf("expected a recursive layout error, got %v", err)
	}
	if len(lerr.Cycle) < 2 {
		t.Fatalf("cycle = %v", lerr.Cycle)
	}

	if _, err := eng.LayoutOf("List"); err != nil {
		t.Fatalf("a dynamic array of itself is sized by its header: %v", err)
	}
	if _, err := eng.Offset("List", "missing"); !errors.As(err, &lerr) || lerr.Kind != layout.LayoutErrUnknownProperty {
		t.Fatalf("expected unknown property, got %v", err)
	}
	if _, err := eng.LayoutOf("Nope"); !errors.As(err, &lerr) || lerr.Kind != layout.LayoutErrUnknownType {
		t.Fatalf("expected unknown type, got %v", err)
	}
	if _, err := eng.SizeOf(ast.FixedArrayOf(ast.IntType(), -1)); !errors.As(err, &lerr) || lerr.Kind != layout.LayoutErrNegativeLength {
		t.Fatalf("expected negative length, got %v", err)
	}
}

// genModule draws structs S0..Sn where Si only embeds Sj with j < i.
func genModule(t *rapid.T) *ast.Module {
	n := rapid.IntRange(1, 5).Draw(t, "structs")
	mod := &ast.Module{}
	for i := 0; i < n; i++ {
		props := rapid.IntRange(0, 6).Draw(t, fmt.Sprintf("props%d", i))
		data := ast.StructData{Name: fmt.Sprintf("S%d", i)}
		for j := 0; j < props; j++ {
			var typ ast.Type
			switch rapid.IntRange(0, 5).Draw(t, "kind") {
			case 0:
				typ = ast.IntType()
			case 1:
				typ = ast.ArrayOf(ast.IntType())
			case 2:
				typ = ast.DictOf(ast.AddressType(), ast.IntType())
			case 3:
				typ = ast.FixedArrayOf(ast.BoolType(), rapid.IntRange(0, 8).Draw(t, "len"))
			default:
				if i == 0 {
					typ = ast.AddressType()
					break
				}
				inner := ast.NamedType(fmt.Sprintf("S%d", rapid.IntRange(0, i-1).Draw(t, "ref")))
				if rapid.Bool().Draw(t, "fixed") {
					inner = ast.FixedArrayOf(inner, rapid.IntRange(1, 3).Draw(t, "len"))
				}
				typ = inner
			}
			data.Properties = append(data.Properties, &ast.Property{Name: fmt.Sprintf("p%d", j), Type: typ})
		}
		mod.Decls = append(mod.Decls, &ast.Decl{Kind: ast.DeclStruct, Data: data})
	}
	return mod
}

func TestOffsetsArePrefixSums(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mod := genModule(rt)
		e := env.Collect(mod, diag.BagReporter{Bag: diag.NewBag(0)})
		eng := layout.New(layout.EVM(), e)

		for _, ti := range e.Types() {
			sum := 0
			for _, name := range ti.Properties {
				first, err := eng.Offset(ti.Name, name)
				if err != nil {
					rt.Fatalf("Offset(%s, %s): %v", ti.Name, name, err)
				}
				second, _ := eng.Offset(ti.Name, name)
				if first != sum || second != first {
					rt.Fatalf("%s.%s: offsets %d/%d, prefix sum %d", ti.Name, name, first, second, sum)
				}
				p, _ := ti.Property(name)
				size, err := eng.SizeOf(p.Type)
				if err != nil {
					rt.Fatalf("SizeOf(%s): %v", p.Type, err)
				}
				sum += size
			}
			total, _ := eng.SizeOf(ast.NamedType(ti.Name))
			if total != sum {
				rt.Fatalf("%s: size %d, sum of fields %d", ti.Name, total, sum)
			}
		}
	})
}
