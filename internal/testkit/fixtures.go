package testkit

import (
	"embed"
	"testing"

	"flintc/internal/ast"
	"flintc/internal/astio"
)

//go:embed fixtures/*.yaml
var fixtureFS embed.FS

// Fixture returns the raw bytes of fixtures/<name>.yaml.
func Fixture(name string) ([]byte, error) {
	return fixtureFS.ReadFile("fixtures/" + name + ".yaml")
}

// LoadModule decodes fixtures/<name>.yaml into a module with file id 0.
func LoadModule(t testing.TB, name string) *ast.Module {
	t.Helper()
	data, err := Fixture(name)
	if err != nil {
		t.Fatalf("fixture %s: %v", name, err)
	}
	mod, err := astio.Decode(data, astio.FormatYAML, 0)
	if err != nil {
		t.Fatalf("fixture %s: %v", name, err)
	}
	return mod
}
