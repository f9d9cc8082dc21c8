package project_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"flintc/internal/diag"
	"flintc/internal/passes"
	"flintc/internal/project"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, project.ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadManifestDefaults(t *testing.T) {
	path := writeManifest(t, "[package]\nname = \"bank\"\ninput = \"src/bank.yaml\"\n")
	m, err := project.LoadManifest(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !slices.Equal(m.Build.Targets, project.DefaultTargets) {
		t.Fatalf("targets = %v", m.Build.Targets)
	}
	if !m.Build.Cache || m.Build.MaxDiagnostics != project.DefaultMaxDiagnostics || m.Build.OutDir != project.DefaultOutDir {
		t.Fatalf("defaults not applied: %+v", m.Build)
	}
	if got, want := m.InputPath(), filepath.Join(filepath.Dir(path), "src", "bank.yaml"); got != want {
		t.Fatalf("input = %s, want %s", got, want)
	}
	if m.PassConfig().Verification != passes.VerificationRuntime {
		t.Fatalf("verification = %v", m.PassConfig().Verification)
	}
}

func TestLoadManifestExplicitValues(t *testing.T) {
	path := writeManifest(t, `
[package]
name = "bank"
input = "bank.yaml"

[build]
targets = ["evm", "move"]
verification = "verified"
cache = false
max_diagnostics = 0
jobs = 2
out_dir = "out"
`)
	m, err := project.LoadManifest(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Build.Cache {
		t.Fatalf("explicit cache = false was overridden")
	}
	if m.Build.MaxDiagnostics != 0 || m.Build.Jobs != 2 {
		t.Fatalf("build = %+v", m.Build)
	}
	if !slices.Equal(m.Build.Targets, []string{"evm", "move"}) {
		t.Fatalf("targets = %v", m.Build.Targets)
	}
	if m.PassConfig().Verification != passes.VerificationExternal {
		t.Fatalf("verification = %v", m.PassConfig().Verification)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code diag.Code
	}{
		{"missing package", "[build]\njobs = 1\n", diag.PrjManifestInvalid},
		{"missing input", "[package]\nname = \"x\"\n", diag.PrjManifestInvalid},
		{"unknown target", "[package]\nname = \"x\"\ninput = \"x.yaml\"\n[build]\ntargets = [\"wasm\"]\n", diag.PrjUnknownTarget},
		{"bad verification", "[package]\nname = \"x\"\ninput = \"x.yaml\"\n[build]\nverification = \"maybe\"\n", diag.PrjBadVerification},
		{"unknown key", "[package]\nname = \"x\"\ninput = \"x.yaml\"\nmain = \"y\"\n", diag.PrjManifestInvalid},
		{"not toml", "[package\n", diag.PrjManifestInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := project.LoadManifest(writeManifest(t, tt.body))
			var me *project.ManifestError
			if !errors.As(err, &me) {
				t.Fatalf("err = %v, want *ManifestError", err)
			}
			if me.Code != tt.code {
				t.Fatalf("code = %s, want %s", me.Code.ID(), tt.code.ID())
			}
		})
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	path := writeManifest(t, "[package]\nname = \"x\"\ninput = \"x.yaml\"\n")
	nested := filepath.Join(filepath.Dir(path), "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, ok, err := project.FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if got != path {
		t.Fatalf("found %s, want %s", got, path)
	}
}

func TestDigest(t *testing.T) {
	a, b := project.Sum([]byte("a")), project.Sum([]byte("b"))
	if a.IsZero() || a == b {
		t.Fatalf("sum collides or is zero")
	}
	if project.Combine(a, b) == project.Combine(b, a) {
		t.Fatalf("combine ignores order")
	}
	if project.Combine(a, b) != project.Combine(a, b) {
		t.Fatalf("combine is not deterministic")
	}
}

func TestFindManifestIgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, project.ManifestName), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path, ok, err := project.FindManifest(root)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if ok && path == filepath.Join(root, project.ManifestName) {
		t.Fatalf("a directory was taken for the manifest")
	}
}
