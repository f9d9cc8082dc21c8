package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"flintc/internal/buildpipeline"
	"flintc/internal/project"
)

func TestParseCall(t *testing.T) {
	cases := []struct {
		input string
		sig   string
		args  []string
		ok    bool
	}{
		{"get()", "get()", nil, true},
		{"deposit(uint256,uint256)=5,0x10", "deposit(uint256,uint256)", []string{"5", "16"}, true},
		{"flag(bool)=true", "flag(bool)", []string{"1"}, true},
		{"big(uint256)=1_000", "big(uint256)", []string{"1000"}, true},
		{"nosig=1", "", nil, false},
		{"f(uint256)=-1", "", nil, false},
		{"f(uint256)=0x1" + strings.Repeat("0", 64), "", nil, false},
	}
	for _, tc := range cases {
		call, err := parseCall(tc.input)
		if (err == nil) != tc.ok {
			t.Fatalf("parseCall(%q) err = %v, want ok=%v", tc.input, err, tc.ok)
		}
		if !tc.ok {
			continue
		}
		if call.Signature != tc.sig || len(call.Args) != len(tc.args) {
			t.Fatalf("parseCall(%q) = %+v", tc.input, call)
		}
		for i, want := range tc.args {
			if call.Args[i].String() != want {
				t.Fatalf("parseCall(%q) arg %d = %s, want %s", tc.input, i, call.Args[i], want)
			}
		}
	}
}

func TestDefaultManifestLoads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, project.ManifestName)
	if err := os.WriteFile(path, []byte(buildDefaultManifest("counter")), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := project.LoadManifest(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Package.Name != "counter" || m.InputPath() != filepath.Join(dir, defaultModuleName) {
		t.Fatalf("manifest = %+v", m.Package)
	}
	if len(m.Build.Targets) != 2 {
		t.Fatalf("targets = %v", m.Build.Targets)
	}
}

func TestDefaultModuleCompilesAndRuns(t *testing.T) {
	res, err := buildpipeline.Compile(context.Background(), &buildpipeline.CompileRequest{
		Input: defaultModuleName, Data: []byte(defaultModule), Targets: []string{"evm", "move"},
	})
	if err != nil {
		t.Fatalf("compile: %v (%v)", err, res.Bag.Items())
	}
	out, _ := res.Output("evm")

	get, _ := parseCall("get()")
	inc, _ := parseCall("increment()")
	sim := &simulation{
		Caller: mustWord(t, "0x1"),
		Calls:  []simCall{inc, inc, get},
	}
	var buf bytes.Buffer
	if err := runSimulation(&buf, out.EVM, sim); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !strings.Contains(buf.String(), "get() = 2") {
		t.Fatalf("simulation output:\n%s", buf.String())
	}
}

func TestSimulationReportsUnknownContract(t *testing.T) {
	res, err := buildpipeline.Compile(context.Background(), &buildpipeline.CompileRequest{
		Input: defaultModuleName, Data: []byte(defaultModule), Targets: []string{"evm"},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out, _ := res.Output("evm")
	err = runSimulation(&bytes.Buffer{}, out.EVM, &simulation{Contract: "Missing", Caller: mustWord(t, "1")})
	if err == nil || !strings.Contains(err.Error(), "Missing") {
		t.Fatalf("err = %v", err)
	}
}

func TestFormatPathForOutput(t *testing.T) {
	root := filepath.FromSlash("/work/proj")
	cases := map[string]string{
		filepath.FromSlash("/work/proj/build/bank.yul"): "build/bank.yul",
		filepath.FromSlash("/elsewhere/bank.yul"):       filepath.FromSlash("/elsewhere/bank.yul"),
		"": "",
	}
	for in, want := range cases {
		if got := formatPathForOutput(root, in); got != want {
			t.Fatalf("formatPathForOutput(%q) = %q, want %q", in, got, want)
		}
	}
}

func mustWord(t *testing.T, s string) *big.Int {
	t.Helper()
	w, err := parseWord(s)
	if err != nil {
		t.Fatalf("parseWord(%q): %v", s, err)
	}
	return w
}

func TestProgressUIFlag(t *testing.T) {
	tests := []struct {
		value string
		want  bool
		ok    bool
	}{
		{"on", true, true},
		{"OFF", false, true},
		{"sometimes", false, false},
	}
	for _, tt := range tests {
		cmd := &cobra.Command{}
		cmd.Flags().String("ui", tt.value, "")
		got, err := progressUI(cmd)
		if (err == nil) != tt.ok || got != tt.want {
			t.Fatalf("--ui=%s: got %v, %v", tt.value, got, err)
		}
	}
}

func TestVersionJSONListsTargets(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() {
		versionCmd.SetOut(nil)
		_ = versionCmd.Flags().Set("format", "pretty")
	})
	if err := versionCmd.Flags().Set("format", "json"); err != nil {
		t.Fatalf("set format: %v", err)
	}
	if err := runVersion(versionCmd, nil); err != nil {
		t.Fatalf("version: %v", err)
	}
	var r versionReport
	if err := json.Unmarshal(buf.Bytes(), &r); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if len(r.Targets) != 2 || r.Targets[0].Extension != ".yul" || r.Targets[1].WordBytes != 8 {
		t.Fatalf("targets = %+v", r.Targets)
	}
	if r.GitCommit != "" {
		t.Fatalf("commit shown without --hash")
	}
}
