// Package project reads the flint.toml manifest and computes content
// digests.
package project

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"flintc/internal/diag"
	"flintc/internal/layout"
	"flintc/internal/passes"
)

// Defaults applied to keys absent from the manifest.
const (
	DefaultMaxDiagnostics = 100
	DefaultOutDir         = "build"
)

// DefaultTargets is used when [build].targets is absent.
var DefaultTargets = []string{"evm"}

// Manifest is a decoded flint.toml with defaults applied.
type Manifest struct {
	Path string
	Root string

	Package PackageConfig
	Build   BuildConfig
}

// PackageConfig is the [package] table.
type PackageConfig struct {
	Name  string `toml:"name"`
	Input string `toml:"input"`
}

// BuildConfig is the [build] table.
type BuildConfig struct {
	Targets           []string `toml:"targets"`
	Verification      string   `toml:"verification"`
	CheckAllFunctions bool     `toml:"check_all_functions"`
	MaxDiagnostics    int      `toml:"max_diagnostics"`
	Jobs              int      `toml:"jobs"`
	Cache             bool     `toml:"cache"`
	OutDir            string   `toml:"out_dir"`
}

type manifestFile struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
}

// ManifestError is a problem found in flint.toml.
type ManifestError struct {
	Path string
	Code diag.Code
	Msg  string
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("%s: %s [%s]", e.Path, e.Msg, e.Code.ID())
}

// LoadManifest decodes and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, &ManifestError{Path: path, Code: diag.PrjManifestInvalid, Msg: fmt.Sprintf("failed to parse TOML: %v", err)}
	}
	invalid := func(code diag.Code, format string, args ...any) error {
		return &ManifestError{Path: path, Code: code, Msg: fmt.Sprintf(format, args...)}
	}
	if !meta.IsDefined("package") {
		return nil, invalid(diag.PrjManifestInvalid, "missing [package]")
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, invalid(diag.PrjManifestInvalid, "missing [package].name")
	}
	if !meta.IsDefined("package", "input") || strings.TrimSpace(cfg.Package.Input) == "" {
		return nil, invalid(diag.PrjManifestInvalid, "missing [package].input")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, invalid(diag.PrjManifestInvalid, "unknown key %s", undecoded[0])
	}

	b := &cfg.Build
	if !meta.IsDefined("build", "targets") {
		b.Targets = slices.Clone(DefaultTargets)
	}
	for _, t := range b.Targets {
		if _, ok := layout.TargetByName(t); !ok {
			return nil, invalid(diag.PrjUnknownTarget, "unknown target %q (supported: evm, move)", t)
		}
	}
	if _, ok := passes.ParseVerification(b.Verification); !ok {
		return nil, invalid(diag.PrjBadVerification, "unknown verification mode %q (supported: runtime, verified)", b.Verification)
	}
	if !meta.IsDefined("build", "max_diagnostics") {
		b.MaxDiagnostics = DefaultMaxDiagnostics
	}
	if !meta.IsDefined("build", "cache") {
		b.Cache = true
	}
	if !meta.IsDefined("build", "out_dir") {
		b.OutDir = DefaultOutDir
	}
	if b.Jobs < 0 || b.MaxDiagnostics < 0 {
		return nil, invalid(diag.PrjManifestInvalid, "[build].jobs and [build].max_diagnostics must not be negative")
	}

	return &Manifest{
		Path:    path,
		Root:    filepath.Dir(path),
		Package: cfg.Package,
		Build:   cfg.Build,
	}, nil
}

// InputPath resolves [package].input against the manifest directory.
func (m *Manifest) InputPath() string {
	in := filepath.FromSlash(strings.TrimSpace(m.Package.Input))
	if filepath.IsAbs(in) {
		return in
	}
	return filepath.Join(m.Root, in)
}

// OutPath resolves [build].out_dir against the manifest directory.
func (m *Manifest) OutPath() string {
	out := filepath.FromSlash(m.Build.OutDir)
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(m.Root, out)
}

// PassConfig returns the pass configuration the manifest selects.
func (m *Manifest) PassConfig() passes.Config {
	v, _ := passes.ParseVerification(m.Build.Verification)
	return passes.Config{
		Verification:      v,
		CheckAllFunctions: m.Build.CheckAllFunctions,
		MaxDiagnostics:    m.Build.MaxDiagnostics,
	}
}
