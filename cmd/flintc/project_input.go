package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"flintc/internal/passes"
	"flintc/internal/project"
)

const noManifestMessage = "no " + project.ManifestName + " found\nplease specify the module explicitly, e.g.:\n  flintc build path/to/module.yaml"

// settings is the effective configuration of one command: manifest values
// first, then explicit flags.
type settings struct {
	Manifest *project.Manifest
	Input    string
	Name     string
	Targets  []string
	Passes   passes.Config
	Jobs     int
	Cache    bool
	OutDir   string
}

// resolveSettings finds the module to compile. A file argument is compiled
// directly; a directory or no argument looks for flint.toml upwards.
func resolveSettings(cmd *cobra.Command, args []string) (*settings, error) {
	s := &settings{
		Targets: slices.Clone(project.DefaultTargets),
		Passes:  passes.Config{MaxDiagnostics: project.DefaultMaxDiagnostics},
		Cache:   true,
		OutDir:  project.DefaultOutDir,
	}

	start := "."
	if len(args) > 0 && args[0] != "" {
		start = args[0]
	}
	info, err := os.Stat(start)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", start, err)
	}

	switch {
	case !info.IsDir() && filepath.Base(start) != project.ManifestName:
		s.Input = start
		s.Name = strings.TrimSuffix(filepath.Base(start), filepath.Ext(start))
	default:
		path := start
		if info.IsDir() {
			var ok bool
			path, ok, err = project.FindManifest(start)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errors.New(noManifestMessage)
			}
		}
		m, err := project.LoadManifest(path)
		if err != nil {
			return nil, err
		}
		s.Manifest = m
		s.Input = m.InputPath()
		s.Name = m.Package.Name
		s.Targets = slices.Clone(m.Build.Targets)
		s.Passes = m.PassConfig()
		s.Jobs = m.Build.Jobs
		s.Cache = m.Build.Cache
		s.OutDir = m.OutPath()
	}

	if err := s.applyFlags(cmd); err != nil {
		return nil, err
	}
	return s, nil
}

// changed reports whether the command defines flag name and the user set it.
func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func (s *settings) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if changed(cmd, "max-diagnostics") {
		n, err := flags.GetInt("max-diagnostics")
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("--max-diagnostics must not be negative")
		}
		s.Passes.MaxDiagnostics = n
	}
	if changed(cmd, "target") {
		targets, err := flags.GetStringSlice("target")
		if err != nil {
			return err
		}
		s.Targets = targets
	}
	if changed(cmd, "verification") {
		v, err := flags.GetString("verification")
		if err != nil {
			return err
		}
		mode, ok := passes.ParseVerification(v)
		if !ok {
			return fmt.Errorf("unknown verification mode %q (supported: runtime, verified)", v)
		}
		s.Passes.Verification = mode
	}
	if changed(cmd, "check-all-functions") {
		all, err := flags.GetBool("check-all-functions")
		if err != nil {
			return err
		}
		s.Passes.CheckAllFunctions = all
	}
	if changed(cmd, "jobs") {
		jobs, err := flags.GetInt("jobs")
		if err != nil {
			return err
		}
		s.Jobs = jobs
	}
	if changed(cmd, "no-cache") {
		off, err := flags.GetBool("no-cache")
		if err != nil {
			return err
		}
		s.Cache = !off
	}
	if changed(cmd, "out-dir") {
		out, err := flags.GetString("out-dir")
		if err != nil {
			return err
		}
		s.OutDir = out
	}
	return nil
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
