package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"flintc/internal/project"
)

const defaultModuleName = "module.yaml"

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new Flint project",
	Long: `Initialize a new Flint project by creating a manifest (flint.toml) and a
counter contract module (module.yaml). If [path|name] is omitted, initializes
the current directory. A non-existing name creates the directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit refuses to overwrite an existing flint.toml and keeps an existing
// module.yaml.
func runInit(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	target := wd
	if len(args) > 0 && args[0] != "." {
		target = args[0]
		if !filepath.IsAbs(target) {
			target = filepath.Join(wd, target)
		}
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "flint-project"
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(buildDefaultManifest(name)), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	modulePath := filepath.Join(target, defaultModuleName)
	createdModule := false
	if _, err := os.Stat(modulePath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(modulePath, []byte(defaultModule), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", defaultModuleName, err)
		}
		createdModule = true
	}

	out := cmd.OutOrStdout()
	rel := target
	if r, err := filepath.Rel(wd, target); err == nil {
		rel = r
	}
	fmt.Fprintf(out, "Initialized flint project in %s\n", rel)
	fmt.Fprintf(out, "  - %s\n", project.ManifestName)
	if createdModule {
		fmt.Fprintf(out, "  - %s\n", defaultModuleName)
	} else {
		fmt.Fprintf(out, "  - %s (existing)\n", defaultModuleName)
	}
	return nil
}

func buildDefaultManifest(name string) string {
	return fmt.Sprintf(`# Flint project manifest
[package]
name = %q
input = %q

[build]
targets = ["evm", "move"]
verification = "runtime"
`, name, defaultModuleName)
}

const defaultModule = `# Counter: one property, a constructor and two public functions.
decls:
  - at: "1:1-3:2"
    contract:
      name: Counter
      properties:
        - {name: value, type: Int, default: {int: "0"}, at: "2:3-2:22"}

  - at: "5:1-15:2"
    behavior:
      contract: Counter
      protections: [any]
      functions:
        - kind: init
          public: true
          at: "6:3-6:14"
          body: []
        - name: increment
          public: true
          mutating: true
          at: "7:3-9:4"
          body:
            - expr: {op: "+=", lhs: {ident: value}, rhs: {int: "1"}}
        - name: get
          public: true
          result: Int
          at: "11:3-13:4"
          body:
            - return: {value: {ident: value}}
`
