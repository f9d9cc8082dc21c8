package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"flintc/internal/driver"
	"flintc/internal/project"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove build output and the lowered output cache",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	base := "."
	if len(args) > 0 && args[0] != "" {
		base = args[0]
	}
	outDir, root, err := resolveCleanTarget(base)
	if err != nil {
		return err
	}

	switch info, err := os.Stat(outDir); {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(out, "output directory not found")
	case err != nil:
		return fmt.Errorf("failed to stat %q: %w", outDir, err)
	case !info.IsDir():
		return fmt.Errorf("%q is not a directory", outDir)
	default:
		if err := os.RemoveAll(outDir); err != nil {
			return fmt.Errorf("failed to remove %q: %w", outDir, err)
		}
		fmt.Fprintf(out, "removed %s\n", formatPathForOutput(root, outDir))
	}

	keepCache, err := cmd.Flags().GetBool("keep-cache")
	if err != nil || keepCache {
		return err
	}
	cache, err := driver.OpenIRCache("flintc")
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	n, err := cache.DropAll()
	if err != nil {
		return fmt.Errorf("failed to drop cache: %w", err)
	}
	fmt.Fprintf(out, "dropped %d cached output(s) from %s\n", n, cache.Dir())
	return nil
}

// resolveCleanTarget returns the output directory named by the manifest
// governing base, or the default one next to base.
func resolveCleanTarget(base string) (outDir, root string, err error) {
	info, err := os.Stat(base)
	if err != nil {
		return "", "", fmt.Errorf("failed to stat %q: %w", base, err)
	}
	if !info.IsDir() {
		base = filepath.Dir(base)
	}
	path, ok, err := project.FindManifest(base)
	if err != nil {
		return "", "", err
	}
	if ok {
		m, err := project.LoadManifest(path)
		if err != nil {
			return "", "", err
		}
		return m.OutPath(), m.Root, nil
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		abs = base
	}
	return filepath.Join(abs, project.DefaultOutDir), abs, nil
}

func init() {
	cleanCmd.Flags().Bool("keep-cache", false, "only remove build output")
}
