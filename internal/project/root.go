package project

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// ManifestName is the project manifest file name.
const ManifestName = "flint.toml"

// FindManifest returns the flint.toml governing dir: the one in dir itself
// or in its nearest ancestor. ok is false when no ancestor has one.
func FindManifest(dir string) (path string, ok bool, err error) {
	abs, err := filepath.Abs(cmp.Or(dir, "."))
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve %q: %w", dir, err)
	}
	for d := range ancestors(abs) {
		candidate := filepath.Join(d, ManifestName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.Mode().IsRegular():
			return candidate, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

// ancestors yields dir and each parent up to the filesystem root.
func ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			if !yield(dir) {
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	}
}
