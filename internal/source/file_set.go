package source

import (
	"fmt"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet names the Flint source files referenced by an AST document.
// The compiler core never reads the files themselves.
type FileSet struct {
	paths []string
	index map[string]FileID // path -> id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// Add registers path and returns its FileID. Adding the same path twice
// returns the same id.
func (fs *FileSet) Add(path string) FileID {
	path = normalizePath(path)
	if id, ok := fs.index[path]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(fs.paths))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(n)
	fs.paths = append(fs.paths, path)
	fs.index[path] = id
	return id
}

// Path returns the registered path for id, or "" when unknown.
func (fs *FileSet) Path(id FileID) string {
	if fs == nil || int(id) >= len(fs.paths) {
		return ""
	}
	return fs.paths[id]
}

// Len returns the number of registered files.
func (fs *FileSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.paths)
}

// Format renders span as "path:line:col" for messages.
func (fs *FileSet) Format(span Span) string {
	if span.IsSynthetic() {
		return "<synthetic>"
	}
	path := fs.Path(span.File)
	if path == "" {
		path = fmt.Sprintf("file#%d", span.File)
	}
	return fmt.Sprintf("%s:%d:%d", path, span.Start.Line, span.Start.Col)
}

func normalizePath(p string) string {
	// forward slashes keep diffs stable across platforms
	return filepath.ToSlash(filepath.Clean(p))
}
