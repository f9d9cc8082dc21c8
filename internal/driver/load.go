// Package driver loads input modules and caches lowered output.
package driver

import (
	"fmt"
	"os"

	"flintc/internal/ast"
	"flintc/internal/astio"
	"flintc/internal/source"
)

// LoadResult is a decoded input module.
type LoadResult struct {
	FileSet *source.FileSet
	File    source.FileID
	Module  *ast.Module
	// Data holds the raw input bytes, which key the IR cache.
	Data []byte
}

// Load reads and decodes the module document at path. The encoding is
// chosen from the file extension.
func Load(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(path, data)
}

// LoadBytes decodes data as if it had been read from path.
func LoadBytes(path string, data []byte) (*LoadResult, error) {
	fs := source.NewFileSet()
	id := fs.Add(path)
	mod, err := astio.Decode(data, astio.FormatForPath(path), id)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &LoadResult{FileSet: fs, File: id, Module: mod, Data: data}, nil
}
