// Package buildpipeline orchestrates the compilation process.
package buildpipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BuildRequest configures output generation for a compilation.
type BuildRequest struct {
	CompileRequest
	// OutDir receives one file per target; empty means "build".
	OutDir string
	// Name is the base name of the written files; it defaults to the
	// input file name without extension.
	Name string
}

// BuildResult captures build artefacts and timings.
type BuildResult struct {
	CompileResult
	// Files maps a target to the path its output was written to.
	Files map[string]string
}

// Extension returns the output file extension of target.
func Extension(target string) string {
	if target == "move" {
		return ".mvir"
	}
	return ".yul"
}

// Build compiles and writes every target's output to OutDir.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	compileRes, err := Compile(ctx, &req.CompileRequest)
	result.CompileResult = compileRes
	if err != nil {
		return result, err
	}

	outDir := req.OutDir
	if outDir == "" {
		outDir = "build"
	}
	name := req.Name
	if name == "" {
		base := filepath.Base(req.Input)
		name = base[:len(base)-len(filepath.Ext(base))]
	}

	start := time.Now()
	emit(req.Progress, "", StageWrite, StatusWorking, nil, 0)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		err = fmt.Errorf("failed to create output directory: %w", err)
		emit(req.Progress, "", StageWrite, StatusError, err, 0)
		return result, err
	}
	result.Files = make(map[string]string, len(compileRes.Outputs))
	for _, out := range compileRes.Outputs {
		path := filepath.Join(outDir, name+Extension(out.Target))
		if err := writeFileAtomic(path, []byte(out.Text)); err != nil {
			err = fmt.Errorf("%s: %w", out.Target, err)
			emit(req.Progress, out.Target, StageWrite, StatusError, err, 0)
			return result, err
		}
		result.Files[out.Target] = path
	}
	elapsed := time.Since(start)
	result.Timings.Set(StageWrite, elapsed)
	emit(req.Progress, "", StageWrite, StatusDone, nil, elapsed)
	return result, nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(f.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
