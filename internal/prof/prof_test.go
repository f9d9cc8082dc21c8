package prof_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime/pprof"
	"testing"

	"flintc/internal/prof"
)

func TestSessionWritesRequestedFiles(t *testing.T) {
	dir := t.TempDir()
	opts := prof.Options{
		CPU:   filepath.Join(dir, "cpu.out"),
		Heap:  filepath.Join(dir, "heap.out"),
		Trace: filepath.Join(dir, "trace.out"),
	}
	s, err := prof.Start(opts)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
	for _, path := range []string{opts.CPU, opts.Heap, opts.Trace} {
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Fatalf("%s not written: %v", filepath.Base(path), err)
		}
	}
}

func TestStartFailsOnBadPath(t *testing.T) {
	_, err := prof.Start(prof.Options{CPU: filepath.Join(t.TempDir(), "missing", "cpu.out")})
	if err == nil {
		t.Fatalf("start succeeded with an unwritable path")
	}
	if (prof.Options{}).Enabled() {
		t.Fatalf("empty options report enabled")
	}
}

func TestTargetSetsLabels(t *testing.T) {
	var got string
	prof.Target(context.Background(), "lower", "move", func(ctx context.Context) {
		got, _ = pprof.Label(ctx, "target")
	})
	if got != "move" {
		t.Fatalf("target label = %q", got)
	}
}
