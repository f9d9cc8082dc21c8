// Package prof captures Go runtime profiles of a compiler run.
package prof

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	rtrace "runtime/trace"
)

// Options names the files a Session writes; empty paths are skipped.
type Options struct {
	CPU   string
	Heap  string
	Trace string
}

// Enabled reports whether any profile was requested.
func (o Options) Enabled() bool {
	return o.CPU != "" || o.Heap != "" || o.Trace != ""
}

// Session is a running set of profiles. Stop ends it exactly once.
type Session struct {
	opts  Options
	cpu   *os.File
	trace *os.File
	done  bool
}

// Start begins CPU profiling and runtime tracing as requested. The heap
// profile is written by Stop.
func Start(opts Options) (*Session, error) {
	// opts is recorded last so a failed start writes no heap profile.
	s := &Session{}
	if opts.CPU != "" {
		f, err := os.Create(opts.CPU)
		if err != nil {
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		s.cpu = f
	}
	if opts.Trace != "" {
		f, err := os.Create(opts.Trace)
		if err != nil {
			_ = s.Stop()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		if err := rtrace.Start(f); err != nil {
			_ = f.Close()
			_ = s.Stop()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		s.trace = f
	}
	s.opts = opts
	return s, nil
}

// Stop ends tracing and CPU profiling, then writes the heap profile.
func (s *Session) Stop() error {
	if s == nil || s.done {
		return nil
	}
	s.done = true
	var errs []error
	if s.trace != nil {
		rtrace.Stop()
		errs = append(errs, s.trace.Close())
	}
	if s.cpu != nil {
		pprof.StopCPUProfile()
		errs = append(errs, s.cpu.Close())
	}
	if s.opts.Heap != "" {
		errs = append(errs, writeHeap(s.opts.Heap))
	}
	return errors.Join(errs...)
}

func writeHeap(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}

// Target runs fn with profiler labels naming the stage and target, so CPU
// samples taken while lowering can be split per backend. The same labels
// mark a runtime trace region.
func Target(ctx context.Context, stage, target string, fn func(context.Context)) {
	pprof.Do(ctx, pprof.Labels("stage", stage, "target", target), func(ctx context.Context) {
		defer rtrace.StartRegion(ctx, stage+":"+target).End()
		fn(ctx)
	})
}
