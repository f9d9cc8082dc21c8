package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"flintc/internal/ast"
	"flintc/internal/backend/evm"
	"flintc/internal/backend/move"
	"flintc/internal/diag"
	"flintc/internal/driver"
	"flintc/internal/env"
	"flintc/internal/layout"
	"flintc/internal/observ"
	"flintc/internal/passes"
	"flintc/internal/prof"
	"flintc/internal/project"
	"flintc/internal/source"
	"flintc/internal/trace"
)

// ErrDiagnostics is returned when the diagnostics bag holds errors and
// lowering was skipped.
var ErrDiagnostics = errors.New("diagnostics reported errors")

// CompileRequest configures the shared compilation pipeline.
type CompileRequest struct {
	// Input is the path of the module document. Data, when set, is used
	// instead of reading Input.
	Input string
	Data  []byte

	Targets []string
	Passes  passes.Config
	// Jobs bounds the targets lowered at once; zero means GOMAXPROCS.
	Jobs int

	Cache    *driver.IRCache
	Progress ProgressSink
	Timer    *observ.Timer
}

// Output is the lowered program of one target. Program values are nil
// when the output came from the cache.
type Output struct {
	Target string
	Text   string
	Units  []string
	Cached bool

	EVM  *evm.Program
	Move *move.Program
}

// CompileResult captures compilation artefacts and stage timings.
type CompileResult struct {
	Files   *source.FileSet
	Module  *ast.Module
	Env     *env.Environment
	Bag     *diag.Bag
	Engines map[string]*layout.Engine
	// Outputs follow the order of CompileRequest.Targets.
	Outputs []Output
	Timings Timings
}

// Output returns the output of target.
func (r *CompileResult) Output(target string) (Output, bool) {
	for _, o := range r.Outputs {
		if o.Target == target {
			return o, true
		}
	}
	return Output{}, false
}

type stageRun struct {
	ctx    context.Context
	req    *CompileRequest
	result *CompileResult
}

func (s *stageRun) run(stage Stage, fn func(ctx context.Context) error) error {
	lap := s.req.Timer.Start(string(stage))
	ctx, span := trace.Start(s.ctx, trace.ScopeStage, "stage:"+string(stage))
	emit(s.req.Progress, "", stage, StatusWorking, nil, 0)
	start := time.Now()

	err := fn(ctx)

	elapsed := time.Since(start)
	s.result.Timings.Set(stage, elapsed)
	status := StatusDone
	if err != nil {
		status = StatusError
		span.Set("error", err.Error())
	}
	span.End(string(status))
	lap.Stop(string(status))
	emit(s.req.Progress, "", stage, status, err, elapsed)
	return err
}

// Compile runs decode, collect, passes, layout and lowering for every
// requested target. Lowering is skipped when any earlier stage reported an
// error diagnostic; the returned error is then ErrDiagnostics and the bag
// in the result explains why.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	var result CompileResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing compile request")
	}
	if req.Input == "" {
		return result, fmt.Errorf("missing input path")
	}
	targets := req.Targets
	if len(targets) == 0 {
		targets = []string{"evm"}
	}
	layoutTargets := make([]layout.Target, 0, len(targets))
	for _, name := range targets {
		t, ok := layout.TargetByName(name)
		if !ok {
			return result, fmt.Errorf("unknown target %q (supported: evm, move)", name)
		}
		if slices.ContainsFunc(layoutTargets, func(prev layout.Target) bool { return prev.Name == name }) {
			return result, fmt.Errorf("target %q requested twice", name)
		}
		layoutTargets = append(layoutTargets, t)
	}
	for _, name := range targets {
		emit(req.Progress, name, StageLower, StatusQueued, nil, 0)
	}

	ctx, span := trace.Start(ctx, trace.ScopeBuild, "compile")
	span.Set("input", req.Input)
	defer span.End("")

	s := &stageRun{ctx: ctx, req: req, result: &result}
	result.Bag = diag.NewBag(req.Passes.MaxDiagnostics)
	reporter := diag.NewLockedReporter(diag.BagReporter{Bag: result.Bag})

	var loaded *driver.LoadResult
	err := s.run(StageDecode, func(context.Context) error {
		var err error
		if req.Data != nil {
			loaded, err = driver.LoadBytes(req.Input, req.Data)
		} else {
			loaded, err = driver.Load(req.Input)
		}
		return err
	})
	if err != nil {
		return result, err
	}
	result.Files = loaded.FileSet

	_ = s.run(StageCollect, func(context.Context) error {
		result.Env = env.Collect(loaded.Module, reporter)
		return nil
	})

	_ = s.run(StagePasses, func(ctx context.Context) error {
		mod, e, bag := passes.Run(ctx, loaded.Module, result.Env, passes.Default(req.Passes), req.Passes)
		result.Module, result.Env = mod, e
		result.Bag.Merge(bag)
		checkModule(mod, e, reporter)
		for _, name := range targets {
			checkTarget(mod, name, reporter)
		}
		return nil
	})
	if result.Bag.HasErrors() {
		return result, ErrDiagnostics
	}

	err = s.run(StageLayout, func(context.Context) error {
		result.Engines = make(map[string]*layout.Engine, len(layoutTargets))
		for _, t := range layoutTargets {
			eng := layout.New(t, result.Env)
			for _, ti := range result.Env.Types() {
				if ti.Kind != env.KindContract && ti.Kind != env.KindStruct {
					continue
				}
				if _, err := eng.LayoutOf(ti.Name); err != nil {
					return fmt.Errorf("%s: %w", t.Name, err)
				}
			}
			result.Engines[t.Name] = eng
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	mode := req.Passes.Verification.String()
	key := func(target string) project.Digest {
		return driver.IRKey(loaded.Data, target, mode)
	}
	outputs, durations, err := lowerTargets(ctx, req, targets, &result, key)
	for i, name := range targets {
		result.Timings.Set(LowerStage(name), durations[i])
	}
	if err != nil {
		return result, err
	}
	result.Outputs = outputs
	return result, nil
}

func lowerTargets(ctx context.Context, req *CompileRequest, targets []string, result *CompileResult, key func(string) project.Digest) ([]Output, []time.Duration, error) {
	outputs := make([]Output, len(targets))
	durations := make([]time.Duration, len(targets))
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, name := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			lap := req.Timer.Start(string(LowerStage(name)))
			emit(req.Progress, name, StageLower, StatusWorking, nil, 0)
			tctx, span := trace.Start(trace.ForTarget(ctx, name), trace.ScopeStep, "lower:"+name)

			var out Output
			var err error
			prof.Target(tctx, string(StageLower), name, func(context.Context) {
				out, err = lowerTarget(name, result, req.Cache, key(name), req.Passes.Verification.String())
			})

			durations[i] = time.Since(start)
			status := StatusDone
			switch {
			case err != nil:
				status = StatusError
				span.Set("error", err.Error())
			case out.Cached:
				status = StatusCached
			}
			for _, unit := range out.Units {
				trace.Note(tctx, trace.ScopeUnit, "unit", unit)
			}
			span.Set("units", fmt.Sprint(len(out.Units))).End(string(status))
			lap.Stop(string(status))
			emit(req.Progress, name, StageLower, status, err, durations[i])
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			outputs[i] = out
			return nil
		})
	}
	err := g.Wait()
	return outputs, durations, err
}

// lowerTarget produces the output of one target. The environment and
// module are shared between targets and only read here.
func lowerTarget(target string, result *CompileResult, cache *driver.IRCache, key project.Digest, mode string) (Output, error) {
	out := Output{Target: target}
	var payload driver.IRPayload
	if hit, err := cache.Get(key, &payload); err == nil && hit && payload.Target == target && payload.Verification == mode {
		out.Text, out.Units, out.Cached = payload.Text, payload.Units, true
		return out, nil
	}

	eng := result.Engines[target]
	switch target {
	case "evm":
		prog, err := evm.Generate(result.Module, result.Env, eng)
		if err != nil {
			return out, err
		}
		out.EVM, out.Text = prog, prog.Text()
		for _, o := range prog.Objects {
			out.Units = append(out.Units, o.Name)
		}
	case "move":
		prog, err := move.Generate(result.Module, result.Env, eng)
		if err != nil {
			return out, err
		}
		out.Move, out.Text = prog, prog.Text()
		for _, m := range prog.Modules {
			out.Units = append(out.Units, move.Sanitize(m.Name))
		}
	default:
		return out, fmt.Errorf("unknown target %q", target)
	}

	if cache != nil {
		err := cache.Put(key, &driver.IRPayload{
			Target: target, Verification: mode, Input: key,
			Text: out.Text, Units: out.Units,
		})
		if err != nil {
			return out, fmt.Errorf("write IR cache: %w", err)
		}
	}
	return out, nil
}
