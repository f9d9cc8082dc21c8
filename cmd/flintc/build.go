package main

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"flintc/internal/buildpipeline"
	"flintc/internal/driver"
	"flintc/internal/observ"
	"flintc/internal/trace"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path]",
	Short: "Compile a Flint module for the EVM and Move",
	Long: `Compile a Flint module and write one output per target.
The module comes from flint.toml, or from path when it names a module file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: buildExecution,
}

func buildExecution(cmd *cobra.Command, args []string) error {
	useUI, err := progressUI(cmd)
	if err != nil {
		return err
	}
	sim, err := readSimulation(cmd)
	if err != nil {
		return err
	}

	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	if sim != nil && !slices.Contains(s.Targets, "evm") {
		return fmt.Errorf("--simulate requires the evm target")
	}

	req := buildpipeline.BuildRequest{
		CompileRequest: buildpipeline.CompileRequest{
			Input:   s.Input,
			Targets: s.Targets,
			Passes:  s.Passes,
			Jobs:    s.Jobs,
		},
		OutDir: s.OutDir,
		Name:   s.Name,
	}
	// Simulation needs the program tree, which cached outputs do not carry.
	if s.Cache && sim == nil {
		cache, cacheErr := driver.OpenIRCache("flintc")
		if cacheErr != nil {
			trace.Note(cmd.Context(), trace.ScopeStage, "cache-unavailable", cacheErr.Error())
		} else {
			req.Cache = cache
		}
	}
	var timer *observ.Timer
	if showTimings(cmd) {
		timer = observ.NewTimer()
		req.Timer = timer
	}

	var res buildpipeline.BuildResult
	if useUI {
		res, err = runBuildWithUI(cmd.Context(), "flintc build", s.Targets, &req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), &req)
	}
	if perr := printDiagnostics(cmd, os.Stderr, res.Bag, res.CompileResult.Files); perr != nil {
		return perr
	}
	if showTimings(cmd) {
		printStageTimings(os.Stdout, res.Timings, s.Targets)
		printTimer(os.Stdout, timer)
	}
	if err != nil {
		if errors.Is(err, buildpipeline.ErrDiagnostics) {
			return fmt.Errorf("build failed: %w", err)
		}
		return err
	}

	root := "."
	if s.Manifest != nil {
		root = s.Manifest.Root
	}
	if !quiet(cmd) {
		for _, out := range res.Outputs {
			note := ""
			if out.Cached {
				note = " (cached)"
			}
			fmt.Fprintf(os.Stdout, "built %s%s\n", formatPathForOutput(root, res.Files[out.Target]), note)
		}
	}

	if sim != nil {
		out, _ := res.Output("evm")
		return runSimulation(os.Stdout, out.EVM, sim)
	}
	return nil
}

func init() {
	flags := buildCmd.Flags()
	flags.StringSlice("target", nil, "targets to build (evm, move)")
	flags.String("out-dir", "", "directory receiving build output")
	flags.String("verification", "", "verification mode (runtime|verified)")
	flags.Bool("check-all-functions", false, "check mutation of every function, not only public ones")
	flags.Int("jobs", 0, "targets lowered at once (0 = GOMAXPROCS)")
	flags.Bool("no-cache", false, "bypass the lowered output cache")
	flags.String("ui", "auto", "user interface (auto|on|off)")
	addSimulationFlags(flags)
}
