package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"flintc/internal/layout"
	"flintc/internal/lower"
	"flintc/internal/version"
	"flintc/internal/yulvm"
)

var rootCmd = &cobra.Command{
	Use:           "flintc",
	Short:         "Flint smart-contract compiler",
	Long:          `flintc lowers Flint contract modules to Yul for the EVM and to Move IR`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		stopTrace, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		stopProf, err := setupProfiling(cmd)
		if err != nil {
			stopTrace()
			return err
		}
		cleanup = func() {
			stopProf()
			stopTrace()
		}
		return nil
	},
}

// cleanup is set by the pre-run hook and runs once the command returns.
var cleanup = func() {}

// exitInternal is the status for faults inside the compiler itself.
const exitInternal = 2

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(passesCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to collect (0 = unlimited)")
	flags.String("diagnostics", "pretty", "diagnostics format (pretty|json)")
	flags.String("min-severity", "info", "hide diagnostics below this severity (info|warning|error)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|stage|step|unit)")
	flags.String("trace-mode", "ring", "trace storage (ring|stream|both)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")

	err := rootCmd.Execute()
	cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(exitCode(err))
	}
}

// exitCode is exitInternal for compiler faults and 1 otherwise. A fault
// also dumps the trace ring.
func exitCode(err error) int {
	var (
		ie    *lower.InternalError
		le    *layout.LayoutError
		fault *yulvm.Fault
	)
	if errors.As(err, &ie) || errors.As(err, &le) || errors.As(err, &fault) {
		dumpTraceRing(rootCmd)
		return exitInternal
	}
	return 1
}

func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
