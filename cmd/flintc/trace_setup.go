package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flintc/internal/trace"
)

// traceConfig turns the --trace* flags into a tracer configuration. Naming
// an output without a level traces stages, and a ring-only mode with an
// output also streams.
func traceConfig(cmd *cobra.Command) (trace.Config, error) {
	flags := cmd.Root().PersistentFlags()
	var cfg trace.Config
	var err error
	get := func(name string) string {
		if err != nil {
			return ""
		}
		var v string
		if v, err = flags.GetString(name); err != nil {
			err = fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		return v
	}
	cfg.Path = get("trace")
	level, mode, format := get("trace-level"), get("trace-mode"), get("trace-format")
	if err != nil {
		return cfg, err
	}
	if cfg.RingSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return cfg, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	if cfg.Level, err = trace.ParseLevel(level); err != nil {
		return cfg, err
	}
	if cfg.Mode, err = trace.ParseMode(mode); err != nil {
		return cfg, err
	}
	if cfg.Format, err = trace.ParseFormat(format); err != nil {
		return cfg, err
	}
	if cfg.Path != "" {
		if cfg.Level == trace.LevelOff {
			cfg.Level = trace.LevelStage
		}
		if cfg.Mode == trace.ModeRing {
			cfg.Mode = trace.ModeBoth
		}
	}
	return cfg, nil
}

// setupTracing attaches the configured tracer to the command context and
// returns a cleanup that closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	cfg, err := traceConfig(cmd)
	if err != nil {
		return nil, err
	}
	tracer, err := trace.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)
	return func() {
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
		}
	}, nil
}

// dumpTraceRing writes the in-memory trace ring to stderr, if there is one.
func dumpTraceRing(cmd *cobra.Command) {
	ring := trace.RingOf(trace.FromContext(cmd.Context()))
	if ring == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "trace (most recent events):")
	if err := ring.Dump(os.Stderr, trace.FormatText); err != nil {
		fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
	}
}
