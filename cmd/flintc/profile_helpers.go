package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flintc/internal/prof"
)

// profileOptions reads --cpu-profile, --mem-profile and --runtime-trace.
func profileOptions(cmd *cobra.Command) (prof.Options, error) {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"cpu-profile", &opts.CPU},
		{"mem-profile", &opts.Heap},
		{"runtime-trace", &opts.Trace},
	} {
		v, err := flags.GetString(f.name)
		if err != nil {
			return opts, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
		*f.dst = v
	}
	return opts, nil
}

// setupProfiling starts the requested profiles. The returned stop reports
// write failures on stderr and may be called more than once.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	opts, err := profileOptions(cmd)
	if err != nil {
		return nil, err
	}
	if !opts.Enabled() {
		return func() {}, nil
	}
	session, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "profile: %v\n", err)
		}
	}, nil
}
