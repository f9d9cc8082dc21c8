package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flintc/internal/diag"
	"flintc/internal/diagfmt"
	"flintc/internal/source"
)

// printDiagnostics writes the sorted bag to w in the --diagnostics format.
// Nothing is printed for an empty bag.
func printDiagnostics(cmd *cobra.Command, w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 || fs == nil {
		return nil
	}
	flags := cmd.Root().PersistentFlags()
	format, err := flags.GetString("diagnostics")
	if err != nil {
		return err
	}
	minName, err := flags.GetString("min-severity")
	if err != nil {
		return err
	}
	minSev, err := diag.ParseSeverity(minName)
	if err != nil {
		return err
	}

	bag.Sort()
	bag.Dedup()
	switch format {
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{IncludeNotes: true, MinSeverity: uint8(minSev)})
	case "pretty", "":
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{Color: !color.NoColor, ShowNotes: true, MinSeverity: uint8(minSev)})
		fmt.Fprintln(w, diagfmt.Summary(bag))
		return nil
	}
	return fmt.Errorf("invalid --diagnostics value %q (expected pretty|json)", format)
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}

func showTimings(cmd *cobra.Command) bool {
	t, err := cmd.Root().PersistentFlags().GetBool("timings")
	return err == nil && t
}
