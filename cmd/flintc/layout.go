package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flintc/internal/env"
	"flintc/internal/layout"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [flags] [path]",
	Short: "Print storage and memory layouts of contracts and structs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  layoutExecution,
}

func layoutExecution(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	typeName, err := cmd.Flags().GetString("type")
	if err != nil {
		return err
	}
	fe, err := runFrontend(cmd.Context(), s.Input, s.Passes)
	if err != nil {
		return err
	}
	if perr := printDiagnostics(cmd, os.Stderr, fe.Bag, fe.Files); perr != nil {
		return perr
	}
	if fe.Bag.HasErrors() {
		return errors.New("layout failed: diagnostics reported errors")
	}

	out := cmd.OutOrStdout()
	for _, name := range s.Targets {
		target, ok := layout.TargetByName(name)
		if !ok {
			return fmt.Errorf("unknown target %q (supported: evm, move)", name)
		}
		eng := layout.New(target, fe.Env)
		color.New(color.Bold).Fprintf(out, "target %s (%d-byte words)\n", target.Name, target.WordBytes)
		found := false
		for _, ti := range fe.Env.Types() {
			if ti.Kind != env.KindContract && ti.Kind != env.KindStruct {
				continue
			}
			if typeName != "" && ti.Name != typeName {
				continue
			}
			found = true
			if err := printTypeLayout(out, eng, ti); err != nil {
				return err
			}
		}
		if typeName != "" && !found {
			return fmt.Errorf("no contract or struct named %q", typeName)
		}
	}
	return nil
}

func printTypeLayout(out io.Writer, eng *layout.Engine, ti *env.TypeInformation) error {
	tl, err := eng.LayoutOf(ti.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  %s %s: %d word(s)\n", ti.Kind, tl.Name, tl.Size)
	if ti.Kind == env.KindContract && len(ti.States) > 0 {
		slot, err := eng.StateSlot(ti.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "    %-20s %6d\n", "<state>", slot)
	}
	for _, f := range tl.Fields {
		fmt.Fprintf(out, "    %-20s %6d  %3d  %s\n", f.Name, f.Offset, f.Size, f.Type)
	}
	return nil
}

func init() {
	flags := layoutCmd.Flags()
	flags.StringSlice("target", nil, "targets to lay out (evm, move)")
	flags.String("type", "", "only print this contract or struct")
}
