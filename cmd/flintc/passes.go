package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flintc/internal/astio"
)

var passesCmd = &cobra.Command{
	Use:   "passes [flags] [path]",
	Short: "Run the rewrite passes and print the resulting module",
	Long: `Run collection and the rewrite passes, then print the rewritten module
as YAML (or msgpack with --output).`,
	Args: cobra.MaximumNArgs(1),
	RunE: passesExecution,
}

func passesExecution(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
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
		return errors.New("passes reported errors")
	}

	if output != "" && astio.FormatForPath(output) == astio.FormatMsgpack {
		data, err := astio.EncodeMsgpack(fe.Module)
		if err != nil {
			return err
		}
		return os.WriteFile(output, data, 0o644)
	}
	data, err := astio.EncodeYAML(fe.Module)
	if err != nil {
		return err
	}
	if output != "" {
		return os.WriteFile(output, data, 0o644)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
	return err
}

func init() {
	flags := passesCmd.Flags()
	flags.String("verification", "", "verification mode (runtime|verified)")
	flags.Bool("check-all-functions", false, "check mutation of every function, not only public ones")
	flags.StringP("output", "o", "", "write the module to file (.yaml or .msgpack)")
}
