package main

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"flintc/internal/backend/evm"
	"flintc/internal/yulvm"
)

// simulation describes one deploy-and-call session run on the Yul
// interpreter after an EVM build.
type simulation struct {
	Contract   string
	Caller     *big.Int
	DeployArgs []*big.Int
	Calls      []simCall
	StepLimit  int
}

type simCall struct {
	Signature string
	Args      []*big.Int
}

func addSimulationFlags(flags *pflag.FlagSet) {
	flags.Bool("simulate", false, "deploy the EVM output on the built-in Yul interpreter and run --call")
	flags.String("contract", "", "contract to simulate (default: the first one)")
	flags.String("caller", "0x1", "caller address for deployment and calls")
	flags.StringSlice("deploy-arg", nil, "initializer argument words")
	flags.StringArray("call", nil, "call to run, as signature=arg,arg (e.g. deposit(uint256)=5)")
	flags.Int("step-limit", 0, "statement budget per call (0 = unlimited)")
}

// readSimulation returns nil when --simulate is not set.
func readSimulation(cmd *cobra.Command) (*simulation, error) {
	flags := cmd.Flags()
	on, err := flags.GetBool("simulate")
	if err != nil || !on {
		return nil, err
	}
	sim := &simulation{}
	if sim.Contract, err = flags.GetString("contract"); err != nil {
		return nil, err
	}
	if sim.StepLimit, err = flags.GetInt("step-limit"); err != nil {
		return nil, err
	}
	caller, err := flags.GetString("caller")
	if err != nil {
		return nil, err
	}
	if sim.Caller, err = parseWord(caller); err != nil {
		return nil, fmt.Errorf("--caller: %w", err)
	}
	deployArgs, err := flags.GetStringSlice("deploy-arg")
	if err != nil {
		return nil, err
	}
	if sim.DeployArgs, err = parseWords(deployArgs); err != nil {
		return nil, fmt.Errorf("--deploy-arg: %w", err)
	}
	calls, err := flags.GetStringArray("call")
	if err != nil {
		return nil, err
	}
	for _, c := range calls {
		call, err := parseCall(c)
		if err != nil {
			return nil, err
		}
		sim.Calls = append(sim.Calls, call)
	}
	return sim, nil
}

func parseCall(s string) (simCall, error) {
	sig, rest, _ := strings.Cut(s, "=")
	sig = strings.TrimSpace(sig)
	if !strings.HasSuffix(sig, ")") || !strings.Contains(sig, "(") {
		return simCall{}, fmt.Errorf("--call %q: expected signature=args", s)
	}
	var parts []string
	if rest = strings.TrimSpace(rest); rest != "" {
		parts = strings.Split(rest, ",")
	}
	args, err := parseWords(parts)
	if err != nil {
		return simCall{}, fmt.Errorf("--call %q: %w", s, err)
	}
	return simCall{Signature: sig, Args: args}, nil
}

func parseWords(in []string) ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(in))
	for _, s := range in {
		w, err := parseWord(s)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// parseWord accepts decimal and 0x-prefixed hex words, and true/false.
func parseWord(s string) (*big.Int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	switch s {
	case "true":
		return big.NewInt(1), nil
	case "false":
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok || v.Sign() < 0 || v.Cmp(yulvm.MaxWord()) > 0 {
		return nil, fmt.Errorf("invalid word %q", s)
	}
	return v, nil
}

func runSimulation(w io.Writer, prog *evm.Program, sim *simulation) error {
	if prog == nil || len(prog.Objects) == 0 {
		return fmt.Errorf("no EVM program to simulate")
	}
	name := sim.Contract
	if name == "" {
		name = prog.Objects[0].Name
	}
	obj, ok := prog.Object(name)
	if !ok {
		return fmt.Errorf("no contract %q in the EVM output", name)
	}
	c, err := yulvm.Deploy(obj, sim.Caller, sim.DeployArgs...)
	if err != nil {
		return fmt.Errorf("deploy %s: %w", name, err)
	}
	c.StepLimit = sim.StepLimit
	fmt.Fprintf(w, "deployed %s\n", name)

	for _, call := range sim.Calls {
		res, err := c.Call(sim.Caller, yulvm.Calldata(call.Signature, call.Args...))
		var rev *yulvm.Revert
		switch {
		case errors.As(err, &rev):
			fmt.Fprintf(w, "%s: reverted\n", call.Signature)
			continue
		case err != nil:
			return fmt.Errorf("%s: %w", call.Signature, err)
		}
		fmt.Fprintf(w, "%s = %s", call.Signature, res.Value())
		if len(res.Logs) > 0 {
			fmt.Fprintf(w, " (%d log(s))", len(res.Logs))
		}
		fmt.Fprintln(w)
	}
	for _, tr := range c.Transfers {
		fmt.Fprintf(w, "transfer %s to 0x%x\n", tr.Value, tr.To)
	}
	return nil
}
