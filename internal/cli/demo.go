package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trigkit/trig/internal/harness"
	"github.com/trigkit/trig/internal/machines"
)

// DemoOptions holds flags for the demo command.
type DemoOptions struct {
	*RootOptions
	Params     []string
	InstanceID string
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DemoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "demo <machine>",
		Short: "Build a machine, start it, run to idle, and print the trace",
		Long: `Build a registered machine, run its initial evaluation pass, let the
executor drain, and print the dispatch trace and final field values.

Example:
  trig demo counter --param count_to=5
  trig demo trafficlight --param cycles_to=3 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Params, "param", nil, "machine parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.InstanceID, "id", "demo", "instance identity")

	return cmd
}

func runDemo(opts *DemoOptions, machine string, cmd *cobra.Command) error {
	if _, ok := machines.Lookup(machine); !ok {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("unknown machine %q (have %v)", machine, machines.Names()))
	}

	params, err := parseParams(opts.Params)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --param", err)
	}

	// A demo is a scenario with no steps: start, drain, report.
	result, err := harness.Run(&harness.Scenario{
		Name:       "demo",
		Machine:    machine,
		Params:     params,
		InstanceID: opts.InstanceID,
		Start:      true,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "demo failed", err)
	}

	out := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	return writeResult(out, result)
}

// parseParams converts key=value pairs, guessing the value type the
// way a YAML scalar would decode: int, then bool, then string.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		if n, err := strconv.Atoi(raw); err == nil {
			params[key] = n
		} else if b, err := strconv.ParseBool(raw); err == nil {
			params[key] = b
		} else {
			params[key] = raw
		}
	}
	return params, nil
}
