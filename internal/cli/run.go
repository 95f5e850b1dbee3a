package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trigkit/trig/internal/harness"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute a scenario file and report assertion results",
		Long: `Execute a YAML scenario against its machine and report the dispatch
trace, final field values, and assertion failures.

Example:
  trig run scenarios/gate_opens_once.yaml
  trig run scenarios/counter.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := harness.LoadScenario(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load scenario", err)
			}

			result, err := harness.Run(scenario)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to run scenario", err)
			}

			out := &OutputFormatter{
				Format:  rootOpts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: rootOpts.Verbose,
			}
			if err := writeResult(out, result); err != nil {
				return err
			}
			if !result.Passed() {
				return NewExitError(ExitFailure,
					fmt.Sprintf("scenario %q failed: %d assertion(s)", result.Scenario, len(result.Errors)))
			}
			return nil
		},
	}
}

// resultReport is the JSON payload for demo and run output.
type resultReport struct {
	Scenario string               `json:"scenario"`
	Machine  string               `json:"machine"`
	Passed   bool                 `json:"passed"`
	Trace    []harness.TraceEvent `json:"trace"`
	Final    map[string]any       `json:"final"`
	Errors   []string             `json:"errors,omitempty"`
}

// writeResult renders a harness result in the configured format.
func writeResult(out *OutputFormatter, result *harness.Result) error {
	if out.Format == "json" {
		return out.Success(resultReport{
			Scenario: result.Scenario,
			Machine:  result.Machine,
			Passed:   result.Passed(),
			Trace:    result.Trace,
			Final:    result.Final,
			Errors:   result.Errors,
		})
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario: %s\nmachine: %s\n", result.Scenario, result.Machine)

	fmt.Fprintf(&buf, "trace (%d dispatches):\n", len(result.Trace))
	for i, event := range result.Trace {
		fmt.Fprintf(&buf, "  [%d] %s on %s (%s: %v -> %v)\n",
			i+1, event.Reaction, event.Instance, event.Field, event.Old, event.New)
	}

	fields := make([]string, 0, len(result.Final))
	for field := range result.Final {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	fmt.Fprintln(&buf, "final:")
	for _, field := range fields {
		fmt.Fprintf(&buf, "  %s: %v\n", field, result.Final[field])
	}

	if result.Passed() {
		fmt.Fprint(&buf, "PASS")
	} else {
		for _, msg := range result.Errors {
			fmt.Fprintf(&buf, "%s\n", strings.TrimRight(msg, "\n"))
		}
		fmt.Fprintf(&buf, "FAIL (%d failures)", len(result.Errors))
	}
	return out.Success(buf.String())
}
