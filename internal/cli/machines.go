package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trigkit/trig/internal/machines"
)

// MachineInfo is the listing entry for one registered machine.
type MachineInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewMachinesCommand creates the machines command.
func NewMachinesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "machines",
		Short:         "List registered state machines",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{
				Format:  rootOpts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: rootOpts.Verbose,
			}

			infos := make([]MachineInfo, 0, len(machines.Names()))
			for _, name := range machines.Names() {
				m, _ := machines.Lookup(name)
				infos = append(infos, MachineInfo{
					Name:        m.Name,
					Description: m.Description,
				})
			}

			if rootOpts.Format == "json" {
				return out.Success(infos)
			}

			var buf strings.Builder
			tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDESCRIPTION")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\n", info.Name, info.Description)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return out.Success(strings.TrimRight(buf.String(), "\n"))
		},
	}
}
