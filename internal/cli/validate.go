package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/stresslens/swesim/internal/scenario"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario file without running it",
		Long: `Validate a scenario file against the scenario schema.

Checks YAML syntax, the schema (name, horizon, path types), and that every
market path covers the full horizon.

Example:
  swesim validate scenarios/gilt_shock.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

type validateResult struct {
	Scenario    string   `json:"scenario"`
	HorizonDays int      `json:"horizon_days"`
	Paths       []string `json:"paths"`
	Valid       bool     `json:"valid"`
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario invalid", err)
	}

	paths := make([]string, 0, len(sc.Paths))
	for name := range sc.Paths {
		paths = append(paths, name)
	}
	sort.Strings(paths)

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), validateResult{
			Scenario:    sc.Name,
			HorizonDays: sc.HorizonDays,
			Paths:       paths,
			Valid:       true,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Scenario %q valid: %d days, %d market paths\n",
		sc.Name, sc.HorizonDays, len(paths))
	if opts.Verbose {
		for _, name := range paths {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
		}
	}
	return nil
}
