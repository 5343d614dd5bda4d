package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/network"
	"github.com/stresslens/swesim/internal/population"
)

// NetworkOptions holds flags for the network command.
type NetworkOptions struct {
	*RootOptions
	Seed int64
}

// NewNetworkCommand creates the network command.
func NewNetworkCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NetworkOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Show the generated population and network topology",
		Long: `Generate the seeded population and relationship network and print a
summary of agent counts and edge counts per relationship kind.

Example:
  swesim network --seed 7`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetwork(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Seed, "seed", 42, "population and network seed")

	return cmd
}

type networkResult struct {
	Seed    int64              `json:"seed"`
	Agents  map[string]int     `json:"agents"`
	Total   int                `json:"total_agents"`
	Network network.Summary    `json:"network"`
}

func runNetwork(opts *NetworkOptions, cmd *cobra.Command) error {
	cfg := config.Default()

	agents, err := population.Generate(opts.Seed, population.DefaultDistributions())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to generate population", err)
	}
	net, err := network.Build(network.NodesFor(agents), opts.Seed, cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build network", err)
	}

	counts := make(map[string]int, len(agent.Types))
	for _, a := range agents {
		counts[string(a.Type)]++
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), networkResult{
			Seed:    opts.Seed,
			Agents:  counts,
			Total:   len(agents),
			Network: net.Summarize(),
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Population (seed %d): %d agents\n", opts.Seed, len(agents))
	for _, t := range agent.Types {
		fmt.Fprintf(w, "  %-12s %d\n", t, counts[string(t)])
	}
	sum := net.Summarize()
	fmt.Fprintln(w, "\nNetwork edges:")
	fmt.Fprintf(w, "  prime brokerage  %d\n", sum.PrimeBrokerage)
	fmt.Fprintf(w, "  clearing         %d\n", sum.Clearing)
	fmt.Fprintf(w, "  derivatives/repo %d\n", sum.DerivativesRepo)
	fmt.Fprintf(w, "  redemption       %d\n", sum.Redemption)
	return nil
}
