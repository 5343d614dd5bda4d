package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stresslens/swesim/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	Run      string
	Agent    string
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one agent's stored liquidity path",
		Long: `Show an agent's day-by-day liquidity path for a stored run: the opening
buffer, the post-shock, post-reaction and post-feedback positions, and the
first- and second-round exposures.

Example:
  swesim show --db runs.db --run <run-id> --agent hf_03`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Run, "run", "", "run id (required)")
	_ = cmd.MarkFlagRequired("run")
	cmd.Flags().StringVar(&opts.Agent, "agent", "", "agent id (required)")
	_ = cmd.MarkFlagRequired("agent")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	path, err := st.AgentPath(ctx, opts.Run, opts.Agent)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read agent path", err)
	}
	if len(path) == 0 {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("no snapshots for agent %q in run %q", opts.Agent, opts.Run))
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), path)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Agent %s, run %s\n", opts.Agent, opts.Run)
	fmt.Fprintf(w, "%4s %12s %12s %12s %12s %12s %12s  %s\n",
		"day", "B0", "B1", "B2", "B3", "E1", "E2", "reacted")
	for _, p := range path {
		reacted := ""
		if p.Reacted {
			reacted = "*"
		}
		fmt.Fprintf(w, "%4d %12s %12s %12s %12s %12s %12s  %s\n",
			p.Day, millions(p.B0), millions(p.B1), millions(p.B2), millions(p.B3),
			millions(p.E1), millions(p.E2), reacted)
	}
	return nil
}
