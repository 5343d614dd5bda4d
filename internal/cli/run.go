package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/engine"
	"github.com/stresslens/swesim/internal/network"
	"github.com/stresslens/swesim/internal/population"
	"github.com/stresslens/swesim/internal/scenario"
	"github.com/stresslens/swesim/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Seed       int64
	Database   string
	ConfigPath string
	Iterations int
	NoFeedback bool

	// RunIDGenerator allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDGenerator engine.RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a stress scenario against a generated population",
		Long: `Run a multi-day stress scenario.

The command generates a population of agents from the seeded distributions,
builds the bilateral relationship network, loads the scenario's market paths,
and simulates the horizon day by day. Results are printed and, when --db is
given, persisted to SQLite.

Example:
  swesim run scenarios/gilt_shock.yaml
  swesim run scenarios/gilt_shock.yaml --seed 7 --db runs.db
  swesim run scenarios/gilt_shock.yaml --no-feedback --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Seed, "seed", 42, "population and network seed")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for results (optional)")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "calibration overrides YAML (optional)")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", 0, "feedback iterations per day (0 = config default)")
	cmd.Flags().BoolVar(&opts.NoFeedback, "no-feedback", false, "disable second-round feedback")

	return cmd
}

func runScenario(opts *RunOptions, scenarioPath string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	log := slog.New(handler)

	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
		log.Info("calibration overrides loaded", "config", opts.ConfigPath)
	}

	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	log.Info("scenario loaded", "name", sc.Name, "horizon_days", sc.HorizonDays)

	agents, err := population.Generate(opts.Seed, population.DefaultDistributions())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to generate population", err)
	}
	net, err := network.Build(network.NodesFor(agents), opts.Seed, cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build network", err)
	}
	log.Info("population ready", "agents", len(agents), "seed", opts.Seed)

	engOpts := []engine.Option{engine.WithLogger(log)}
	if opts.RunIDGenerator != nil {
		engOpts = append(engOpts, engine.WithRunIDGenerator(opts.RunIDGenerator))
	}
	if opts.Iterations > 0 {
		engOpts = append(engOpts, engine.WithFeedbackIterations(opts.Iterations))
	}
	if opts.NoFeedback {
		engOpts = append(engOpts, engine.WithFeedbackDisabled())
	}
	eng := engine.New(cfg, engOpts...)

	// Runs are short, but long horizons should still stop on Ctrl-C.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res, err := eng.Run(ctx, agents, net, sc)
	if err != nil {
		return WrapExitError(ExitFailure, "run failed", err)
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		if err := st.SaveResult(ctx, res); err != nil {
			return WrapExitError(ExitCommandError, "failed to save result", err)
		}
		log.Info("result saved", "db", opts.Database, "run_id", res.RunID)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	renderResultText(cmd.OutOrStdout(), res)
	return nil
}

func renderResultText(w io.Writer, res *engine.Result) {
	fmt.Fprintf(w, "Run %s\n", res.RunID)
	fmt.Fprintf(w, "Scenario: %s (%d days)\n\n", res.Scenario, res.Horizon)

	s := res.Summary
	fmt.Fprintf(w, "Agents reacted:     %d / %d\n", s.AgentsReacted, s.TotalAgents)
	fmt.Fprintf(w, "Margin calls:       %s mm\n", millions(s.TotalMarginCalls))
	fmt.Fprintf(w, "Asset sales:        %s mm\n", millions(s.TotalAssetSales))
	fmt.Fprintf(w, "NBFI gilt sales:    %s mm\n", millions(s.NBFIGiltSales))
	fmt.Fprintf(w, "Repo demand:        %s mm\n", millions(s.TotalRepoDemand))
	fmt.Fprintf(w, "Hedge funds seeking repo: %d (refused by all: %d)\n\n",
		s.HedgeFundsSeekingRepo, s.HedgeFundsRefusedRepo)

	fmt.Fprintf(w, "Final gilt 10y move:  %+.1f bps\n", s.FinalGiltYieldBps)
	fmt.Fprintf(w, "Final IG spread move: %+.1f bps\n", s.FinalIGSpreadBps)
	fmt.Fprintf(w, "Final repo availability: %.0f%%\n\n", s.FinalRepoAvailPct*100)

	fmt.Fprintln(w, "Amplification:")
	for _, t := range agent.Types {
		if ratio, ok := res.Amplification.Types[t]; ok {
			fmt.Fprintf(w, "  %-12s %.3f\n", t, ratio)
		}
	}
	fmt.Fprintf(w, "  %-12s %.3f\n", "system", res.Amplification.System)
}
