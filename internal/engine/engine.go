// Package engine orchestrates a simulation run: the daily three-stage cycle
// over every agent, two-pass action registration and bank absorption, the
// iterated stage-3 feedback, and result assembly.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/behavior"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/market"
	"github.com/stresslens/swesim/internal/network"
	"github.com/stresslens/swesim/internal/scenario"
)

// Engine runs simulations. It holds only immutable run configuration;
// all mutable state lives on the agents and the market inside Run, so a
// single Engine can serve many runs.
//
// Run is strictly sequential and deterministic: agents are processed in
// population order, and any given (population, network, scenario) triple
// produces identical results on every invocation.
type Engine struct {
	cfg   *config.Config
	log   *slog.Logger
	idGen RunIDGenerator

	feedbackEnabled    bool
	feedbackIterations int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithRunIDGenerator overrides the run-id source. Tests use FixedGenerator
// for reproducible result identity.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) { e.idGen = g }
}

// WithFeedbackIterations sets the number of stage-3 iterations per day.
func WithFeedbackIterations(n int) Option {
	return func(e *Engine) { e.feedbackIterations = n }
}

// WithFeedbackDisabled turns off the feedback engine entirely: E2 stays at
// zero and B3 = B2 for every agent on every day.
func WithFeedbackDisabled() Option {
	return func(e *Engine) { e.feedbackEnabled = false }
}

// New creates an Engine over an immutable calibration.
func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:                cfg,
		log:                slog.Default(),
		idGen:              UUIDv7Generator{},
		feedbackEnabled:    true,
		feedbackIterations: cfg.Feedback.Iterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run simulates the scenario over the given population and network and
// returns the complete result. Configuration problems are rejected before
// day 0 as SetupErrors; mid-run invariant violations abort with an
// InvariantError. Each day's computation mutates agent state only at
// well-defined commit points, so there is no partial-day rollback.
func (e *Engine) Run(ctx context.Context, agents []*agent.Agent, net *network.Network, sc *scenario.Scenario) (*Result, error) {
	behaviors, err := e.validate(agents, sc)
	if err != nil {
		return nil, err
	}

	runID := e.idGen.Generate()
	log := e.log.With("run_id", runID, "scenario", sc.Name)
	log.Info("run starting", "agents", len(agents), "horizon_days", sc.HorizonDays)

	env := behavior.NewEnv(net, agents)
	mkt := market.New(e.cfg)

	// The variant buffer rules floor B0 at a strictly positive minimum, so a
	// zero-asset agent runs with a degenerate buffer rather than failing.
	initial := make(map[string]float64, len(agents))
	for i, a := range agents {
		behaviors[i].SetInitialBuffer(a, e.cfg)
		if math.IsNaN(a.Liquidity.B0) {
			return nil, &InvariantError{Agent: a.ID, Field: "B0", Value: a.Liquidity.B0,
				Message: "initial buffer is NaN"}
		}
		initial[a.ID] = a.Liquidity.B0
	}

	result := &Result{
		RunID:          runID,
		Scenario:       sc.Name,
		Horizon:        sc.HorizonDays,
		InitialBuffers: initial,
		Days:           make([]DaySnapshot, 0, sc.HorizonDays),
	}
	if net != nil {
		result.Network = net.Summarize()
	}

	for day := 0; day < sc.HorizonDays; day++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run aborted on day %d: %w", day, err)
		}
		if err := e.runDay(day, agents, behaviors, env, mkt, sc); err != nil {
			return nil, err
		}

		snap := DaySnapshot{Day: day, Market: mkt.Snapshot(), Agents: make([]AgentSnapshot, len(agents))}
		var reacted int
		for i, a := range agents {
			snap.Agents[i] = snapshotAgent(day, a)
			if a.Reacted {
				reacted++
			}
		}
		result.Days = append(result.Days, snap)
		log.Debug("day complete", "day", day,
			"reacted", reacted,
			"gilt_selling", mkt.GiltSelling,
			"repo_avail_pct", mkt.RepoAvailPct)

		// Commit the day: sales deplete the holdings they came from.
		for _, a := range agents {
			behavior.RealizeSales(a)
		}
	}

	result.Amplification = computeAmplification(agents, initial)
	result.Summary = computeSummary(agents, mkt)
	log.Info("run complete",
		"agents_reacted", result.Summary.AgentsReacted,
		"system_amplification", result.Amplification.System)
	return result, nil
}

// runDay executes one simulated day against the shared market state.
func (e *Engine) runDay(day int, agents []*agent.Agent, behaviors []behavior.Behavior, env *behavior.Env, mkt *market.State, sc *scenario.Scenario) error {
	mkt.ApplyScenario(day, sc.Day(day), e.cfg)
	deltas := sc.Delta(day)

	// Stage 1, phase one: every agent's shock losses (mark-to-market plus
	// margin calls) land before any redemption demand is read, so
	// cross-agent stress reads are independent of iteration order.
	for i, a := range agents {
		behavior.ResetDaily(a)
		behaviors[i].SetInitialBuffer(a, e.cfg)
		behavior.ShockLosses(behaviors[i], a, mkt, deltas, e.cfg)
	}

	// Stage 1, phase two: redemption demand and B1.
	for i, a := range agents {
		behavior.RedemptionLosses(behaviors[i], a, mkt, env, e.cfg)
		if math.IsNaN(a.Liquidity.E1) || a.Liquidity.E1 < 0 {
			return &InvariantError{Day: day, Agent: a.ID, Field: "E1", Value: a.Liquidity.E1,
				Message: "first-round loss must be non-negative"}
		}
	}

	// Stage 2: reaction waterfalls.
	for i, a := range agents {
		behavior.React(behaviors[i], a, mkt, env, e.cfg)
		for _, act := range a.Reactions {
			if math.IsNaN(act.Amount) || act.Amount < 0 {
				return &InvariantError{Day: day, Agent: a.ID, Field: act.Name, Value: act.Amount,
					Message: "action amount must be non-negative"}
			}
		}
	}

	// Two-pass registration: every agent posts its pressure before any bank
	// absorbs, so absorption sees the full day's demand regardless of agent
	// order.
	for _, a := range agents {
		behavior.Register(a, mkt)
	}
	e.absorb(agents, mkt)

	// Stage 3: iterated feedback, accumulating into E2.
	if e.feedbackEnabled && e.feedbackIterations > 0 {
		for i := 0; i < e.feedbackIterations; i++ {
			mkt.ApplyEndogenousFeedback(e.cfg)
			applyFeedback(agents, mkt, env, e.cfg)
		}
	} else {
		for _, a := range agents {
			a.Liquidity.E2 = 0
			a.Liquidity.B3 = a.Liquidity.B2
		}
	}

	for _, a := range agents {
		if math.IsNaN(a.Liquidity.E2) || a.Liquidity.E2 < 0 {
			return &InvariantError{Day: day, Agent: a.ID, Field: "E2", Value: a.Liquidity.E2,
				Message: "second-round loss must be non-negative"}
		}
	}
	return nil
}

// absorb splits the day's aggregate selling pressure across banks in
// proportion to each bank's remaining market-making capacity, gilt and corp
// books separately. Capacity consumption is cumulative across the horizon.
func (e *Engine) absorb(agents []*agent.Agent, mkt *market.State) {
	var giltTotal, corpTotal float64
	for _, a := range agents {
		if a.Bank == nil {
			continue
		}
		giltTotal += a.Bank.GiltRemaining()
		corpTotal += a.Bank.CorpRemaining()
	}
	for _, a := range agents {
		if a.Bank == nil {
			continue
		}
		var giltShare, corpShare float64
		if giltTotal > 0 {
			giltShare = mkt.GiltSelling * (a.Bank.GiltRemaining() / giltTotal)
		}
		if corpTotal > 0 {
			corpShare = mkt.CorpSelling * (a.Bank.CorpRemaining() / corpTotal)
		}
		behavior.AbsorbGilt(a, giltShare)
		behavior.AbsorbCorp(a, corpShare)
		if a.Reacted {
			behavior.TightenRepo(a, e.cfg)
		}
	}
}

// validate rejects malformed populations and scenarios before day 0.
func (e *Engine) validate(agents []*agent.Agent, sc *scenario.Scenario) ([]behavior.Behavior, error) {
	if len(agents) == 0 {
		return nil, &SetupError{Code: ErrCodeEmptyPopulation, Message: "population is empty"}
	}
	if sc == nil || sc.HorizonDays <= 0 {
		return nil, &SetupError{Code: ErrCodeBadScenario, Message: "scenario horizon must be positive"}
	}
	for name, path := range sc.Paths {
		if len(path) < sc.HorizonDays {
			return nil, &SetupError{Code: ErrCodeBadScenario,
				Message: fmt.Sprintf("path %q shorter than horizon (%d < %d)", name, len(path), sc.HorizonDays)}
		}
	}

	behaviors := make([]behavior.Behavior, len(agents))
	seen := make(map[string]bool, len(agents))
	for i, a := range agents {
		if a.ID == "" {
			return nil, &SetupError{Code: ErrCodeBadAgent, Message: "agent has empty identity"}
		}
		if seen[a.ID] {
			return nil, &SetupError{Code: ErrCodeBadAgent, Agent: a.ID, Message: "duplicate agent identity"}
		}
		seen[a.ID] = true

		b, err := behavior.For(a.Type)
		if err != nil {
			return nil, &SetupError{Code: ErrCodeBadAgent, Agent: a.ID, Message: err.Error()}
		}
		behaviors[i] = b

		if !variantMatches(a) {
			return nil, &SetupError{Code: ErrCodeBadAgent, Agent: a.ID,
				Message: fmt.Sprintf("variant parameters do not match type %q", a.Type)}
		}
		for _, it := range a.BalanceSheet {
			if math.IsNaN(it.Amount) || it.Amount < 0 {
				return nil, &SetupError{Code: ErrCodeBadAgent, Agent: a.ID,
					Message: fmt.Sprintf("item %q has invalid amount %v", it.Name, it.Amount)}
			}
		}
	}
	return behaviors, nil
}

func variantMatches(a *agent.Agent) bool {
	switch a.Type {
	case agent.TypeBank:
		return a.Bank != nil
	case agent.TypeHedgeFund:
		return a.HedgeFund != nil
	case agent.TypeLDIPension:
		return a.LDI != nil
	case agent.TypeInsurer:
		return a.Insurer != nil
	case agent.TypeFundComplex:
		return a.Fund != nil
	}
	return false
}
