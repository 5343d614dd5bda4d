// Package behavior implements the per-variant three-stage daily mechanics:
// the initial-buffer rules, the first-round loss components (mark-to-market,
// margin calls, redemptions), the priority reaction waterfalls and the
// registration of chosen actions into the market state.
//
// The stage functions are free functions over (Behavior, *agent.Agent) so
// that the engine drives every agent through the same sequence regardless of
// variant. Behaviors are stateless; all mutable state lives on the agents
// and the market.
package behavior

import (
	"fmt"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/market"
	"github.com/stresslens/swesim/internal/network"
)

// Behavior is the variant-specific half of the daily mechanics. Exactly one
// implementation exists per agent.Type; For returns it.
type Behavior interface {
	// SetInitialBuffer computes the day-start buffer B0 and its floor and
	// stores both on the agent.
	SetInitialBuffer(a *agent.Agent, cfg *config.Config)

	// MarkToMarket returns the day's mark-to-market loss magnitude from the
	// given day-over-day market variable deltas.
	MarkToMarket(a *agent.Agent, deltas map[string]float64) float64

	// MarginCalls returns the day's variation/initial-margin outflow, driven
	// by cumulative market levels.
	MarginCalls(a *agent.Agent, mkt *market.State, cfg *config.Config) float64

	// Redemptions returns the day's redemption (or funding-runoff) outflow.
	// It may read other agents' partial stress through env.
	Redemptions(a *agent.Agent, mkt *market.State, env *Env, cfg *config.Config) float64

	// Reactions runs the variant's priority waterfall and returns the chosen
	// actions. Only called when the agent's reaction threshold is breached.
	Reactions(a *agent.Agent, mkt *market.State, env *Env, cfg *config.Config) []agent.Action
}

// Env bundles the relationship network with an identity-indexed view of the
// population, for behaviors that route bilateral requests.
type Env struct {
	Net    *network.Network
	agents map[string]*agent.Agent
}

// NewEnv builds an Env over the given population.
func NewEnv(net *network.Network, agents []*agent.Agent) *Env {
	byID := make(map[string]*agent.Agent, len(agents))
	for _, a := range agents {
		byID[a.ID] = a
	}
	return &Env{Net: net, agents: byID}
}

// Agent returns the agent with the given identity, or nil.
func (e *Env) Agent(id string) *agent.Agent {
	if e == nil {
		return nil
	}
	return e.agents[id]
}

var behaviors = map[agent.Type]Behavior{
	agent.TypeBank:        bankBehavior{},
	agent.TypeHedgeFund:   hedgeFundBehavior{},
	agent.TypeLDIPension:  ldiBehavior{},
	agent.TypeInsurer:     insurerBehavior{},
	agent.TypeFundComplex: fundBehavior{},
}

// For returns the behavior for an agent type.
func For(t agent.Type) (Behavior, error) {
	b, ok := behaviors[t]
	if !ok {
		return nil, fmt.Errorf("behavior: no behavior for agent type %q", t)
	}
	return b, nil
}

// bufferFloor applies the absolute minimum to a size-proportional buffer
// floor, so B0 stays strictly positive even for a zero-asset agent.
func bufferFloor(proportional float64, cfg *config.Config) float64 {
	if proportional < cfg.Buffers.MinFloor {
		return cfg.Buffers.MinFloor
	}
	return proportional
}

// ResetDaily clears the agent's within-day state. Cumulative counters and
// structural depletion (bank capacity, recap usage) survive.
func ResetDaily(a *agent.Agent) {
	a.Liquidity.E1 = 0
	a.Liquidity.E2 = 0
	a.Reacted = false
	a.Reactions = nil
	a.RedemptionDemand = 0
}

// ShockLosses applies the first phase of stage 1: mark-to-market plus margin
// calls. E1 holds the partial first-round loss afterwards; redemption demand
// is layered on by RedemptionLosses so that cross-agent redemption reads see
// every agent's shock losses and none of its redemption losses, independent
// of iteration order.
func ShockLosses(b Behavior, a *agent.Agent, mkt *market.State, deltas map[string]float64, cfg *config.Config) {
	mtm := b.MarkToMarket(a, deltas)
	margin := b.MarginCalls(a, mkt, cfg)
	a.Liquidity.E1 = mtm + margin
	a.Counters.MarginCalls += margin
}

// RedemptionLosses applies the second phase of stage 1 and closes it:
// E1 picks up the day's redemption outflow and B1 = B0 - E1.
func RedemptionLosses(b Behavior, a *agent.Agent, mkt *market.State, env *Env, cfg *config.Config) {
	r := b.Redemptions(a, mkt, env, cfg)
	a.RedemptionDemand = r
	a.Liquidity.E1 += r
	a.Counters.Redemptions += r
	a.Liquidity.B1 = a.Liquidity.B0 - a.Liquidity.E1
}

// ShouldReact reports whether the agent's stress ratio E1/B0 breaches its
// usability-scaled threshold. An agent pinned at its buffer floor reacts to
// any positive first-round loss: a floor-level buffer offers no headroom to
// absorb it.
func ShouldReact(a *agent.Agent) bool {
	if a.Liquidity.B0 <= a.BufferFloor && a.Liquidity.E1 > 0 {
		return true
	}
	return a.StressRatio() > a.EffectiveTheta()
}

// React runs stage 2: if the threshold is breached, execute the variant's
// waterfall, realise proceeds at instrument-class efficiency and set
// B2 = B1 + realised. Otherwise B2 = B1.
func React(b Behavior, a *agent.Agent, mkt *market.State, env *Env, cfg *config.Config) {
	if !ShouldReact(a) {
		a.Reacted = false
		a.Reactions = nil
		a.Liquidity.B2 = a.Liquidity.B1
		return
	}
	a.Reacted = true
	a.Reactions = b.Reactions(a, mkt, env, cfg)

	var realised float64
	for _, act := range a.Reactions {
		realised += act.Amount * EfficiencyFor(act.Kind, mkt, cfg)

		switch act.Kind {
		case agent.KindSale:
			a.Counters.AssetSales += act.Amount
			if act.Asset == agent.AssetGilt {
				a.Counters.GiltSales += act.Amount
			}
		case agent.KindRepo:
			a.Counters.RepoDemand += act.Amount
		}
	}
	a.Liquidity.B2 = a.Liquidity.B1 + realised
}

// EfficiencyFor returns the realisation efficiency for an action class.
// Sales degrade with the live gilt bid/ask spread down to a floor; repo
// realises at the market's current availability fraction; the rest are fixed.
func EfficiencyFor(kind agent.ActionKind, mkt *market.State, cfg *config.Config) float64 {
	switch kind {
	case agent.KindSale:
		eff := 1.0 - mkt.GiltBidAskBps*cfg.Efficiency.SaleSpreadSlope
		if eff < cfg.Efficiency.SaleFloor {
			eff = cfg.Efficiency.SaleFloor
		}
		return eff
	case agent.KindRepo:
		return mkt.RepoAvailPct
	case agent.KindFacility:
		return cfg.Efficiency.Facility
	case agent.KindRedemption:
		return cfg.Efficiency.Redemption
	default:
		return cfg.Efficiency.Other
	}
}

// Register posts the agent's chosen actions into the market's endogenous
// pressure accumulators. Sales route by asset class; repo actions (both
// seeking repo and cutting repo lending) add to system repo demand.
func Register(a *agent.Agent, mkt *market.State) {
	for _, act := range a.Reactions {
		switch act.Kind {
		case agent.KindSale:
			switch act.Asset {
			case agent.AssetGilt:
				mkt.AddGiltSelling(act.Amount)
			case agent.AssetCorp:
				mkt.AddCorpSelling(act.Amount)
			}
		case agent.KindRepo:
			mkt.AddRepoDemand(act.Amount)
		}
	}
}

// ApplyFeedback applies one stage-3 increment: E2 accumulates across
// feedback iterations within the day and B3 = B2 - E2.
func ApplyFeedback(a *agent.Agent, e2 float64) {
	a.Liquidity.E2 += e2
	a.Liquidity.B3 = a.Liquidity.B2 - a.Liquidity.E2
}

// RealizeSales depletes the balance-sheet holdings behind the day's sale
// actions. Called once at end of day, after feedback has settled.
func RealizeSales(a *agent.Agent) {
	for _, act := range a.Reactions {
		if act.Kind != agent.KindSale || act.Item == "" {
			continue
		}
		if it := a.Item(act.Item); it != nil {
			it.Amount -= act.Amount
			if it.Amount < 0 {
				it.Amount = 0
			}
		}
	}
}

// saleStep executes one capped waterfall sale: at most cap.ShortfallShare of
// the outstanding shortfall and at most cap.HoldingCap of the named holding.
// Returns the (possibly zero) amount sold.
func saleStep(a *agent.Agent, actions *[]agent.Action, name, item, asset string, step config.SaleCap, shortfall float64) float64 {
	if shortfall <= 0 {
		return 0
	}
	it := a.Item(item)
	if it == nil || it.Amount <= 0 {
		return 0
	}
	sell := shortfall * step.ShortfallShare
	if lim := it.Amount * step.HoldingCap; sell > lim {
		sell = lim
	}
	if sell <= 0 {
		return 0
	}
	*actions = append(*actions, agent.Action{
		Name:   name,
		Kind:   agent.KindSale,
		Amount: sell,
		Asset:  asset,
		Item:   item,
	})
	return sell
}

// seekRepo splits a repo ask equally across the agent's banks for the given
// relationship kind and collects what each is willing to extend. Banks not
// present in the roster are priced at the market's availability fraction.
// Returns the amount obtained and whether an ask was actually made.
func seekRepo(a *agent.Agent, ask float64, kind network.EdgeKind, mkt *market.State, env *Env, cfg *config.Config) (float64, bool) {
	if ask <= 0 || env == nil || env.Net == nil {
		return 0, false
	}
	banks := env.Net.Neighbors(a.ID, kind)
	if len(banks) == 0 {
		return 0, false
	}
	perBank := ask / float64(len(banks))
	var obtained float64
	for _, bankID := range banks {
		bank := env.Agent(bankID)
		if bank == nil || bank.Bank == nil {
			obtained += perBank * mkt.RepoAvailPct
			continue
		}
		obtained += AssessRepoRequest(bank, a.ID, perBank, env.Net, cfg)
	}
	return obtained, true
}
