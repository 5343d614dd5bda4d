package engine

import (
	"math"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/behavior"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/market"
	"github.com/stresslens/swesim/internal/network"
)

// applyFeedback runs one stage-3 iteration: the second-round loss each agent
// absorbs from network-routed contagion and market-broadcast effects, given
// the day's reactions. Each call accumulates into E2; the caller iterates.
//
// Two layers propagate. Bilateral effects travel only along network edges:
// a tightening bank stresses exactly its connected hedge funds, a
// deleveraging fund exposes exactly its prime brokers, and stressed
// redeemers pressure exactly the fund complexes they hold. Broadcast effects
// hit everyone holding liquid assets, scaled by how widely the population is
// reacting. On top of both, reacting agents pay a reputation cost (concave
// in stress) and a crowding penalty (convex in the share of same-type
// reactors).
//
// If nobody reacted, every term is zero and the iteration applies a zero
// increment to all agents.
func applyFeedback(agents []*agent.Agent, mkt *market.State, env *behavior.Env, cfg *config.Config) {
	s := mkt.StressIntensity(cfg)

	var numReacting int
	typeReacting := make(map[agent.Type]int, len(agent.Types))
	typeTotal := make(map[agent.Type]int, len(agent.Types))
	for _, a := range agents {
		typeTotal[a.Type]++
		if a.Reacted {
			numReacting++
			typeReacting[a.Type]++
		}
	}
	if numReacting == 0 {
		for _, a := range agents {
			behavior.ApplyFeedback(a, 0)
		}
		return
	}
	reactingShare := float64(numReacting) / float64(len(agents))

	for _, target := range agents {
		var e2 float64

		switch target.Type {
		case agent.TypeHedgeFund:
			e2 += fundingStress(target, env, s, cfg)
		case agent.TypeBank:
			e2 += counterpartyLoss(target, env, s, cfg)
		case agent.TypeFundComplex:
			e2 += redemptionPressure(target, env, cfg)
		}

		e2 += broadcastLoss(target, s, reactingShare, cfg)

		if target.Reacted {
			total := target.ReactionTotal()
			e2 += total * (math.Sqrt(s) - 1.0) * cfg.Feedback.ReputationCoeff

			share := float64(typeReacting[target.Type]) / float64(typeTotal[target.Type])
			e2 += total * share * share * s * cfg.Feedback.CrowdingCoeff
		}

		behavior.ApplyFeedback(target, e2)
	}
}

// fundingStress is the bilateral hit on a hedge fund whose prime brokers
// reacted: repo funding it depends on becomes stressed in proportion to each
// bank's reaction size relative to that bank's buffer.
func fundingStress(hf *agent.Agent, env *behavior.Env, s float64, cfg *config.Config) float64 {
	repo := hf.Item(agent.ItemRepoBorrowing)
	if repo == nil || repo.Amount <= 0 || env == nil || env.Net == nil {
		return 0
	}
	var e2 float64
	for _, bankID := range env.Net.Neighbors(hf.ID, network.KindPrimeBrokerage) {
		bank := env.Agent(bankID)
		if bank == nil || !bank.Reacted {
			continue
		}
		e2 += repo.Amount *
			(bank.ReactionTotal() / math.Max(bank.Liquidity.B0, 1.0)) *
			s * cfg.Feedback.FundingStressCoeff
	}
	return e2
}

// counterpartyLoss is the bilateral hit on a bank whose connected hedge
// funds are deleveraging: the exposure at risk is each fund's repo borrowing
// split across its prime brokers, scaled by the fund's stress ratio.
func counterpartyLoss(bank *agent.Agent, env *behavior.Env, s float64, cfg *config.Config) float64 {
	if env == nil || env.Net == nil {
		return 0
	}
	var e2 float64
	for _, hfID := range env.Net.Neighbors(bank.ID, network.KindPrimeBrokerage) {
		hf := env.Agent(hfID)
		if hf == nil || !hf.Reacted {
			continue
		}
		var hfRepo float64
		if item := hf.Item(agent.ItemRepoBorrowing); item != nil {
			hfRepo = item.Amount
		}
		nBanks := math.Max(float64(env.Net.Degree(hfID, network.KindPrimeBrokerage)), 1)
		stressRatio := hf.Liquidity.E1 / math.Max(hf.Liquidity.B0, 1.0)
		e2 += stressRatio * (hfRepo / nBanks) * cfg.Feedback.BankCounterpartyCoeff * s
	}
	return e2
}

// redemptionPressure is the bilateral hit on a fund complex from connected
// redeemers that reacted today.
func redemptionPressure(fund *agent.Agent, env *behavior.Env, cfg *config.Config) float64 {
	if env == nil || env.Net == nil {
		return 0
	}
	var e2 float64
	for _, id := range env.Net.Neighbors(fund.ID, network.KindRedemption) {
		redeemer := env.Agent(id)
		if redeemer == nil || !redeemer.Reacted {
			continue
		}
		e2 += redeemer.ReactionTotal() * cfg.Feedback.RedemptionPressCoeff
	}
	return e2
}

// broadcastLoss is the market-level mark-to-market hit from endogenous price
// pressure, applied to every liquid holding with any market sensitivity and
// scaled by the fraction of the population reacting.
func broadcastLoss(a *agent.Agent, s, reactingShare float64, cfg *config.Config) float64 {
	var e2 float64
	for _, it := range a.BalanceSheet {
		if it.Category != agent.CategoryLiquidAsset {
			continue
		}
		for _, sens := range it.Sensitivity {
			e2 += it.Amount * math.Abs(sens) * cfg.Feedback.BroadcastCoeff * s * reactingShare
		}
	}
	return e2
}
