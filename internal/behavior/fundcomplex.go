package behavior

import (
	"math"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/market"
	"github.com/stresslens/swesim/internal/network"
)

// fundBehavior implements the fund-complex (open-ended fund / money-market
// fund) variant. Unlike the other variants it is primarily the target of
// stress: its first-round loss is the stress-weighted redemption demand from
// its connected investors, and its waterfall must meet that demand in full —
// cash first, then forced sales capped only by what it actually holds.
// Once cumulative redemptions breach the gate threshold, swing pricing
// engages and future inflow demand is throttled instead of funded at par.
type fundBehavior struct{}

func (fundBehavior) SetInitialBuffer(a *agent.Agent, cfg *config.Config) {
	bp := cfg.Buffers.Fund
	floor := bufferFloor(a.Fund.AUM*bp.FloorPct, cfg)
	a.BufferFloor = floor
	a.Liquidity.B0 = math.Max(itemAmount(a, agent.ItemCash)*bp.CashMult, floor)
}

func (fundBehavior) MarkToMarket(a *agent.Agent, deltas map[string]float64) float64 {
	return sensitivityLosses(a, deltas, false)
}

func (fundBehavior) MarginCalls(a *agent.Agent, mkt *market.State, cfg *config.Config) float64 {
	// No derivative book, no margin calls.
	return 0
}

func (fundBehavior) Redemptions(a *agent.Agent, mkt *market.State, env *Env, cfg *config.Config) float64 {
	p := a.Fund
	if env == nil || env.Net == nil {
		return 0
	}

	var total float64
	for _, id := range env.Net.Neighbors(a.ID, network.KindRedemption) {
		redeemer := env.Agent(id)
		if redeemer == nil {
			continue
		}
		stressRatio := redeemer.StressRatio()
		if stressRatio <= cfg.Reactions.Fund.RedemptionStressTrigger {
			continue
		}
		demand := redeemer.Size * cfg.Reactions.Fund.RedemptionSlope * stressRatio
		switch redeemer.Type {
		case agent.TypeLDIPension:
			demand *= p.PensionInvestorPct * 2.0
		case agent.TypeInsurer:
			demand *= p.InsurerInvestorPct * 1.5
		case agent.TypeHedgeFund, agent.TypeFundComplex:
			demand *= 0.5
		}
		total += demand
	}

	if p.Gated {
		total *= cfg.Reactions.Fund.GateMultiplier
	}
	p.CumulativeInflows += total
	if p.AUM > 0 && p.CumulativeInflows/p.AUM > cfg.Reactions.Fund.GateThreshold {
		p.Gated = true
	}
	return total
}

func (fundBehavior) Reactions(a *agent.Agent, mkt *market.State, env *Env, cfg *config.Config) []agent.Action {
	// The outstanding amount is the day's redemption demand: investors are
	// paid in full while the fund is open, with NAV losses passed through
	// rather than funded. Sales are capped only by the holdings themselves.
	outstanding := a.RedemptionDemand
	var actions []agent.Action

	if cash := a.Item(agent.ItemCash); cash != nil && cash.Amount > 0 && outstanding > 0 {
		draw := math.Min(outstanding, cash.Amount)
		actions = append(actions, agent.Action{Name: "draw_cash_buffer", Kind: agent.KindOther, Amount: draw})
		outstanding -= draw
	}
	outstanding -= holdingSale(a, &actions, "sell_gilt", agent.ItemGilts, agent.AssetGilt, outstanding)
	holdingSale(a, &actions, "sell_corp_bonds", agent.ItemCorpBonds, agent.AssetCorp, outstanding)

	return actions
}

// holdingSale sells up to the full holding against the outstanding amount.
func holdingSale(a *agent.Agent, actions *[]agent.Action, name, item, asset string, outstanding float64) float64 {
	if outstanding <= 0 {
		return 0
	}
	it := a.Item(item)
	if it == nil || it.Amount <= 0 {
		return 0
	}
	sell := math.Min(outstanding, it.Amount)
	*actions = append(*actions, agent.Action{
		Name:   name,
		Kind:   agent.KindSale,
		Amount: sell,
		Asset:  asset,
		Item:   item,
	})
	return sell
}
