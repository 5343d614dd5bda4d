package behavior

import (
	"math"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/market"
	"github.com/stresslens/swesim/internal/network"
)

// hedgeFundBehavior implements the leveraged hedge-fund variant. Losses are
// leverage-amplified, margin calls key off the strategy's primary market
// sensitivities, and the waterfall tries prime-broker repo before
// strategy-specific asset sales.
type hedgeFundBehavior struct{}

func (hedgeFundBehavior) SetInitialBuffer(a *agent.Agent, cfg *config.Config) {
	bp := cfg.Buffers.HedgeFund
	floor := bufferFloor(a.HedgeFund.AUM*bp.FloorPct, cfg)
	a.BufferFloor = floor
	a.Liquidity.B0 = math.Max(itemAmount(a, agent.ItemCash)*bp.CashMult, floor)
}

func (hedgeFundBehavior) MarkToMarket(a *agent.Agent, deltas map[string]float64) float64 {
	// Only invested positions mark; leverage amplifies the hit.
	mtm := sensitivityLosses(a, deltas, true)
	return mtm * (1.0 + (a.HedgeFund.GrossLeverage-1.0)*0.3)
}

func (hedgeFundBehavior) MarginCalls(a *agent.Agent, mkt *market.State, cfg *config.Config) float64 {
	p := a.HedgeFund

	// VM on the largest primary-sensitivity move; netting offsets
	// correlated positions, so max rather than sum.
	var maxMove float64
	for _, v := range p.PrimarySensitivities {
		if m := math.Abs(mkt.Level(v)); m > maxMove {
			maxMove = m
		}
	}
	vm := p.AUM * p.GrossLeverage * maxMove * 0.0001 * 0.022

	if s := stressLevel(mkt, cfg); s > 1.0 {
		vm += p.AUM * p.GrossLeverage * (s - 1.0) * 0.002
	}

	// Collateral revaluation: repo-dependent funds eat the gilt haircut
	// increase on their posted collateral.
	if p.RepoDependence > 0.5 {
		vm += p.AUM * p.RepoDependence * mkt.Level(market.VarRepoHaircutGilt) * 0.003
	}
	return vm
}

func (hedgeFundBehavior) Redemptions(a *agent.Agent, mkt *market.State, env *Env, cfg *config.Config) float64 {
	// LP withdrawal requests only bite for very stressed, VaR-constrained
	// funds inside the horizon.
	p := a.HedgeFund
	if stressLevel(mkt, cfg) > 2.5 && p.VarUtilisation > 0.85 {
		return p.AUM * 0.02
	}
	return 0
}

func (hedgeFundBehavior) Reactions(a *agent.Agent, mkt *market.State, env *Env, cfg *config.Config) []agent.Action {
	p := a.HedgeFund
	caps := cfg.Reactions.HedgeFund
	// Reacting funds raise a cushion beyond the realised hole, anticipating
	// further calls.
	shortfall := math.Max(0, -a.Liquidity.B1) + a.Liquidity.E1*0.2
	var actions []agent.Action

	if p.RepoDependence > 0 {
		ask := shortfall * math.Max(p.RepoDependence, 0.6) * caps.RepoAskShare
		obtained, asked := seekRepo(a, ask, network.KindPrimeBrokerage, mkt, env, cfg)
		if asked {
			p.SoughtRepo = true
			if obtained > 0 {
				actions = append(actions, agent.Action{Name: "seek_repo", Kind: agent.KindRepo, Amount: obtained})
				shortfall -= obtained
			} else {
				// Every prime broker refused; the fund is forced into sales.
				p.RepoRefusedByAll = true
			}
		}
	}

	switch p.Strategy {
	case agent.StrategyRelativeValue:
		shortfall -= saleStep(a, &actions, "unwind_gilt_basis", agent.ItemBasisTrades, agent.AssetGilt, caps.BasisUnwind, shortfall)
		shortfall -= saleStep(a, &actions, "sell_gilt", agent.ItemGilts, agent.AssetGilt, caps.SellGilt, shortfall)
	case agent.StrategyMacroRates:
		shortfall -= saleStep(a, &actions, "sell_gilt", agent.ItemGilts, agent.AssetGilt, caps.SellGilt, shortfall)
	case agent.StrategyCreditLS:
		shortfall -= saleStep(a, &actions, "sell_corp_bonds", agent.ItemCorpBonds, agent.AssetCorp, caps.SellCorp, shortfall)
	case agent.StrategyLongShortEq:
		shortfall -= saleStep(a, &actions, "sell_equity", agent.ItemEquities, agent.AssetEquity, caps.SellEquity, shortfall)
	default: // multi-strategy sells thin slices across the book
		shortfall -= saleStep(a, &actions, "sell_gilt", agent.ItemGilts, agent.AssetGilt, caps.MultiStrategy, shortfall)
		shortfall -= saleStep(a, &actions, "sell_corp_bonds", agent.ItemCorpBonds, agent.AssetCorp, caps.MultiStrategy, shortfall)
		shortfall -= saleStep(a, &actions, "sell_equity", agent.ItemEquities, agent.AssetEquity, caps.MultiStrategy, shortfall)
	}

	if shortfall > 0 && env != nil && env.Net != nil {
		if targets := env.Net.Neighbors(a.ID, network.KindRedemption); len(targets) > 0 {
			redeem := math.Min(shortfall*caps.RedeemShare, p.AUM*caps.RedeemAUMCap)
			if redeem > 0 {
				actions = append(actions, agent.Action{Name: "redeem_fund_holdings", Kind: agent.KindRedemption, Amount: redeem})
			}
		}
	}

	return actions
}
