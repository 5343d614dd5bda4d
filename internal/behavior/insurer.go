package behavior

import (
	"math"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/market"
	"github.com/stresslens/swesim/internal/network"
)

// insurerBehavior implements the insurer variant: heavily hedged, so
// mark-to-market losses are partially offset, but the dirty-CSA fraction of
// its derivative book turns collateral haircut increases into extra margin
// calls. Its waterfall leans on contractual funding (committed repo lines,
// RCF) before touching assets.
type insurerBehavior struct{}

func (insurerBehavior) SetInitialBuffer(a *agent.Agent, cfg *config.Config) {
	bp := cfg.Buffers.Insurer
	b0 := itemAmount(a, agent.ItemCash)*bp.CashMult +
		itemAmount(a, agent.ItemCommittedRepoLines)*bp.CommittedRepoMult +
		itemAmount(a, agent.ItemRCF)*bp.RCFMult
	floor := bufferFloor(a.Insurer.TotalAssets*bp.FloorPct, cfg)
	a.BufferFloor = floor
	a.Liquidity.B0 = math.Max(b0, floor)
}

func (insurerBehavior) MarkToMarket(a *agent.Agent, deltas map[string]float64) float64 {
	mtm := sensitivityLosses(a, deltas, false)
	if a.Item(agent.ItemDerivatives) != nil {
		offset := mtm * a.Insurer.HedgeRatio * 0.3
		mtm = math.Max(0, mtm-offset)
	}
	return mtm
}

func (insurerBehavior) MarginCalls(a *agent.Agent, mkt *market.State, cfg *config.Config) float64 {
	p := a.Insurer
	deriv := a.Item(agent.ItemDerivatives)
	if deriv == nil {
		return 0
	}
	vm := deriv.Amount * math.Abs(mkt.Level(market.VarGilt10Y)) * 0.0001 * 0.008
	if s := stressLevel(mkt, cfg); s > 1.0 {
		vm += deriv.Amount * (s - 1.0) * 0.0008
	}
	// Dirty CSAs accept bonds as collateral; widened haircuts on that
	// collateral surface as additional calls.
	if p.DirtyCSAPct > 0 {
		vm += deriv.Amount * p.DirtyCSAPct * mkt.Level(market.VarRepoHaircutCorp) * 0.01 * 0.05
	}
	return vm
}

func (insurerBehavior) Redemptions(a *agent.Agent, mkt *market.State, env *Env, cfg *config.Config) float64 {
	// Policy surrenders only bite under extreme stress inside the horizon.
	if stressLevel(mkt, cfg) > 2.5 {
		return a.Insurer.TotalAssets * 0.005
	}
	return 0
}

func (insurerBehavior) Reactions(a *agent.Agent, mkt *market.State, env *Env, cfg *config.Config) []agent.Action {
	p := a.Insurer
	caps := cfg.Reactions.Insurer
	shortfall := math.Max(0, -a.Liquidity.B1) + a.Liquidity.E1*0.1
	var actions []agent.Action

	if lines := a.Item(agent.ItemCommittedRepoLines); lines != nil && lines.Amount > 0 && shortfall > 0 {
		draw := math.Min(shortfall*caps.RepoLineShare, lines.Amount*caps.RepoLineCap)
		if draw > 0 {
			actions = append(actions, agent.Action{Name: "draw_committed_repo_line", Kind: agent.KindRepo, Amount: draw})
			shortfall -= draw
		}
	}

	if rcf := a.Item(agent.ItemRCF); rcf != nil && rcf.Amount > 0 && shortfall > 0 {
		draw := math.Min(shortfall*caps.RCFShare, rcf.Amount*caps.RCFCap)
		if draw > 0 {
			actions = append(actions, agent.Action{Name: "draw_rcf", Kind: agent.KindOther, Amount: draw})
			shortfall -= draw
		}
	}

	shortfall -= saleStep(a, &actions, "sell_gilt", agent.ItemGilts, agent.AssetGilt, caps.SellGilt, shortfall)
	shortfall -= saleStep(a, &actions, "sell_corp_bonds", agent.ItemCorpBonds, agent.AssetCorp, caps.SellCorp, shortfall)
	shortfall -= saleStep(a, &actions, "sell_equity", agent.ItemEquities, agent.AssetEquity, caps.SellEquity, shortfall)

	if shortfall > 0 {
		obtained, _ := seekRepo(a, shortfall*caps.RepoAskShare, network.KindDerivativesRepo, mkt, env, cfg)
		if obtained > 0 {
			actions = append(actions, agent.Action{Name: "seek_repo", Kind: agent.KindRepo, Amount: obtained})
			shortfall -= obtained
		}
	}

	if shortfall > 0 && env != nil && env.Net != nil {
		if targets := env.Net.Neighbors(a.ID, network.KindRedemption); len(targets) > 0 {
			redeem := math.Min(shortfall*caps.RedeemShare, p.TotalAssets*caps.RedeemAssetCap)
			if redeem > 0 {
				actions = append(actions, agent.Action{Name: "redeem_fund_holdings", Kind: agent.KindRedemption, Amount: redeem})
			}
		}
	}

	return actions
}
