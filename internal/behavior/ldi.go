package behavior

import (
	"math"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/market"
	"github.com/stresslens/swesim/internal/network"
)

// ldiBehavior implements the leveraged LDI/pension variant. The defining
// mechanics are the yield buffer (margin calls escalate sharply once
// cumulative yield moves exhaust it) and sponsor recapitalisation, which is
// same-day for pooled schemes and trustee-gated over several days for
// segregated ones.
type ldiBehavior struct{}

func (ldiBehavior) SetInitialBuffer(a *agent.Agent, cfg *config.Config) {
	bp := cfg.Buffers.LDI
	b0 := itemAmount(a, agent.ItemCash)*bp.CashMult +
		itemAmount(a, agent.ItemUnencumbered)*bp.CollateralMult
	floor := bufferFloor(a.LDI.AUM*bp.FloorPct, cfg)
	a.BufferFloor = floor
	a.Liquidity.B0 = math.Max(b0, floor)
}

func (ldiBehavior) MarkToMarket(a *agent.Agent, deltas map[string]float64) float64 {
	return sensitivityLosses(a, deltas, false) * a.LDI.LeverageRatio * 0.5
}

func (ldiBehavior) MarginCalls(a *agent.Agent, mkt *market.State, cfg *config.Config) float64 {
	p := a.LDI
	deriv := a.Item(agent.ItemDerivatives)
	if deriv == nil {
		return 0
	}

	// Max rather than sum of the gilt moves: the hedge book nets.
	giltMove := math.Max(math.Abs(mkt.Level(market.VarGilt10Y)), math.Abs(mkt.Level(market.VarGilt30Y)))
	vm := deriv.Amount * giltMove * 0.0001 * 0.04

	if s := stressLevel(mkt, cfg); s > 1.0 {
		vm += deriv.Amount * (s - 1.0) * 0.003
	}

	// Yield-buffer consumption: cumulative 10y move eats the headroom;
	// beyond it margin calls escalate on the excess.
	move := math.Abs(mkt.Level(market.VarGilt10Y))
	p.YieldBufferConsumedPct = math.Min(1.0, move/p.YieldBufferBps)
	if p.YieldBufferConsumedPct >= 1.0 {
		vm += deriv.Amount * (move - p.YieldBufferBps) * 0.0001 * 0.06
	}
	return vm
}

func (ldiBehavior) Redemptions(a *agent.Agent, mkt *market.State, env *Env, cfg *config.Config) float64 {
	// Once most of the yield buffer is gone the scheme starts pulling cash
	// out of its fund holdings to pre-fund margin.
	p := a.LDI
	if p.YieldBufferConsumedPct <= 0.7 || env == nil || env.Net == nil {
		return 0
	}
	if len(env.Net.Neighbors(a.ID, network.KindRedemption)) == 0 {
		return 0
	}
	cash := itemAmount(a, agent.ItemCash)
	if cash <= 0 {
		return 0
	}
	return cash * p.YieldBufferConsumedPct * 0.3
}

func (ldiBehavior) Reactions(a *agent.Agent, mkt *market.State, env *Env, cfg *config.Config) []agent.Action {
	p := a.LDI
	caps := cfg.Reactions.LDI
	shortfall := math.Max(0, -a.Liquidity.B1) + a.Liquidity.E1*0.1
	var actions []agent.Action

	if uec := a.Item(agent.ItemUnencumbered); uec != nil && uec.Amount > 0 && shortfall > 0 {
		post := math.Min(shortfall*caps.CollateralShare, uec.Amount*caps.CollateralCap)
		if post > 0 {
			actions = append(actions, agent.Action{Name: "post_collateral", Kind: agent.KindOther, Amount: post})
			shortfall -= post
		}
	}

	if shortfall > 0 && p.RecapAvailable > p.RecapUsed {
		speed := p.RecapSpeedDays
		if p.Pooled || speed < 1 {
			speed = 1
		}
		daily := (p.RecapAvailable - p.RecapUsed) / float64(speed)
		use := math.Min(shortfall*caps.RecapShare, daily)
		if use > 0 {
			actions = append(actions, agent.Action{Name: "sponsor_recapitalisation", Kind: agent.KindOther, Amount: use})
			p.RecapUsed += use
			shortfall -= use
		}
	}

	shortfall -= saleStep(a, &actions, "sell_gilt", agent.ItemGilts, agent.AssetGilt, caps.SellGilt, shortfall)
	shortfall -= saleStep(a, &actions, "sell_il_gilt", agent.ItemILGilts, agent.AssetGilt, caps.SellILGilt, shortfall)
	shortfall -= saleStep(a, &actions, "sell_corp_bonds", agent.ItemCorpBonds, agent.AssetCorp, caps.SellCorp, shortfall)

	if shortfall > 0 {
		obtained, _ := seekRepo(a, shortfall*caps.RepoAskShare, network.KindClearing, mkt, env, cfg)
		if obtained > 0 {
			actions = append(actions, agent.Action{Name: "seek_repo", Kind: agent.KindRepo, Amount: obtained})
			shortfall -= obtained
		}
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
