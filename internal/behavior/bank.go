package behavior

import (
	"math"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/market"
	"github.com/stresslens/swesim/internal/network"
)

// bankBehavior implements the dealer-bank variant: repo provider and market
// maker. Banks face no fund redemptions but suffer wholesale funding runoff
// under severe stress, and their waterfall prefers central-bank facilities
// over balance-sheet sales.
type bankBehavior struct{}

func (bankBehavior) SetInitialBuffer(a *agent.Agent, cfg *config.Config) {
	bp := cfg.Buffers.Bank
	b0 := itemAmount(a, agent.ItemFacilityEligible)*bp.FacilityEligibleMult +
		itemAmount(a, agent.ItemCET1)*bp.CET1Mult -
		itemAmount(a, agent.ItemWholesale)*bp.WholesaleRunoffMult
	floor := bufferFloor(a.Size*bp.FloorPct, cfg)
	a.BufferFloor = floor
	a.Liquidity.B0 = math.Max(b0, floor)
}

func (bankBehavior) MarkToMarket(a *agent.Agent, deltas map[string]float64) float64 {
	return sensitivityLosses(a, deltas, false)
}

func (bankBehavior) MarginCalls(a *agent.Agent, mkt *market.State, cfg *config.Config) float64 {
	deriv := a.Item(agent.ItemDerivatives)
	if deriv == nil {
		return 0
	}
	vm := deriv.Amount * math.Abs(mkt.Level(market.VarGilt10Y)) * 0.0001 * 0.05
	if s := stressLevel(mkt, cfg); s > 1.0 {
		vm += deriv.Amount * (s - 1.0) * 0.005
	}
	return vm
}

func (bankBehavior) Redemptions(a *agent.Agent, mkt *market.State, env *Env, cfg *config.Config) float64 {
	// Wholesale funding runoff kicks in under severe stress.
	wf := a.Item(agent.ItemWholesale)
	if wf == nil {
		return 0
	}
	if s := stressLevel(mkt, cfg); s > 2.0 {
		return wf.Amount * (s - 2.0) * 0.02
	}
	return 0
}

func (bankBehavior) Reactions(a *agent.Agent, mkt *market.State, env *Env, cfg *config.Config) []agent.Action {
	caps := cfg.Reactions.Bank
	shortfall := math.Max(0, -a.Liquidity.B1)
	var actions []agent.Action

	if eligible := a.Item(agent.ItemFacilityEligible); eligible != nil && eligible.Amount > 0 && shortfall > 0 {
		draw := math.Min(shortfall*caps.FacilityShare, eligible.Amount*caps.FacilityCap)
		if draw > 0 {
			actions = append(actions, agent.Action{Name: "draw_central_bank_facility", Kind: agent.KindFacility, Amount: draw})
			shortfall -= draw
		}
	}

	if repo := a.Item(agent.ItemRepoLending); repo != nil && repo.Amount > 0 && shortfall > 0 {
		cut := math.Min(shortfall*caps.RepoCutShare, repo.Amount*(1.0-a.Bank.RiskAppetite)*0.3)
		if cut > 0 {
			actions = append(actions, agent.Action{Name: "reduce_repo_lending", Kind: agent.KindRepo, Amount: cut})
			shortfall -= cut
		}
	}

	shortfall -= saleStep(a, &actions, "sell_gilt", agent.ItemGilts, agent.AssetGilt, caps.SellGilt, shortfall)
	saleStep(a, &actions, "sell_corp_bonds", agent.ItemCorpBonds, agent.AssetCorp, caps.SellCorp, shortfall)

	return actions
}

// AssessRepoRequest is the bank side of a bilateral repo ask. It refuses
// agents it has no relationship with; otherwise the extended amount scales
// with the bank's structural willingness, its risk appetite and a linear
// stress decay that reaches zero at the refusal threshold.
func AssessRepoRequest(bank *agent.Agent, requesterID string, amount float64, net *network.Network, cfg *config.Config) float64 {
	if bank.Bank == nil || net == nil || amount <= 0 {
		return 0
	}
	connected := net.Connected(bank.ID, requesterID, network.KindPrimeBrokerage) ||
		net.Connected(bank.ID, requesterID, network.KindClearing) ||
		net.Connected(bank.ID, requesterID, network.KindDerivativesRepo)
	if !connected {
		return 0
	}

	stressRatio := bank.Liquidity.E1 / math.Max(bank.Liquidity.B0, 1.0)
	scaling := math.Max(0, 1.0-stressRatio/cfg.Feedback.RepoRefusalStressThreshold)

	available := bank.Bank.RepoCapacity * bank.Bank.WillExtendNewPct
	return math.Min(amount, available*bank.Bank.RiskAppetite*scaling)
}

// AbsorbGilt consumes the bank's gilt market-making capacity against its
// share of the day's selling pressure and returns the amount absorbed.
// Consumption is cumulative across the horizon and never replenishes.
func AbsorbGilt(bank *agent.Agent, amount float64) float64 {
	p := bank.Bank
	absorbed := math.Min(amount, p.GiltRemaining()*p.RiskAppetite)
	if p.GiltCapacity > 0 {
		p.GiltConsumedPct = math.Min(1.0, p.GiltConsumedPct+absorbed/p.GiltCapacity)
	}
	return absorbed
}

// AbsorbCorp is AbsorbGilt for the corporate-bond book.
func AbsorbCorp(bank *agent.Agent, amount float64) float64 {
	p := bank.Bank
	absorbed := math.Min(amount, p.CorpRemaining()*p.RiskAppetite)
	if p.CorpCapacity > 0 {
		p.CorpConsumedPct = math.Min(1.0, p.CorpConsumedPct+absorbed/p.CorpCapacity)
	}
	return absorbed
}

// TightenRepo reduces the bank's structural willingness to extend new repo
// (and, half as fast, to roll existing repo) after a day on which it
// reacted. The tightening degree follows the bank's own stress ratio,
// reaching full withdrawal at the refusal threshold. The effect persists
// across the rest of the horizon.
func TightenRepo(bank *agent.Agent, cfg *config.Config) {
	p := bank.Bank
	stressRatio := bank.Liquidity.E1 / math.Max(bank.Liquidity.B0, 1.0)
	tightening := math.Min(1.0, stressRatio/cfg.Feedback.RepoRefusalStressThreshold)
	p.WillExtendNewPct *= 1.0 - tightening
	p.WillRollPct = math.Max(0.5, p.WillRollPct*(1.0-0.5*tightening))
}

// itemAmount returns the named item's amount, treating a missing item as 0.
func itemAmount(a *agent.Agent, name string) float64 {
	if it := a.Item(name); it != nil {
		return it.Amount
	}
	return 0
}

// sensitivityLosses sums |amount * sensitivity * delta| across the balance
// sheet. With assetsOnly set, liabilities/equity/off-balance items are
// skipped.
func sensitivityLosses(a *agent.Agent, deltas map[string]float64, assetsOnly bool) float64 {
	var total float64
	for _, it := range a.BalanceSheet {
		if assetsOnly && it.Category != agent.CategoryLiquidAsset && it.Category != agent.CategoryIlliquidAsset {
			continue
		}
		for v, sens := range it.Sensitivity {
			total += math.Abs(it.Amount * sens * deltas[v])
		}
	}
	return total
}

// stressLevel is the raw volatility ratio to baseline, unfloored: below-one
// values matter for the strict > 2.0 runoff triggers.
func stressLevel(mkt *market.State, cfg *config.Config) float64 {
	return mkt.Vol(cfg) / cfg.Market.BaseVol
}
