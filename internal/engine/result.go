package engine

import (
	"math"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/market"
	"github.com/stresslens/swesim/internal/network"
)

// ampFloor keeps amplification denominators away from zero so that ratios
// stay defined for agents the shock barely touched.
const ampFloor = 0.001

// AgentSnapshot is one agent's liquidity record for one day, captured after
// feedback has settled but before sales deplete the balance sheet.
type AgentSnapshot struct {
	Day     int        `json:"day"`
	ID      string     `json:"id"`
	Type    agent.Type `json:"type"`
	B0      float64    `json:"b0"`
	B1      float64    `json:"b1"`
	B2      float64    `json:"b2"`
	B3      float64    `json:"b3"`
	E1      float64    `json:"e1"`
	E2      float64    `json:"e2"`
	Reacted bool       `json:"reacted"`

	CumMarginCalls float64 `json:"cum_margin_calls"`
	CumAssetSales  float64 `json:"cum_asset_sales"`
	CumGiltSales   float64 `json:"cum_gilt_sales"`
	CumRepoDemand  float64 `json:"cum_repo_demand"`
	CumRedemptions float64 `json:"cum_redemptions"`
}

// DaySnapshot pairs the market close with every agent's record for one day.
// Agents appear in population order.
type DaySnapshot struct {
	Day    int             `json:"day"`
	Market market.Snapshot `json:"market"`
	Agents []AgentSnapshot `json:"agents"`
}

// Amplification holds the second-round amplification ratios: how much the
// feedback round magnified the net first-round depletion. The denominator is
// the pre-feedback depletion B0−B2 (floored), so a run with feedback
// disabled reports exactly 1.0 everywhere.
type Amplification struct {
	Agents map[string]float64     `json:"agents"`
	Types  map[agent.Type]float64 `json:"types"`
	System float64                `json:"system"`
}

// Summary aggregates horizon-wide run outcomes.
type Summary struct {
	TotalAgents      int     `json:"total_agents"`
	AgentsReacted    int     `json:"agents_reacted"`
	TotalMarginCalls float64 `json:"total_margin_calls"`
	TotalAssetSales  float64 `json:"total_asset_sales"`
	NBFIGiltSales    float64 `json:"nbfi_gilt_sales"`
	TotalRepoDemand  float64 `json:"total_repo_demand"`

	FinalGiltYieldBps float64 `json:"final_gilt_yield_bps"`
	FinalIGSpreadBps  float64 `json:"final_ig_spread_bps"`
	FinalRepoAvailPct float64 `json:"final_repo_avail_pct"`

	HedgeFundsSeekingRepo int `json:"hedge_funds_seeking_repo"`
	HedgeFundsRefusedRepo int `json:"hedge_funds_refused_repo"`
}

// Result is the complete output of one run. It is self-contained: the store
// and the CLI render from it without touching live engine state.
type Result struct {
	RunID    string `json:"run_id"`
	Scenario string `json:"scenario"`
	Horizon  int    `json:"horizon_days"`

	InitialBuffers map[string]float64 `json:"initial_buffers"`
	Days           []DaySnapshot      `json:"days"`
	Amplification  Amplification      `json:"amplification"`
	Summary        Summary            `json:"summary"`
	Network        network.Summary    `json:"network"`
}

func snapshotAgent(day int, a *agent.Agent) AgentSnapshot {
	return AgentSnapshot{
		Day:     day,
		ID:      a.ID,
		Type:    a.Type,
		B0:      a.Liquidity.B0,
		B1:      a.Liquidity.B1,
		B2:      a.Liquidity.B2,
		B3:      a.Liquidity.B3,
		E1:      a.Liquidity.E1,
		E2:      a.Liquidity.E2,
		Reacted: a.Reacted,

		CumMarginCalls: a.Counters.MarginCalls,
		CumAssetSales:  a.Counters.AssetSales,
		CumGiltSales:   a.Counters.GiltSales,
		CumRepoDemand:  a.Counters.RepoDemand,
		CumRedemptions: a.Counters.Redemptions,
	}
}

// computeAmplification measures, per agent, per type and system-wide,
// (B0_initial − B3_final) / (B0_initial − B2_final) with both depletion
// terms floored.
func computeAmplification(agents []*agent.Agent, initial map[string]float64) Amplification {
	amp := Amplification{
		Agents: make(map[string]float64, len(agents)),
		Types:  make(map[agent.Type]float64, len(agent.Types)),
	}

	typeDirect := make(map[agent.Type]float64, len(agent.Types))
	typeTotal := make(map[agent.Type]float64, len(agent.Types))
	var sysDirect, sysTotal float64

	for _, a := range agents {
		direct := math.Max(initial[a.ID]-a.Liquidity.B2, ampFloor)
		total := math.Max(initial[a.ID]-a.Liquidity.B3, ampFloor)
		amp.Agents[a.ID] = total / direct
		typeDirect[a.Type] += direct
		typeTotal[a.Type] += total
		sysDirect += direct
		sysTotal += total
	}

	for _, t := range agent.Types {
		if typeDirect[t] > 0 {
			amp.Types[t] = typeTotal[t] / typeDirect[t]
		}
	}
	if sysDirect > 0 {
		amp.System = sysTotal / sysDirect
	} else {
		amp.System = 1.0
	}
	return amp
}

func computeSummary(agents []*agent.Agent, mkt *market.State) Summary {
	var s Summary
	s.TotalAgents = len(agents)
	for _, a := range agents {
		if a.Reacted {
			s.AgentsReacted++
		}
		s.TotalMarginCalls += a.Counters.MarginCalls
		s.TotalAssetSales += a.Counters.AssetSales
		s.TotalRepoDemand += a.Counters.RepoDemand
		if a.Type != agent.TypeBank {
			s.NBFIGiltSales += a.Counters.GiltSales
		}
		if a.Type == agent.TypeHedgeFund && a.HedgeFund != nil {
			if a.HedgeFund.SoughtRepo {
				s.HedgeFundsSeekingRepo++
			}
			if a.HedgeFund.RepoRefusedByAll {
				s.HedgeFundsRefusedRepo++
			}
		}
	}
	s.FinalGiltYieldBps = mkt.Level(market.VarGilt10Y)
	s.FinalIGSpreadBps = mkt.Level(market.VarIGCorpSpread)
	s.FinalRepoAvailPct = mkt.RepoAvailPct
	return s
}
