package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/market"
	"github.com/stresslens/swesim/internal/network"
	"github.com/stresslens/swesim/internal/testutil"
)

func TestLDIInitialBuffer(t *testing.T) {
	cfg := config.Default()
	a := testutil.LDI("ldi_a")
	b, err := For(a.Type)
	require.NoError(t, err)

	b.SetInitialBuffer(a, cfg)
	// 300 cash + 1000 unencumbered * 0.3
	assert.InDelta(t, 600.0, a.Liquidity.B0, 1e-9)
	assert.InDelta(t, 150.0, a.BufferFloor, 1e-9)
}

func TestLDIMarginCalls_YieldBufferEscalation(t *testing.T) {
	cfg := config.Default()
	a := testutil.LDI("ldi_a") // 20000 derivatives, 150bps yield buffer
	b, err := For(a.Type)
	require.NoError(t, err)

	mkt := market.New(cfg)
	mkt.ApplyScenario(0, map[string]float64{market.VarGilt10Y: 100}, cfg)

	vm := b.MarginCalls(a, mkt, cfg)
	assert.InDelta(t, 20000*100*0.0001*0.04, vm, 1e-9)
	assert.InDelta(t, 100.0/150.0, a.LDI.YieldBufferConsumedPct, 1e-9)

	// Past the yield buffer the excess move escalates.
	mkt.ApplyScenario(1, map[string]float64{market.VarGilt10Y: 200}, cfg)
	vm = b.MarginCalls(a, mkt, cfg)
	want := 20000*200*0.0001*0.04 + 20000*(200-150)*0.0001*0.06
	assert.InDelta(t, want, vm, 1e-9)
	assert.Equal(t, 1.0, a.LDI.YieldBufferConsumedPct)
}

func TestLDIRedemptions_RequireConsumedBufferAndFundLinks(t *testing.T) {
	cfg := config.Default()
	mkt := calmMarket(t, cfg)
	a := testutil.LDI("ldi_a")
	b, err := For(a.Type)
	require.NoError(t, err)

	net := network.FromEdges([]network.Edge{
		{Kind: network.KindRedemption, A: "ldi_a", B: "fund_a"},
	})
	env := NewEnv(net, []*agent.Agent{a, testutil.Fund("fund_a")})

	a.LDI.YieldBufferConsumedPct = 0.5
	assert.Zero(t, b.Redemptions(a, mkt, env, cfg), "buffer mostly intact")

	a.LDI.YieldBufferConsumedPct = 0.9
	assert.InDelta(t, 300*0.9*0.3, b.Redemptions(a, mkt, env, cfg), 1e-9)

	assert.Zero(t, b.Redemptions(a, mkt, nil, cfg), "no fund links, no pre-funding")
}

// The full waterfall in priority order: collateral, recapitalisation, the
// three sale legs, then repo, then fund redemptions for whatever remains.
func TestLDIWaterfallOrder(t *testing.T) {
	cfg := config.Default()
	mkt := calmMarket(t, cfg)
	b, err := For(agent.TypeLDIPension)
	require.NoError(t, err)

	a := testutil.LDI("ldi_a")
	bank := testutil.Bank("bank_a")
	bank.Liquidity.B0 = 1000
	net := network.FromEdges([]network.Edge{
		{Kind: network.KindClearing, A: "ldi_a", B: "bank_a"},
		{Kind: network.KindRedemption, A: "ldi_a", B: "fund_a"},
	})
	env := NewEnv(net, []*agent.Agent{a, bank, testutil.Fund("fund_a")})

	a.Liquidity.B0 = 600
	a.Liquidity.E1 = 700
	a.Liquidity.B1 = -100

	actions := b.Reactions(a, mkt, env, cfg)

	var names []string
	for _, act := range actions {
		names = append(names, act.Name)
	}
	assert.Equal(t, []string{
		"post_collateral",
		"sponsor_recapitalisation",
		"sell_gilt",
		"sell_il_gilt",
		"sell_corp_bonds",
		"seek_repo",
		"redeem_fund_holdings",
	}, names)

	shortfall := 100 + 700*0.1 // 170
	assert.InDelta(t, shortfall*0.4, actions[0].Amount, 1e-9)
	remaining := shortfall - actions[0].Amount

	// Segregated scheme: recap trickles in at (available-used)/speed per day.
	daily := a.LDI.RecapAvailable / 5
	assert.InDelta(t, remaining*0.3, actions[1].Amount, 1e-9)
	assert.Less(t, actions[1].Amount, daily, "trustee-gated pace not binding here")
	assert.InDelta(t, actions[1].Amount, a.LDI.RecapUsed, 1e-9)
	remaining -= actions[1].Amount

	assert.InDelta(t, remaining*0.15, actions[2].Amount, 1e-9)
}

func TestLDIRecap_PooledIsSameDay(t *testing.T) {
	cfg := config.Default()
	mkt := calmMarket(t, cfg)
	b, err := For(agent.TypeLDIPension)
	require.NoError(t, err)

	segregated := testutil.LDI("ldi_a")
	pooled := testutil.LDI("ldi_b")
	pooled.LDI.Pooled = true

	for _, a := range []*agent.Agent{segregated, pooled} {
		a.Item(agent.ItemUnencumbered).Amount = 0 // skip the collateral leg
		a.LDI.RecapAvailable = 100
		a.Liquidity.B0 = 600
		a.Liquidity.E1 = 2000
		a.Liquidity.B1 = -1400
	}
	// Shortfall 1600: the recap ask (480) exceeds both schemes' remaining
	// sponsor capital, so the pace cap decides.
	segActions := b.Reactions(segregated, mkt, nil, cfg)
	require.Equal(t, "sponsor_recapitalisation", segActions[0].Name)
	assert.InDelta(t, 20.0, segActions[0].Amount, 1e-9) // 100/5 per day

	pooledActions := b.Reactions(pooled, mkt, nil, cfg)
	require.Equal(t, "sponsor_recapitalisation", pooledActions[0].Name)
	assert.InDelta(t, 100.0, pooledActions[0].Amount, 1e-9) // all of it, same day
}

func TestLDIRecap_ExhaustsAcrossDays(t *testing.T) {
	cfg := config.Default()
	mkt := calmMarket(t, cfg)
	b, err := For(agent.TypeLDIPension)
	require.NoError(t, err)

	a := testutil.LDI("ldi_a")
	a.Item(agent.ItemUnencumbered).Amount = 0
	a.LDI.RecapAvailable = 100
	a.LDI.RecapSpeedDays = 2

	var drawn float64
	for day := 0; day < 60; day++ {
		a.Liquidity.B0 = 600
		a.Liquidity.E1 = 5000
		a.Liquidity.B1 = -4400
		for _, act := range b.Reactions(a, mkt, nil, cfg) {
			if act.Name == "sponsor_recapitalisation" {
				drawn += act.Amount
			}
		}
	}
	assert.InDelta(t, 100.0, drawn, 1e-6, "sponsor capital is finite")
	assert.InDelta(t, 100.0, a.LDI.RecapUsed, 1e-6)
}
