package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/market"
	"github.com/stresslens/swesim/internal/testutil"
)

func calmMarket(t *testing.T, cfg *config.Config) *market.State {
	t.Helper()
	mkt := market.New(cfg)
	mkt.ApplyScenario(0, map[string]float64{}, cfg)
	return mkt
}

func TestFor_AllTypes(t *testing.T) {
	for _, typ := range agent.Types {
		b, err := For(typ)
		require.NoError(t, err, "type %s", typ)
		require.NotNil(t, b)
	}
	_, err := For(agent.Type("building_society"))
	require.Error(t, err)
}

func TestResetDaily(t *testing.T) {
	a := testutil.HedgeFund("hf_a", agent.StrategyMacroRates)
	a.Liquidity = agent.Liquidity{B0: 100, B1: 50, B2: 60, B3: 55, E1: 50, E2: 5}
	a.Reacted = true
	a.Reactions = []agent.Action{{Name: "sell_gilt", Amount: 10}}
	a.RedemptionDemand = 20
	a.Counters.AssetSales = 10

	ResetDaily(a)

	assert.Zero(t, a.Liquidity.E1)
	assert.Zero(t, a.Liquidity.E2)
	assert.False(t, a.Reacted)
	assert.Nil(t, a.Reactions)
	assert.Zero(t, a.RedemptionDemand)
	// Cumulative counters survive the day boundary.
	assert.Equal(t, 10.0, a.Counters.AssetSales)
}

func TestShouldReact_ThresholdBreach(t *testing.T) {
	a := testutil.HedgeFund("hf_a", agent.StrategyMacroRates)
	a.Liquidity.B0 = 100
	a.BufferFloor = 10

	// Effective threshold: 0.4 * (1 + 0.9) = 0.76.
	a.Liquidity.E1 = 70
	assert.False(t, ShouldReact(a), "stress ratio 0.70 below threshold")

	a.Liquidity.E1 = 80
	assert.True(t, ShouldReact(a), "stress ratio 0.80 above threshold")
}

func TestShouldReact_DegenerateBuffer(t *testing.T) {
	a := testutil.HedgeFund("hf_a", agent.StrategyMacroRates)
	a.BufferFloor = 10
	a.Liquidity.B0 = 10

	a.Liquidity.E1 = 0
	assert.False(t, ShouldReact(a), "floor-level buffer without losses")

	// Any positive loss triggers: a floor buffer has no headroom.
	a.Liquidity.E1 = 0.5
	assert.True(t, ShouldReact(a))
}

// Every variant's buffer rule must pin B0 at the absolute minimum floor when
// the institution has nothing at all: no assets, no size. Proportional floors
// collapse to zero there and must not leak a zero buffer out.
func TestSetInitialBuffer_ZeroAssetAgentGetsMinimumFloor(t *testing.T) {
	cfg := config.Default()
	require.Greater(t, cfg.Buffers.MinFloor, 0.0)

	zeroed := []*agent.Agent{
		testutil.Bank("bank_a"),
		testutil.HedgeFund("hf_a", agent.StrategyMacroRates),
		testutil.LDI("ldi_a"),
		testutil.Insurer("ins_a"),
		testutil.Fund("fund_a"),
	}
	for _, a := range zeroed {
		a.Size = 0
		for _, it := range a.BalanceSheet {
			it.Amount = 0
		}
		switch {
		case a.Bank != nil:
			a.Bank.GiltCapacity, a.Bank.CorpCapacity, a.Bank.RepoCapacity = 0, 0, 0
		case a.HedgeFund != nil:
			a.HedgeFund.AUM = 0
		case a.LDI != nil:
			a.LDI.AUM = 0
		case a.Insurer != nil:
			a.Insurer.TotalAssets = 0
		case a.Fund != nil:
			a.Fund.AUM = 0
		}
	}

	for _, a := range zeroed {
		b, err := For(a.Type)
		require.NoError(t, err, "type %s", a.Type)

		b.SetInitialBuffer(a, cfg)

		assert.Equal(t, cfg.Buffers.MinFloor, a.BufferFloor, "%s floor", a.Type)
		assert.Equal(t, cfg.Buffers.MinFloor, a.Liquidity.B0, "%s B0", a.Type)
		assert.Greater(t, a.Liquidity.B0, 0.0, "%s B0 positivity", a.Type)
	}
}

func TestReact_NoBreachLeavesB2AtB1(t *testing.T) {
	cfg := config.Default()
	mkt := calmMarket(t, cfg)
	a := testutil.HedgeFund("hf_a", agent.StrategyMacroRates)
	b, err := For(a.Type)
	require.NoError(t, err)

	a.Liquidity.B0 = 100
	a.Liquidity.E1 = 10
	a.Liquidity.B1 = 90

	React(b, a, mkt, nil, cfg)

	assert.False(t, a.Reacted)
	assert.Empty(t, a.Reactions)
	assert.Equal(t, 90.0, a.Liquidity.B2)
}

func TestEfficiencyFor(t *testing.T) {
	cfg := config.Default()
	mkt := calmMarket(t, cfg)

	// Calm market: 2bps bid/ask.
	assert.InDelta(t, 0.98, EfficiencyFor(agent.KindSale, mkt, cfg), 1e-9)
	assert.Equal(t, 1.0, EfficiencyFor(agent.KindRepo, mkt, cfg))
	assert.Equal(t, 0.95, EfficiencyFor(agent.KindFacility, mkt, cfg))
	assert.Equal(t, 0.90, EfficiencyFor(agent.KindRedemption, mkt, cfg))
	assert.Equal(t, 0.80, EfficiencyFor(agent.KindOther, mkt, cfg))

	// Stressed market: wider spreads degrade sales, scarcer repo degrades
	// repo, the fixed classes are unchanged.
	mkt.ApplyScenario(1, map[string]float64{market.VarVol: 45}, cfg)
	assert.InDelta(t, 0.94, EfficiencyFor(agent.KindSale, mkt, cfg), 1e-9)
	assert.InDelta(t, 0.70, EfficiencyFor(agent.KindRepo, mkt, cfg), 1e-9)
	assert.Equal(t, 0.95, EfficiencyFor(agent.KindFacility, mkt, cfg))

	// Extreme spreads bottom out at the sale floor.
	mkt.GiltBidAskBps = 500
	assert.Equal(t, 0.5, EfficiencyFor(agent.KindSale, mkt, cfg))
}

func TestRegister_RoutesByAssetClass(t *testing.T) {
	cfg := config.Default()
	mkt := calmMarket(t, cfg)
	a := testutil.Insurer("ins_a")
	a.Reactions = []agent.Action{
		{Name: "sell_gilt", Kind: agent.KindSale, Amount: 100, Asset: agent.AssetGilt},
		{Name: "sell_corp_bonds", Kind: agent.KindSale, Amount: 40, Asset: agent.AssetCorp},
		{Name: "sell_equity", Kind: agent.KindSale, Amount: 25, Asset: agent.AssetEquity},
		{Name: "seek_repo", Kind: agent.KindRepo, Amount: 60},
		{Name: "draw_rcf", Kind: agent.KindOther, Amount: 30},
	}

	Register(a, mkt)

	assert.Equal(t, 100.0, mkt.GiltSelling)
	assert.Equal(t, 40.0, mkt.CorpSelling)
	assert.Equal(t, 60.0, mkt.RepoDemand)
}

func TestApplyFeedback_AccumulatesAcrossIterations(t *testing.T) {
	a := testutil.LDI("ldi_a")
	a.Liquidity.B2 = 500

	ApplyFeedback(a, 30)
	ApplyFeedback(a, 20)

	assert.Equal(t, 50.0, a.Liquidity.E2)
	assert.Equal(t, 450.0, a.Liquidity.B3)
}

func TestRealizeSales_DepletesAndFloorsHoldings(t *testing.T) {
	a := testutil.Fund("fund_a")
	a.Item(agent.ItemGilts).Amount = 100
	a.Reactions = []agent.Action{
		{Name: "sell_gilt", Kind: agent.KindSale, Amount: 130, Asset: agent.AssetGilt, Item: agent.ItemGilts},
		{Name: "draw_cash_buffer", Kind: agent.KindOther, Amount: 50}, // no item, no depletion
	}

	RealizeSales(a)

	assert.Zero(t, a.Item(agent.ItemGilts).Amount)
	assert.Equal(t, 2500.0, a.Item(agent.ItemCash).Amount)
}

func TestReact_RealisesAtClassEfficiency(t *testing.T) {
	cfg := config.Default()
	mkt := calmMarket(t, cfg)
	a := testutil.Fund("fund_a")
	b, err := For(a.Type)
	require.NoError(t, err)

	a.Item(agent.ItemCash).Amount = 100
	a.Liquidity.B0 = 50
	a.BufferFloor = 50
	a.Liquidity.E1 = 150
	a.Liquidity.B1 = -100
	a.RedemptionDemand = 150

	React(b, a, mkt, nil, cfg)

	require.True(t, a.Reacted)
	require.Len(t, a.Reactions, 2)
	// Cash draw realises at the "other" rate, the gilt sale at the live
	// spread-driven sale rate.
	realised := 100*0.80 + 50*0.98
	assert.InDelta(t, -100+realised, a.Liquidity.B2, 1e-9)
	assert.Equal(t, 50.0, a.Counters.AssetSales)
	assert.Equal(t, 50.0, a.Counters.GiltSales)
}
