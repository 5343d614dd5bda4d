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

func TestInsurerInitialBuffer(t *testing.T) {
	cfg := config.Default()
	a := testutil.Insurer("ins_a")
	b, err := For(a.Type)
	require.NoError(t, err)

	b.SetInitialBuffer(a, cfg)
	// 800*0.5 + 1000*0.2 + 500*0.2
	assert.InDelta(t, 700.0, a.Liquidity.B0, 1e-9)
	assert.InDelta(t, 160.0, a.BufferFloor, 1e-9)
}

func TestInsurerMarkToMarket_HedgeOffset(t *testing.T) {
	a := testutil.Insurer("ins_a")
	b, err := For(a.Type)
	require.NoError(t, err)

	deltas := map[string]float64{market.VarGilt10Y: 100}
	raw := 10000 * 0.0005 * 100 // gilt book only moves
	want := raw - raw*0.7*0.3   // hedge book offsets 21%
	assert.InDelta(t, want, b.MarkToMarket(a, deltas), 1e-9)
}

func TestInsurerMarginCalls_DirtyCSA(t *testing.T) {
	cfg := config.Default()
	a := testutil.Insurer("ins_a") // 15000 derivatives, 20% dirty CSA
	b, err := For(a.Type)
	require.NoError(t, err)

	mkt := market.New(cfg)
	mkt.ApplyScenario(0, map[string]float64{
		market.VarGilt10Y:         50,
		market.VarRepoHaircutCorp: 3,
	}, cfg)

	want := 15000*50*0.0001*0.008 + 15000*0.2*3*0.01*0.05
	assert.InDelta(t, want, b.MarginCalls(a, mkt, cfg), 1e-9)
}

// Contractual funding first (committed repo lines, then RCF), asset sales
// only after, bilateral repo and fund redemptions last.
func TestInsurerWaterfallOrder(t *testing.T) {
	cfg := config.Default()
	mkt := calmMarket(t, cfg)
	b, err := For(agent.TypeInsurer)
	require.NoError(t, err)

	a := testutil.Insurer("ins_a")
	bank := testutil.Bank("bank_a")
	bank.Liquidity.B0 = 1000
	net := network.FromEdges([]network.Edge{
		{Kind: network.KindDerivativesRepo, A: "ins_a", B: "bank_a"},
		{Kind: network.KindRedemption, A: "ins_a", B: "fund_a"},
	})
	env := NewEnv(net, []*agent.Agent{a, bank, testutil.Fund("fund_a")})

	a.Liquidity.B0 = 700
	a.Liquidity.E1 = 800
	a.Liquidity.B1 = -100

	actions := b.Reactions(a, mkt, env, cfg)

	var names []string
	for _, act := range actions {
		names = append(names, act.Name)
	}
	assert.Equal(t, []string{
		"draw_committed_repo_line",
		"draw_rcf",
		"sell_gilt",
		"sell_corp_bonds",
		"sell_equity",
		"seek_repo",
		"redeem_fund_holdings",
	}, names)

	shortfall := 100 + 800*0.1 // 180
	assert.InDelta(t, shortfall*0.3, actions[0].Amount, 1e-9)
	assert.Equal(t, agent.KindRepo, actions[0].Kind, "line draw counts as repo demand")
	remaining := shortfall - actions[0].Amount
	assert.InDelta(t, remaining*0.2, actions[1].Amount, 1e-9)
}

func TestInsurerRedemptions_SurrendersOnlyUnderExtremeStress(t *testing.T) {
	cfg := config.Default()
	mkt := calmMarket(t, cfg)
	a := testutil.Insurer("ins_a")
	b, err := For(a.Type)
	require.NoError(t, err)

	assert.Zero(t, b.Redemptions(a, mkt, nil, cfg))

	mkt.ApplyScenario(1, map[string]float64{market.VarVol: 45}, cfg)
	assert.InDelta(t, 80000*0.005, b.Redemptions(a, mkt, nil, cfg), 1e-9)
}
