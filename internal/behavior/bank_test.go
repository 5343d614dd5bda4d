package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/network"
	"github.com/stresslens/swesim/internal/testutil"
)

func TestBankInitialBuffer(t *testing.T) {
	cfg := config.Default()
	a := testutil.Bank("bank_a")
	b, err := For(a.Type)
	require.NoError(t, err)

	b.SetInitialBuffer(a, cfg)

	// 2000*0.15 + 1500*0.08 - 1000*0.10
	assert.InDelta(t, 320.0, a.Liquidity.B0, 1e-9)
	assert.InDelta(t, 20.0, a.BufferFloor, 1e-9)
}

func TestBankInitialBuffer_Floor(t *testing.T) {
	cfg := config.Default()
	a := testutil.Bank("bank_a")
	a.Item(agent.ItemWholesale).Amount = 50000 // runoff swamps the buffer
	b, err := For(a.Type)
	require.NoError(t, err)

	b.SetInitialBuffer(a, cfg)

	assert.Equal(t, 20.0, a.Liquidity.B0)
}

func TestBankWaterfall_FacilityFirstThenRepoCutThenSales(t *testing.T) {
	cfg := config.Default()
	mkt := calmMarket(t, cfg)
	a := testutil.Bank("bank_a")
	b, err := For(a.Type)
	require.NoError(t, err)

	a.Liquidity.B0 = 320
	a.Liquidity.E1 = 420
	a.Liquidity.B1 = -100

	actions := b.Reactions(a, mkt, nil, cfg)

	require.Len(t, actions, 4)
	assert.Equal(t, "draw_central_bank_facility", actions[0].Name)
	assert.InDelta(t, 30.0, actions[0].Amount, 1e-9) // 100*0.3

	assert.Equal(t, "reduce_repo_lending", actions[1].Name)
	assert.Equal(t, agent.KindRepo, actions[1].Kind)
	assert.InDelta(t, 21.0, actions[1].Amount, 1e-9) // 70*0.3

	assert.Equal(t, "sell_gilt", actions[2].Name)
	assert.InDelta(t, 4.9, actions[2].Amount, 1e-9) // 49*0.10

	assert.Equal(t, "sell_corp_bonds", actions[3].Name)
	assert.InDelta(t, 44.1*0.08, actions[3].Amount, 1e-9)
}

func TestAssessRepoRequest_RequiresRelationship(t *testing.T) {
	cfg := config.Default()
	bank := testutil.Bank("bank_a")
	bank.Liquidity.B0 = 320
	net := network.FromEdges([]network.Edge{
		{Kind: network.KindPrimeBrokerage, A: "bank_a", B: "hf_a"},
	})

	assert.Equal(t, 100.0, AssessRepoRequest(bank, "hf_a", 100, net, cfg))
	assert.Zero(t, AssessRepoRequest(bank, "hf_b", 100, net, cfg), "stranger is refused")
}

func TestAssessRepoRequest_StressDecay(t *testing.T) {
	cfg := config.Default()
	net := network.FromEdges([]network.Edge{
		{Kind: network.KindClearing, A: "bank_a", B: "ldi_a"},
	})

	bank := testutil.Bank("bank_a")
	bank.Liquidity.B0 = 1000

	// Unstressed: capped by capacity * willingness * risk appetite.
	got := AssessRepoRequest(bank, "ldi_a", 10000, net, cfg)
	assert.InDelta(t, 2500.0, got, 1e-9) // 5000 * 1.0 * 0.5

	// Halfway to the refusal threshold: half the extension.
	bank.Liquidity.E1 = 1000 * cfg.Feedback.RepoRefusalStressThreshold / 2
	got = AssessRepoRequest(bank, "ldi_a", 10000, net, cfg)
	assert.InDelta(t, 1250.0, got, 1e-6)

	// At the threshold: full refusal.
	bank.Liquidity.E1 = 1000 * cfg.Feedback.RepoRefusalStressThreshold
	assert.InDelta(t, 0.0, AssessRepoRequest(bank, "ldi_a", 10000, net, cfg), 1e-9)
}

func TestAbsorbGilt_CapacityIsCumulative(t *testing.T) {
	bank := testutil.Bank("bank_a") // capacity 3000, risk appetite 0.5

	first := AbsorbGilt(bank, 2000)
	assert.InDelta(t, 1500.0, first, 1e-9) // remaining 3000 * 0.5
	assert.InDelta(t, 0.5, bank.Bank.GiltConsumedPct, 1e-9)

	second := AbsorbGilt(bank, 2000)
	assert.InDelta(t, 750.0, second, 1e-9) // remaining 1500 * 0.5
	assert.InDelta(t, 0.75, bank.Bank.GiltConsumedPct, 1e-9)

	// Absorption never exceeds total capacity, however many waves arrive.
	var total = first + second
	for i := 0; i < 50; i++ {
		total += AbsorbGilt(bank, 10000)
	}
	assert.LessOrEqual(t, total, bank.Bank.GiltCapacity)
	assert.LessOrEqual(t, bank.Bank.GiltConsumedPct, 1.0)
}

func TestTightenRepo(t *testing.T) {
	cfg := config.Default()

	bank := testutil.Bank("bank_a")
	bank.Liquidity.B0 = 1000
	TightenRepo(bank, cfg)
	assert.Equal(t, 1.0, bank.Bank.WillExtendNewPct, "no stress, no tightening")
	assert.Equal(t, 1.0, bank.Bank.WillRollPct)

	bank.Liquidity.E1 = 1000 * cfg.Feedback.RepoRefusalStressThreshold / 2
	TightenRepo(bank, cfg)
	assert.InDelta(t, 0.5, bank.Bank.WillExtendNewPct, 1e-9)
	assert.InDelta(t, 0.75, bank.Bank.WillRollPct, 1e-9)

	// Beyond the threshold: new repo fully withdrawn, rolls floor at half.
	bank.Liquidity.E1 = 1000
	TightenRepo(bank, cfg)
	assert.Zero(t, bank.Bank.WillExtendNewPct)
	assert.Equal(t, 0.5, bank.Bank.WillRollPct)
}

func TestBankRedemptions_WholesaleRunoffOnlyUnderSevereStress(t *testing.T) {
	cfg := config.Default()
	mkt := calmMarket(t, cfg)
	a := testutil.Bank("bank_a")
	b, err := For(a.Type)
	require.NoError(t, err)

	assert.Zero(t, b.Redemptions(a, mkt, nil, cfg))

	mkt.ApplyScenario(1, map[string]float64{"vol": 45}, cfg) // 3x baseline
	assert.InDelta(t, 1000*1.0*0.02, b.Redemptions(a, mkt, nil, cfg), 1e-9)
}
