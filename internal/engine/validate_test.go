package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/market"
	"github.com/stresslens/swesim/internal/network"
	"github.com/stresslens/swesim/internal/scenario"
	"github.com/stresslens/swesim/internal/testutil"
)

func runWith(t *testing.T, agents []*agent.Agent, sc *scenario.Scenario) error {
	t.Helper()
	eng := New(config.Default(), WithRunIDGenerator(NewFixedGenerator("run-1")))
	_, err := eng.Run(context.Background(), agents, network.FromEdges(nil), sc)
	return err
}

func setupCode(t *testing.T, err error) SetupErrorCode {
	t.Helper()
	require.True(t, IsSetupError(err), "expected setup error, got %v", err)
	var se *SetupError
	require.ErrorAs(t, err, &se)
	return se.Code
}

func TestValidate_EmptyPopulation(t *testing.T) {
	err := runWith(t, nil, severeScenario())
	assert.Equal(t, ErrCodeEmptyPopulation, setupCode(t, err))
}

func TestValidate_BadScenario(t *testing.T) {
	agents := []*agent.Agent{testutil.Bank("bank_a")}

	err := runWith(t, agents, nil)
	assert.Equal(t, ErrCodeBadScenario, setupCode(t, err))

	err = runWith(t, agents, &scenario.Scenario{Name: "flat", HorizonDays: 0})
	assert.Equal(t, ErrCodeBadScenario, setupCode(t, err))

	short := &scenario.Scenario{
		Name:        "short",
		HorizonDays: 3,
		Paths:       map[string][]float64{market.VarGilt10Y: {80, 160}},
	}
	err = runWith(t, agents, short)
	assert.Equal(t, ErrCodeBadScenario, setupCode(t, err))
	assert.ErrorContains(t, err, market.VarGilt10Y)
}

func TestValidate_BadAgents(t *testing.T) {
	t.Run("empty identity", func(t *testing.T) {
		err := runWith(t, []*agent.Agent{testutil.Bank("")}, severeScenario())
		assert.Equal(t, ErrCodeBadAgent, setupCode(t, err))
	})

	t.Run("duplicate identity", func(t *testing.T) {
		agents := []*agent.Agent{testutil.Bank("bank_a"), testutil.Bank("bank_a")}
		err := runWith(t, agents, severeScenario())
		assert.Equal(t, ErrCodeBadAgent, setupCode(t, err))
		assert.ErrorContains(t, err, "duplicate")
	})

	t.Run("variant mismatch", func(t *testing.T) {
		a := testutil.Bank("bank_a")
		a.Bank = nil
		err := runWith(t, []*agent.Agent{a}, severeScenario())
		assert.Equal(t, ErrCodeBadAgent, setupCode(t, err))
	})

	t.Run("unknown type", func(t *testing.T) {
		a := testutil.Bank("bank_a")
		a.Type = agent.Type("hawala")
		err := runWith(t, []*agent.Agent{a}, severeScenario())
		assert.Equal(t, ErrCodeBadAgent, setupCode(t, err))
	})

	t.Run("negative amount", func(t *testing.T) {
		a := testutil.Bank("bank_a")
		a.Item(agent.ItemGilts).Amount = -1
		err := runWith(t, []*agent.Agent{a}, severeScenario())
		assert.Equal(t, ErrCodeBadAgent, setupCode(t, err))
	})

	t.Run("NaN amount", func(t *testing.T) {
		a := testutil.Bank("bank_a")
		a.Item(agent.ItemGilts).Amount = math.NaN()
		err := runWith(t, []*agent.Agent{a}, severeScenario())
		assert.Equal(t, ErrCodeBadAgent, setupCode(t, err))
	})
}

func TestComputeAmplification(t *testing.T) {
	a := testutil.Bank("bank_a")
	a.Liquidity.B2 = 220 // direct depletion 100
	a.Liquidity.B3 = 170 // total depletion 150

	untouched := testutil.Bank("bank_b")
	untouched.Liquidity.B2 = 320 // both depletions floor at 0.001
	untouched.Liquidity.B3 = 320

	initial := map[string]float64{"bank_a": 320, "bank_b": 320}
	amp := computeAmplification([]*agent.Agent{a, untouched}, initial)

	assert.InDelta(t, 1.5, amp.Agents["bank_a"], 1e-9)
	assert.Equal(t, 1.0, amp.Agents["bank_b"])
	assert.InDelta(t, 150.001/100.001, amp.System, 1e-9)
	assert.InDelta(t, 150.001/100.001, amp.Types[agent.TypeBank], 1e-9)
}
