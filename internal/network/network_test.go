package network

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
)

func buildNodes() []Node {
	nodes := []Node{
		{ID: "bank_a", Type: agent.TypeBank, Size: 50000},
		{ID: "bank_b", Type: agent.TypeBank, Size: 20000},
		{ID: "bank_c", Type: agent.TypeBank, Size: 8000},
	}
	for i := 0; i < 6; i++ {
		nodes = append(nodes, Node{ID: fmt.Sprintf("hf_%d", i), Type: agent.TypeHedgeFund, Size: 2000})
	}
	for i := 0; i < 3; i++ {
		nodes = append(nodes, Node{ID: fmt.Sprintf("ldi_%d", i), Type: agent.TypeLDIPension, Size: 30000})
	}
	for i := 0; i < 2; i++ {
		nodes = append(nodes, Node{ID: fmt.Sprintf("ins_%d", i), Type: agent.TypeInsurer, Size: 80000})
	}
	for i := 0; i < 3; i++ {
		nodes = append(nodes, Node{ID: fmt.Sprintf("fund_%d", i), Type: agent.TypeFundComplex, Size: 50000})
	}
	return nodes
}

func TestBuild_Deterministic(t *testing.T) {
	cfg := config.Default()
	nodes := buildNodes()

	first, err := Build(nodes, 42, cfg)
	require.NoError(t, err)
	second, err := Build(nodes, 42, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Summarize(), second.Summarize())
	for _, node := range nodes {
		for _, kind := range Kinds {
			assert.Equal(t, first.Neighbors(node.ID, kind), second.Neighbors(node.ID, kind),
				"%s/%s", node.ID, kind)
		}
	}
}

func TestBuild_DegreesWithinConfiguredRanges(t *testing.T) {
	cfg := config.Default()
	net, err := Build(buildNodes(), 42, cfg)
	require.NoError(t, err)

	check := func(id string, kind EdgeKind, r config.IntRange) {
		d := net.Degree(id, kind)
		assert.GreaterOrEqual(t, d, r.Lo, "%s/%s", id, kind)
		assert.LessOrEqual(t, d, r.Hi, "%s/%s", id, kind)
	}
	for i := 0; i < 6; i++ {
		check(fmt.Sprintf("hf_%d", i), KindPrimeBrokerage, cfg.Degrees.HedgeFundBanks)
		check(fmt.Sprintf("hf_%d", i), KindRedemption, cfg.Degrees.RedeemerFunds)
	}
	for i := 0; i < 3; i++ {
		check(fmt.Sprintf("ldi_%d", i), KindClearing, cfg.Degrees.LDIBanks)
		check(fmt.Sprintf("ldi_%d", i), KindRedemption, cfg.Degrees.RedeemerFunds)
	}
	for i := 0; i < 2; i++ {
		check(fmt.Sprintf("ins_%d", i), KindDerivativesRepo, cfg.Degrees.InsurerBanks)
		check(fmt.Sprintf("ins_%d", i), KindRedemption, cfg.Degrees.RedeemerFunds)
	}
}

func TestBuild_FundsRedeemFromOtherFundsOnly(t *testing.T) {
	cfg := config.Default()
	net, err := Build(buildNodes(), 42, cfg)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("fund_%d", i)
		targets := net.Neighbors(id, KindRedemption)
		assert.NotEmpty(t, targets)
		for _, other := range targets {
			assert.NotEqual(t, id, other, "a fund never holds itself")
		}
	}
}

func TestBuild_EdgesAreSymmetric(t *testing.T) {
	cfg := config.Default()
	nodes := buildNodes()
	net, err := Build(nodes, 7, cfg)
	require.NoError(t, err)

	for _, node := range nodes {
		for _, kind := range Kinds {
			for _, other := range net.Neighbors(node.ID, kind) {
				assert.True(t, net.Connected(other, node.ID, kind),
					"%s -> %s (%s) has no reverse edge", node.ID, other, kind)
			}
		}
	}
}

func TestBuild_Errors(t *testing.T) {
	cfg := config.Default()

	_, err := Build([]Node{{ID: "hf_0", Type: agent.TypeHedgeFund, Size: 1}}, 1, cfg)
	require.ErrorContains(t, err, "no banks")

	_, err = Build([]Node{{ID: "x", Type: agent.Type("hawala"), Size: 1}}, 1, cfg)
	require.ErrorContains(t, err, "unknown agent type")
}

func TestFromEdges(t *testing.T) {
	net := FromEdges([]Edge{
		{Kind: KindPrimeBrokerage, A: "hf_a", B: "bank_a"},
		{Kind: KindClearing, A: "ldi_a", B: "bank_a"},
		{Kind: KindRedemption, A: "hf_a", B: "fund_a"},
	})

	assert.True(t, net.Connected("hf_a", "bank_a", KindPrimeBrokerage))
	assert.True(t, net.Connected("bank_a", "hf_a", KindPrimeBrokerage))
	assert.False(t, net.Connected("hf_a", "bank_a", KindClearing))
	assert.Equal(t, []string{"hf_a", "ldi_a"}, net.BankCounterparties("bank_a"))
	assert.Equal(t, Summary{PrimeBrokerage: 1, Clearing: 1, Redemption: 1}, net.Summarize())
}
