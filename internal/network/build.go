package network

import (
	"fmt"
	"math/rand"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
)

// Build constructs the relationship graph from a fixed population using
// seeded, size-weighted random assignment honoring the configured degree
// ranges. Larger banks (and larger fund complexes) attract proportionally
// more counterparties. Given identical nodes, seed and degree config, the
// resulting topology is identical.
func Build(nodes []Node, seed int64, cfg *config.Config) (*Network, error) {
	var banks, hedgeFunds, ldis, insurers, funds []Node
	for _, node := range nodes {
		switch node.Type {
		case agent.TypeBank:
			banks = append(banks, node)
		case agent.TypeHedgeFund:
			hedgeFunds = append(hedgeFunds, node)
		case agent.TypeLDIPension:
			ldis = append(ldis, node)
		case agent.TypeInsurer:
			insurers = append(insurers, node)
		case agent.TypeFundComplex:
			funds = append(funds, node)
		default:
			return nil, fmt.Errorf("network: unknown agent type %q for %s", node.Type, node.ID)
		}
	}
	if len(banks) == 0 {
		return nil, fmt.Errorf("network: population has no banks")
	}

	rng := rand.New(rand.NewSource(seed))
	n := newNetwork()

	for _, hf := range hedgeFunds {
		for _, bank := range pickWeighted(rng, banks, sampleDegree(rng, cfg.Degrees.HedgeFundBanks)) {
			n.addEdge(KindPrimeBrokerage, hf.ID, bank)
		}
	}
	for _, ldi := range ldis {
		for _, bank := range pickWeighted(rng, banks, sampleDegree(rng, cfg.Degrees.LDIBanks)) {
			n.addEdge(KindClearing, ldi.ID, bank)
		}
	}
	for _, ins := range insurers {
		for _, bank := range pickWeighted(rng, banks, sampleDegree(rng, cfg.Degrees.InsurerBanks)) {
			n.addEdge(KindDerivativesRepo, ins.ID, bank)
		}
	}

	// Redemption links: every non-bank NBFI redeems from a few fund
	// complexes, weighted by fund size. Fund complexes themselves hold
	// other funds too, so they also get redemption targets.
	if len(funds) > 0 {
		redeemers := make([]Node, 0, len(hedgeFunds)+len(ldis)+len(insurers)+len(funds))
		redeemers = append(redeemers, hedgeFunds...)
		redeemers = append(redeemers, ldis...)
		redeemers = append(redeemers, insurers...)
		redeemers = append(redeemers, funds...)
		for _, r := range redeemers {
			candidates := funds
			if r.Type == agent.TypeFundComplex {
				candidates = excludeNode(funds, r.ID)
				if len(candidates) == 0 {
					continue
				}
			}
			n.addRedemptionTargets(rng, r, candidates, cfg.Degrees.RedeemerFunds)
		}
	}

	return n, nil
}

func (n *Network) addRedemptionTargets(rng *rand.Rand, redeemer Node, funds []Node, deg config.IntRange) {
	want := sampleDegree(rng, deg)
	if want > len(funds) {
		want = len(funds)
	}
	for _, fund := range pickWeighted(rng, funds, want) {
		n.addEdge(KindRedemption, redeemer.ID, fund)
	}
}

func excludeNode(nodes []Node, id string) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

func sampleDegree(rng *rand.Rand, r config.IntRange) int {
	if r.Hi <= r.Lo {
		return r.Lo
	}
	return r.Lo + rng.Intn(r.Hi-r.Lo+1)
}

// pickWeighted samples k distinct node IDs with probability proportional to
// node size, without replacement.
func pickWeighted(rng *rand.Rand, candidates []Node, k int) []string {
	if k > len(candidates) {
		k = len(candidates)
	}
	remaining := make([]Node, len(candidates))
	copy(remaining, candidates)

	picked := make([]string, 0, k)
	for len(picked) < k {
		var total float64
		for _, c := range remaining {
			total += c.Size
		}
		idx := len(remaining) - 1
		if total > 0 {
			r := rng.Float64() * total
			for i, c := range remaining {
				r -= c.Size
				if r <= 0 {
					idx = i
					break
				}
			}
		} else {
			idx = rng.Intn(len(remaining))
		}
		picked = append(picked, remaining[idx].ID)
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return picked
}
