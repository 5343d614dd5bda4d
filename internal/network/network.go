// Package network provides the bilateral relationship graph over agent
// identities. The graph restricts which agents may route repo requests,
// redemptions and counterparty exposure to which counterparties: agents
// never enumerate the population directly, they ask the network.
//
// The network is built once before a run and is immutable thereafter.
package network

import (
	"github.com/stresslens/swesim/internal/agent"
)

// EdgeKind identifies a relationship purpose. Every non-bank-to-bank edge
// carries a kind.
type EdgeKind string

const (
	// KindPrimeBrokerage links a hedge fund to its prime-broker/repo banks.
	KindPrimeBrokerage EdgeKind = "prime_brokerage"
	// KindClearing links an LDI/pension scheme to its clearing banks.
	KindClearing EdgeKind = "clearing"
	// KindDerivativesRepo links an insurer to its derivatives/repo banks.
	KindDerivativesRepo EdgeKind = "derivatives_repo"
	// KindRedemption links a redeeming non-bank to a fund complex it holds.
	KindRedemption EdgeKind = "redemption"
)

// Kinds lists the edge kinds in a fixed order for deterministic iteration.
var Kinds = []EdgeKind{KindPrimeBrokerage, KindClearing, KindDerivativesRepo, KindRedemption}

// Node is the minimal agent view the builder needs: identity, variant and
// the size factor used for weighted counterparty assignment.
type Node struct {
	ID   string
	Type agent.Type
	Size float64
}

// NodesFor projects a population onto builder nodes, preserving order.
func NodesFor(agents []*agent.Agent) []Node {
	nodes := make([]Node, len(agents))
	for i, a := range agents {
		nodes[i] = Node{ID: a.ID, Type: a.Type, Size: a.Size}
	}
	return nodes
}

// Network is an undirected multi-relation graph backed by adjacency lists
// indexed by agent identity and edge kind. Lookups are symmetric and run in
// time proportional to the relevant edge list, not the population.
type Network struct {
	adj   map[EdgeKind]map[string][]string
	edges map[EdgeKind]int
}

func newNetwork() *Network {
	n := &Network{
		adj:   make(map[EdgeKind]map[string][]string, len(Kinds)),
		edges: make(map[EdgeKind]int, len(Kinds)),
	}
	for _, k := range Kinds {
		n.adj[k] = make(map[string][]string)
	}
	return n
}

// Edge is one explicit relationship, for networks built from a known edge
// list rather than the seeded generator.
type Edge struct {
	Kind EdgeKind
	A, B string
}

// FromEdges builds a network from an explicit edge list. Used by fixtures
// and anywhere the exact topology matters more than realism.
func FromEdges(edges []Edge) *Network {
	n := newNetwork()
	for _, e := range edges {
		n.addEdge(e.Kind, e.A, e.B)
	}
	return n
}

func (n *Network) addEdge(kind EdgeKind, a, b string) {
	n.adj[kind][a] = append(n.adj[kind][a], b)
	n.adj[kind][b] = append(n.adj[kind][b], a)
	n.edges[kind]++
}

// Neighbors returns the counterparties connected to id for the given
// purpose. The returned slice is owned by the network; callers must not
// mutate it.
func (n *Network) Neighbors(id string, kind EdgeKind) []string {
	return n.adj[kind][id]
}

// Connected reports whether a and b share an edge of the given kind.
func (n *Network) Connected(a, b string, kind EdgeKind) bool {
	for _, other := range n.adj[kind][a] {
		if other == b {
			return true
		}
	}
	return false
}

// BankCounterparties returns every non-bank connected to a bank across the
// three bank-facing edge kinds, in kind order then assignment order.
func (n *Network) BankCounterparties(bankID string) []string {
	var out []string
	out = append(out, n.adj[KindPrimeBrokerage][bankID]...)
	out = append(out, n.adj[KindClearing][bankID]...)
	out = append(out, n.adj[KindDerivativesRepo][bankID]...)
	return out
}

// Degree returns the number of edges of the given kind incident to id.
func (n *Network) Degree(id string, kind EdgeKind) int {
	return len(n.adj[kind][id])
}

// Summary reports edge counts per kind.
type Summary struct {
	PrimeBrokerage  int `json:"prime_brokerage"`
	Clearing        int `json:"clearing"`
	DerivativesRepo int `json:"derivatives_repo"`
	Redemption      int `json:"redemption"`
}

// Summarize returns the network's edge counts.
func (n *Network) Summarize() Summary {
	return Summary{
		PrimeBrokerage:  n.edges[KindPrimeBrokerage],
		Clearing:        n.edges[KindClearing],
		DerivativesRepo: n.edges[KindDerivativesRepo],
		Redemption:      n.edges[KindRedemption],
	}
}
