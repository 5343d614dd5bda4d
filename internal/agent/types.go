package agent

// Type tags the five institution variants in the population.
type Type string

const (
	TypeBank        Type = "bank"
	TypeHedgeFund   Type = "hedge_fund"
	TypeLDIPension  Type = "ldi_pension"
	TypeInsurer     Type = "insurer"
	TypeFundComplex Type = "fund_complex"
)

// Types lists all variants in a fixed order. Iteration over agent types
// (aggregation, reporting) must use this slice, never a map, so that output
// ordering is deterministic.
var Types = []Type{TypeBank, TypeHedgeFund, TypeLDIPension, TypeInsurer, TypeFundComplex}

// Category classifies a balance-sheet item.
type Category string

const (
	CategoryLiquidAsset   Category = "liquid_asset"
	CategoryIlliquidAsset Category = "illiquid_asset"
	CategoryLiability     Category = "liability"
	CategoryEquity        Category = "equity"
	CategoryOffBS         Category = "off_bs"
)

// Item is a single named balance-sheet position. Amounts are £mm.
// The sensitivity map gives fractional value change per unit move of a
// market variable; an empty map means no direct mark-to-market exposure.
type Item struct {
	Name               string
	Amount             float64
	Category           Category
	Sensitivity        map[string]float64
	CollateralEligible bool
	ReactionInstrument bool
	HaircutPct         float64
}

// Liquidity tracks an agent's buffer through the three daily stages.
//
//	B0 day-start buffer, B1 after the exogenous shock, B2 after the agent's
//	own reactions, B3 after systemic feedback. E1/E2 are the first- and
//	second-round loss magnitudes (always >= 0).
type Liquidity struct {
	B0 float64
	B1 float64
	B2 float64
	B3 float64
	E1 float64
	E2 float64
}

// ActionKind classifies a waterfall action for realisation-efficiency and
// market-registration purposes.
type ActionKind int

const (
	// KindSale raises cash by selling a holding. Efficiency degrades with
	// the bid/ask spread proxy.
	KindSale ActionKind = iota
	// KindRepo seeks or draws repo funding. Efficiency is the market's
	// repo-availability fraction.
	KindRepo
	// KindFacility draws a central-bank facility (~95% realisation).
	KindFacility
	// KindRedemption redeems fund holdings (~90% realisation).
	KindRedemption
	// KindOther covers collateral posting, recapitalisation, credit-line
	// and cash-buffer draws (~80% realisation).
	KindOther
)

// Asset classes used to route sale pressure into the right market
// accumulator. Index-linked gilts and basis unwinds count as gilt-class
// pressure.
const (
	AssetGilt   = "gilt"
	AssetCorp   = "corp"
	AssetEquity = "equity"
)

// Action is one executed waterfall step: a named amount with enough
// classification to apply realisation efficiency, update cumulative
// counters, and post selling pressure to the market.
type Action struct {
	Name   string
	Kind   ActionKind
	Amount float64
	// Asset is set for sales (gilt/corp/equity) and selects the market
	// accumulator and the balance-sheet item to deplete.
	Asset string
	// Item names the balance-sheet holding a sale depletes at end of day.
	Item string
}

// Counters accumulate strictly across the whole horizon and are never reset
// mid-run.
type Counters struct {
	MarginCalls float64
	AssetSales  float64
	GiltSales   float64
	RepoDemand  float64
	Redemptions float64
}
