package agent

// Agent is a single institution in the population. It is pure state: the
// three-stage mechanics live in the behavior package as free functions over
// (Agent, variant behaviour), and exactly one of the variant parameter
// pointers is non-nil, matching Type.
//
// Agents are created once at population-generation time and never destroyed
// during a run. Liquidity and the daily fields are mutated once per day by
// the engine; Counters accumulate across the whole horizon.
type Agent struct {
	ID   string
	Type Type

	// Theta is the reaction threshold on the stress ratio E1/B0.
	// BufferUsability scales it: the effective threshold is Theta*(1+u).
	Theta           float64
	BufferUsability float64

	// Size is the weighting factor for network assignment (total balance
	// sheet for banks, AUM/total assets otherwise).
	Size float64

	BalanceSheet []*Item
	Liquidity    Liquidity

	// BufferFloor is the floor applied to B0 by the variant's
	// initial-buffer rule. An agent whose B0 sits at this floor is in the
	// degenerate-buffer condition.
	BufferFloor float64

	Reacted   bool
	Reactions []Action
	Counters  Counters

	// RedemptionDemand is the redemption outflow levied on this agent for
	// the current day (non-zero for fund complexes). Reset daily.
	RedemptionDemand float64

	// Variant parameters: exactly one is non-nil.
	Bank      *BankParams
	HedgeFund *HedgeFundParams
	LDI       *LDIParams
	Insurer   *InsurerParams
	Fund      *FundParams
}

// Item returns the named balance-sheet position, or nil.
func (a *Agent) Item(name string) *Item {
	for _, it := range a.BalanceSheet {
		if it.Name == name {
			return it
		}
	}
	return nil
}

// EffectiveTheta is the usability-scaled reaction threshold.
func (a *Agent) EffectiveTheta() float64 {
	return a.Theta * (1.0 + a.BufferUsability)
}

// StressRatio is E1/B0 for the current day. B0 is floored above zero by
// construction, so the ratio is always defined.
func (a *Agent) StressRatio() float64 {
	if a.Liquidity.B0 <= 0 {
		return 0
	}
	return a.Liquidity.E1 / a.Liquidity.B0
}

// ReactionTotal sums the day's chosen action amounts.
func (a *Agent) ReactionTotal() float64 {
	var total float64
	for _, act := range a.Reactions {
		total += act.Amount
	}
	return total
}

// BankParams holds the bank variant's behavioural parameters and its
// structural market-making/repo state. Capacity consumption is cumulative
// across the whole horizon and never replenishes.
type BankParams struct {
	Tier         string
	RiskAppetite float64

	GiltCapacity    float64
	CorpCapacity    float64
	GiltConsumedPct float64
	CorpConsumedPct float64

	RepoCapacity       float64
	WillRollPct        float64
	WillExtendNewPct   float64
	HaircutSensitivity float64
}

// GiltRemaining is the unconsumed gilt market-making capacity.
func (p *BankParams) GiltRemaining() float64 {
	return p.GiltCapacity * (1.0 - p.GiltConsumedPct)
}

// CorpRemaining is the unconsumed corporate-bond market-making capacity.
func (p *BankParams) CorpRemaining() float64 {
	return p.CorpCapacity * (1.0 - p.CorpConsumedPct)
}

// HedgeFundStrategy identifies the five hedge-fund strategy sub-types.
type HedgeFundStrategy string

const (
	StrategyMacroRates    HedgeFundStrategy = "macro_rates"
	StrategyRelativeValue HedgeFundStrategy = "relative_value"
	StrategyLongShortEq   HedgeFundStrategy = "long_short_equity"
	StrategyCreditLS      HedgeFundStrategy = "credit_long_short"
	StrategyMultiStrategy HedgeFundStrategy = "multi_strategy"
)

// HedgeFundParams holds the hedge-fund variant's strategy profile.
type HedgeFundParams struct {
	Strategy       HedgeFundStrategy
	AUM            float64
	GrossLeverage  float64
	VarUtilisation float64
	// RepoDependence is the strategy's repo-dependence multiplier in [0,1].
	RepoDependence float64
	// PrimarySensitivities lists the market variables the strategy's
	// margin-call exposure keys off.
	PrimarySensitivities []string

	// Set during the run.
	SoughtRepo       bool
	RepoRefusedByAll bool
}

// LDIParams holds the LDI/pension variant's leverage, yield-buffer and
// sponsor-recapitalisation parameters.
type LDIParams struct {
	AUM            float64
	YieldBufferBps float64
	LeverageRatio  float64

	RecapAvailable float64
	RecapUsed      float64
	RecapSpeedDays int
	// Pooled schemes have pre-agreed same-day recapitalisation;
	// segregated schemes are trustee-gated over RecapSpeedDays.
	Pooled bool

	YieldBufferConsumedPct float64
}

// InsurerParams holds the insurer variant's hedging and collateral terms.
type InsurerParams struct {
	TotalAssets float64
	HedgeRatio  float64
	// DirtyCSAPct is the fraction of derivative exposure under
	// dirty-collateral agreements, which increases margin-call size.
	DirtyCSAPct float64
}

// FundParams holds the fund-complex (OEF/MMF) variant's investor base and
// redemption state.
type FundParams struct {
	Strategy           string
	AUM                float64
	PensionInvestorPct float64
	InsurerInvestorPct float64
	CashBufferPct      float64

	// CumulativeInflows accumulates redemption demand levied on this fund
	// across the horizon; once it crosses the gate threshold the fund
	// applies swing pricing and future inflow demand is throttled.
	CumulativeInflows float64
	Gated             bool
}
