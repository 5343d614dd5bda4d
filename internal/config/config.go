// Package config holds the immutable calibration for a simulation run:
// buffer weights, waterfall caps, realisation efficiencies, feedback
// coefficients, network degree rules and population distribution ranges.
//
// A Config is built once before a run and never mutated during it. The
// engine, population factory and network builder all receive it at
// construction time.
package config

// Range is a closed [Lo, Hi] sampling interval.
type Range struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

// IntRange is a closed [Lo, Hi] integer interval.
type IntRange struct {
	Lo int `yaml:"lo"`
	Hi int `yaml:"hi"`
}

// SaleCap caps one waterfall sale step: the step may consume at most
// ShortfallShare of the outstanding shortfall and at most HoldingCap of the
// specific holding.
type SaleCap struct {
	ShortfallShare float64 `yaml:"shortfall_share"`
	HoldingCap     float64 `yaml:"holding_cap"`
}

// BankBuffer weights the bank initial-buffer rule:
// B0 = eligible*FacilityEligibleMult + cet1*CET1Mult - wholesale*WholesaleRunoffMult,
// floored at FloorPct of total balance sheet.
type BankBuffer struct {
	FacilityEligibleMult float64 `yaml:"facility_eligible_mult"`
	CET1Mult             float64 `yaml:"cet1_mult"`
	WholesaleRunoffMult  float64 `yaml:"wholesale_runoff_mult"`
	FloorPct             float64 `yaml:"floor_pct"`
}

// CashBuffer weights a cash-anchored initial-buffer rule.
type CashBuffer struct {
	CashMult       float64 `yaml:"cash_mult"`
	CollateralMult float64 `yaml:"collateral_mult"`
	FloorPct       float64 `yaml:"floor_pct"`
}

// InsurerBuffer weights the insurer initial-buffer rule.
type InsurerBuffer struct {
	CashMult          float64 `yaml:"cash_mult"`
	CommittedRepoMult float64 `yaml:"committed_repo_mult"`
	RCFMult           float64 `yaml:"rcf_mult"`
	FloorPct          float64 `yaml:"floor_pct"`
}

// Buffers groups the per-variant initial-buffer parameters. MinFloor is the
// absolute lower bound on every buffer floor, keeping B0 strictly positive
// even for a zero-asset agent whose proportional floor collapses to zero.
type Buffers struct {
	Bank      BankBuffer    `yaml:"bank"`
	HedgeFund CashBuffer    `yaml:"hedge_fund"`
	LDI       CashBuffer    `yaml:"ldi_pension"`
	Insurer   InsurerBuffer `yaml:"insurer"`
	Fund      CashBuffer    `yaml:"fund_complex"`
	MinFloor  float64       `yaml:"min_floor"`
}

// Reactions groups the per-variant waterfall caps.
type Reactions struct {
	Bank struct {
		FacilityShare float64 `yaml:"facility_share"`
		FacilityCap   float64 `yaml:"facility_cap"`
		RepoCutShare  float64 `yaml:"repo_cut_share"`
		SellGilt      SaleCap `yaml:"sell_gilt"`
		SellCorp      SaleCap `yaml:"sell_corp"`
	} `yaml:"bank"`

	HedgeFund struct {
		RepoAskShare  float64 `yaml:"repo_ask_share"`
		SellGilt      SaleCap `yaml:"sell_gilt"`
		SellCorp      SaleCap `yaml:"sell_corp"`
		SellEquity    SaleCap `yaml:"sell_equity"`
		BasisUnwind   SaleCap `yaml:"basis_unwind"`
		MultiStrategy SaleCap `yaml:"multi_strategy"`
		RedeemShare   float64 `yaml:"redeem_share"`
		RedeemAUMCap  float64 `yaml:"redeem_aum_cap"`
	} `yaml:"hedge_fund"`

	LDI struct {
		CollateralShare float64 `yaml:"collateral_share"`
		CollateralCap   float64 `yaml:"collateral_cap"`
		RecapShare      float64 `yaml:"recap_share"`
		RepoAskShare    float64 `yaml:"repo_ask_share"`
		SellGilt        SaleCap `yaml:"sell_gilt"`
		SellILGilt      SaleCap `yaml:"sell_il_gilt"`
		SellCorp        SaleCap `yaml:"sell_corp"`
		RedeemShare     float64 `yaml:"redeem_share"`
		RedeemAUMCap    float64 `yaml:"redeem_aum_cap"`
	} `yaml:"ldi_pension"`

	Insurer struct {
		RepoLineShare  float64 `yaml:"repo_line_share"`
		RepoLineCap    float64 `yaml:"repo_line_cap"`
		RCFShare       float64 `yaml:"rcf_share"`
		RCFCap         float64 `yaml:"rcf_cap"`
		RepoAskShare   float64 `yaml:"repo_ask_share"`
		SellGilt       SaleCap `yaml:"sell_gilt"`
		SellCorp       SaleCap `yaml:"sell_corp"`
		SellEquity     SaleCap `yaml:"sell_equity"`
		RedeemShare    float64 `yaml:"redeem_share"`
		RedeemAssetCap float64 `yaml:"redeem_asset_cap"`
	} `yaml:"insurer"`

	Fund struct {
		// GateThreshold is the cumulative-redemptions/AUM level at which
		// swing pricing engages; GateMultiplier then throttles future
		// inflow demand.
		GateThreshold  float64 `yaml:"gate_threshold"`
		GateMultiplier float64 `yaml:"gate_multiplier"`
		// RedemptionStressTrigger is the redeemer stress ratio above which
		// it redeems; RedemptionSlope scales demand by redeemer size and
		// stress.
		RedemptionStressTrigger float64 `yaml:"redemption_stress_trigger"`
		RedemptionSlope         float64 `yaml:"redemption_slope"`
	} `yaml:"fund_complex"`
}

// Efficiency sets the instrument-class realisation rates applied in stage 2.
// Sales realise max(SaleFloor, 1 - bidAskBps*SaleSpreadSlope); the others
// are fixed (repo uses the market's live availability fraction instead).
type Efficiency struct {
	SaleFloor       float64 `yaml:"sale_floor"`
	SaleSpreadSlope float64 `yaml:"sale_spread_slope"`
	Facility        float64 `yaml:"facility"`
	Redemption      float64 `yaml:"redemption"`
	Other           float64 `yaml:"other"`
}

// Feedback holds the stage-3 coefficients. The reputation and crowding
// shapes (sqrt and square law) are fixed; their magnitudes are calibration
// parameters.
type Feedback struct {
	Iterations int `yaml:"iterations"`

	// RepoRefusalStressThreshold is the bank stress ratio (E1/B0) at which
	// willingness to extend new repo decays linearly to zero.
	RepoRefusalStressThreshold float64 `yaml:"repo_refusal_stress_threshold"`

	BankCounterpartyCoeff float64 `yaml:"bank_counterparty_coeff"`
	FundingStressCoeff    float64 `yaml:"funding_stress_coeff"`
	RedemptionPressCoeff  float64 `yaml:"redemption_pressure_coeff"`
	BroadcastCoeff        float64 `yaml:"broadcast_coeff"`
	ReputationCoeff       float64 `yaml:"reputation_coeff"`
	CrowdingCoeff         float64 `yaml:"crowding_coeff"`
}

// Degrees holds the network degree ranges per relationship kind.
type Degrees struct {
	HedgeFundBanks IntRange `yaml:"hedge_fund_banks"`
	LDIBanks       IntRange `yaml:"ldi_banks"`
	InsurerBanks   IntRange `yaml:"insurer_banks"`
	RedeemerFunds  IntRange `yaml:"redeemer_funds"`
}

// Market holds the market-functioning baseline: normal bid/ask spreads,
// dealer depth, system repo capacity and the price-impact slopes used by the
// broadcast feedback pass.
type Market struct {
	BaseVol            float64 `yaml:"base_vol"`
	GiltBidAskBps      float64 `yaml:"gilt_bid_ask_bps"`
	CorpBidAskBps      float64 `yaml:"corp_bid_ask_bps"`
	GiltDepth          float64 `yaml:"gilt_depth"`
	GiltDepthFloor     float64 `yaml:"gilt_depth_floor"`
	CorpDepth          float64 `yaml:"corp_depth"`
	CorpDepthFloor     float64 `yaml:"corp_depth_floor"`
	SystemRepoCapacity float64 `yaml:"system_repo_capacity"`
	RepoAvailFloor     float64 `yaml:"repo_avail_floor"`
	RepoAvailSlope     float64 `yaml:"repo_avail_slope"`
	RepoPressureSlope  float64 `yaml:"repo_pressure_slope"`
	GiltImpactBps      float64 `yaml:"gilt_impact_bps"`
	CorpImpactBps      float64 `yaml:"corp_impact_bps"`
}

// Config is the whole calibration. Treat as immutable once built.
type Config struct {
	Buffers    Buffers    `yaml:"buffers"`
	Reactions  Reactions  `yaml:"reactions"`
	Efficiency Efficiency `yaml:"efficiency"`
	Feedback   Feedback   `yaml:"feedback"`
	Degrees    Degrees    `yaml:"degrees"`
	Market     Market     `yaml:"market"`
}

// Default returns the baseline calibration.
func Default() *Config {
	cfg := &Config{}

	cfg.Buffers.Bank = BankBuffer{
		FacilityEligibleMult: 0.15,
		CET1Mult:             0.08,
		WholesaleRunoffMult:  0.10,
		FloorPct:             0.002,
	}
	cfg.Buffers.HedgeFund = CashBuffer{CashMult: 1.0, FloorPct: 0.005}
	cfg.Buffers.LDI = CashBuffer{CashMult: 1.0, CollateralMult: 0.3, FloorPct: 0.005}
	cfg.Buffers.Insurer = InsurerBuffer{CashMult: 0.5, CommittedRepoMult: 0.2, RCFMult: 0.2, FloorPct: 0.002}
	cfg.Buffers.Fund = CashBuffer{CashMult: 0.5, FloorPct: 0.01}
	cfg.Buffers.MinFloor = 0.01

	cfg.Reactions.Bank.FacilityShare = 0.3
	cfg.Reactions.Bank.FacilityCap = 0.5
	cfg.Reactions.Bank.RepoCutShare = 0.3
	cfg.Reactions.Bank.SellGilt = SaleCap{ShortfallShare: 0.10, HoldingCap: 0.20}
	cfg.Reactions.Bank.SellCorp = SaleCap{ShortfallShare: 0.08, HoldingCap: 0.02}

	cfg.Reactions.HedgeFund.RepoAskShare = 0.85
	cfg.Reactions.HedgeFund.SellGilt = SaleCap{ShortfallShare: 0.10, HoldingCap: 0.10}
	cfg.Reactions.HedgeFund.SellCorp = SaleCap{ShortfallShare: 0.10, HoldingCap: 0.025}
	cfg.Reactions.HedgeFund.SellEquity = SaleCap{ShortfallShare: 0.10, HoldingCap: 0.025}
	cfg.Reactions.HedgeFund.BasisUnwind = SaleCap{ShortfallShare: 0.10, HoldingCap: 0.04}
	cfg.Reactions.HedgeFund.MultiStrategy = SaleCap{ShortfallShare: 0.05, HoldingCap: 0.03}
	cfg.Reactions.HedgeFund.RedeemShare = 0.2
	cfg.Reactions.HedgeFund.RedeemAUMCap = 0.05

	cfg.Reactions.LDI.CollateralShare = 0.4
	cfg.Reactions.LDI.CollateralCap = 0.5
	cfg.Reactions.LDI.RecapShare = 0.3
	cfg.Reactions.LDI.RepoAskShare = 0.85
	cfg.Reactions.LDI.SellGilt = SaleCap{ShortfallShare: 0.15, HoldingCap: 0.15}
	cfg.Reactions.LDI.SellILGilt = SaleCap{ShortfallShare: 0.08, HoldingCap: 0.02}
	cfg.Reactions.LDI.SellCorp = SaleCap{ShortfallShare: 0.05, HoldingCap: 0.015}
	cfg.Reactions.LDI.RedeemShare = 0.2
	cfg.Reactions.LDI.RedeemAUMCap = 0.05

	cfg.Reactions.Insurer.RepoLineShare = 0.3
	cfg.Reactions.Insurer.RepoLineCap = 0.5
	cfg.Reactions.Insurer.RCFShare = 0.2
	cfg.Reactions.Insurer.RCFCap = 0.5
	cfg.Reactions.Insurer.RepoAskShare = 0.80
	cfg.Reactions.Insurer.SellGilt = SaleCap{ShortfallShare: 0.15, HoldingCap: 0.10}
	cfg.Reactions.Insurer.SellCorp = SaleCap{ShortfallShare: 0.08, HoldingCap: 0.02}
	cfg.Reactions.Insurer.SellEquity = SaleCap{ShortfallShare: 0.05, HoldingCap: 0.025}
	cfg.Reactions.Insurer.RedeemShare = 0.15
	cfg.Reactions.Insurer.RedeemAssetCap = 0.03

	cfg.Reactions.Fund.GateThreshold = 0.15
	cfg.Reactions.Fund.GateMultiplier = 0.5
	cfg.Reactions.Fund.RedemptionStressTrigger = 0.3
	cfg.Reactions.Fund.RedemptionSlope = 0.001

	cfg.Efficiency = Efficiency{
		SaleFloor:       0.5,
		SaleSpreadSlope: 0.01,
		Facility:        0.95,
		Redemption:      0.90,
		Other:           0.80,
	}

	cfg.Feedback = Feedback{
		Iterations:                 3,
		RepoRefusalStressThreshold: 0.266353,
		BankCounterpartyCoeff:      0.005,
		FundingStressCoeff:         0.05,
		RedemptionPressCoeff:       0.1,
		BroadcastCoeff:             0.000005,
		ReputationCoeff:            0.15,
		CrowdingCoeff:              0.03,
	}

	cfg.Degrees = Degrees{
		HedgeFundBanks: IntRange{Lo: 2, Hi: 3},
		LDIBanks:       IntRange{Lo: 1, Hi: 2},
		InsurerBanks:   IntRange{Lo: 1, Hi: 3},
		RedeemerFunds:  IntRange{Lo: 1, Hi: 3},
	}

	cfg.Market = Market{
		BaseVol:            15.0,
		GiltBidAskBps:      2.0,
		CorpBidAskBps:      5.0,
		GiltDepth:          5000.0,
		GiltDepthFloor:     1000.0,
		CorpDepth:          2000.0,
		CorpDepthFloor:     500.0,
		SystemRepoCapacity: 50000.0,
		RepoAvailFloor:     0.5,
		RepoAvailSlope:     0.15,
		RepoPressureSlope:  0.25,
		GiltImpactBps:      20.0,
		CorpImpactBps:      30.0,
	}

	return cfg
}
