package population

import (
	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
)

// BankTier is one size bucket of the bank population.
type BankTier struct {
	Label           string       `yaml:"label"`
	Count           int          `yaml:"count"`
	TotalBSBn       config.Range `yaml:"total_bs_bn"`
	GiltCapacityMM  config.Range `yaml:"gilt_capacity_mm"`
}

// HedgeFundProfile describes one strategy sub-type: how many funds run it,
// its leverage range, its repo dependence and which market variables drive
// its margin calls.
type HedgeFundProfile struct {
	Strategy       agent.HedgeFundStrategy `yaml:"strategy"`
	Count          int                     `yaml:"count"`
	GrossLeverage  config.Range            `yaml:"gross_leverage"`
	RepoDependence float64                 `yaml:"repo_dependence"`
	PrimarySens    []string                `yaml:"primary_sensitivities"`

	GiltPct   config.Range `yaml:"gilt_pct"`
	CorpPct   config.Range `yaml:"corp_pct"`
	EquityPct config.Range `yaml:"equity_pct"`
	BasisPct  config.Range `yaml:"basis_pct"`
}

// FundProfile describes one fund-complex strategy's asset composition.
type FundProfile struct {
	Strategy string       `yaml:"strategy"`
	Count    int          `yaml:"count"`
	GiltPct  config.Range `yaml:"gilt_pct"`
	CorpPct  config.Range `yaml:"corp_pct"`
	ABSPct   config.Range `yaml:"abs_pct"`
}

// Distributions holds the sampling ranges the factory draws each agent's
// parameters from. Like config.Config it is immutable once built.
type Distributions struct {
	Bank struct {
		Tiers           []BankTier   `yaml:"tiers"`
		Theta           config.Range `yaml:"theta"`
		BufferUsability config.Range `yaml:"buffer_usability"`
		RiskAppetite    config.Range `yaml:"risk_appetite"`

		GiltPctOfBS      config.Range `yaml:"gilt_pct_of_bs"`
		CorpPctOfBS      config.Range `yaml:"corp_pct_of_bs"`
		RepoLendingPct   config.Range `yaml:"repo_lending_pct_of_bs"`
		DerivativesPct   config.Range `yaml:"derivatives_pct_of_bs"`
		FacilityPct      config.Range `yaml:"facility_eligible_pct_of_bs"`
		WholesalePct     config.Range `yaml:"wholesale_pct_of_bs"`
		CET1PctOfRWA     config.Range `yaml:"cet1_pct_of_rwa"`
		RepoCapacityPct  config.Range `yaml:"repo_capacity_pct_of_bs"`
		WillRoll         config.Range `yaml:"will_roll"`
		WillExtendNew    config.Range `yaml:"will_extend_new"`
	} `yaml:"bank"`

	HedgeFund struct {
		Profiles        []HedgeFundProfile `yaml:"profiles"`
		AUMBn           []config.Range     `yaml:"aum_bn_tiers"`
		Theta           config.Range       `yaml:"theta"`
		BufferUsability config.Range       `yaml:"buffer_usability"`
		VarUtilisation  config.Range       `yaml:"var_utilisation"`
	} `yaml:"hedge_fund"`

	LDI struct {
		Count           int          `yaml:"count"`
		AUMBn           config.Range `yaml:"aum_bn"`
		Theta           config.Range `yaml:"theta"`
		BufferUsability config.Range `yaml:"buffer_usability"`
		YieldBufferBps  config.Range `yaml:"yield_buffer_bps"`
		Leverage        config.Range `yaml:"leverage"`
		PooledPct       float64      `yaml:"pooled_pct"`
		RecapPctOfAUM   config.Range `yaml:"recap_pct_of_aum"`
		RecapSpeedDays  config.IntRange `yaml:"recap_speed_days"`

		GiltPct         config.Range `yaml:"gilt_pct"`
		ILGiltPct       config.Range `yaml:"il_gilt_pct"`
		CorpPct         config.Range `yaml:"corp_pct"`
		CashPct         config.Range `yaml:"cash_pct"`
		DerivNotionalX  config.Range `yaml:"deriv_notional_multiple"`
		UnencumberedPct config.Range `yaml:"unencumbered_pct"`
	} `yaml:"ldi_pension"`

	Insurer struct {
		Count           int          `yaml:"count"`
		TotalAssetsBn   config.Range `yaml:"total_assets_bn"`
		Theta           config.Range `yaml:"theta"`
		BufferUsability config.Range `yaml:"buffer_usability"`
		HedgeRatio      config.Range `yaml:"hedge_ratio"`
		DirtyCSAPct     config.Range `yaml:"dirty_csa_pct"`

		GiltPct          config.Range `yaml:"gilt_pct"`
		CorpPct          config.Range `yaml:"corp_pct"`
		EquityPct        config.Range `yaml:"equity_pct"`
		CashPct          config.Range `yaml:"cash_pct"`
		DerivNotionalX   config.Range `yaml:"deriv_notional_multiple"`
		CommittedRepoPct config.Range `yaml:"committed_repo_pct"`
		RCFPct           config.Range `yaml:"rcf_pct"`
	} `yaml:"insurer"`

	Fund struct {
		Profiles        []FundProfile `yaml:"profiles"`
		AUMBn           config.Range  `yaml:"aum_bn"`
		Theta           config.Range  `yaml:"theta"`
		BufferUsability config.Range  `yaml:"buffer_usability"`
		PensionPct      config.Range  `yaml:"pension_investor_pct"`
		InsurerPct      config.Range  `yaml:"insurer_investor_pct"`
		CashBufferPct   config.Range  `yaml:"cash_buffer_pct"`
	} `yaml:"fund_complex"`
}

// DefaultDistributions returns the baseline population: 12 banks, 35 hedge
// funds, 10 LDI/pension schemes, 6 insurers and 7 fund complexes.
func DefaultDistributions() *Distributions {
	d := &Distributions{}

	d.Bank.Tiers = []BankTier{
		{Label: "large", Count: 4, TotalBSBn: config.Range{Lo: 500, Hi: 1200}, GiltCapacityMM: config.Range{Lo: 2000, Hi: 4000}},
		{Label: "medium", Count: 5, TotalBSBn: config.Range{Lo: 150, Hi: 500}, GiltCapacityMM: config.Range{Lo: 800, Hi: 2000}},
		{Label: "small", Count: 3, TotalBSBn: config.Range{Lo: 50, Hi: 150}, GiltCapacityMM: config.Range{Lo: 300, Hi: 800}},
	}
	d.Bank.Theta = config.Range{Lo: 0.35, Hi: 0.45}
	d.Bank.BufferUsability = config.Range{Lo: 0.30, Hi: 0.70}
	d.Bank.RiskAppetite = config.Range{Lo: 0.4, Hi: 0.8}
	d.Bank.GiltPctOfBS = config.Range{Lo: 0.02, Hi: 0.05}
	d.Bank.CorpPctOfBS = config.Range{Lo: 0.01, Hi: 0.02}
	d.Bank.RepoLendingPct = config.Range{Lo: 0.03, Hi: 0.06}
	d.Bank.DerivativesPct = config.Range{Lo: 0.02, Hi: 0.05}
	d.Bank.FacilityPct = config.Range{Lo: 0.08, Hi: 0.15}
	d.Bank.WholesalePct = config.Range{Lo: 0.15, Hi: 0.30}
	d.Bank.CET1PctOfRWA = config.Range{Lo: 0.12, Hi: 0.16}
	d.Bank.RepoCapacityPct = config.Range{Lo: 0.03, Hi: 0.08}
	d.Bank.WillRoll = config.Range{Lo: 0.70, Hi: 0.95}
	d.Bank.WillExtendNew = config.Range{Lo: 0.50, Hi: 0.90}

	d.HedgeFund.Profiles = []HedgeFundProfile{
		{
			Strategy: agent.StrategyMacroRates, Count: 8,
			GrossLeverage: config.Range{Lo: 2, Hi: 6}, RepoDependence: 0.8,
			PrimarySens: []string{"gilt_10y_yield", "gilt_30y_yield", "swap_rate"},
			GiltPct:     config.Range{Lo: 0.30, Hi: 0.50},
			CorpPct:     config.Range{Lo: 0.00, Hi: 0.10},
			EquityPct:   config.Range{Lo: 0.00, Hi: 0.10},
		},
		{
			Strategy: agent.StrategyRelativeValue, Count: 7,
			GrossLeverage: config.Range{Lo: 5, Hi: 15}, RepoDependence: 1.0,
			PrimarySens: []string{"gilt_10y_yield", "bond_futures_basis"},
			GiltPct:     config.Range{Lo: 0.40, Hi: 0.60},
			BasisPct:    config.Range{Lo: 0.20, Hi: 0.40},
		},
		{
			Strategy: agent.StrategyLongShortEq, Count: 8,
			GrossLeverage: config.Range{Lo: 1.5, Hi: 3}, RepoDependence: 0.2,
			PrimarySens: []string{"equity"},
			EquityPct:   config.Range{Lo: 0.50, Hi: 0.70},
			GiltPct:     config.Range{Lo: 0.00, Hi: 0.05},
		},
		{
			Strategy: agent.StrategyCreditLS, Count: 5,
			GrossLeverage: config.Range{Lo: 2, Hi: 5}, RepoDependence: 0.5,
			PrimarySens: []string{"ig_corp_spread", "hy_corp_spread"},
			CorpPct:     config.Range{Lo: 0.40, Hi: 0.60},
			EquityPct:   config.Range{Lo: 0.05, Hi: 0.15},
		},
		{
			Strategy: agent.StrategyMultiStrategy, Count: 7,
			GrossLeverage: config.Range{Lo: 3, Hi: 8}, RepoDependence: 0.8,
			PrimarySens: []string{"gilt_10y_yield", "equity", "ig_corp_spread"},
			GiltPct:     config.Range{Lo: 0.15, Hi: 0.30},
			CorpPct:     config.Range{Lo: 0.10, Hi: 0.25},
			EquityPct:   config.Range{Lo: 0.15, Hi: 0.30},
			BasisPct:    config.Range{Lo: 0.00, Hi: 0.10},
		},
	}
	d.HedgeFund.AUMBn = []config.Range{
		{Lo: 10, Hi: 40}, {Lo: 2, Hi: 10}, {Lo: 0.5, Hi: 2},
	}
	d.HedgeFund.Theta = config.Range{Lo: 0.20, Hi: 0.30}
	d.HedgeFund.BufferUsability = config.Range{Lo: 0.10, Hi: 0.30}
	d.HedgeFund.VarUtilisation = config.Range{Lo: 0.50, Hi: 0.95}

	d.LDI.Count = 10
	d.LDI.AUMBn = config.Range{Lo: 20, Hi: 80}
	d.LDI.Theta = config.Range{Lo: 0.25, Hi: 0.35}
	d.LDI.BufferUsability = config.Range{Lo: 0.20, Hi: 0.50}
	d.LDI.YieldBufferBps = config.Range{Lo: 100, Hi: 300}
	d.LDI.Leverage = config.Range{Lo: 2, Hi: 4}
	d.LDI.PooledPct = 0.5
	d.LDI.RecapPctOfAUM = config.Range{Lo: 0.02, Hi: 0.06}
	d.LDI.RecapSpeedDays = config.IntRange{Lo: 3, Hi: 7}
	d.LDI.GiltPct = config.Range{Lo: 0.35, Hi: 0.50}
	d.LDI.ILGiltPct = config.Range{Lo: 0.15, Hi: 0.30}
	d.LDI.CorpPct = config.Range{Lo: 0.05, Hi: 0.12}
	d.LDI.CashPct = config.Range{Lo: 0.03, Hi: 0.08}
	d.LDI.DerivNotionalX = config.Range{Lo: 0.5, Hi: 1.5}
	d.LDI.UnencumberedPct = config.Range{Lo: 0.05, Hi: 0.12}

	d.Insurer.Count = 6
	d.Insurer.TotalAssetsBn = config.Range{Lo: 50, Hi: 200}
	d.Insurer.Theta = config.Range{Lo: 0.40, Hi: 0.50}
	d.Insurer.BufferUsability = config.Range{Lo: 0.40, Hi: 0.70}
	d.Insurer.HedgeRatio = config.Range{Lo: 0.5, Hi: 0.9}
	d.Insurer.DirtyCSAPct = config.Range{Lo: 0.1, Hi: 0.4}
	d.Insurer.GiltPct = config.Range{Lo: 0.15, Hi: 0.30}
	d.Insurer.CorpPct = config.Range{Lo: 0.25, Hi: 0.40}
	d.Insurer.EquityPct = config.Range{Lo: 0.05, Hi: 0.15}
	d.Insurer.CashPct = config.Range{Lo: 0.03, Hi: 0.08}
	d.Insurer.DerivNotionalX = config.Range{Lo: 0.3, Hi: 0.8}
	d.Insurer.CommittedRepoPct = config.Range{Lo: 0.01, Hi: 0.03}
	d.Insurer.RCFPct = config.Range{Lo: 0.01, Hi: 0.02}

	d.Fund.Profiles = []FundProfile{
		{Strategy: "gilt_fund", Count: 2, GiltPct: config.Range{Lo: 0.55, Hi: 0.75}, CorpPct: config.Range{Lo: 0.05, Hi: 0.15}},
		{Strategy: "corporate_bond", Count: 2, GiltPct: config.Range{Lo: 0.10, Hi: 0.20}, CorpPct: config.Range{Lo: 0.50, Hi: 0.70}, ABSPct: config.Range{Lo: 0.00, Hi: 0.10}},
		{Strategy: "money_market", Count: 2, GiltPct: config.Range{Lo: 0.30, Hi: 0.50}, CorpPct: config.Range{Lo: 0.10, Hi: 0.20}},
		{Strategy: "mixed_asset", Count: 1, GiltPct: config.Range{Lo: 0.20, Hi: 0.35}, CorpPct: config.Range{Lo: 0.20, Hi: 0.35}, ABSPct: config.Range{Lo: 0.00, Hi: 0.05}},
	}
	d.Fund.AUMBn = config.Range{Lo: 20, Hi: 100}
	d.Fund.Theta = config.Range{Lo: 0.15, Hi: 0.25}
	d.Fund.BufferUsability = config.Range{Lo: 0.10, Hi: 0.20}
	d.Fund.PensionPct = config.Range{Lo: 0.20, Hi: 0.50}
	d.Fund.InsurerPct = config.Range{Lo: 0.10, Hi: 0.30}
	d.Fund.CashBufferPct = config.Range{Lo: 0.03, Hi: 0.08}

	return d
}
