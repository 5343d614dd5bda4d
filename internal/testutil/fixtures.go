// Package testutil provides deterministic agent fixtures for behavior and
// engine tests: one hand-built, round-number institution per variant, so
// tests can assert exact waterfall and feedback arithmetic without going
// through the seeded population factory.
package testutil

import (
	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/market"
)

// Bank returns a well-buffered dealer bank.
//
// B0 under the default calibration: 2000*0.15 + 1500*0.08 - 1000*0.10 = 320.
func Bank(id string) *agent.Agent {
	return &agent.Agent{
		ID:              id,
		Type:            agent.TypeBank,
		Theta:           0.5,
		BufferUsability: 0.8,
		Size:            10000,
		BalanceSheet: []*agent.Item{
			{Name: agent.ItemCash, Amount: 500, Category: agent.CategoryLiquidAsset},
			{Name: agent.ItemFacilityEligible, Amount: 2000, Category: agent.CategoryLiquidAsset, CollateralEligible: true},
			{Name: agent.ItemGilts, Amount: 3000, Category: agent.CategoryLiquidAsset, ReactionInstrument: true,
				Sensitivity: map[string]float64{market.VarGilt10Y: -0.0004}},
			{Name: agent.ItemCorpBonds, Amount: 1000, Category: agent.CategoryLiquidAsset, ReactionInstrument: true,
				Sensitivity: map[string]float64{market.VarIGCorpSpread: -0.0003}},
			{Name: agent.ItemRepoLending, Amount: 2000, Category: agent.CategoryIlliquidAsset},
			{Name: agent.ItemCET1, Amount: 1500, Category: agent.CategoryEquity},
			{Name: agent.ItemWholesale, Amount: 1000, Category: agent.CategoryLiability},
			{Name: agent.ItemDerivatives, Amount: 5000, Category: agent.CategoryOffBS},
		},
		Bank: &agent.BankParams{
			Tier:             "large",
			RiskAppetite:     0.5,
			GiltCapacity:     3000,
			CorpCapacity:     1000,
			RepoCapacity:     5000,
			WillRollPct:      1.0,
			WillExtendNewPct: 1.0,
		},
	}
}

// HedgeFund returns a leveraged fund of the given strategy with 2000mm AUM
// and a 100mm cash buffer (so B0 = 100 under the default calibration).
func HedgeFund(id string, strategy agent.HedgeFundStrategy) *agent.Agent {
	repoDep := map[agent.HedgeFundStrategy]float64{
		agent.StrategyMacroRates:    0.8,
		agent.StrategyRelativeValue: 1.0,
		agent.StrategyLongShortEq:   0.2,
		agent.StrategyCreditLS:      0.5,
		agent.StrategyMultiStrategy: 0.8,
	}[strategy]
	primary := map[agent.HedgeFundStrategy][]string{
		agent.StrategyMacroRates:    {market.VarGilt10Y, market.VarGilt30Y, market.VarSwapRate},
		agent.StrategyRelativeValue: {market.VarGilt10Y, market.VarBondFuturesBasis},
		agent.StrategyLongShortEq:   {market.VarEquity},
		agent.StrategyCreditLS:      {market.VarIGCorpSpread, market.VarHYCorpSpread},
		agent.StrategyMultiStrategy: {market.VarGilt10Y, market.VarEquity},
	}[strategy]

	return &agent.Agent{
		ID:              id,
		Type:            agent.TypeHedgeFund,
		Theta:           0.4,
		BufferUsability: 0.9,
		Size:            2000,
		BalanceSheet: []*agent.Item{
			{Name: agent.ItemCash, Amount: 100, Category: agent.CategoryLiquidAsset},
			{Name: agent.ItemGilts, Amount: 800, Category: agent.CategoryLiquidAsset, ReactionInstrument: true,
				Sensitivity: map[string]float64{market.VarGilt10Y: -0.0005}},
			{Name: agent.ItemCorpBonds, Amount: 400, Category: agent.CategoryLiquidAsset, ReactionInstrument: true,
				Sensitivity: map[string]float64{market.VarIGCorpSpread: -0.0004}},
			{Name: agent.ItemEquities, Amount: 300, Category: agent.CategoryLiquidAsset, ReactionInstrument: true,
				Sensitivity: map[string]float64{market.VarEquity: 0.01}},
			{Name: agent.ItemBasisTrades, Amount: 500, Category: agent.CategoryIlliquidAsset, ReactionInstrument: true,
				Sensitivity: map[string]float64{market.VarBondFuturesBasis: -0.001}},
			{Name: agent.ItemRepoBorrowing, Amount: 1000, Category: agent.CategoryLiability},
		},
		HedgeFund: &agent.HedgeFundParams{
			Strategy:             strategy,
			AUM:                  2000,
			GrossLeverage:        5.0,
			VarUtilisation:       0.7,
			RepoDependence:       repoDep,
			PrimarySensitivities: primary,
		},
	}
}

// LDI returns a segregated LDI scheme with 30000mm AUM.
// B0 under the default calibration: 300 + 1000*0.3 = 600.
func LDI(id string) *agent.Agent {
	return &agent.Agent{
		ID:              id,
		Type:            agent.TypeLDIPension,
		Theta:           0.45,
		BufferUsability: 0.7,
		Size:            30000,
		BalanceSheet: []*agent.Item{
			{Name: agent.ItemCash, Amount: 300, Category: agent.CategoryLiquidAsset},
			{Name: agent.ItemUnencumbered, Amount: 1000, Category: agent.CategoryLiquidAsset, CollateralEligible: true},
			{Name: agent.ItemGilts, Amount: 8000, Category: agent.CategoryLiquidAsset, ReactionInstrument: true,
				Sensitivity: map[string]float64{market.VarGilt30Y: -0.0007}},
			{Name: agent.ItemILGilts, Amount: 4000, Category: agent.CategoryLiquidAsset, ReactionInstrument: true,
				Sensitivity: map[string]float64{market.VarILGilt: -0.0008}},
			{Name: agent.ItemCorpBonds, Amount: 2000, Category: agent.CategoryLiquidAsset, ReactionInstrument: true,
				Sensitivity: map[string]float64{market.VarIGCorpSpread: -0.0003}},
			{Name: agent.ItemDerivatives, Amount: 20000, Category: agent.CategoryOffBS},
		},
		LDI: &agent.LDIParams{
			AUM:            30000,
			YieldBufferBps: 150,
			LeverageRatio:  3.0,
			RecapAvailable: 900,
			RecapSpeedDays: 5,
			Pooled:         false,
		},
	}
}

// Insurer returns a life insurer with 80000mm total assets.
// B0 under the default calibration: 800*0.5 + 1000*0.2 + 500*0.2 = 700.
func Insurer(id string) *agent.Agent {
	return &agent.Agent{
		ID:              id,
		Type:            agent.TypeInsurer,
		Theta:           0.55,
		BufferUsability: 0.6,
		Size:            80000,
		BalanceSheet: []*agent.Item{
			{Name: agent.ItemCash, Amount: 800, Category: agent.CategoryLiquidAsset},
			{Name: agent.ItemCommittedRepoLines, Amount: 1000, Category: agent.CategoryOffBS},
			{Name: agent.ItemRCF, Amount: 500, Category: agent.CategoryOffBS},
			{Name: agent.ItemGilts, Amount: 10000, Category: agent.CategoryLiquidAsset, ReactionInstrument: true,
				Sensitivity: map[string]float64{market.VarGilt10Y: -0.0005}},
			{Name: agent.ItemCorpBonds, Amount: 8000, Category: agent.CategoryLiquidAsset, ReactionInstrument: true,
				Sensitivity: map[string]float64{market.VarIGCorpSpread: -0.0004}},
			{Name: agent.ItemEquities, Amount: 4000, Category: agent.CategoryLiquidAsset, ReactionInstrument: true,
				Sensitivity: map[string]float64{market.VarEquity: 0.01}},
			{Name: agent.ItemDerivatives, Amount: 15000, Category: agent.CategoryOffBS},
		},
		Insurer: &agent.InsurerParams{
			TotalAssets: 80000,
			HedgeRatio:  0.7,
			DirtyCSAPct: 0.2,
		},
	}
}

// Fund returns an open-ended gilt fund with 50000mm AUM and a 2500mm cash
// buffer (B0 = 1250 under the default calibration).
func Fund(id string) *agent.Agent {
	return &agent.Agent{
		ID:              id,
		Type:            agent.TypeFundComplex,
		Theta:           0.5,
		BufferUsability: 0.8,
		Size:            50000,
		BalanceSheet: []*agent.Item{
			{Name: agent.ItemCash, Amount: 2500, Category: agent.CategoryLiquidAsset},
			{Name: agent.ItemGilts, Amount: 20000, Category: agent.CategoryLiquidAsset, ReactionInstrument: true,
				Sensitivity: map[string]float64{market.VarGilt10Y: -0.0005}},
			{Name: agent.ItemCorpBonds, Amount: 15000, Category: agent.CategoryLiquidAsset, ReactionInstrument: true,
				Sensitivity: map[string]float64{market.VarIGCorpSpread: -0.0004}},
		},
		Fund: &agent.FundParams{
			Strategy:           "gilt_fund",
			AUM:                50000,
			PensionInvestorPct: 0.5,
			InsurerInvestorPct: 0.2,
			CashBufferPct:      0.05,
		},
	}
}
