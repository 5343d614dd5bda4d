// Package population generates the heterogeneous agent population from
// statistical distributions. Each agent is unique but drawn from the
// configured ranges; a fixed seed reproduces the identical population.
package population

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/market"
)

// Generate builds the full population from the given distributions.
// Agents come out in a fixed order (banks, hedge funds, LDI/pension,
// insurers, fund complexes); amounts are £mm.
func Generate(seed int64, dist *Distributions) ([]*agent.Agent, error) {
	rng := rand.New(rand.NewSource(seed))

	var agents []*agent.Agent
	agents = append(agents, generateBanks(rng, dist)...)
	agents = append(agents, generateHedgeFunds(rng, dist)...)
	agents = append(agents, generateLDIs(rng, dist)...)
	agents = append(agents, generateInsurers(rng, dist)...)
	agents = append(agents, generateFunds(rng, dist)...)

	for _, a := range agents {
		for _, it := range a.BalanceSheet {
			if math.IsNaN(it.Amount) || it.Amount < 0 {
				return nil, fmt.Errorf("population: agent %s item %q has invalid amount %v", a.ID, it.Name, it.Amount)
			}
		}
	}
	return agents, nil
}

func sample(rng *rand.Rand, r config.Range) float64 {
	return r.Lo + rng.Float64()*(r.Hi-r.Lo)
}

func sampleInt(rng *rand.Rand, r config.IntRange) int {
	if r.Hi <= r.Lo {
		return r.Lo
	}
	return r.Lo + rng.Intn(r.Hi-r.Lo+1)
}

func generateBanks(rng *rand.Rand, dist *Distributions) []*agent.Agent {
	d := dist.Bank
	var banks []*agent.Agent
	idx := 0
	for _, tier := range d.Tiers {
		for i := 0; i < tier.Count; i++ {
			idx++
			bs := sample(rng, tier.TotalBSBn) * 1000
			riskAppetite := sample(rng, d.RiskAppetite)
			giltCap := sample(rng, tier.GiltCapacityMM)

			a := &agent.Agent{
				ID:              fmt.Sprintf("bank_%02d", idx),
				Type:            agent.TypeBank,
				Theta:           sample(rng, d.Theta),
				BufferUsability: sample(rng, d.BufferUsability),
				Size:            bs,
				Bank: &agent.BankParams{
					Tier:               tier.Label,
					RiskAppetite:       riskAppetite,
					GiltCapacity:       giltCap,
					CorpCapacity:       giltCap * 0.3,
					RepoCapacity:       bs * sample(rng, d.RepoCapacityPct),
					WillRollPct:        sample(rng, d.WillRoll),
					WillExtendNewPct:   sample(rng, d.WillExtendNew),
					HaircutSensitivity: 1.0 + (1.0 - riskAppetite),
				},
				BalanceSheet: []*agent.Item{
					{Name: agent.ItemGilts, Amount: bs * sample(rng, d.GiltPctOfBS), Category: agent.CategoryLiquidAsset,
						Sensitivity:        map[string]float64{market.VarGilt10Y: -0.00045, market.VarGilt30Y: -0.00065},
						CollateralEligible: true, ReactionInstrument: true},
					{Name: agent.ItemCorpBonds, Amount: bs * sample(rng, d.CorpPctOfBS), Category: agent.CategoryLiquidAsset,
						Sensitivity:        map[string]float64{market.VarIGCorpSpread: -0.0004, market.VarHYCorpSpread: -0.0002},
						CollateralEligible: true, ReactionInstrument: true},
					{Name: agent.ItemEquities, Amount: bs * 0.005, Category: agent.CategoryLiquidAsset,
						Sensitivity:        map[string]float64{market.VarEquity: 0.01},
						ReactionInstrument: true},
					{Name: agent.ItemRepoLending, Amount: bs * sample(rng, d.RepoLendingPct), Category: agent.CategoryLiquidAsset},
					{Name: agent.ItemDerivatives, Amount: bs * sample(rng, d.DerivativesPct), Category: agent.CategoryIlliquidAsset,
						Sensitivity: map[string]float64{market.VarGilt10Y: -0.0002, market.VarSwapRate: -0.0002}},
					{Name: agent.ItemFacilityEligible, Amount: bs * sample(rng, d.FacilityPct), Category: agent.CategoryLiquidAsset,
						CollateralEligible: true},
					{Name: agent.ItemWholesale, Amount: bs * sample(rng, d.WholesalePct), Category: agent.CategoryLiability},
					{Name: agent.ItemCET1, Amount: bs * 0.5 * sample(rng, d.CET1PctOfRWA), Category: agent.CategoryEquity},
				},
			}
			banks = append(banks, a)
		}
	}
	return banks
}

func generateHedgeFunds(rng *rand.Rand, dist *Distributions) []*agent.Agent {
	d := dist.HedgeFund
	var funds []*agent.Agent
	idx := 0
	for _, profile := range d.Profiles {
		for i := 0; i < profile.Count; i++ {
			idx++
			aum := sample(rng, d.AUMBn[idx%len(d.AUMBn)]) * 1000
			leverage := sample(rng, profile.GrossLeverage)
			gross := aum * leverage

			a := &agent.Agent{
				ID:              fmt.Sprintf("hf_%02d", idx),
				Type:            agent.TypeHedgeFund,
				Theta:           sample(rng, d.Theta),
				BufferUsability: sample(rng, d.BufferUsability),
				Size:            aum,
				HedgeFund: &agent.HedgeFundParams{
					Strategy:             profile.Strategy,
					AUM:                  aum,
					GrossLeverage:        leverage,
					VarUtilisation:       sample(rng, d.VarUtilisation),
					RepoDependence:       profile.RepoDependence,
					PrimarySensitivities: profile.PrimarySens,
				},
				BalanceSheet: []*agent.Item{
					{Name: agent.ItemGilts, Amount: gross * sample(rng, profile.GiltPct), Category: agent.CategoryLiquidAsset,
						Sensitivity:        hfGiltSensitivity(profile.PrimarySens),
						CollateralEligible: true, ReactionInstrument: true},
					{Name: agent.ItemEquities, Amount: gross * sample(rng, profile.EquityPct), Category: agent.CategoryLiquidAsset,
						Sensitivity:        hfEquitySensitivity(profile.PrimarySens),
						ReactionInstrument: true},
					{Name: agent.ItemCorpBonds, Amount: gross * sample(rng, profile.CorpPct), Category: agent.CategoryLiquidAsset,
						Sensitivity:        hfCorpSensitivity(profile.PrimarySens),
						CollateralEligible: true, ReactionInstrument: true},
					{Name: agent.ItemBasisTrades, Amount: gross * sample(rng, profile.BasisPct), Category: agent.CategoryLiquidAsset,
						Sensitivity:        map[string]float64{market.VarBondFuturesBasis: -0.001, market.VarGilt10Y: -0.0003},
						ReactionInstrument: true},
					{Name: agent.ItemCash, Amount: aum * 0.10, Category: agent.CategoryLiquidAsset},
					{Name: agent.ItemRepoBorrowing, Amount: gross * profile.RepoDependence * 0.3, Category: agent.CategoryLiability},
					{Name: agent.ItemMarginPosted, Amount: aum * 0.08, Category: agent.CategoryIlliquidAsset},
				},
			}
			funds = append(funds, a)
		}
	}
	return funds
}

func hfGiltSensitivity(primary []string) map[string]float64 {
	sens := map[string]float64{}
	for _, v := range primary {
		switch v {
		case market.VarGilt10Y:
			sens[market.VarGilt10Y] = -0.0006
		case market.VarGilt30Y:
			sens[market.VarGilt30Y] = -0.0008
		case market.VarSwapRate:
			sens[market.VarSwapRate] = -0.0003
		}
	}
	if len(sens) == 0 {
		sens[market.VarGilt10Y] = -0.0002
	}
	return sens
}

func hfEquitySensitivity(primary []string) map[string]float64 {
	for _, v := range primary {
		if v == market.VarEquity {
			return map[string]float64{market.VarEquity: 0.012}
		}
	}
	return map[string]float64{market.VarEquity: 0.002}
}

func hfCorpSensitivity(primary []string) map[string]float64 {
	sens := map[string]float64{}
	for _, v := range primary {
		switch v {
		case market.VarIGCorpSpread:
			sens[market.VarIGCorpSpread] = -0.0005
		case market.VarHYCorpSpread:
			sens[market.VarHYCorpSpread] = -0.0003
		}
	}
	if len(sens) == 0 {
		sens[market.VarIGCorpSpread] = -0.0002
	}
	return sens
}

func generateLDIs(rng *rand.Rand, dist *Distributions) []*agent.Agent {
	d := dist.LDI
	var funds []*agent.Agent
	for i := 0; i < d.Count; i++ {
		aum := sample(rng, d.AUMBn) * 1000
		pooled := rng.Float64() < d.PooledPct
		speedDays := 1
		if !pooled {
			speedDays = sampleInt(rng, d.RecapSpeedDays)
		}

		a := &agent.Agent{
			ID:              fmt.Sprintf("ldi_%02d", i+1),
			Type:            agent.TypeLDIPension,
			Theta:           sample(rng, d.Theta),
			BufferUsability: sample(rng, d.BufferUsability),
			Size:            aum,
			LDI: &agent.LDIParams{
				AUM:            aum,
				YieldBufferBps: sample(rng, d.YieldBufferBps),
				LeverageRatio:  sample(rng, d.Leverage),
				RecapAvailable: aum * sample(rng, d.RecapPctOfAUM),
				RecapSpeedDays: speedDays,
				Pooled:         pooled,
			},
			BalanceSheet: []*agent.Item{
				{Name: agent.ItemGilts, Amount: aum * sample(rng, d.GiltPct), Category: agent.CategoryLiquidAsset,
					Sensitivity:        map[string]float64{market.VarGilt10Y: -0.0006, market.VarGilt30Y: -0.0009},
					CollateralEligible: true, ReactionInstrument: true},
				{Name: agent.ItemILGilts, Amount: aum * sample(rng, d.ILGiltPct), Category: agent.CategoryLiquidAsset,
					Sensitivity:        map[string]float64{market.VarILGilt: -0.0007},
					CollateralEligible: true, ReactionInstrument: true},
				{Name: agent.ItemCorpBonds, Amount: aum * sample(rng, d.CorpPct), Category: agent.CategoryLiquidAsset,
					Sensitivity:        map[string]float64{market.VarIGCorpSpread: -0.0004},
					CollateralEligible: true, ReactionInstrument: true},
				{Name: agent.ItemCash, Amount: aum * sample(rng, d.CashPct), Category: agent.CategoryLiquidAsset},
				{Name: agent.ItemDerivatives, Amount: aum * sample(rng, d.DerivNotionalX), Category: agent.CategoryOffBS,
					Sensitivity: map[string]float64{market.VarGilt10Y: -0.0003, market.VarSwapRate: -0.0003, market.VarGilt30Y: -0.0004}},
				{Name: agent.ItemUnencumbered, Amount: aum * sample(rng, d.UnencumberedPct), Category: agent.CategoryLiquidAsset,
					CollateralEligible: true},
				{Name: agent.ItemMarginPosted, Amount: aum * 0.05, Category: agent.CategoryIlliquidAsset},
			},
		}
		funds = append(funds, a)
	}
	return funds
}

func generateInsurers(rng *rand.Rand, dist *Distributions) []*agent.Agent {
	d := dist.Insurer
	var insurers []*agent.Agent
	for i := 0; i < d.Count; i++ {
		total := sample(rng, d.TotalAssetsBn) * 1000

		a := &agent.Agent{
			ID:              fmt.Sprintf("insurer_%02d", i+1),
			Type:            agent.TypeInsurer,
			Theta:           sample(rng, d.Theta),
			BufferUsability: sample(rng, d.BufferUsability),
			Size:            total,
			Insurer: &agent.InsurerParams{
				TotalAssets: total,
				HedgeRatio:  sample(rng, d.HedgeRatio),
				DirtyCSAPct: sample(rng, d.DirtyCSAPct),
			},
			BalanceSheet: []*agent.Item{
				{Name: agent.ItemGilts, Amount: total * sample(rng, d.GiltPct), Category: agent.CategoryLiquidAsset,
					Sensitivity:        map[string]float64{market.VarGilt10Y: -0.0005, market.VarGilt30Y: -0.0007},
					CollateralEligible: true, ReactionInstrument: true},
				{Name: agent.ItemCorpBonds, Amount: total * sample(rng, d.CorpPct), Category: agent.CategoryLiquidAsset,
					Sensitivity:        map[string]float64{market.VarIGCorpSpread: -0.0004, market.VarHYCorpSpread: -0.0002},
					CollateralEligible: true, ReactionInstrument: true},
				{Name: agent.ItemEquities, Amount: total * sample(rng, d.EquityPct), Category: agent.CategoryLiquidAsset,
					Sensitivity:        map[string]float64{market.VarEquity: 0.01},
					ReactionInstrument: true},
				{Name: agent.ItemDerivatives, Amount: total * sample(rng, d.DerivNotionalX), Category: agent.CategoryOffBS,
					Sensitivity: map[string]float64{market.VarGilt10Y: -0.0002, market.VarSwapRate: -0.0002}},
				{Name: agent.ItemCash, Amount: total * sample(rng, d.CashPct), Category: agent.CategoryLiquidAsset},
				{Name: agent.ItemMarginPosted, Amount: total * 0.02, Category: agent.CategoryIlliquidAsset},
				{Name: agent.ItemCommittedRepoLines, Amount: total * sample(rng, d.CommittedRepoPct), Category: agent.CategoryLiquidAsset,
					CollateralEligible: true},
				{Name: agent.ItemRCF, Amount: total * sample(rng, d.RCFPct), Category: agent.CategoryLiquidAsset},
			},
		}
		insurers = append(insurers, a)
	}
	return insurers
}

func generateFunds(rng *rand.Rand, dist *Distributions) []*agent.Agent {
	d := dist.Fund
	var funds []*agent.Agent
	idx := 0
	for _, profile := range d.Profiles {
		for i := 0; i < profile.Count; i++ {
			idx++
			aum := sample(rng, d.AUMBn) * 1000
			cashPct := sample(rng, d.CashBufferPct)

			a := &agent.Agent{
				ID:              fmt.Sprintf("fund_%02d", idx),
				Type:            agent.TypeFundComplex,
				Theta:           sample(rng, d.Theta),
				BufferUsability: sample(rng, d.BufferUsability),
				Size:            aum,
				Fund: &agent.FundParams{
					Strategy:           profile.Strategy,
					AUM:                aum,
					PensionInvestorPct: sample(rng, d.PensionPct),
					InsurerInvestorPct: sample(rng, d.InsurerPct),
					CashBufferPct:      cashPct,
				},
				BalanceSheet: []*agent.Item{
					{Name: agent.ItemGilts, Amount: aum * sample(rng, profile.GiltPct), Category: agent.CategoryLiquidAsset,
						Sensitivity:        map[string]float64{market.VarGilt10Y: -0.0005, market.VarGilt30Y: -0.0006},
						CollateralEligible: true, ReactionInstrument: true},
					{Name: agent.ItemCorpBonds, Amount: aum * sample(rng, profile.CorpPct), Category: agent.CategoryLiquidAsset,
						Sensitivity:        map[string]float64{market.VarIGCorpSpread: -0.0004, market.VarHYCorpSpread: -0.0002},
						CollateralEligible: true, ReactionInstrument: true},
					{Name: agent.ItemABSHoldings, Amount: aum * sample(rng, profile.ABSPct), Category: agent.CategoryIlliquidAsset,
						Sensitivity: map[string]float64{market.VarIGCorpSpread: -0.0002}},
					{Name: agent.ItemCash, Amount: aum * cashPct, Category: agent.CategoryLiquidAsset},
				},
			}
			funds = append(funds, a)
		}
	}
	return funds
}
