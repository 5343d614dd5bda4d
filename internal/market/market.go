// Package market holds the process-wide market state: the day's exogenous
// scenario levels plus the endogenous accumulators that agent actions and
// the feedback engine mutate.
package market

import "github.com/stresslens/swesim/internal/config"

// Market variable identifiers. Scenario paths and balance-sheet sensitivity
// maps are keyed by these.
const (
	VarGilt10Y          = "gilt_10y_yield"
	VarGilt30Y          = "gilt_30y_yield"
	VarILGilt           = "il_gilt_yield"
	VarUST10Y           = "ust_10y_yield"
	VarIGCorpSpread     = "ig_corp_spread"
	VarHYCorpSpread     = "hy_corp_spread"
	VarEquity           = "equity"
	VarSwapRate         = "swap_rate"
	VarFX               = "fx"
	VarRepoHaircutGilt  = "repo_haircut_gilt"
	VarRepoHaircutCorp  = "repo_haircut_corp"
	VarBondFuturesBasis = "bond_futures_basis"
	VarVol              = "vol"
)

// State is the single piece of shared mutable state in a run. Only the
// simulation loop and the feedback engine write to the endogenous
// accumulators; agents read it and post their actions through
// behavior.Register.
type State struct {
	Day int

	// levels are the day's cumulative exogenous scenario values, with the
	// endogenous yield/spread additions folded in by the feedback pass.
	levels map[string]float64

	// Market-functioning indicators, recomputed each day from the
	// scenario's volatility level and then degraded by endogenous
	// feedback within the day.
	GiltBidAskBps float64
	CorpBidAskBps float64
	RepoAvailPct  float64
	GiltDepth     float64
	CorpDepth     float64

	// Endogenous pressure accumulators, reset at each new day.
	GiltSelling float64
	CorpSelling float64
	RepoDemand  float64

	// Endogenous additional price impacts accumulated within the day.
	GiltYieldAddBps float64
	IGSpreadAddBps  float64
}

// New returns a State at the pre-shock baseline of the given calibration.
func New(cfg *config.Config) *State {
	s := &State{levels: map[string]float64{VarVol: cfg.Market.BaseVol}}
	s.GiltBidAskBps = cfg.Market.GiltBidAskBps
	s.CorpBidAskBps = cfg.Market.CorpBidAskBps
	s.RepoAvailPct = 1.0
	s.GiltDepth = cfg.Market.GiltDepth
	s.CorpDepth = cfg.Market.CorpDepth
	return s
}

// Level returns the current cumulative value of a market variable.
// Unknown variables read as zero.
func (s *State) Level(name string) float64 {
	return s.levels[name]
}

// Vol returns the volatility index level, defaulting to the calm baseline
// when the scenario does not drive it.
func (s *State) Vol(cfg *config.Config) float64 {
	if v, ok := s.levels[VarVol]; ok && v > 0 {
		return v
	}
	return cfg.Market.BaseVol
}

// StressIntensity is the volatility level relative to its calm baseline,
// floored at 1 (markets never function better than baseline under stress).
func (s *State) StressIntensity(cfg *config.Config) float64 {
	intensity := s.Vol(cfg) / cfg.Market.BaseVol
	if intensity < 1.0 {
		return 1.0
	}
	return intensity
}

// ApplyScenario installs the day's exogenous cumulative levels, resets the
// endogenous accumulators and recomputes the market-functioning indicators
// from the scenario's severity. Structural depletion carried across days
// (bank market-making capacity) lives on the bank agents, not here.
func (s *State) ApplyScenario(day int, levels map[string]float64, cfg *config.Config) {
	s.Day = day
	s.levels = make(map[string]float64, len(levels)+1)
	for k, v := range levels {
		s.levels[k] = v
	}
	if _, ok := s.levels[VarVol]; !ok {
		s.levels[VarVol] = cfg.Market.BaseVol
	}

	s.GiltSelling = 0
	s.CorpSelling = 0
	s.RepoDemand = 0
	s.GiltYieldAddBps = 0
	s.IGSpreadAddBps = 0

	intensity := s.StressIntensity(cfg)
	s.GiltBidAskBps = cfg.Market.GiltBidAskBps * intensity
	s.CorpBidAskBps = cfg.Market.CorpBidAskBps * intensity
	s.RepoAvailPct = 1.0 - (intensity-1.0)*cfg.Market.RepoAvailSlope
	if s.RepoAvailPct < cfg.Market.RepoAvailFloor {
		s.RepoAvailPct = cfg.Market.RepoAvailFloor
	}
	s.GiltDepth = cfg.Market.GiltDepth / intensity
	if s.GiltDepth < cfg.Market.GiltDepthFloor {
		s.GiltDepth = cfg.Market.GiltDepthFloor
	}
	s.CorpDepth = cfg.Market.CorpDepth / intensity
	if s.CorpDepth < cfg.Market.CorpDepthFloor {
		s.CorpDepth = cfg.Market.CorpDepthFloor
	}
}

// AddGiltSelling posts gilt-class selling pressure into the day's
// accumulator.
func (s *State) AddGiltSelling(amount float64) { s.GiltSelling += amount }

// AddCorpSelling posts corporate-bond selling pressure.
func (s *State) AddCorpSelling(amount float64) { s.CorpSelling += amount }

// AddRepoDemand posts repo demand.
func (s *State) AddRepoDemand(amount float64) { s.RepoDemand += amount }

// ApplyEndogenousFeedback converts the day's aggregate selling pressure
// into additional price impacts, reduced repo availability and wider
// bid/ask spreads. Called once per feedback iteration; the additions
// accumulate within the day.
func (s *State) ApplyEndogenousFeedback(cfg *config.Config) {
	if s.GiltDepth > 0 {
		impact := (s.GiltSelling / s.GiltDepth) * cfg.Market.GiltImpactBps
		s.GiltYieldAddBps += impact
		s.levels[VarGilt10Y] += impact * 0.5
		s.levels[VarGilt30Y] += impact * 0.7
	}
	if s.CorpDepth > 0 {
		impact := (s.CorpSelling / s.CorpDepth) * cfg.Market.CorpImpactBps
		s.IGSpreadAddBps += impact
		s.levels[VarIGCorpSpread] += impact * 0.6
		s.levels[VarHYCorpSpread] += impact * 1.2
	}
	if cfg.Market.SystemRepoCapacity > 0 {
		pressure := s.RepoDemand / cfg.Market.SystemRepoCapacity
		s.RepoAvailPct -= pressure * cfg.Market.RepoPressureSlope
		if s.RepoAvailPct < cfg.Market.RepoAvailFloor {
			s.RepoAvailPct = cfg.Market.RepoAvailFloor
		}
	}
	s.GiltBidAskBps += s.GiltSelling * 0.001
	s.CorpBidAskBps += s.CorpSelling * 0.002
}

// Snapshot is the per-day record of market conditions.
type Snapshot struct {
	Day             int     `json:"day"`
	Gilt10YBps      float64 `json:"gilt_10y_yield_bps"`
	Gilt30YBps      float64 `json:"gilt_30y_yield_bps"`
	ILGiltBps       float64 `json:"il_gilt_yield_bps"`
	IGCorpSpreadBps float64 `json:"ig_corp_spread_bps"`
	HYCorpSpreadBps float64 `json:"hy_corp_spread_bps"`
	EquityPct       float64 `json:"equity_pct"`
	Vol             float64 `json:"vol"`
	GiltBidAskBps   float64 `json:"gilt_bid_ask_bps"`
	CorpBidAskBps   float64 `json:"corp_bid_ask_bps"`
	RepoAvailPct    float64 `json:"repo_avail_pct"`
	GiltDepth       float64 `json:"gilt_depth"`
	CorpDepth       float64 `json:"corp_depth"`
	GiltSelling     float64 `json:"gilt_selling"`
	CorpSelling     float64 `json:"corp_selling"`
	RepoDemand      float64 `json:"repo_demand"`
	GiltYieldAddBps float64 `json:"gilt_yield_add_bps"`
	IGSpreadAddBps  float64 `json:"ig_spread_add_bps"`
}

// Snapshot captures the current market conditions.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Day:             s.Day,
		Gilt10YBps:      s.levels[VarGilt10Y],
		Gilt30YBps:      s.levels[VarGilt30Y],
		ILGiltBps:       s.levels[VarILGilt],
		IGCorpSpreadBps: s.levels[VarIGCorpSpread],
		HYCorpSpreadBps: s.levels[VarHYCorpSpread],
		EquityPct:       s.levels[VarEquity],
		Vol:             s.levels[VarVol],
		GiltBidAskBps:   s.GiltBidAskBps,
		CorpBidAskBps:   s.CorpBidAskBps,
		RepoAvailPct:    s.RepoAvailPct,
		GiltDepth:       s.GiltDepth,
		CorpDepth:       s.CorpDepth,
		GiltSelling:     s.GiltSelling,
		CorpSelling:     s.CorpSelling,
		RepoDemand:      s.RepoDemand,
		GiltYieldAddBps: s.GiltYieldAddBps,
		IGSpreadAddBps:  s.IGSpreadAddBps,
	}
}
