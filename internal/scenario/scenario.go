// Package scenario loads and serves the exogenous market paths that drive a
// run: per-variable cumulative levels, one value per simulated day.
package scenario

// Scenario is a named multi-day set of exogenous market paths. Path values
// are cumulative changes from the pre-shock baseline (bps for yields and
// spreads, percent for equity/FX), so day-over-day deltas are differences of
// consecutive entries.
type Scenario struct {
	Name        string               `yaml:"name"`
	HorizonDays int                  `yaml:"horizon_days"`
	Paths       map[string][]float64 `yaml:"paths"`
}

// Day returns the cumulative levels for the given day.
func (s *Scenario) Day(day int) map[string]float64 {
	out := make(map[string]float64, len(s.Paths))
	for name, path := range s.Paths {
		if day >= 0 && day < len(path) {
			out[name] = path[day]
		}
	}
	return out
}

// Delta returns the day-over-day change in each variable. Day 0 is measured
// against the zero pre-shock baseline.
func (s *Scenario) Delta(day int) map[string]float64 {
	out := make(map[string]float64, len(s.Paths))
	for name, path := range s.Paths {
		if day < 0 || day >= len(path) {
			continue
		}
		prev := 0.0
		if day > 0 {
			prev = path[day-1]
		}
		out[name] = path[day] - prev
	}
	return out
}
