// Package harness provides end-to-end conformance testing for stress runs.
//
// A case is a YAML file pairing a scenario with a seed and a set of outcome
// expectations:
//
//	name: gilt_shock_baseline
//	description: "LDI-centred gilt shock against the default population"
//	scenario: scenarios/gilt_shock.yaml
//	seed: 42
//	expect:
//	  min_reacted: 5
//	  system_amplification_min: 1.0
//
// The harness generates the seeded population and network, runs the engine
// over the scenario and checks the expectations. Golden-file comparison of
// the full result is available through RunWithGolden.
package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/stresslens/swesim/internal/config"
	"github.com/stresslens/swesim/internal/engine"
	"github.com/stresslens/swesim/internal/network"
	"github.com/stresslens/swesim/internal/population"
	"github.com/stresslens/swesim/internal/scenario"
)

// Expectations are the outcome bounds a case asserts. Zero-valued bounds are
// not checked, except the amplification bounds which are pointers for that
// reason (1.0 is a meaningful bound).
type Expectations struct {
	MinReacted int `yaml:"min_reacted"`
	MaxReacted int `yaml:"max_reacted"`

	SystemAmplificationMin *float64 `yaml:"system_amplification_min"`
	SystemAmplificationMax *float64 `yaml:"system_amplification_max"`

	MinHedgeFundsSeekingRepo int `yaml:"min_hedge_funds_seeking_repo"`

	MinNBFIGiltSales float64 `yaml:"min_nbfi_gilt_sales"`
}

// Case is one harness case: a scenario, a seed and expectations.
type Case struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Scenario    string       `yaml:"scenario"`
	Seed        int64        `yaml:"seed"`
	Iterations  int          `yaml:"iterations"`
	NoFeedback  bool         `yaml:"no_feedback"`
	Expect      Expectations `yaml:"expect"`

	// dir is the case file's directory; the scenario path resolves against it.
	dir string
}

// LoadCase reads a case file. The case's scenario path is resolved relative
// to the case file.
func LoadCase(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("harness: read case: %w", err)
	}
	var c Case
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("harness: parse case %s: %w", path, err)
	}
	if c.Name == "" {
		return nil, fmt.Errorf("harness: case %s has no name", path)
	}
	if c.Scenario == "" {
		return nil, fmt.Errorf("harness: case %q has no scenario", c.Name)
	}
	c.dir = filepath.Dir(path)
	return &c, nil
}

// Run executes the case: seeded population and network, scenario load,
// engine run. Run ids come from gen so golden comparisons stay stable.
func (c *Case) Run(gen engine.RunIDGenerator) (*engine.Result, error) {
	cfg := config.Default()

	sc, err := scenario.Load(filepath.Join(c.dir, c.Scenario))
	if err != nil {
		return nil, fmt.Errorf("harness: case %q: %w", c.Name, err)
	}
	agents, err := population.Generate(c.Seed, population.DefaultDistributions())
	if err != nil {
		return nil, fmt.Errorf("harness: case %q: %w", c.Name, err)
	}
	net, err := network.Build(network.NodesFor(agents), c.Seed, cfg)
	if err != nil {
		return nil, fmt.Errorf("harness: case %q: %w", c.Name, err)
	}

	opts := []engine.Option{}
	if gen != nil {
		opts = append(opts, engine.WithRunIDGenerator(gen))
	}
	if c.Iterations > 0 {
		opts = append(opts, engine.WithFeedbackIterations(c.Iterations))
	}
	if c.NoFeedback {
		opts = append(opts, engine.WithFeedbackDisabled())
	}

	return engine.New(cfg, opts...).Run(context.Background(), agents, net, sc)
}

// Check verifies the case's expectations against a result and returns every
// violation. An empty slice means the case passed.
func (c *Case) Check(res *engine.Result) []string {
	var violations []string
	fail := func(format string, args ...interface{}) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	s := res.Summary
	if c.Expect.MinReacted > 0 && s.AgentsReacted < c.Expect.MinReacted {
		fail("agents reacted %d < min %d", s.AgentsReacted, c.Expect.MinReacted)
	}
	if c.Expect.MaxReacted > 0 && s.AgentsReacted > c.Expect.MaxReacted {
		fail("agents reacted %d > max %d", s.AgentsReacted, c.Expect.MaxReacted)
	}
	if m := c.Expect.SystemAmplificationMin; m != nil && res.Amplification.System < *m {
		fail("system amplification %.4f < min %.4f", res.Amplification.System, *m)
	}
	if m := c.Expect.SystemAmplificationMax; m != nil && res.Amplification.System > *m {
		fail("system amplification %.4f > max %.4f", res.Amplification.System, *m)
	}
	if c.Expect.MinHedgeFundsSeekingRepo > 0 && s.HedgeFundsSeekingRepo < c.Expect.MinHedgeFundsSeekingRepo {
		fail("hedge funds seeking repo %d < min %d", s.HedgeFundsSeekingRepo, c.Expect.MinHedgeFundsSeekingRepo)
	}
	if c.Expect.MinNBFIGiltSales > 0 && s.NBFIGiltSales < c.Expect.MinNBFIGiltSales {
		fail("NBFI gilt sales %.1f < min %.1f", s.NBFIGiltSales, c.Expect.MinNBFIGiltSales)
	}
	return violations
}
