package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/stresslens/swesim/internal/engine"
)

// GoldenSnapshot is the stable projection of a run result compared against
// golden files. Day-level agent detail is collapsed to the final day so that
// goldens stay reviewable.
type GoldenSnapshot struct {
	Case     string                `json:"case"`
	Scenario string                `json:"scenario"`
	Horizon  int                   `json:"horizon_days"`
	Summary  engine.Summary        `json:"summary"`
	Amp      engine.Amplification  `json:"amplification"`
	FinalDay []engine.AgentSnapshot `json:"final_day"`
}

// RunWithGolden executes a case with fixed run ids and compares the result
// snapshot against testdata/<case-name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Tests that have no golden file yet are skipped rather than failed, so a
// fresh checkout without recorded goldens still passes.
func RunWithGolden(t *testing.T, c *Case) {
	t.Helper()

	gen := engine.NewFixedGenerator("run-" + c.Name)
	res, err := c.Run(gen)
	if err != nil {
		t.Fatalf("case %q failed to run: %v", c.Name, err)
	}
	if violations := c.Check(res); len(violations) > 0 {
		for _, v := range violations {
			t.Errorf("case %q: %s", c.Name, v)
		}
		return
	}

	goldenPath := filepath.Join("testdata", c.Name+".golden")
	if _, err := os.Stat(goldenPath); os.IsNotExist(err) && !updateRequested() {
		t.Skipf("no golden file %s; run with -update to record", goldenPath)
	}

	g := goldie.New(t)
	g.AssertJson(t, c.Name, GoldenSnapshot{
		Case:     c.Name,
		Scenario: res.Scenario,
		Horizon:  res.Horizon,
		Summary:  res.Summary,
		Amp:      res.Amplification,
		FinalDay: res.Days[len(res.Days)-1].Agents,
	})
}

// updateRequested reports whether the goldie -update flag was passed.
func updateRequested() bool {
	for _, arg := range os.Args {
		if arg == "-update" || arg == "--update" {
			return true
		}
	}
	return false
}
