package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stresslens/swesim/internal/store"
)

const testScenario = `name: gilt_shock
horizon_days: 2
paths:
  gilt_10y_yield: [80, 160]
  gilt_30y_yield: [100, 200]
  il_gilt_yield: [110, 210]
  ig_corp_spread: [30, 60]
  repo_haircut_gilt: [1, 2]
  vol: [30, 45]
`

func writeTestScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_RejectsInvalidFormat(t *testing.T) {
	sc := writeTestScenario(t, testScenario)
	_, err := execute(t, "validate", sc, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestValidateCommand(t *testing.T) {
	sc := writeTestScenario(t, testScenario)

	out, err := execute(t, "validate", sc)
	require.NoError(t, err)
	assert.Contains(t, out, `Scenario "gilt_shock" valid: 2 days, 6 market paths`)
}

func TestValidateCommand_JSON(t *testing.T) {
	sc := writeTestScenario(t, testScenario)

	out, err := execute(t, "validate", sc, "--format", "json")
	require.NoError(t, err)

	var res struct {
		Scenario    string   `json:"scenario"`
		HorizonDays int      `json:"horizon_days"`
		Paths       []string `json:"paths"`
		Valid       bool     `json:"valid"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "gilt_shock", res.Scenario)
	assert.Equal(t, 2, res.HorizonDays)
	assert.Len(t, res.Paths, 6)
	assert.True(t, res.Valid)
}

func TestValidateCommand_InvalidScenario(t *testing.T) {
	sc := writeTestScenario(t, "name: broken\nhorizon_days: 0\npaths: {}\n")

	_, err := execute(t, "validate", sc)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestNetworkCommand(t *testing.T) {
	out, err := execute(t, "network", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Population (seed 7): 70 agents")
	assert.Contains(t, out, "Network edges:")
	assert.Contains(t, out, "prime brokerage")
}

func TestNetworkCommand_JSON(t *testing.T) {
	out, err := execute(t, "network", "--format", "json")
	require.NoError(t, err)

	var res struct {
		Seed   int64          `json:"seed"`
		Agents map[string]int `json:"agents"`
		Total  int            `json:"total_agents"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, int64(42), res.Seed)
	assert.Equal(t, 70, res.Total)
	assert.Equal(t, 12, res.Agents["bank"])
}

func TestRunCommand_EndToEnd(t *testing.T) {
	sc := writeTestScenario(t, testScenario)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	out, err := execute(t, "run", sc, "--seed", "42", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Run ")
	assert.Contains(t, out, "Scenario: gilt_shock (2 days)")
	assert.Contains(t, out, "Agents reacted:")
	assert.Contains(t, out, "Amplification:")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	runs, err := st.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "gilt_shock", runs[0].Scenario)
}

func TestRunCommand_NoFeedbackJSON(t *testing.T) {
	sc := writeTestScenario(t, testScenario)

	out, err := execute(t, "run", sc, "--no-feedback", "--format", "json")
	require.NoError(t, err)

	var res struct {
		RunID         string `json:"run_id"`
		Scenario      string `json:"scenario"`
		Amplification struct {
			System float64 `json:"system"`
		} `json:"amplification"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "gilt_shock", res.Scenario)
	assert.Equal(t, 1.0, res.Amplification.System)
}

func TestRunCommand_MissingScenario(t *testing.T) {
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
