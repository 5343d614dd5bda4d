package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsInternallyConsistent(t *testing.T) {
	cfg := Default()

	assert.Positive(t, cfg.Feedback.Iterations)
	assert.Greater(t, cfg.Feedback.RepoRefusalStressThreshold, 0.0)

	assert.Greater(t, cfg.Market.GiltDepth, cfg.Market.GiltDepthFloor)
	assert.Greater(t, cfg.Market.CorpDepth, cfg.Market.CorpDepthFloor)
	assert.Greater(t, cfg.Market.RepoAvailFloor, 0.0)
	assert.Less(t, cfg.Market.RepoAvailFloor, 1.0)

	assert.Greater(t, cfg.Efficiency.SaleFloor, 0.0)
	assert.LessOrEqual(t, cfg.Efficiency.Facility, 1.0)

	for _, r := range []IntRange{
		cfg.Degrees.HedgeFundBanks, cfg.Degrees.LDIBanks,
		cfg.Degrees.InsurerBanks, cfg.Degrees.RedeemerFunds,
	} {
		assert.Positive(t, r.Lo)
		assert.GreaterOrEqual(t, r.Hi, r.Lo)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calibration.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_OverlaysOntoDefaults(t *testing.T) {
	path := writeConfig(t, `feedback:
  iterations: 5
market:
  base_vol: 18
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Feedback.Iterations)
	assert.Equal(t, 18.0, cfg.Market.BaseVol)

	// Untouched fields keep the baseline calibration.
	def := Default()
	assert.Equal(t, def.Market.GiltDepth, cfg.Market.GiltDepth)
	assert.Equal(t, def.Buffers.Bank, cfg.Buffers.Bank)
}

func TestLoad_EmptyFileIsAllDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, "feedbck:\n  iterations: 5\n"))
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
