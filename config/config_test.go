package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig.Validate())
	assert.Equal(t, 1e-6, DefaultConfig.Solver.Accuracy)
	assert.Equal(t, 100, DefaultConfig.Solver.MaxEvaluations)
	assert.Equal(t, 1e-7, DefaultConfig.Solver.MinVol)
	assert.Equal(t, 4.0, DefaultConfig.Solver.MaxVol)
}

func TestSetGetConfig(t *testing.T) {
	orig := GetConfig()
	t.Cleanup(func() { SetConfig(orig) })

	c := DefaultConfig
	c.Workers = 9
	SetConfig(c)
	assert.Equal(t, 9, GetConfig().Workers)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moderiv.yaml")
	yaml := []byte("solver:\n  max_evaluations: 50\nlattice:\n  american_steps: 401\n  smoothing: true\noutput:\n  decimals: 4\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o644))
	t.Setenv("MODERIV_WORKERS", "2")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, c.Solver.MaxEvaluations)
	assert.Equal(t, 401, c.Lattice.AmericanSteps)
	assert.True(t, c.Lattice.Smoothing)
	assert.Equal(t, int32(4), c.Output.Decimals)
	assert.Equal(t, 2, c.Workers)
	// Untouched keys keep their defaults.
	assert.Equal(t, 1e-6, c.Solver.Accuracy)
	assert.Equal(t, "USGOVTBOND", c.Bond.Calendar)
	assert.Equal(t, "info", c.Logging.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
