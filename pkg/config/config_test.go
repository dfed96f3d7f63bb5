package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/spreading-analysis/pkg/epidemic"
	"github.com/gilchrisn/spreading-analysis/pkg/network"
)

func TestDefaults(t *testing.T) {
	c := NewConfig()

	assert.Equal(t, "power", c.NetworkName())
	assert.Equal(t, "data/power.gml", c.NetworkPath())
	assert.Equal(t, 0.65, c.Beta())
	assert.Equal(t, 1.0, c.Gamma())
	assert.Equal(t, 30, c.Iterations())
	assert.Equal(t, 50, c.Repetitions())
	assert.Equal(t, uint64(42), c.RandomSeed())
	assert.Equal(t, "debugging", c.DebugDir())
	assert.Equal(t, time.Second, c.ProgressInterval())
	assert.Equal(t, 2000, c.LayoutMaxNodes())

	s, err := c.Simulation()
	require.NoError(t, err)
	assert.Equal(t, epidemic.SIR, s.Model)
	assert.Equal(t, epidemic.Params{Beta: 0.65, Gamma: 1, Lambda: 0.8, Iterations: 30}, s.Params)
	assert.GreaterOrEqual(t, s.Workers, 1)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spread.yaml")
	content := `
network:
  name: email
  path: data/{name}.txt
epidemic:
  beta: 0.29
simulation:
  repetitions: 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c := NewConfig()
	require.NoError(t, c.LoadFromFile(path))
	assert.Equal(t, "data/email.txt", c.NetworkPath())
	assert.Equal(t, 0.29, c.Beta())
	assert.Equal(t, 100, c.Repetitions())
	assert.Equal(t, 30, c.Iterations(), "unset keys keep their defaults")

	assert.Error(t, NewConfig().LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("SPREAD_EPIDEMIC_BETA", "0.4")
	t.Setenv("SPREAD_PERFORMANCE_NUM_WORKERS", "3")

	c := NewConfig()
	assert.Equal(t, 0.4, c.Beta())
	assert.Equal(t, 3, c.NumWorkers())

	c.Set("epidemic.beta", 0.9)
	assert.Equal(t, 0.9, c.Beta(), "explicit values win over the environment")
}

func TestSimulationValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   interface{}
		message string
	}{
		{"beta above one", "epidemic.beta", 1.5, "beta must be at most 1"},
		{"negative gamma", "epidemic.gamma", -0.1, "gamma must be at least 0"},
		{"no iterations", "simulation.iterations", 0, "iterations must be at least 1"},
		{"no repetitions", "simulation.repetitions", 0, "repetitions must be at least 1"},
		{"unknown model", "epidemic.model", "seir", "model must be one of"},
		{"empty network", "network.name", "", "network is required"},
		{"zero fraction", "epidemic.fraction_infected", 0.0, "fractioninfected must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig()
			c.Set(tt.key, tt.value)
			_, err := c.Simulation()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestGeneratorConfig(t *testing.T) {
	c := NewConfig()
	_, ok, err := c.GeneratorConfig()
	require.NoError(t, err)
	assert.False(t, ok)

	c.Set("network.model", "ba")
	c.Set("network.model_nodes", 200)
	cfg, ok, err := c.GeneratorConfig()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, network.ModelConfig{Model: network.ModelBarabasiAlbert, Nodes: 200, P: 0.1, M: 2, Degree: 5, Seed: 42}, cfg)

	c.Set("network.model", "lattice")
	_, _, err = c.GeneratorConfig()
	assert.Error(t, err)
}

func TestCreateLogger(t *testing.T) {
	c := NewConfig()
	c.Set("logging.level", "debug")
	assert.Equal(t, zerolog.DebugLevel, c.CreateLogger().GetLevel())

	c.Set("logging.level", "nonsense")
	assert.Equal(t, zerolog.InfoLevel, c.CreateLogger().GetLevel())
}

func TestAllSettings(t *testing.T) {
	c := NewConfig()
	settings := c.AllSettings()
	require.Contains(t, settings, "epidemic")
	assert.Equal(t, 0.65, settings["epidemic"].(map[string]interface{})["beta"])
}
