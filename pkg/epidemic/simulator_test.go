package epidemic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/spreading-analysis/pkg/network"
)

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"Defaults", Params{Beta: 0.65, Gamma: 1, Lambda: 0.8, Iterations: 30}, false},
		{"Boundaries", Params{Beta: 0, Gamma: 0, Lambda: 1, Iterations: 1}, false},
		{"BetaAboveOne", Params{Beta: 1.2, Gamma: 1, Iterations: 10}, true},
		{"NegativeGamma", Params{Beta: 0.5, Gamma: -0.1, Iterations: 10}, true},
		{"NoIterations", Params{Beta: 0.5, Gamma: 1, Iterations: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestZeroBetaInfectsOnlyOrigin(t *testing.T) {
	g, err := network.Generate(network.ModelConfig{Model: network.ModelBarabasiAlbert, Nodes: 60, M: 2, Seed: 3})
	require.NoError(t, err)

	params := Params{Beta: 0, Gamma: 1, Iterations: 30}
	for origin := 0; origin < g.NumNodes; origin++ {
		for rep := 0; rep < 5; rep++ {
			out, err := RunSIR(g, origin, params, NewRand(42, TrialStream(origin, rep)))
			require.NoError(t, err)
			assert.Equal(t, 1, out.Recovered)
			assert.Equal(t, 1, out.Steps)
		}
	}
}

func TestStarFromHub(t *testing.T) {
	for _, leaves := range []int{1, 4, 25} {
		g := network.Star(leaves)
		out, err := RunSIR(g, 0, Params{Beta: 1, Gamma: 1, Iterations: 30}, NewRand(1, 1))
		require.NoError(t, err)

		assert.Equal(t, leaves+1, out.Recovered)
		assert.Equal(t, 0, out.Infected)
		require.GreaterOrEqual(t, len(out.Trend), 2)
		// every leaf is infected by the end of the first step
		assert.Equal(t, Counts{Susceptible: 0, Infected: leaves, Recovered: 1}, out.Trend[1])
	}
}

func TestCycleFullSpread(t *testing.T) {
	g := network.Cycle(5)
	params := Params{Beta: 1, Gamma: 1, Iterations: 30}

	for origin := 0; origin < 5; origin++ {
		out, err := RunSIR(g, origin, params, NewRand(7, TrialStream(origin, 0)))
		require.NoError(t, err)
		assert.Equal(t, 5, out.Recovered)
		assert.Equal(t, 3, out.Steps)
		assert.Equal(t, []Counts{
			{Susceptible: 4, Infected: 1, Recovered: 0},
			{Susceptible: 2, Infected: 2, Recovered: 1},
			{Susceptible: 0, Infected: 2, Recovered: 3},
			{Susceptible: 0, Infected: 0, Recovered: 5},
		}, out.Trend)
	}
}

func TestNewlyInfectedWaitOneStep(t *testing.T) {
	// on a path from one end with beta=1, exactly one new node per step
	g := network.Path(6)
	out, err := RunSIR(g, 0, Params{Beta: 1, Gamma: 1, Iterations: 3}, NewRand(1, 2))
	require.NoError(t, err)

	assert.Equal(t, 3, out.Steps)
	assert.Equal(t, 3, out.Recovered)
	assert.Equal(t, 1, out.Infected, "iteration cap stops the run with one node still infected")
	assert.Equal(t, 2, out.Susceptible)
}

func TestNoRecoveryKeepsInfected(t *testing.T) {
	g := network.Complete(5)
	out, err := RunSIR(g, 2, Params{Beta: 1, Gamma: 0, Iterations: 10}, NewRand(1, 3))
	require.NoError(t, err)

	assert.Equal(t, 10, out.Steps)
	assert.Equal(t, 5, out.Infected)
	assert.Equal(t, 0, out.Recovered)
}

func TestCountsAreConserved(t *testing.T) {
	g, err := network.Generate(network.ModelConfig{Model: network.ModelSmallWorld, Nodes: 80, Degree: 3, P: 0.2, Seed: 9})
	require.NoError(t, err)

	for _, model := range []Model{SIR, SIS} {
		sim, err := NewSimulator(g, model, Params{Beta: 0.4, Gamma: 0.5, Lambda: 0.3, Iterations: 40})
		require.NoError(t, err)
		sim.RecordTrend(true)

		out, err := sim.Run([]int{0, 10, 20}, NewRand(5, 5))
		require.NoError(t, err)
		for i, c := range out.Trend {
			assert.Equal(t, g.NumNodes, c.Susceptible+c.Infected+c.Recovered, "%s step %d", model, i)
			if model == SIS {
				assert.Zero(t, c.Recovered)
			}
		}
		if model == SIR {
			for i := 1; i < len(out.Trend); i++ {
				assert.GreaterOrEqual(t, out.Trend[i].Recovered, out.Trend[i-1].Recovered)
				assert.LessOrEqual(t, out.Trend[i].Susceptible, out.Trend[i-1].Susceptible)
			}
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	g, err := network.Generate(network.ModelConfig{Model: network.ModelErdosRenyi, Nodes: 100, P: 0.05, Seed: 2})
	require.NoError(t, err)

	params := Params{Beta: 0.3, Gamma: 0.6, Iterations: 30}
	sim, err := NewSimulator(g, SIR, params)
	require.NoError(t, err)

	first, err := sim.Run([]int{4}, NewRand(99, TrialStream(4, 17)))
	require.NoError(t, err)

	// an unrelated run in between must not leak state
	_, err = sim.Run([]int{50}, NewRand(1, 1))
	require.NoError(t, err)

	second, err := sim.Run([]int{4}, NewRand(99, TrialStream(4, 17)))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunRejectsBadSeeds(t *testing.T) {
	g := network.Path(3)
	sim, err := NewSimulator(g, SIR, Params{Beta: 0.5, Gamma: 1, Iterations: 5})
	require.NoError(t, err)

	_, err = sim.Run(nil, NewRand(1, 1))
	assert.ErrorIs(t, err, ErrOrigin)

	_, err = sim.Run([]int{3}, NewRand(1, 1))
	assert.ErrorIs(t, err, ErrOrigin)

	_, err = NewSimulator(network.NewGraph(0), SIR, Params{Iterations: 1})
	assert.ErrorIs(t, err, network.ErrEmptyGraph)

	_, err = NewSimulator(g, Model("seir"), Params{Iterations: 1})
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = ParseModel("seir")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestSISReturnsToSusceptible(t *testing.T) {
	g := network.Star(3)
	out, err := RunSIS(g, []int{0}, Params{Beta: 0, Lambda: 1, Iterations: 5}, NewRand(3, 3))
	require.NoError(t, err)

	assert.Equal(t, 1, out.Steps)
	assert.Equal(t, Counts{Susceptible: 4}, out.Counts)
	assert.Equal(t, "S", Susceptible.String())
	assert.Equal(t, "R", Recovered.String())
}

func TestSeedFraction(t *testing.T) {
	rng := NewRand(8, 8)

	seeds, err := SeedFraction(100, 0.1, rng)
	require.NoError(t, err)
	assert.Len(t, seeds, 10)
	assert.IsIncreasing(t, seeds)

	seeds, err = SeedFraction(5, 0.01, rng)
	require.NoError(t, err)
	assert.Len(t, seeds, 1, "at least one node is seeded")

	_, err = SeedFraction(5, 1.5, rng)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = SeedFraction(0, 0.5, rng)
	assert.ErrorIs(t, err, network.ErrEmptyGraph)
}

func TestTrialStreamsDiffer(t *testing.T) {
	seen := make(map[uint64]bool)
	for origin := 0; origin < 50; origin++ {
		for rep := 0; rep < 50; rep++ {
			s := TrialStream(origin, rep)
			assert.False(t, seen[s], "stream collision at origin %d rep %d", origin, rep)
			seen[s] = true
		}
	}
}
