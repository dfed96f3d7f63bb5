package structure

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/gilchrisn/spreading-analysis/pkg/network"
)

type testGraph struct {
	Name  string
	Graph *network.Graph
}

func createTestGraphs(t *testing.T) []testGraph {
	t.Helper()

	// K4 with a pendant node hanging off node 0
	k4Pendant := network.Complete(4)
	k4Pendant = grow(k4Pendant, 1)
	k4Pendant.AddEdge(0, 4)

	// two triangles joined by a bridge
	bridged := network.NewGraph(6)
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 0}, {3, 4}, {4, 5}, {5, 3}, {2, 3}} {
		bridged.AddEdge(e[0], e[1])
	}

	ba, err := network.Generate(network.ModelConfig{Model: network.ModelBarabasiAlbert, Nodes: 200, M: 3, Seed: 11})
	require.NoError(t, err)

	er, err := network.Generate(network.ModelConfig{Model: network.ModelErdosRenyi, Nodes: 150, P: 0.05, Seed: 5})
	require.NoError(t, err)

	return []testGraph{
		{"SingleNode", network.NewGraph(1)},
		{"Star", network.Star(5)},
		{"Path", network.Path(6)},
		{"Cycle", network.Cycle(5)},
		{"K4", network.Complete(4)},
		{"K4Pendant", k4Pendant},
		{"BridgedTriangles", bridged},
		{"BarabasiAlbert", ba},
		{"ErdosRenyi", er},
	}
}

// grow returns a copy of g with extra isolated nodes appended
func grow(g *network.Graph, extra int) *network.Graph {
	out := network.NewGraph(g.NumNodes + extra)
	for _, e := range g.Edges() {
		out.AddEdge(e[0], e[1])
	}
	return out
}

func TestCorenessMatchesDegeneracyOrdering(t *testing.T) {
	for _, tg := range createTestGraphs(t) {
		t.Run(tg.Name, func(t *testing.T) {
			d := Coreness(tg.Graph)

			_, cores := topo.DegeneracyOrdering(tg.Graph.ToUndirected())
			want := make([]int, tg.Graph.NumNodes)
			for k, nodes := range cores {
				for _, n := range nodes {
					want[n.ID()] = k
				}
			}

			if diff := cmp.Diff(want, d.Coreness); diff != "" {
				t.Errorf("coreness mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCorenessBoundedByDegree(t *testing.T) {
	for _, tg := range createTestGraphs(t) {
		t.Run(tg.Name, func(t *testing.T) {
			d := Coreness(tg.Graph)
			degrees := Degrees(tg.Graph)

			maxCore, maxDeg := 0, 0
			for v := range degrees {
				assert.LessOrEqual(t, d.Coreness[v], degrees[v], "node %d", v)
				maxCore = max(maxCore, d.Coreness[v])
				maxDeg = max(maxDeg, degrees[v])
			}
			assert.LessOrEqual(t, maxCore, maxDeg)
			assert.Equal(t, maxCore, d.FinalLayer)
		})
	}
}

func TestCorenessIsIdempotent(t *testing.T) {
	for _, tg := range createTestGraphs(t) {
		t.Run(tg.Name, func(t *testing.T) {
			first := Coreness(tg.Graph)
			second := Coreness(tg.Graph)
			assert.Equal(t, first, second)
		})
	}
}

func TestCorenessShells(t *testing.T) {
	k4Pendant := grow(network.Complete(4), 1)
	k4Pendant.AddEdge(0, 4)

	d := Coreness(k4Pendant)
	assert.Equal(t, []int{3, 3, 3, 3, 1}, d.Coreness)
	assert.Equal(t, 3, d.FinalLayer)
	require.Len(t, d.Shells, 4)
	assert.Empty(t, d.Shells[0])
	assert.Equal(t, []int{4}, d.Shells[1])
	assert.Empty(t, d.Shells[2], "empty intermediate shell is still visited")
	assert.Equal(t, []int{0, 1, 2, 3}, d.Shells[3])

	single := Coreness(network.NewGraph(1))
	assert.Equal(t, []int{0}, single.Coreness)
	assert.Equal(t, 0, single.FinalLayer)

	star := Coreness(network.Star(4))
	assert.Equal(t, []int{1, 1, 1, 1, 1}, star.Coreness)
}

func TestBetweenness(t *testing.T) {
	tests := []struct {
		name  string
		graph *network.Graph
		want  []float64
	}{
		{"Star", network.Star(4), []float64{1, 0, 0, 0, 0}},
		{"Path3", network.Path(3), []float64{0, 1, 0}},
		{"Path4", network.Path(4), []float64{0, 2.0 / 3.0, 2.0 / 3.0, 0}},
		{"K4", network.Complete(4), []float64{0, 0, 0, 0}},
		{"Pair", network.Path(2), []float64{0, 0}},
		{"Cycle5", network.Cycle(5), []float64{1.0 / 6, 1.0 / 6, 1.0 / 6, 1.0 / 6, 1.0 / 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Betweenness(tt.graph)
			assert.True(t, floats.EqualApprox(tt.want, got, 1e-12), "got %v want %v", got, tt.want)
			for _, c := range got {
				assert.GreaterOrEqual(t, c, 0.0)
				assert.LessOrEqual(t, c, 1.0)
			}
		})
	}
}

func TestPageRank(t *testing.T) {
	ranks := PageRank(network.Cycle(6), 0.85, 1e-8)
	require.Len(t, ranks, 6)
	assert.InDelta(t, 1.0, floats.Sum(ranks), 1e-6)
	for _, r := range ranks {
		assert.InDelta(t, 1.0/6, r, 1e-6)
	}

	star := PageRank(network.Star(5), 0.85, 1e-8)
	for _, r := range star[1:] {
		assert.Greater(t, star[0], r)
	}
}

func TestCompute(t *testing.T) {
	g := network.Star(3)
	g.Name = "star"

	m, err := Compute(context.Background(), g, DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []int{3, 1, 1, 1}, m.Degrees)
	assert.Equal(t, []int{1, 1, 1, 1}, m.Corenesses)
	assert.Equal(t, 1, m.FinalLayer)
	assert.Equal(t, []int{0, 1, 2, 3}, m.OuterShell())
	assert.Equal(t, 3, m.MaxDegree())
	assert.Equal(t, []int{0, 4}, m.ShellSizes())

	profiles, err := m.Profiles(g)
	require.NoError(t, err)
	require.Len(t, profiles, 4)
	assert.Equal(t, Profile{Node: 0, Label: "0", Degree: 3, Coreness: 1, Centrality: 1, PageRank: m.PageRanks[0]}, profiles[0])

	_, err = Compute(context.Background(), network.NewGraph(0), DefaultOptions(), zerolog.Nop())
	assert.ErrorIs(t, err, network.ErrEmptyGraph)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Compute(ctx, g, DefaultOptions(), zerolog.Nop())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProfilesLengthMismatch(t *testing.T) {
	m := &Metrics{Degrees: []int{1}}
	_, err := m.Profiles(network.Path(2))
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{4, 1, 3, 2})
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.InDelta(t, 1.118034, s.StdDev, 1e-6)

	assert.Equal(t, Summary{}, Summarize(nil))

	g := network.Star(4)
	m, err := Compute(context.Background(), g, Options{SkipRanking: true}, zerolog.Nop())
	require.NoError(t, err)

	ns := m.Summarize(g)
	assert.Equal(t, 5, ns.NumNodes)
	assert.Equal(t, int64(10), ns.MaxPossibleEdges)
	assert.InDelta(t, 0.4, ns.Density, 1e-12)
	assert.Equal(t, 4.0, ns.Degree.Max)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, m.PageRanks)
}
