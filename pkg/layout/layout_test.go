package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"

	"github.com/gilchrisn/spreading-analysis/pkg/network"
)

var _ plotter.XYer = (*Layout)(nil)

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func TestMDSReproducesPathDistances(t *testing.T) {
	g := network.Path(5)
	l, err := MDS(g, 0)
	require.NoError(t, err)
	require.Equal(t, 5, l.Len())
	assert.Equal(t, MethodMDS, l.Method)

	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			assert.InDelta(t, float64(j-i), distance(l.Points[i], l.Points[j]), 1e-6, "pair %d-%d", i, j)
		}
	}
}

func TestMDSSingleNode(t *testing.T) {
	l, err := MDS(network.NewGraph(1), 0)
	require.NoError(t, err)
	assert.Equal(t, []Point{{}}, l.Points)
	assert.Equal(t, Point{X: 0.5, Y: 0.5}, l.Normalized(0))

	_, err = MDS(network.NewGraph(0), 0)
	assert.ErrorIs(t, err, network.ErrEmptyGraph)
}

func TestHopDistances(t *testing.T) {
	// two components: 0-1-2 and 3-4
	g := network.NewGraph(5)
	for _, e := range [][2]int{{0, 1}, {1, 2}, {3, 4}} {
		_, err := g.AddEdge(e[0], e[1])
		require.NoError(t, err)
	}

	d := HopDistances(g, 0)
	assert.Equal(t, 2.0, d.At(0, 2))
	assert.Equal(t, 2.0, d.At(2, 0))
	assert.Equal(t, 1.0, d.At(3, 4))
	assert.Equal(t, 3.0, d.At(0, 3), "unreachable is the diameter plus one")
	assert.Equal(t, 0.0, d.At(1, 1))

	d = HopDistances(g, 10)
	assert.Equal(t, 10.0, d.At(2, 4))
}

func TestShells(t *testing.T) {
	// node 0 alone in the top core, nodes 1-4 on the outer ring
	l := Shells([]int{2, 1, 1, 1, 1})
	assert.Equal(t, MethodShells, l.Method)
	assert.Equal(t, Point{}, l.Points[0])
	for v := 1; v < 5; v++ {
		assert.InDelta(t, 2.0/3.0, distance(Point{}, l.Points[v]), 1e-12)
	}
}

func TestComputeFallsBackToShells(t *testing.T) {
	g := network.Star(4)

	l, err := Compute(g, []int{1, 1, 1, 1, 1}, Options{MaxNodes: 3})
	require.NoError(t, err)
	assert.Equal(t, MethodShells, l.Method)

	_, err = Compute(g, nil, Options{MaxNodes: 3})
	assert.Error(t, err)

	l, err = Compute(g, nil, Options{MaxNodes: 10})
	require.NoError(t, err)
	assert.Equal(t, MethodMDS, l.Method)
}

func TestNormalized(t *testing.T) {
	l, err := MDS(network.Cycle(6), 0)
	require.NoError(t, err)

	for v := 0; v < l.Len(); v++ {
		p := l.Normalized(v)
		assert.GreaterOrEqual(t, p.X, 0.0)
		assert.LessOrEqual(t, p.X, 1.0)
		assert.GreaterOrEqual(t, p.Y, 0.0)
		assert.LessOrEqual(t, p.Y, 1.0)
	}
	x, y := l.XY(0)
	assert.Equal(t, l.Points[0], Point{X: x, Y: y})
}
