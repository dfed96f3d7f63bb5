package structure

import (
	"gonum.org/v1/gonum/graph/network"

	spnet "github.com/gilchrisn/spreading-analysis/pkg/network"
)

// Degrees returns the degree of every node
func Degrees(g *spnet.Graph) []int {
	degrees := make([]int, g.NumNodes)
	for v := range degrees {
		degrees[v] = g.Degree(v)
	}
	return degrees
}

// Betweenness returns normalized shortest-path betweenness for every node.
// The raw score sums over ordered (s, t) pairs, so dividing by (n-1)(n-2)
// gives values in [0, 1]. Graphs with two nodes or fewer score zero.
func Betweenness(g *spnet.Graph) []float64 {
	n := g.NumNodes
	centralities := make([]float64, n)
	if n <= 2 {
		return centralities
	}

	scale := 1 / float64((n-1)*(n-2))
	for id, raw := range network.Betweenness(g.ToUndirected()) {
		centralities[id] = raw * scale
	}
	return centralities
}

// PageRank returns the PageRank score of every node, treating each
// undirected edge as a pair of arcs
func PageRank(g *spnet.Graph, damping, tolerance float64) []float64 {
	scores := make([]float64, g.NumNodes)
	if g.NumNodes == 0 {
		return scores
	}
	for id, score := range network.PageRank(g.ToDirected(), damping, tolerance) {
		scores[id] = score
	}
	return scores
}
