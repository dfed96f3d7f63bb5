package structure

import (
	"sort"

	"github.com/gilchrisn/spreading-analysis/pkg/network"
)

// Decomposition is the k-shell decomposition of a graph
type Decomposition struct {
	Coreness   []int   // coreness[v] = shell index of node v
	Shells     [][]int // shells[k] = nodes with coreness k, ascending
	FinalLayer int     // highest non-empty shell
}

// Coreness computes the k-shell decomposition by iterative stripping. At
// level k every remaining node whose remaining degree is at most k is
// removed and labelled k, repeatedly, until none is left at that level;
// then k grows until the graph is empty. The label equals the node's core
// number: the largest k such that the node belongs to the k-core.
func Coreness(g *network.Graph) Decomposition {
	n := g.NumNodes
	d := Decomposition{Coreness: make([]int, n)}
	if n == 0 {
		return d
	}

	remaining := make([]int, n)
	removed := make([]bool, n)
	for v := 0; v < n; v++ {
		remaining[v] = g.Degree(v)
	}

	left := n
	queue := make([]int, 0, n)
	for k := 0; left > 0; k++ {
		var shell []int

		queue = queue[:0]
		for v := 0; v < n; v++ {
			if !removed[v] && remaining[v] <= k {
				queue = append(queue, v)
				removed[v] = true
			}
		}

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]

			d.Coreness[v] = k
			shell = append(shell, v)
			left--

			for _, nb := range g.Neighbors(v) {
				if removed[nb] {
					continue
				}
				remaining[nb]--
				if remaining[nb] <= k {
					removed[nb] = true
					queue = append(queue, nb)
				}
			}
		}

		sort.Ints(shell)
		d.Shells = append(d.Shells, shell)
		if len(shell) > 0 {
			d.FinalLayer = k
		}
	}
	return d
}
