package network

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrEmptyGraph is returned when a graph has no nodes left to analyse.
	ErrEmptyGraph = errors.New("graph has no nodes")
	// ErrMalformedInput is returned when an input file cannot be parsed.
	ErrMalformedInput = errors.New("malformed graph input")
	// ErrUnsupportedFormat is returned for unknown file formats.
	ErrUnsupportedFormat = errors.New("unsupported graph format")
)

// Graph represents a simple undirected graph using index-addressed arrays
type Graph struct {
	Name      string   `json:"name"`
	NumNodes  int      `json:"num_nodes"`
	NumEdges  int      `json:"num_edges"`
	Adjacency [][]int  `json:"-"`      // adjacency[i] = sorted neighbors of node i
	Labels    []string `json:"labels"` // labels[i] = original identifier of node i
}

// NewGraph creates a new graph with n nodes labelled by their index
func NewGraph(numNodes int) *Graph {
	labels := make([]string, numNodes)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", i)
	}
	return NewLabelledGraph(labels)
}

// NewLabelledGraph creates a graph with one node per label, in label order
func NewLabelledGraph(labels []string) *Graph {
	l := make([]string, len(labels))
	copy(l, labels)
	return &Graph{
		NumNodes:  len(labels),
		Adjacency: make([][]int, len(labels)),
		Labels:    l,
	}
}

// AddEdge adds an undirected edge between u and v. Self loops and
// duplicate edges are ignored; it reports whether an edge was added.
func (g *Graph) AddEdge(u, v int) (bool, error) {
	if u < 0 || u >= g.NumNodes || v < 0 || v >= g.NumNodes {
		return false, fmt.Errorf("node index out of range: u=%d, v=%d, numNodes=%d", u, v, g.NumNodes)
	}
	if u == v || g.HasEdge(u, v) {
		return false, nil
	}

	g.Adjacency[u] = insertSorted(g.Adjacency[u], v)
	g.Adjacency[v] = insertSorted(g.Adjacency[v], u)
	g.NumEdges++
	return true, nil
}

func insertSorted(s []int, x int) []int {
	i := sort.SearchInts(s, x)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = x
	return s
}

// HasEdge reports whether u and v are adjacent
func (g *Graph) HasEdge(u, v int) bool {
	if u < 0 || u >= g.NumNodes || v < 0 || v >= g.NumNodes {
		return false
	}
	adj := g.Adjacency[u]
	i := sort.SearchInts(adj, v)
	return i < len(adj) && adj[i] == v
}

// Neighbors returns the neighbors of a node. The slice must not be modified.
func (g *Graph) Neighbors(node int) []int {
	if node < 0 || node >= g.NumNodes {
		return nil
	}
	return g.Adjacency[node]
}

// Degree returns the number of neighbors of a node
func (g *Graph) Degree(node int) int {
	return len(g.Neighbors(node))
}

// Label returns the original identifier of a node
func (g *Graph) Label(node int) string {
	if node < 0 || node >= len(g.Labels) {
		return ""
	}
	return g.Labels[node]
}

// IndexOf returns the index of the node with the given label
func (g *Graph) IndexOf(label string) (int, bool) {
	for i, l := range g.Labels {
		if l == label {
			return i, true
		}
	}
	return -1, false
}

// Edges returns every edge once as a (u, v) pair with u < v
func (g *Graph) Edges() [][2]int {
	edges := make([][2]int, 0, g.NumEdges)
	for u := 0; u < g.NumNodes; u++ {
		for _, v := range g.Adjacency[u] {
			if u < v {
				edges = append(edges, [2]int{u, v})
			}
		}
	}
	return edges
}

// Clone creates a deep copy of the graph
func (g *Graph) Clone() *Graph {
	clone := NewLabelledGraph(g.Labels)
	clone.Name = g.Name
	clone.NumEdges = g.NumEdges
	for i := 0; i < g.NumNodes; i++ {
		clone.Adjacency[i] = make([]int, len(g.Adjacency[i]))
		copy(clone.Adjacency[i], g.Adjacency[i])
	}
	return clone
}

// Subgraph returns the graph induced by nodes, reindexed in the given order
func (g *Graph) Subgraph(nodes []int) *Graph {
	index := make(map[int]int, len(nodes))
	labels := make([]string, len(nodes))
	for i, n := range nodes {
		index[n] = i
		labels[i] = g.Label(n)
	}

	sub := NewLabelledGraph(labels)
	sub.Name = g.Name
	for i, n := range nodes {
		for _, nb := range g.Neighbors(n) {
			j, ok := index[nb]
			if !ok || j <= i {
				continue
			}
			sub.AddEdge(i, j)
		}
	}
	return sub
}

// Validate checks graph consistency
func (g *Graph) Validate() error {
	if g.NumNodes <= 0 {
		return ErrEmptyGraph
	}
	if len(g.Adjacency) != g.NumNodes || len(g.Labels) != g.NumNodes {
		return fmt.Errorf("adjacency/labels length mismatch: %d/%d for %d nodes",
			len(g.Adjacency), len(g.Labels), g.NumNodes)
	}

	edges := 0
	for i := 0; i < g.NumNodes; i++ {
		for j, neighbor := range g.Adjacency[i] {
			if neighbor < 0 || neighbor >= g.NumNodes {
				return fmt.Errorf("invalid neighbor %d for node %d", neighbor, i)
			}
			if neighbor == i {
				return fmt.Errorf("self loop on node %d", i)
			}
			if j > 0 && g.Adjacency[i][j-1] >= neighbor {
				return fmt.Errorf("adjacency of node %d is not strictly sorted", i)
			}
			if !g.HasEdge(neighbor, i) {
				return fmt.Errorf("graph is not symmetric: edge %d->%d", i, neighbor)
			}
			edges++
		}
	}
	if edges != 2*g.NumEdges {
		return fmt.Errorf("edge count mismatch: counted %d half-edges, expected %d", edges, 2*g.NumEdges)
	}
	return nil
}

// MaxDegree returns the largest degree in the graph
func (g *Graph) MaxDegree() int {
	maxDeg := 0
	for i := 0; i < g.NumNodes; i++ {
		if d := len(g.Adjacency[i]); d > maxDeg {
			maxDeg = d
		}
	}
	return maxDeg
}
