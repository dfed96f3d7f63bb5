package network

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// ToUndirected converts the graph to a gonum undirected graph. Gonum node
// IDs equal the node indices, so results keyed by ID map straight back.
func (g *Graph) ToUndirected() *simple.UndirectedGraph {
	ug := simple.NewUndirectedGraph()
	for i := 0; i < g.NumNodes; i++ {
		ug.AddNode(simple.Node(i))
	}
	for _, e := range g.Edges() {
		ug.SetEdge(simple.Edge{F: simple.Node(e[0]), T: simple.Node(e[1])})
	}
	return ug
}

// ToDirected converts the graph to a gonum directed graph with an arc in
// each direction for every undirected edge
func (g *Graph) ToDirected() *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for i := 0; i < g.NumNodes; i++ {
		dg.AddNode(simple.Node(i))
	}
	for _, e := range g.Edges() {
		dg.SetEdge(simple.Edge{F: simple.Node(e[0]), T: simple.Node(e[1])})
		dg.SetEdge(simple.Edge{F: simple.Node(e[1]), T: simple.Node(e[0])})
	}
	return dg
}

// FromGonum builds a Graph from any gonum undirected graph. Nodes are
// indexed in ascending ID order and labelled by label(id); a nil label
// function uses the decimal ID. Self loops are dropped.
func FromGonum(ug graph.Undirected, label func(id int64) string) *Graph {
	ids := sortedIDs(graph.NodesOf(ug.Nodes()))
	index := make(map[int64]int, len(ids))
	labels := make([]string, len(ids))
	for i, id := range ids {
		index[id] = i
		if label != nil {
			labels[i] = label(id)
		} else {
			labels[i] = formatID(id)
		}
	}

	g := NewLabelledGraph(labels)
	for i, id := range ids {
		to := ug.From(id)
		for to.Next() {
			j := index[to.Node().ID()]
			if j > i {
				g.AddEdge(i, j)
			}
		}
	}
	return g
}
