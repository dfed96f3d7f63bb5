// Package structure computes the structural position of every node in a
// network: degree, normalized betweenness centrality, k-shell coreness and
// PageRank.
package structure

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/spreading-analysis/pkg/network"
)

// Profile is the immutable structural record of one node
type Profile struct {
	Node       int     `json:"node"`
	Label      string  `json:"label"`
	Degree     int     `json:"degree"`
	Coreness   int     `json:"coreness"`
	Centrality float64 `json:"centrality"`
	PageRank   float64 `json:"pagerank"`
}

// Metrics holds per-node metrics as parallel slices indexed by node
type Metrics struct {
	Degrees      []int
	Corenesses   []int
	Centralities []float64
	PageRanks    []float64
	FinalLayer   int
	Shells       [][]int
}

// Options controls which metrics Compute evaluates
type Options struct {
	Damping     float64
	Tolerance   float64
	SkipRanking bool
}

// DefaultOptions returns the standard PageRank settings
func DefaultOptions() Options {
	return Options{
		Damping:   0.85,
		Tolerance: 1e-6,
	}
}

// Compute evaluates all structural metrics for g. Betweenness dominates the
// cost, so ctx is checked between metrics.
func Compute(ctx context.Context, g *network.Graph, opts Options, logger zerolog.Logger) (*Metrics, error) {
	if g == nil || g.NumNodes == 0 {
		return nil, network.ErrEmptyGraph
	}

	start := time.Now()
	m := &Metrics{Degrees: Degrees(g)}

	d := Coreness(g)
	m.Corenesses = d.Coreness
	m.Shells = d.Shells
	m.FinalLayer = d.FinalLayer
	logger.Debug().Int("final_layer", m.FinalLayer).Msg("Shell decomposition complete")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	betweennessStart := time.Now()
	m.Centralities = Betweenness(g)
	logger.Debug().Dur("duration", time.Since(betweennessStart)).Msg("Betweenness complete")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.SkipRanking {
		m.PageRanks = make([]float64, g.NumNodes)
	} else {
		m.PageRanks = PageRank(g, opts.Damping, opts.Tolerance)
	}

	logger.Info().
		Str("network", g.Name).
		Int("nodes", g.NumNodes).
		Int("edges", g.NumEdges).
		Int("final_layer", m.FinalLayer).
		Dur("duration", time.Since(start)).
		Msg("Structural metrics computed")

	return m, nil
}

// Profiles returns one record per node
func (m *Metrics) Profiles(g *network.Graph) ([]Profile, error) {
	if err := m.check(g.NumNodes); err != nil {
		return nil, err
	}

	profiles := make([]Profile, g.NumNodes)
	for v := range profiles {
		profiles[v] = Profile{
			Node:       v,
			Label:      g.Label(v),
			Degree:     m.Degrees[v],
			Coreness:   m.Corenesses[v],
			Centrality: m.Centralities[v],
			PageRank:   m.PageRanks[v],
		}
	}
	return profiles, nil
}

func (m *Metrics) check(n int) error {
	if len(m.Degrees) != n || len(m.Corenesses) != n || len(m.Centralities) != n || len(m.PageRanks) != n {
		return fmt.Errorf("metrics cover %d/%d/%d/%d nodes, graph has %d",
			len(m.Degrees), len(m.Corenesses), len(m.Centralities), len(m.PageRanks), n)
	}
	return nil
}

// OuterShell returns the nodes in the highest shell
func (m *Metrics) OuterShell() []int {
	if m.FinalLayer >= len(m.Shells) {
		return nil
	}
	return m.Shells[m.FinalLayer]
}

// MaxDegree returns the largest degree
func (m *Metrics) MaxDegree() int {
	maxDeg := 0
	for _, d := range m.Degrees {
		if d > maxDeg {
			maxDeg = d
		}
	}
	return maxDeg
}

// ShellSizes returns the number of nodes in each shell, indexed by k
func (m *Metrics) ShellSizes() []int {
	sizes := make([]int, len(m.Shells))
	for k, s := range m.Shells {
		sizes[k] = len(s)
	}
	return sizes
}
