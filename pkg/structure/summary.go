package structure

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gilchrisn/spreading-analysis/pkg/network"
)

// Summary describes the distribution of one per-node metric
type Summary struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	P25    float64 `json:"p25" yaml:"p25"`
	Median float64 `json:"median" yaml:"median"`
	P75    float64 `json:"p75" yaml:"p75"`
	P90    float64 `json:"p90" yaml:"p90"`
	P95    float64 `json:"p95" yaml:"p95"`
}

// NetworkSummary describes a network and its metric distributions
type NetworkSummary struct {
	Name             string  `json:"name" yaml:"name"`
	NumNodes         int     `json:"num_nodes" yaml:"num_nodes"`
	NumEdges         int     `json:"num_edges" yaml:"num_edges"`
	Density          float64 `json:"density" yaml:"density"`
	MaxPossibleEdges int64   `json:"max_possible_edges" yaml:"max_possible_edges"`
	FinalLayer       int     `json:"final_layer" yaml:"final_layer"`
	ShellSizes       []int   `json:"shell_sizes" yaml:"shell_sizes"`
	Degree           Summary `json:"degree" yaml:"degree"`
	Coreness         Summary `json:"coreness" yaml:"coreness"`
	Centrality       Summary `json:"centrality" yaml:"centrality"`
}

// Summarize computes distribution statistics. The standard deviation is
// the population one; an empty input gives a zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	return Summary{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		P25:    stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		Median: stat.Quantile(0.50, stat.LinInterp, sorted, nil),
		P75:    stat.Quantile(0.75, stat.LinInterp, sorted, nil),
		P90:    stat.Quantile(0.90, stat.LinInterp, sorted, nil),
		P95:    stat.Quantile(0.95, stat.LinInterp, sorted, nil),
	}
}

// Summarize builds the network summary from computed metrics
func (m *Metrics) Summarize(g *network.Graph) NetworkSummary {
	s := NetworkSummary{
		Name:       g.Name,
		NumNodes:   g.NumNodes,
		NumEdges:   g.NumEdges,
		FinalLayer: m.FinalLayer,
		ShellSizes: m.ShellSizes(),
		Degree:     Summarize(IntsToFloats(m.Degrees)),
		Coreness:   Summarize(IntsToFloats(m.Corenesses)),
		Centrality: Summarize(m.Centralities),
	}

	s.MaxPossibleEdges = int64(g.NumNodes) * int64(g.NumNodes-1) / 2
	if s.MaxPossibleEdges > 0 {
		s.Density = float64(g.NumEdges) / float64(s.MaxPossibleEdges)
	}
	return s
}

// IntsToFloats converts an int slice for use with float APIs
func IntsToFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
