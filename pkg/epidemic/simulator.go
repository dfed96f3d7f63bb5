// Package epidemic simulates discrete-time SIR and SIS spreading on a
// network. Every step is synchronous: transitions depend only on the state
// at the start of the step, and all randomness comes from the generator
// passed to Run.
package epidemic

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/gilchrisn/spreading-analysis/pkg/network"
)

// State is the compartment of one node
type State uint8

const (
	Susceptible State = iota
	Infected
	Recovered
)

func (s State) String() string {
	switch s {
	case Susceptible:
		return "S"
	case Infected:
		return "I"
	case Recovered:
		return "R"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Counts is the number of nodes in each compartment
type Counts struct {
	Susceptible int `json:"susceptible"`
	Infected    int `json:"infected"`
	Recovered   int `json:"recovered"`
}

// Outcome is the result of one simulated outbreak. The outbreak size of an
// SIR run is Recovered.
type Outcome struct {
	Counts
	Steps int      `json:"steps"`
	Trend []Counts `json:"trend,omitempty"` // trend[0] is the initial state, trend[i] the state after step i
}

// Simulator runs outbreaks on one graph. It reuses its buffers between
// runs and is not safe for concurrent use; use one per goroutine.
type Simulator struct {
	graph       *network.Graph
	params      Params
	model       Model
	recordTrend bool

	state    []State
	infected []int
	next     []int
	counts   Counts
}

// NewSimulator validates the parameters and prepares a simulator
func NewSimulator(g *network.Graph, model Model, params Params) (*Simulator, error) {
	if g == nil || g.NumNodes == 0 {
		return nil, network.ErrEmptyGraph
	}
	if model != SIR && model != SIS {
		return nil, fmt.Errorf("%w: unknown model %q", ErrInvalidParams, model)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Simulator{
		graph:  g,
		params: params,
		model:  model,
		state:  make([]State, g.NumNodes),
	}, nil
}

// RecordTrend enables per-step counts in outcomes
func (s *Simulator) RecordTrend(enabled bool) *Simulator {
	s.recordTrend = enabled
	return s
}

// Reset returns every node to Susceptible
func (s *Simulator) Reset() {
	for i := range s.state {
		s.state[i] = Susceptible
	}
	s.infected = s.infected[:0]
	s.next = s.next[:0]
	s.counts = Counts{Susceptible: len(s.state)}
}

// State returns the compartment of a node after the last run
func (s *Simulator) State(node int) State {
	return s.state[node]
}

// Run infects the seed nodes and steps the model until no node is
// infected or the iteration cap is reached. Each run starts from a fresh
// all-susceptible state.
func (s *Simulator) Run(seeds []int, rng *rand.Rand) (Outcome, error) {
	if len(seeds) == 0 {
		return Outcome{}, fmt.Errorf("%w: no seed nodes", ErrOrigin)
	}

	s.Reset()
	for _, v := range seeds {
		if v < 0 || v >= len(s.state) {
			return Outcome{}, fmt.Errorf("%w: node %d not in [0, %d)", ErrOrigin, v, len(s.state))
		}
		if s.state[v] == Infected {
			continue
		}
		s.state[v] = Infected
		s.infected = append(s.infected, v)
		s.counts.Susceptible--
		s.counts.Infected++
	}
	sort.Ints(s.infected)

	var out Outcome
	if s.recordTrend {
		out.Trend = make([]Counts, 0, s.params.Iterations+1)
		out.Trend = append(out.Trend, s.counts)
	}

	for out.Steps < s.params.Iterations && len(s.infected) > 0 {
		s.step(rng)
		out.Steps++
		if s.recordTrend {
			out.Trend = append(out.Trend, s.counts)
		}
	}

	out.Counts = s.counts
	return out, nil
}

// step advances one synchronous step. Only nodes infected at the start of
// the step transmit; a node infected during the step becomes infectious in
// the next one. Transmission happens before the infector's own transition,
// so a node that recovers this step still gets to infect.
func (s *Simulator) step(rng *rand.Rand) {
	beta := s.params.Beta
	s.next = s.next[:0]

	for _, u := range s.infected {
		for _, v := range s.graph.Neighbors(u) {
			if s.state[v] != Susceptible {
				continue
			}
			if rng.Float64() < beta {
				s.state[v] = Infected
				s.next = append(s.next, v)
			}
		}
	}
	newlyInfected := len(s.next)

	leave := s.params.Gamma
	target := Recovered
	if s.model == SIS {
		leave = s.params.Lambda
		target = Susceptible
	}

	for _, u := range s.infected {
		if rng.Float64() < leave {
			s.state[u] = target
			s.counts.Infected--
			if target == Recovered {
				s.counts.Recovered++
			} else {
				s.counts.Susceptible++
			}
			continue
		}
		s.next = append(s.next, u)
	}

	s.counts.Susceptible -= newlyInfected
	s.counts.Infected += newlyInfected

	s.infected, s.next = s.next, s.infected
	sort.Ints(s.infected)
}

// RunSIR simulates a single SIR outbreak seeded at origin
func RunSIR(g *network.Graph, origin int, params Params, rng *rand.Rand) (Outcome, error) {
	sim, err := NewSimulator(g, SIR, params)
	if err != nil {
		return Outcome{}, err
	}
	return sim.RecordTrend(true).Run([]int{origin}, rng)
}

// RunSIS simulates a single SIS outbreak from the given seed nodes
func RunSIS(g *network.Graph, seeds []int, params Params, rng *rand.Rand) (Outcome, error) {
	sim, err := NewSimulator(g, SIS, params)
	if err != nil {
		return Outcome{}, err
	}
	return sim.RecordTrend(true).Run(seeds, rng)
}

// SeedFraction picks round(fraction*n) distinct nodes, at least one, in
// ascending order
func SeedFraction(n int, fraction float64, rng *rand.Rand) ([]int, error) {
	if n <= 0 {
		return nil, network.ErrEmptyGraph
	}
	if fraction < 0 || fraction > 1 {
		return nil, fmt.Errorf("%w: fraction %v not in [0, 1]", ErrInvalidParams, fraction)
	}

	k := int(fraction*float64(n) + 0.5)
	if k < 1 {
		k = 1
	}
	seeds := rng.Perm(n)[:k]
	sort.Ints(seeds)
	return seeds, nil
}
