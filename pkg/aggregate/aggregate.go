// Package aggregate groups per-node outbreak sizes by structural position.
// Nodes are bucketed by exact (coreness, value) pairs, where value is the
// degree or the betweenness centrality; bucket means are reported as a
// percentage of the network size.
package aggregate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/gilchrisn/spreading-analysis/pkg/structure"
)

// ErrLengthMismatch is returned when per-node slices differ in length.
var ErrLengthMismatch = errors.New("per-node slices differ in length")

// Key identifies a bucket
type Key struct {
	Coreness int
	Value    float64
}

// Bucket accumulates the outbreak sizes of the nodes sharing a key
type Bucket struct {
	Count int
	Sum   float64
}

// Mean returns the average outbreak size in the bucket
func (b Bucket) Mean() float64 {
	if b.Count == 0 {
		return 0
	}
	return b.Sum / float64(b.Count)
}

// Table is a sparse (coreness, value) table. Only observed combinations
// are present.
type Table struct {
	Name    string
	Nodes   int
	buckets map[Key]*Bucket
}

// Cell is one populated entry of a table
type Cell struct {
	Key
	Count   int
	Mean    float64
	Percent float64
}

// Build groups M by the exact (coreness, value) pair of each node.
func Build(name string, m []float64, corenesses []int, values []float64) (*Table, error) {
	if len(m) != len(corenesses) || len(m) != len(values) {
		return nil, fmt.Errorf("%w: M=%d coreness=%d values=%d", ErrLengthMismatch, len(m), len(corenesses), len(values))
	}

	t := &Table{Name: name, Nodes: len(m), buckets: make(map[Key]*Bucket)}
	for v := range m {
		key := Key{Coreness: corenesses[v], Value: values[v]}
		b, ok := t.buckets[key]
		if !ok {
			b = &Bucket{}
			t.buckets[key] = b
		}
		b.Count++
		b.Sum += m[v]
	}
	return t, nil
}

// ByDegree builds the (coreness, degree) table
func ByDegree(m []float64, metrics *structure.Metrics) (*Table, error) {
	return Build("degree", m, metrics.Corenesses, structure.IntsToFloats(metrics.Degrees))
}

// ByCentrality builds the (coreness, betweenness centrality) table
func ByCentrality(m []float64, metrics *structure.Metrics) (*Table, error) {
	return Build("centrality", m, metrics.Corenesses, metrics.Centralities)
}

// Len returns the number of populated buckets
func (t *Table) Len() int {
	return len(t.buckets)
}

// Bucket returns the bucket for key, if any node falls in it
func (t *Table) Bucket(key Key) (Bucket, bool) {
	b, ok := t.buckets[key]
	if !ok {
		return Bucket{}, false
	}
	return *b, true
}

// Percent returns the bucket mean as a percentage of the network size.
// Absent buckets report ok=false rather than a zero.
func (t *Table) Percent(key Key) (float64, bool) {
	b, ok := t.buckets[key]
	if !ok || b.Count == 0 || t.Nodes == 0 {
		return 0, false
	}
	return b.Mean() / float64(t.Nodes) * 100, true
}

// Cells returns every populated bucket ordered by coreness, then value
func (t *Table) Cells() []Cell {
	cells := make([]Cell, 0, len(t.buckets))
	for key, b := range t.buckets {
		pct, _ := t.Percent(key)
		cells = append(cells, Cell{Key: key, Count: b.Count, Mean: b.Mean(), Percent: pct})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Coreness != cells[j].Coreness {
			return cells[i].Coreness < cells[j].Coreness
		}
		return cells[i].Value < cells[j].Value
	})
	return cells
}

// Corenesses returns the distinct coreness values, ascending
func (t *Table) Corenesses() []int {
	seen := make(map[int]bool)
	var out []int
	for key := range t.buckets {
		if !seen[key.Coreness] {
			seen[key.Coreness] = true
			out = append(out, key.Coreness)
		}
	}
	sort.Ints(out)
	return out
}

// Values returns the distinct attribute values, ascending
func (t *Table) Values() []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for key := range t.buckets {
		if !seen[key.Value] {
			seen[key.Value] = true
			out = append(out, key.Value)
		}
	}
	sort.Float64s(out)
	return out
}

// Total returns the sum of count*mean over all buckets
func (t *Table) Total() float64 {
	var total float64
	for _, b := range t.buckets {
		total += float64(b.Count) * b.Mean()
	}
	return total
}

// Grid returns the dense rendering of the table: rows are the distinct
// corenesses, columns the distinct values. Empty cells are NaN.
func (t *Table) Grid() *Grid {
	rows := t.Corenesses()
	cols := t.Values()

	g := &Grid{
		Rows:  rows,
		Cols:  cols,
		Cells: make([][]float64, len(rows)),
	}
	for r, k := range rows {
		g.Cells[r] = make([]float64, len(cols))
		for c, v := range cols {
			pct, ok := t.Percent(Key{Coreness: k, Value: v})
			if !ok {
				pct = math.NaN()
			}
			g.Cells[r][c] = pct
		}
	}
	return g
}
