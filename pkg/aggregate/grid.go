package aggregate

import (
	"math"
)

// Grid is a dense (coreness x value) matrix of bucket percentages. It
// satisfies gonum/plot's plotter.GridXYZ with cells placed at integer
// positions; Rows and Cols hold the values those positions stand for.
type Grid struct {
	Rows  []int       // distinct corenesses, ascending
	Cols  []float64   // distinct attribute values, ascending
	Cells [][]float64 // cells[row][col] percentage, NaN when empty
}

// Dims returns the number of columns and rows
func (g *Grid) Dims() (c, r int) {
	return len(g.Cols), len(g.Rows)
}

// Z returns the percentage at column c, row r
func (g *Grid) Z(c, r int) float64 {
	return g.Cells[r][c]
}

// X returns the plot position of column c
func (g *Grid) X(c int) float64 {
	return float64(c)
}

// Y returns the plot position of row r
func (g *Grid) Y(r int) float64 {
	return float64(r)
}

// Range returns the smallest and largest populated cell, ignoring NaN.
// ok is false when every cell is empty.
func (g *Grid) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range g.Cells {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// Populated returns the number of non-empty cells
func (g *Grid) Populated() int {
	n := 0
	for _, row := range g.Cells {
		for _, v := range row {
			if !math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}
