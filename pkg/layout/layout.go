// Package layout places network nodes in the plane for plotting.
package layout

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/mds"

	"github.com/gilchrisn/spreading-analysis/pkg/network"
)

// Method names how a layout was produced
type Method string

const (
	MethodMDS    Method = "mds"
	MethodShells Method = "shells"
)

// ErrNoEmbedding is returned when scaling finds no positive eigenvalue
var ErrNoEmbedding = errors.New("distance matrix has no euclidean embedding")

// Point is a 2-D position
type Point struct {
	X, Y float64
}

// Layout holds one position per node, in node index order
type Layout struct {
	Method     Method
	Points     []Point
	MinX, MaxX float64
	MinY, MaxY float64
}

// Options configures Compute
type Options struct {
	// MaxNodes is the largest graph embedded by MDS; larger graphs fall
	// back to concentric shells. Zero means no limit.
	MaxNodes int
	// Unreachable is the distance assigned to disconnected pairs. Zero
	// uses one more than the largest finite distance.
	Unreachable float64
}

// Compute lays g out by classical multidimensional scaling of hop
// distances. corenesses is only used for graphs above opts.MaxNodes and
// may be nil otherwise.
func Compute(g *network.Graph, corenesses []int, opts Options) (*Layout, error) {
	if g.NumNodes == 0 {
		return nil, network.ErrEmptyGraph
	}
	if opts.MaxNodes > 0 && g.NumNodes > opts.MaxNodes {
		if len(corenesses) != g.NumNodes {
			return nil, fmt.Errorf("shell layout needs %d corenesses, got %d", g.NumNodes, len(corenesses))
		}
		return Shells(corenesses), nil
	}
	return MDS(g, opts.Unreachable)
}

// MDS embeds g with Torgerson scaling of its hop distance matrix
func MDS(g *network.Graph, unreachable float64) (*Layout, error) {
	n := g.NumNodes
	if n == 0 {
		return nil, network.ErrEmptyGraph
	}
	if n == 1 {
		return bounded(MethodMDS, []Point{{}}), nil
	}

	dist := HopDistances(g, unreachable)

	var coords mat.Dense
	k, _ := mds.TorgersonScaling(&coords, nil, dist)
	if k == 0 {
		return nil, ErrNoEmbedding
	}

	points := make([]Point, n)
	for i := range points {
		points[i].X = coords.At(i, 0)
		if k > 1 {
			points[i].Y = coords.At(i, 1)
		}
	}
	return bounded(MethodMDS, points), nil
}

// HopDistances returns the symmetric matrix of shortest path lengths.
// Pairs in different components get unreachable, or the diameter plus one
// when unreachable is not positive.
func HopDistances(g *network.Graph, unreachable float64) *mat.SymDense {
	n := g.NumNodes
	dist := mat.NewSymDense(n, nil)

	hops := make([]int, n)
	queue := make([]int, 0, n)
	farthest := 0
	disconnected := false

	for src := 0; src < n; src++ {
		for i := range hops {
			hops[i] = -1
		}
		hops[src] = 0
		queue = append(queue[:0], src)
		for head := 0; head < len(queue); head++ {
			u := queue[head]
			for _, w := range g.Adjacency[u] {
				if hops[w] < 0 {
					hops[w] = hops[u] + 1
					queue = append(queue, w)
				}
			}
		}

		for dst := src + 1; dst < n; dst++ {
			if hops[dst] < 0 {
				disconnected = true
				dist.SetSym(src, dst, -1)
				continue
			}
			farthest = max(farthest, hops[dst])
			dist.SetSym(src, dst, float64(hops[dst]))
		}
	}

	if disconnected {
		if unreachable <= 0 {
			unreachable = float64(farthest + 1)
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if dist.At(i, j) < 0 {
					dist.SetSym(i, j, unreachable)
				}
			}
		}
	}
	return dist
}

// Shells places nodes on concentric rings by coreness, the innermost core
// at the centre. Nodes within a ring are spread evenly in index order.
func Shells(corenesses []int) *Layout {
	byCore := make(map[int][]int)
	maxCore := 0
	for v, k := range corenesses {
		byCore[k] = append(byCore[k], v)
		maxCore = max(maxCore, k)
	}

	cores := make([]int, 0, len(byCore))
	for k := range byCore {
		cores = append(cores, k)
	}
	sort.Ints(cores)

	points := make([]Point, len(corenesses))
	for _, k := range cores {
		nodes := byCore[k]
		radius := float64(maxCore-k+1) / float64(maxCore+1)
		if k == maxCore && len(nodes) == 1 {
			radius = 0
		}
		for i, v := range nodes {
			theta := 2 * math.Pi * float64(i) / float64(len(nodes))
			points[v] = Point{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
		}
	}
	return bounded(MethodShells, points)
}

func bounded(method Method, points []Point) *Layout {
	l := &Layout{Method: method, Points: points}
	for i, p := range points {
		if i == 0 {
			l.MinX, l.MaxX = p.X, p.X
			l.MinY, l.MaxY = p.Y, p.Y
			continue
		}
		l.MinX = math.Min(l.MinX, p.X)
		l.MaxX = math.Max(l.MaxX, p.X)
		l.MinY = math.Min(l.MinY, p.Y)
		l.MaxY = math.Max(l.MaxY, p.Y)
	}
	return l
}

// Normalized returns the position of node v scaled into [0,1]. A
// degenerate axis maps to 0.5.
func (l *Layout) Normalized(v int) Point {
	p := l.Points[v]
	x, y := 0.5, 0.5
	if l.MaxX != l.MinX {
		x = (p.X - l.MinX) / (l.MaxX - l.MinX)
	}
	if l.MaxY != l.MinY {
		y = (p.Y - l.MinY) / (l.MaxY - l.MinY)
	}
	return Point{X: x, Y: y}
}

// Len returns the number of points
func (l *Layout) Len() int {
	return len(l.Points)
}

// XY returns the coordinates of node v
func (l *Layout) XY(v int) (float64, float64) {
	return l.Points[v].X, l.Points[v].Y
}
