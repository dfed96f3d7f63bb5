package plotting

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/gilchrisn/spreading-analysis/pkg/layout"
	"github.com/gilchrisn/spreading-analysis/pkg/network"
	"github.com/gilchrisn/spreading-analysis/pkg/structure"
)

const nodeRadius = 2

// edgeLines draws the edges of a graph at layout positions. When keep is
// set only edges whose endpoints both pass it are drawn.
type edgeLines struct {
	graph *network.Graph
	pos   *layout.Layout
	style draw.LineStyle
	keep  func(v int) bool
}

func (e edgeLines) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for _, edge := range e.graph.Edges() {
		u, v := edge[0], edge[1]
		if e.keep != nil && !(e.keep(u) && e.keep(v)) {
			continue
		}
		pu, pv := e.pos.Points[u], e.pos.Points[v]
		c.StrokeLine2(e.style, trX(pu.X), trY(pu.Y), trX(pv.X), trY(pv.Y))
	}
}

func (e edgeLines) DataRange() (xmin, xmax, ymin, ymax float64) {
	return e.pos.MinX, e.pos.MaxX, e.pos.MinY, e.pos.MaxY
}

// subset is the layout restricted to some nodes, as a plotter.XYer
type subset struct {
	pos   *layout.Layout
	nodes []int
}

func (s subset) Len() int { return len(s.nodes) }

func (s subset) XY(i int) (float64, float64) {
	return s.pos.XY(s.nodes[i])
}

func networkPlot(title string, g *network.Graph, pos *layout.Layout, keep func(int) bool) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.Add(edgeLines{
		graph: g,
		pos:   pos,
		style: draw.LineStyle{Color: gray, Width: vg.Points(0.5)},
		keep:  keep,
	})
	return p
}

func checkLayout(g *network.Graph, pos *layout.Layout, values int) error {
	if g.NumNodes == 0 {
		return ErrNoData
	}
	if pos.Len() != g.NumNodes {
		return fmt.Errorf("layout has %d points for %d nodes", pos.Len(), g.NumNodes)
	}
	if values >= 0 && values != g.NumNodes {
		return fmt.Errorf("%d values for %d nodes", values, g.NumNodes)
	}
	return nil
}

// NodeValues draws the network with every node coloured by its value and
// a colour bar named label
func NodeValues(path string, g *network.Graph, pos *layout.Layout, values []float64, title, label string, opts Options) error {
	if err := checkLayout(g, pos, len(values)); err != nil {
		return err
	}
	cm := colorMap(floats.Min(values), floats.Max(values))

	scatter, err := plotter.NewScatter(pos)
	if err != nil {
		return fmt.Errorf("failed to build scatter: %w", err)
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: colorAt(cm, values[i]), Radius: vg.Points(nodeRadius), Shape: draw.CircleGlyph{}}
	}

	p := networkPlot(title, g, pos, nil)
	p.Add(scatter)
	return saveWithColorBar(path, p, cm, label, opts)
}

// OuterShell draws the network with the given shell in red next to the
// subgraph induced by that shell
func OuterShell(path, name string, g *network.Graph, pos *layout.Layout, shell []int, opts Options) error {
	if err := checkLayout(g, pos, -1); err != nil {
		return err
	}
	inShell := make([]bool, g.NumNodes)
	for _, v := range shell {
		inShell[v] = true
	}

	all, err := plotter.NewScatter(pos)
	if err != nil {
		return fmt.Errorf("failed to build scatter: %w", err)
	}
	all.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		c := color.Color(blue)
		if inShell[i] {
			c = red
		}
		return draw.GlyphStyle{Color: c, Radius: vg.Points(nodeRadius), Shape: draw.CircleGlyph{}}
	}
	left := networkPlot(name+" network - outer shell in red", g, pos, nil)
	left.Add(all)

	right := networkPlot("Outer shell of the "+name+" network", g, pos, func(v int) bool { return inShell[v] })
	if len(shell) > 0 {
		core, err := plotter.NewScatter(subset{pos: pos, nodes: shell})
		if err != nil {
			return fmt.Errorf("failed to build scatter: %w", err)
		}
		core.GlyphStyle = draw.GlyphStyle{Color: red, Radius: vg.Points(nodeRadius), Shape: draw.CircleGlyph{}}
		right.Add(core)
	}

	return saveGrid(path, [][]*plot.Plot{{left, right}}, opts)
}

// distinctBars plots how many nodes take each distinct value
func distinctBars(title, xLabel string, values []float64, format func(float64) string) (*plot.Plot, error) {
	distinct, counts := distinctCounts(values)
	bars, err := plotter.NewBarChart(counts, vg.Points(4))
	if err != nil {
		return nil, err
	}
	bars.Color = blue
	bars.LineStyle.Width = 0

	labels := make([]string, len(distinct))
	for i, v := range distinct {
		labels[i] = format(v)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Count"
	p.Add(bars)
	p.X.Tick.Marker = positionTicks(labels, 10)
	return p, nil
}

func formatInt(v float64) string { return strconv.Itoa(int(v)) }

// Characterisation draws the degree, centrality and coreness distributions
// of a network stacked in one figure. Integer attributes are counted per
// distinct value; centrality is binned.
func Characterisation(path, name string, metrics *structure.Metrics, opts Options) error {
	if len(metrics.Degrees) == 0 {
		return ErrNoData
	}

	degree, err := distinctBars(name+" degree", "Degree k", structure.IntsToFloats(metrics.Degrees), formatInt)
	if err != nil {
		return fmt.Errorf("degree histogram: %w", err)
	}

	hist, err := plotter.NewHist(plotter.Values(metrics.Centralities), 30)
	if err != nil {
		return fmt.Errorf("centrality histogram: %w", err)
	}
	hist.FillColor = blue
	centrality := plot.New()
	centrality.Title.Text = name + " betweenness centrality"
	centrality.X.Label.Text = "Betweenness centrality"
	centrality.Y.Label.Text = "Count"
	centrality.Add(hist)

	coreness, err := distinctBars(name+" coreness", "Coreness ks", structure.IntsToFloats(metrics.Corenesses), formatInt)
	if err != nil {
		return fmt.Errorf("coreness histogram: %w", err)
	}

	tall := opts
	tall.Height = opts.Height * 2
	return saveGrid(path, [][]*plot.Plot{{degree}, {centrality}, {coreness}}, tall)
}

// DegreeRank draws degree against rank on log-log axes
func DegreeRank(path, name string, degrees []int, opts Options) error {
	sorted := append([]int(nil), degrees...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	xys := make(plotter.XYs, 0, len(sorted))
	for i, d := range sorted {
		if d > 0 {
			xys = append(xys, plotter.XY{X: float64(i + 1), Y: float64(d)})
		}
	}
	if len(xys) == 0 {
		return ErrNoData
	}

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return fmt.Errorf("failed to build degree rank line: %w", err)
	}
	line.Color = blue
	points.Color = blue
	points.Radius = vg.Points(1.5)

	p := plot.New()
	p.Title.Text = "Degree rank plot: " + name
	p.X.Label.Text = "Rank"
	p.Y.Label.Text = "Degree"
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(line, points)
	return save(path, p, opts)
}
