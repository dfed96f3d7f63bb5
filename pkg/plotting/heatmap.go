package plotting

import (
	"errors"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	"github.com/gilchrisn/spreading-analysis/pkg/aggregate"
)

// ErrNoData is returned when there is nothing to draw
var ErrNoData = errors.New("nothing to plot")

// HeatmapLabels names the parts of a heatmap
type HeatmapLabels struct {
	Title  string
	XLabel string
	YLabel string
	Bar    string
}

// byCoreness presents an aggregate grid with coreness on the X axis and
// the attribute value on the Y axis
type byCoreness struct {
	grid *aggregate.Grid
}

func (b byCoreness) Dims() (c, r int) {
	r, c = b.grid.Dims()
	return c, r
}

func (b byCoreness) Z(c, r int) float64 { return b.grid.Z(r, c) }
func (b byCoreness) X(c int) float64    { return float64(c) }
func (b byCoreness) Y(r int) float64    { return float64(r) }

// Heatmap draws the bucket percentages of grid with coreness along the X
// axis, the bucketed attribute along Y, and a colour bar. Empty buckets
// stay blank.
func Heatmap(path string, grid *aggregate.Grid, labels HeatmapLabels, opts Options) error {
	lo, hi, ok := grid.Range()
	if !ok {
		return ErrNoData
	}
	cm := colorMap(lo, hi)

	heat := plotter.NewHeatMap(byCoreness{grid}, cm.Palette(255))
	heat.Min, heat.Max = cm.Min(), cm.Max()

	p := plot.New()
	p.Title.Text = labels.Title
	p.X.Label.Text = labels.XLabel
	p.Y.Label.Text = labels.YLabel
	p.Add(heat)

	xLabels := make([]string, len(grid.Rows))
	for i, k := range grid.Rows {
		xLabels[i] = strconv.Itoa(k)
	}
	yLabels := make([]string, len(grid.Cols))
	for i, v := range grid.Cols {
		yLabels[i] = strconv.FormatFloat(v, 'g', 3, 64)
	}
	p.X.Tick.Marker = positionTicks(xLabels, 15)
	p.Y.Tick.Marker = positionTicks(yLabels, 12)

	bar := labels.Bar
	if bar == "" {
		bar = "M(%)"
	}
	return saveWithColorBar(path, p, cm, bar, opts)
}
