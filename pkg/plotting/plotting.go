// Package plotting renders the raster figures of an analysis with
// gonum/plot: outbreak heatmaps, structural histograms, network layouts
// and diffusion trends. Every function writes one PNG file.
package plotting

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	red  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	blue = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	gray = color.NRGBA{R: 110, G: 110, B: 110, A: 100}
)

// Options sets the figure size
type Options struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions returns a 16 x 12 cm figure
func DefaultOptions() Options {
	return Options{Width: 16 * vg.Centimeter, Height: 12 * vg.Centimeter}
}

// SizeCM builds options from centimetre dimensions, falling back to the
// defaults for non-positive values
func SizeCM(width, height float64) Options {
	opts := DefaultOptions()
	if width > 0 {
		opts.Width = vg.Length(width) * vg.Centimeter
	}
	if height > 0 {
		opts.Height = vg.Length(height) * vg.Centimeter
	}
	return opts
}

// colorMap returns a blue-red map spanning [lo, hi]; a degenerate range is
// widened so every value still maps to a colour
func colorMap(lo, hi float64) palette.ColorMap {
	if hi <= lo {
		hi = lo + 1
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(lo)
	cm.SetMax(hi)
	return cm
}

func colorAt(cm palette.ColorMap, v float64) color.Color {
	c, err := cm.At(math.Max(cm.Min(), math.Min(cm.Max(), v)))
	if err != nil {
		return color.Black
	}
	return c
}

// positionTicks labels integer plot positions, thinned to at most limit ticks
func positionTicks(labels []string, limit int) plot.ConstantTicks {
	step := 1
	if limit > 0 && len(labels) > limit {
		step = (len(labels) + limit - 1) / limit
	}
	ticks := make(plot.ConstantTicks, 0, len(labels)/step+1)
	for i := 0; i < len(labels); i += step {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: labels[i]})
	}
	return ticks
}

// distinctCounts returns the distinct values in ascending order and how
// often each occurs
func distinctCounts(values []float64) ([]float64, plotter.Values) {
	counts := make(map[float64]int)
	for _, v := range values {
		counts[v]++
	}
	distinct := make([]float64, 0, len(counts))
	for v := range counts {
		distinct = append(distinct, v)
	}
	sort.Float64s(distinct)

	out := make(plotter.Values, len(distinct))
	for i, v := range distinct {
		out[i] = float64(counts[v])
	}
	return distinct, out
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// save writes a single plot
func save(path string, p *plot.Plot, opts Options) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// saveCanvas writes an image canvas as PNG
func saveCanvas(path string, img *vgimg.Canvas) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// saveWithColorBar draws main with a vertical colour bar for cm on its right
func saveWithColorBar(path string, main *plot.Plot, cm palette.ColorMap, label string, opts Options) error {
	bar := plot.New()
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true})
	bar.HideX()
	bar.Y.Label.Text = label
	bar.Title.Text = " "

	img := vgimg.New(opts.Width, opts.Height)
	dc := draw.New(img)
	barWidth := opts.Width * 0.16

	main.Draw(draw.Crop(dc, 0, -barWidth, 0, 0))
	bar.Draw(draw.Crop(dc, opts.Width-barWidth, 0, 0, 0))
	return saveCanvas(path, img)
}

// saveGrid draws plots in a rows x cols arrangement
func saveGrid(path string, plots [][]*plot.Plot, opts Options) error {
	rows := len(plots)
	cols := 0
	if rows > 0 {
		cols = len(plots[0])
	}
	img := vgimg.New(opts.Width, opts.Height)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j, p := range plots[i] {
			if p != nil {
				p.Draw(canvases[i][j])
			}
		}
	}
	return saveCanvas(path, img)
}
