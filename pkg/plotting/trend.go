package plotting

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/gilchrisn/spreading-analysis/pkg/epidemic"
)

var green = color.RGBA{R: 44, G: 160, B: 44, A: 255}

// Trend draws the number of susceptible, infected and recovered nodes at
// every step of one outbreak. The recovered line is omitted when it stays
// at zero, as in an SIS run.
func Trend(path, title string, trend []epidemic.Counts, opts Options) error {
	if len(trend) == 0 {
		return ErrNoData
	}

	series := []struct {
		name  string
		color color.Color
		count func(epidemic.Counts) int
	}{
		{"Susceptible", blue, func(c epidemic.Counts) int { return c.Susceptible }},
		{"Infected", red, func(c epidemic.Counts) int { return c.Infected }},
		{"Recovered", green, func(c epidemic.Counts) int { return c.Recovered }},
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Nodes"
	p.Legend.Top = true

	for _, s := range series {
		xys := make(plotter.XYs, len(trend))
		seen := false
		for i, c := range trend {
			xys[i] = plotter.XY{X: float64(i), Y: float64(s.count(c))}
			seen = seen || xys[i].Y > 0
		}
		if s.name == "Recovered" && !seen {
			continue
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("failed to build %s line: %w", s.name, err)
		}
		line.Color = s.color
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	return save(path, p, opts)
}
