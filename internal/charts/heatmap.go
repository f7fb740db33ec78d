package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"attrition/internal/analysis"
	"attrition/internal/dataset"
)

// corrGrid exposes a correlation matrix as a heat map grid with the first
// column at the top.
type corrGrid struct {
	m *analysis.Matrix
}

func (g corrGrid) Dims() (c, r int) { return g.m.Size(), g.m.Size() }

func (g corrGrid) Z(c, r int) float64 { return g.m.At(g.m.Size()-1-r, c) }

func (g corrGrid) X(c int) float64 { return float64(c) }

func (g corrGrid) Y(r int) float64 { return float64(r) }

func renderCorrelation(t *dataset.Table) ([]byte, error) {
	m, err := analysis.Correlation(t)
	if err != nil {
		return nil, err
	}

	p := newPlot("Correlation Heatmap", "", "")
	n := m.Size()
	if n == 0 {
		return encode(p, 12*vg.Inch, 8*vg.Inch)
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid{m: m}, cmap.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 0xdd}
	p.Add(hm)

	var cells plotter.XYLabels
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := m.At(n-1-r, c)
			label := ""
			if !math.IsNaN(v) {
				label = fmt.Sprintf("%.2f", v)
			}
			cells.XYs = append(cells.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			cells.Labels = append(cells.Labels, label)
		}
	}
	labels, err := plotter.NewLabels(cells)
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
		labels.TextStyle[i].Font.Size = vg.Points(6)
	}
	p.Add(labels)

	rows := make([]string, n)
	for i, name := range m.Names {
		rows[n-1-i] = name
	}
	p.NominalX(m.Names...)
	p.NominalY(rows...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Legend.Top = false

	return encode(p, 12*vg.Inch, 8*vg.Inch)
}
