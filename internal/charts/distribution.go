package charts

import (
	"bytes"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"attrition/internal/analysis"
	"attrition/internal/core"
	"attrition/internal/dataset"
)

const ageBins = 20

// renderAge draws a histogram of Age per attrition value with a horizontal
// box plot of the same values stacked above it.
func renderAge(t *dataset.Table) ([]byte, error) {
	h, err := analysis.HistogramBy(t, core.ColAge, core.ColAttrition, ageBins)
	if err != nil {
		return nil, err
	}
	g, err := analysis.GroupFloats(t, core.ColAge, "", core.ColAttrition)
	if err != nil {
		return nil, err
	}

	hist := newPlot("", core.ColAge, "count")
	hist.Add(plotter.NewGrid())
	for i, hue := range h.Hues {
		bins := make([]plotter.HistogramBin, h.Bins())
		for b := range bins {
			bins[b] = plotter.HistogramBin{Min: h.Edges[b], Max: h.Edges[b+1], Weight: h.Counts[i][b]}
		}
		bars := &plotter.Histogram{
			Bins:      bins,
			Width:     h.Edges[1] - h.Edges[0],
			FillColor: translucent(hueColor(i)),
			LineStyle: draw.LineStyle{Color: hueColor(i), Width: vg.Points(0.5)},
		}
		hist.Add(bars)
		hist.Legend.Add(hue, bars)
	}
	hist.Y.Min = 0

	box := newPlot("Age Distribution of Employees", "", "")
	box.HideX()
	var names []string
	for i, hue := range g.Hues {
		vals := g.Values("", hue)
		if len(vals) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(14), float64(len(names)), plotter.Values(vals))
		if err != nil {
			return nil, err
		}
		b.Horizontal = true
		b.FillColor = translucent(hueColor(i))
		box.Add(b)
		names = append(names, hue)
	}
	if len(names) > 0 {
		box.NominalY(names...)
	}
	box.X.Min, box.X.Max = h.Edges[0], h.Edges[len(h.Edges)-1]
	hist.X.Min, hist.X.Max = box.X.Min, box.X.Max

	return stack([]*plot.Plot{box, hist}, width, 6*vg.Inch)
}

// stack draws plots top to bottom on one canvas with aligned axes.
func stack(plots []*plot.Plot, w, h vg.Length) ([]byte, error) {
	img := vgimg.New(w, h)
	dc := draw.New(img)

	grid := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		grid[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
		PadY:      vg.Points(2),
	}
	canvases := plot.Align(grid, tiles, dc)
	for i := range grid {
		grid[i][0].Draw(canvases[i][0])
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderWorkLife draws TotalWorkingYears per WorkLifeBalance level, one box
// per attrition value.
func renderWorkLife(t *dataset.Table) ([]byte, error) {
	g, err := analysis.GroupFloats(t, core.ColTotalWorkingYears, core.ColWorkLifeBalance, core.ColAttrition)
	if err != nil {
		return nil, err
	}

	p := newPlot("Work-Life Balance Impact", core.ColWorkLifeBalance, core.ColTotalWorkingYears)
	p.Add(plotter.NewGrid())
	w := markWidth(len(g.Levels), len(g.Hues))
	for i, hue := range g.Hues {
		drawn := false
		for j, level := range g.Levels {
			vals := g.Values(level, hue)
			if len(vals) == 0 {
				continue
			}
			b, err := plotter.NewBoxPlot(w, float64(j), plotter.Values(vals))
			if err != nil {
				return nil, err
			}
			b.Offset = groupOffset(i, len(g.Hues), w)
			b.FillColor = translucent(hueColor(i))
			p.Add(b)
			drawn = true
		}
		if drawn {
			p.Legend.Add(hue, swatch{fill: translucent(hueColor(i))})
		}
	}
	if len(g.Levels) > 0 {
		p.NominalX(g.Levels...)
	}
	return encodePlot(p)
}

// swatch is a legend entry for plotters that draw no thumbnail of their own.
type swatch struct {
	fill color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.fill, c.ClipPolygonY(pts))
}
