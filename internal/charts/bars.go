package charts

import (
	"bytes"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	"attrition/internal/analysis"
	"attrition/internal/core"
	"attrition/internal/dataset"
)

func renderAttrition(t *dataset.Table) ([]byte, error) {
	ct, err := analysis.CrosstabBy(t, core.ColAttrition, core.ColAttrition)
	if err != nil {
		return nil, err
	}

	bars := make([]chart.Value, 0, len(ct.Categories))
	for i, cat := range ct.Categories {
		c := hueColor(i)
		fill := drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
		bars = append(bars, chart.Value{
			Label: cat,
			Value: ct.Count(cat, cat),
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		})
	}
	if len(bars) == 0 {
		bars = append(bars, chart.Value{Label: "no data", Value: 0})
	}

	graph := chart.BarChart{
		Title:      "Attrition Distribution",
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Width:      768,
		Height:     432,
		BarWidth:   120,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(1, ct.Max()*1.1)},
		},
		Bars: bars,
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderDepartment(t *dataset.Table) ([]byte, error) {
	ct, err := analysis.CrosstabBy(t, core.ColDepartment, core.ColAttrition)
	if err != nil {
		return nil, err
	}
	return groupedBars("Attrition by Department", core.ColDepartment, ct)
}

func renderGender(t *dataset.Table) ([]byte, error) {
	ct, err := analysis.CrosstabBy(t, core.ColGender, core.ColAttrition)
	if err != nil {
		return nil, err
	}
	return groupedBars("Attrition by Gender", core.ColGender, ct)
}

func renderAgeGroup(t *dataset.Table) ([]byte, error) {
	bands := core.AgeBands()
	order := make([]string, len(bands))
	for i, b := range bands {
		order[i] = b.String()
	}
	ct, err := analysis.CrosstabOrdered(t, core.ColAgeGroup, core.ColAttrition, order)
	if err != nil {
		return nil, err
	}
	return groupedBars("Attrition by Age Group", core.ColAgeGroup, ct)
}

// groupedBars draws one bar per hue next to each other for every category.
func groupedBars(title, xLabel string, ct *analysis.Crosstab) ([]byte, error) {
	p := newPlot(title, xLabel, "count")
	p.Add(plotter.NewGrid())
	if len(ct.Categories) > 0 {
		w := markWidth(len(ct.Categories), len(ct.Hues))
		for i, hue := range ct.Hues {
			bars, err := plotter.NewBarChart(plotter.Values(ct.Counts[i]), w)
			if err != nil {
				return nil, err
			}
			bars.Color = hueColor(i)
			bars.LineStyle.Width = 0
			bars.Offset = groupOffset(i, len(ct.Hues), w)
			p.Add(bars)
			p.Legend.Add(hue, bars)
		}
		p.NominalX(ct.Categories...)
	}
	p.Y.Min = 0
	return encodePlot(p)
}

func encodePlot(p *plot.Plot) ([]byte, error) {
	return encode(p, width, height)
}
