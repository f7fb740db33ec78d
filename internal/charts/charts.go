// Package charts renders the dashboard's fixed set of charts as PNG images.
// Every renderer is a pure read of the table it is given.
package charts

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"attrition/internal/dataset"
)

// Chart is one entry of the dashboard.
type Chart struct {
	Name   string
	Title  string
	render func(*dataset.Table) ([]byte, error)
}

// New builds a chart from a render function.
func New(name, title string, render func(*dataset.Table) ([]byte, error)) Chart {
	return Chart{Name: name, Title: title, render: render}
}

// Render draws the chart for t and returns PNG bytes.
func (c Chart) Render(t *dataset.Table) ([]byte, error) {
	png, err := c.render(t)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", c.Name, err)
	}
	return png, nil
}

// All returns the charts in display order.
func All() []Chart {
	return []Chart{
		{Name: "attrition", Title: "Attrition Distribution", render: renderAttrition},
		{Name: "age", Title: "Age Distribution of Employees", render: renderAge},
		{Name: "department", Title: "Attrition by Department", render: renderDepartment},
		{Name: "worklife", Title: "Work-Life Balance Impact", render: renderWorkLife},
		{Name: "gender", Title: "Attrition by Gender", render: renderGender},
		{Name: "agegroup", Title: "Attrition by Age Group", render: renderAgeGroup},
		{Name: "correlation", Title: "Correlation Heatmap", render: renderCorrelation},
	}
}

// Lookup finds a chart by name.
func Lookup(name string) (Chart, bool) {
	for _, c := range All() {
		if c.Name == name {
			return c, true
		}
	}
	return Chart{}, false
}

const (
	width  = 8 * vg.Inch
	height = 4.5 * vg.Inch
)

var hueColors = []color.RGBA{
	{R: 0x63, G: 0x6e, B: 0xfa, A: 0xff},
	{R: 0xef, G: 0x55, B: 0x3b, A: 0xff},
	{R: 0x00, G: 0xcc, B: 0x96, A: 0xff},
	{R: 0xab, G: 0x63, B: 0xfa, A: 0xff},
	{R: 0xff, G: 0xa1, B: 0x5a, A: 0xff},
}

func hueColor(i int) color.RGBA {
	return hueColors[i%len(hueColors)]
}

// translucent returns c at roughly 60% opacity, premultiplied.
func translucent(c color.RGBA) color.RGBA {
	const a = 0x99
	return color.RGBA{
		R: uint8(uint16(c.R) * a / 0xff),
		G: uint8(uint16(c.G) * a / 0xff),
		B: uint8(uint16(c.B) * a / 0xff),
		A: a,
	}
}

// groupOffset centres n side-by-side marks of size w around a tick.
func groupOffset(i, n int, w vg.Length) vg.Length {
	return vg.Length(float64(i)-float64(n-1)/2) * w
}

// markWidth splits the plot width between categories and hues, capped so a
// handful of categories do not produce slabs.
func markWidth(categories, hues int) vg.Length {
	if categories < 1 || hues < 1 {
		return vg.Points(20)
	}
	w := (width - vg.Inch) / vg.Length(categories*(hues+1))
	if max := vg.Points(40); w > max {
		w = max
	}
	return w
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	return p
}

func encode(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
