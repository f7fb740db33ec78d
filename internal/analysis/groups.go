package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"attrition/internal/dataset"
)

// Groups holds a numeric column split by a level column and a hue column.
type Groups struct {
	Levels []string
	Hues   []string
	values map[[2]string][]float64
}

// Values returns the observations for one level and hue.
func (g *Groups) Values(level, hue string) []float64 {
	return g.values[[2]string{level, hue}]
}

// HueValues returns every observation for a hue across levels.
func (g *Groups) HueValues(hue string) []float64 {
	var out []float64
	for _, level := range g.Levels {
		out = append(out, g.Values(level, hue)...)
	}
	return out
}

// GroupFloats splits valueCol by levelCol and hueCol. An empty levelCol puts
// every row in a single level named "". Rows with a missing value, level or
// hue are skipped.
func GroupFloats(t *dataset.Table, valueCol, levelCol, hueCol string) (*Groups, error) {
	vals, err := t.Floats(valueCol)
	if err != nil {
		return nil, err
	}
	hues, err := t.Strings(hueCol)
	if err != nil {
		return nil, err
	}
	lvls := make([]string, len(vals))
	if levelCol != "" {
		if lvls, err = t.Strings(levelCol); err != nil {
			return nil, err
		}
	}

	g := &Groups{values: make(map[[2]string][]float64)}
	var keptLevels, keptHues []string
	for i, v := range vals {
		if math.IsNaN(v) || hues[i] == "" || (levelCol != "" && lvls[i] == "") {
			continue
		}
		key := [2]string{lvls[i], hues[i]}
		g.values[key] = append(g.values[key], v)
		keptLevels = append(keptLevels, lvls[i])
		keptHues = append(keptHues, hues[i])
	}
	g.Levels = levels(keptLevels)
	g.Hues = firstSeen(keptHues)
	return g, nil
}

// Histogram is a set of equal-width bins shared by several hues.
type Histogram struct {
	Edges []float64
	Hues  []string
	// Counts is indexed [hue][bin].
	Counts [][]float64
}

// Bins returns the number of bins.
func (h *Histogram) Bins() int { return len(h.Edges) - 1 }

// Max returns the largest bin count.
func (h *Histogram) Max() float64 {
	var max float64
	for _, row := range h.Counts {
		if len(row) > 0 {
			max = math.Max(max, floats.Max(row))
		}
	}
	return max
}

// HistogramBy bins col into n equal-width bins spanning its range, counting
// each hue separately against the same edges.
func HistogramBy(t *dataset.Table, col, hueCol string, n int) (*Histogram, error) {
	g, err := GroupFloats(t, col, "", hueCol)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		n = 1
	}

	var all []float64
	for _, hue := range g.Hues {
		all = append(all, g.Values("", hue)...)
	}
	h := &Histogram{Hues: g.Hues}
	if len(all) == 0 {
		h.Edges = []float64{0, 1}
		return h, nil
	}

	lo, hi := floats.Min(all), floats.Max(all)
	if lo == hi {
		hi = lo + 1
	}
	h.Edges = floats.Span(make([]float64, n+1), lo, hi)
	// stat.Histogram needs every value strictly below the last divider.
	dividers := append([]float64(nil), h.Edges...)
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	h.Counts = make([][]float64, len(g.Hues))
	for i, hue := range g.Hues {
		x := append([]float64(nil), g.Values("", hue)...)
		sort.Float64s(x)
		h.Counts[i] = stat.Histogram(nil, dividers, x, nil)
	}
	return h, nil
}
