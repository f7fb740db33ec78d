package analysis

import (
	"sort"
	"strconv"

	"attrition/internal/dataset"
)

// Crosstab counts rows per category and hue.
type Crosstab struct {
	Categories []string
	Hues       []string
	// Counts is indexed [hue][category].
	Counts [][]float64
}

// Count returns the number of rows with the given category and hue.
func (c *Crosstab) Count(category, hue string) float64 {
	ci, hi := indexOf(c.Categories, category), indexOf(c.Hues, hue)
	if ci < 0 || hi < 0 {
		return 0
	}
	return c.Counts[hi][ci]
}

// Max returns the largest single count.
func (c *Crosstab) Max() float64 {
	var max float64
	for _, row := range c.Counts {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// Total returns the number of rows counted.
func (c *Crosstab) Total() float64 {
	var sum float64
	for _, row := range c.Counts {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

// CrosstabBy counts rows of t by col and hue. Rows missing either value are
// skipped. Numeric-looking categories sort numerically; others keep the
// order they first appear in.
func CrosstabBy(t *dataset.Table, col, hue string) (*Crosstab, error) {
	cats, hues, err := pairs(t, col, hue)
	if err != nil {
		return nil, err
	}
	return crosstab(cats, hues, levels(cats)), nil
}

// CrosstabOrdered is CrosstabBy with a fixed category order. Values outside
// order are skipped.
func CrosstabOrdered(t *dataset.Table, col, hue string, order []string) (*Crosstab, error) {
	cats, hues, err := pairs(t, col, hue)
	if err != nil {
		return nil, err
	}
	return crosstab(cats, hues, order), nil
}

func crosstab(cats, hues, order []string) *Crosstab {
	c := &Crosstab{
		Categories: append([]string(nil), order...),
		Hues:       firstSeen(hues),
	}
	c.Counts = make([][]float64, len(c.Hues))
	for i := range c.Counts {
		c.Counts[i] = make([]float64, len(c.Categories))
	}
	for i := range cats {
		ci := indexOf(c.Categories, cats[i])
		if ci < 0 {
			continue
		}
		c.Counts[indexOf(c.Hues, hues[i])][ci]++
	}
	return c
}

// pairs returns the aligned values of col and hue for rows carrying both.
func pairs(t *dataset.Table, col, hue string) ([]string, []string, error) {
	a, err := t.Strings(col)
	if err != nil {
		return nil, nil, err
	}
	b, err := t.Strings(hue)
	if err != nil {
		return nil, nil, err
	}
	outA := make([]string, 0, len(a))
	outB := make([]string, 0, len(a))
	for i := range a {
		if a[i] == "" || b[i] == "" {
			continue
		}
		outA = append(outA, a[i])
		outB = append(outB, b[i])
	}
	return outA, outB, nil
}

func firstSeen(vals []string) []string {
	seen := make(map[string]struct{}, 8)
	var out []string
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// levels orders distinct values numerically when every value parses as a
// number, and by first appearance otherwise.
func levels(vals []string) []string {
	out := firstSeen(vals)
	nums := make(map[string]float64, len(out))
	for _, v := range out {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return out
		}
		nums[v] = f
	}
	sort.SliceStable(out, func(i, j int) bool { return nums[out[i]] < nums[out[j]] })
	return out
}

func indexOf(vals []string, v string) int {
	for i, s := range vals {
		if s == v {
			return i
		}
	}
	return -1
}
