// Package analysis computes the aggregates the dashboard charts display.
package analysis

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"attrition/internal/dataset"
)

// Matrix is a symmetric correlation matrix over named columns.
type Matrix struct {
	Names  []string
	Values *mat.SymDense
}

// Size returns the number of columns.
func (m *Matrix) Size() int { return len(m.Names) }

// At returns the coefficient between columns i and j.
func (m *Matrix) At(i, j int) float64 {
	return m.Values.At(i, j)
}

// Index returns the position of a column, or -1.
func (m *Matrix) Index(name string) int {
	for i, n := range m.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// MarshalJSON writes undefined coefficients as null.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, m.Size())
	for i := range values {
		values[i] = make([]*float64, m.Size())
		for j := range values[i] {
			if v := m.At(i, j); !math.IsNaN(v) {
				values[i][j] = &v
			}
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{m.Names, values})
}

// Correlation computes pairwise Pearson coefficients over the table's
// numeric columns. Each pair uses the rows where both values are present.
// A pair involving a zero-variance column is NaN, diagonal included.
func Correlation(t *dataset.Table) (*Matrix, error) {
	names := t.NumericColumns()
	cols := make([][]float64, len(names))
	for i, name := range names {
		vals, err := t.Floats(name)
		if err != nil {
			return nil, err
		}
		cols[i] = vals
	}

	m := &Matrix{Names: names}
	if len(names) == 0 {
		m.Values = &mat.SymDense{}
		return m, nil
	}
	m.Values = mat.NewSymDense(len(names), nil)
	for i := range cols {
		for j := i; j < len(cols); j++ {
			m.Values.SetSym(i, j, Pearson(cols[i], cols[j]))
		}
	}
	return m, nil
}

// Pearson returns the correlation of x and y over pairwise-complete
// observations. It is NaN when fewer than two pairs remain or either side
// has zero variance.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return r
	}
	return math.Max(-1, math.Min(1, r))
}

func constant(v []float64) bool {
	return floats.Min(v) == floats.Max(v)
}
