// Package dataset loads the employee records into an in-memory table and
// derives the age band column.
package dataset

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table is a read-only view over the loaded records. It is never mutated
// after construction; deriving a column produces a new Table.
type Table struct {
	frame   dataframe.DataFrame
	source  string
	modTime time.Time
	size    int64
	version uint64
}

// Source returns the path the table was read from.
func (t *Table) Source() string { return t.source }

// ModTime is the source file's modification time at load.
func (t *Table) ModTime() time.Time { return t.modTime }

// Size is the source file's size in bytes at load.
func (t *Table) Size() int64 { return t.size }

// Version increases every time the loader reads the source again.
func (t *Table) Version() uint64 { return t.version }

// Rows returns the number of records, header excluded.
func (t *Table) Rows() int { return t.frame.Nrow() }

// Columns returns the number of columns, derived ones included.
func (t *Table) Columns() int { return t.frame.Ncol() }

// Names returns the column names in file order.
func (t *Table) Names() []string { return t.frame.Names() }

// Has reports whether the table carries a column.
func (t *Table) Has(col string) bool {
	for _, n := range t.frame.Names() {
		if n == col {
			return true
		}
	}
	return false
}

func (t *Table) column(col string) (series.Series, error) {
	if !t.Has(col) {
		return series.Series{}, fmt.Errorf("unknown column %q", col)
	}
	s := t.frame.Col(col)
	if s.Err != nil {
		return series.Series{}, fmt.Errorf("column %q: %w", col, s.Err)
	}
	return s, nil
}

// IsNumeric reports whether col holds ints or floats. Bool and string
// columns are not numeric.
func (t *Table) IsNumeric(col string) bool {
	s, err := t.column(col)
	if err != nil {
		return false
	}
	return s.Type() == series.Int || s.Type() == series.Float
}

// NumericColumns returns the numeric columns in file order.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, n := range t.frame.Names() {
		if t.IsNumeric(n) {
			out = append(out, n)
		}
	}
	return out
}

// Floats returns a copy of a numeric column. Missing values are NaN.
func (t *Table) Floats(col string) ([]float64, error) {
	s, err := t.column(col)
	if err != nil {
		return nil, err
	}
	if s.Type() != series.Int && s.Type() != series.Float {
		return nil, fmt.Errorf("column %q is %s, not numeric", col, s.Type())
	}
	return s.Float(), nil
}

// Strings returns a column rendered as text. Missing values are empty.
func (t *Table) Strings(col string) ([]string, error) {
	s, err := t.column(col)
	if err != nil {
		return nil, err
	}
	out := make([]string, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		out[i] = e.String()
	}
	return out, nil
}

// Head returns the first n rows as text, in column order.
func (t *Table) Head(n int) [][]string {
	if n < 0 || n > t.Rows() {
		n = t.Rows()
	}
	names := t.Names()
	cols := make([][]string, len(names))
	for j, name := range names {
		cols[j], _ = t.Strings(name)
	}
	rows := make([][]string, n)
	for i := range rows {
		row := make([]string, len(names))
		for j := range names {
			row[j] = cols[j][i]
		}
		rows[i] = row
	}
	return rows
}
