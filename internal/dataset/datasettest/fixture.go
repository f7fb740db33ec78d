// Package datasettest provides a small employee dataset for tests.
package datasettest

import (
	"os"
	"path/filepath"
	"testing"

	"attrition/internal/dataset"
)

// CSV has twelve records. EmployeeCount is constant, Over18 is text, and the
// ages cover every band plus one value below and one above the banded range.
const CSV = `Age,Attrition,Department,DailyRate,EmployeeCount,Gender,Over18,WorkLifeBalance,TotalWorkingYears,MonthlyIncome
41,Yes,Sales,1102,1,Female,Y,1,8,5993
49,No,Research & Development,279,1,Male,Y,3,10,5130
37,Yes,Research & Development,1373,1,Male,Y,3,7,2090
33,No,Research & Development,1392,1,Female,Y,3,8,2909
27,No,Research & Development,591,1,Male,Y,3,6,3468
32,No,Research & Development,1005,1,Male,Y,2,8,3068
59,No,Research & Development,1324,1,Female,Y,2,12,2670
30,No,Research & Development,1358,1,Male,Y,3,1,2693
25,Yes,Sales,216,1,Male,Y,3,5,9526
18,Yes,Human Resources,1306,1,Male,Y,2,0,1200
17,No,Sales,700,1,Female,Y,4,0,1100
66,No,Human Resources,900,1,Female,Y,4,40,19000
`

// Rows and Columns describe CSV, header excluded.
const (
	Rows    = 12
	Columns = 10
)

// WriteCSV writes content to name inside dir and returns the full path.
func WriteCSV(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Path writes the fixture into a temp dir and returns its path.
func Path(t testing.TB) string {
	t.Helper()
	return WriteCSV(t, t.TempDir(), "employees.csv", CSV)
}

// Table loads the fixture and derives the age band column.
func Table(t testing.TB) *dataset.Table {
	t.Helper()
	loaded, err := dataset.Load(Path(t))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	derived, err := dataset.WithAgeBand(loaded)
	if err != nil {
		t.Fatalf("derive fixture: %v", err)
	}
	return derived
}
