package analysis_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrition/internal/analysis"
	"attrition/internal/core"
	"attrition/internal/dataset"
	"attrition/internal/dataset/datasettest"
)

func TestCorrelationShape(t *testing.T) {
	tbl := datasettest.Table(t)
	m, err := analysis.Correlation(tbl)
	require.NoError(t, err)

	assert.Equal(t, tbl.NumericColumns(), m.Names)
	assert.Equal(t, -1, m.Index(core.ColAgeGroup), "derived band is categorical")
	assert.Equal(t, -1, m.Index("Over18"))

	constantCol := m.Index("EmployeeCount")
	require.GreaterOrEqual(t, constantCol, 0)

	for i := 0; i < m.Size(); i++ {
		for j := 0; j < m.Size(); j++ {
			a, b := m.At(i, j), m.At(j, i)
			if i == constantCol || j == constantCol {
				assert.True(t, math.IsNaN(a), "pair %s/%s should be NaN", m.Names[i], m.Names[j])
				continue
			}
			assert.Equal(t, a, b, "symmetry %s/%s", m.Names[i], m.Names[j])
			assert.GreaterOrEqual(t, a, -1.0)
			assert.LessOrEqual(t, a, 1.0)
			if i == j {
				assert.InDelta(t, 1.0, a, 1e-12, "diagonal %s", m.Names[i])
			}
		}
	}
}

func TestCorrelationKnownValues(t *testing.T) {
	content := "Age,Attrition,Department,Gender,WorkLifeBalance,TotalWorkingYears,Up,Down,Flat\n" +
		"20,No,Sales,Male,1,1,1,9,5\n" +
		"30,Yes,Sales,Female,2,2,2,8,5\n" +
		"40,No,Sales,Male,3,3,3,7,5\n" +
		"50,No,Sales,Female,4,4,4,6,5\n"
	loaded, err := dataset.Load(datasettest.WriteCSV(t, t.TempDir(), "lin.csv", content))
	require.NoError(t, err)

	m, err := analysis.Correlation(loaded)
	require.NoError(t, err)

	up, down, flat, age := m.Index("Up"), m.Index("Down"), m.Index("Flat"), m.Index("Age")
	assert.InDelta(t, 1.0, m.At(up, age), 1e-12)
	assert.InDelta(t, -1.0, m.At(up, down), 1e-12)
	for i := 0; i < m.Size(); i++ {
		assert.True(t, math.IsNaN(m.At(flat, i)))
		assert.True(t, math.IsNaN(m.At(i, flat)))
	}
}

func TestPearsonPairwiseComplete(t *testing.T) {
	nan := math.NaN()
	assert.InDelta(t, 1.0, analysis.Pearson([]float64{1, 2, nan, 4}, []float64{2, 4, 5, 8}), 1e-12)
	assert.True(t, math.IsNaN(analysis.Pearson([]float64{1, nan}, []float64{1, 2})))
	assert.True(t, math.IsNaN(analysis.Pearson(nil, nil)))
}

func TestMatrixJSONUsesNullForNaN(t *testing.T) {
	tbl := datasettest.Table(t)
	m, err := analysis.Correlation(tbl)
	require.NoError(t, err)

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, m.Names, decoded.Columns)
	ec := m.Index("EmployeeCount")
	assert.Nil(t, decoded.Values[ec][ec])
	require.NotNil(t, decoded.Values[0][0])
	assert.InDelta(t, 1.0, *decoded.Values[0][0], 1e-12)
}

func TestCrosstabBy(t *testing.T) {
	tbl := datasettest.Table(t)
	ct, err := analysis.CrosstabBy(tbl, core.ColDepartment, core.ColAttrition)
	require.NoError(t, err)

	assert.Equal(t, []string{"Sales", "Research & Development", "Human Resources"}, ct.Categories)
	assert.Equal(t, []string{"Yes", "No"}, ct.Hues)
	assert.Equal(t, 2.0, ct.Count("Sales", "Yes"))
	assert.Equal(t, 1.0, ct.Count("Sales", "No"))
	assert.Equal(t, 6.0, ct.Count("Research & Development", "No"))
	assert.Equal(t, 0.0, ct.Count("Marketing", "No"))
	assert.Equal(t, float64(datasettest.Rows), ct.Total())
	assert.Equal(t, 6.0, ct.Max())
}

func TestCrosstabNumericLevelsSort(t *testing.T) {
	tbl := datasettest.Table(t)
	ct, err := analysis.CrosstabBy(tbl, core.ColWorkLifeBalance, core.ColAttrition)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ct.Categories)
}

func TestCrosstabOrderedDropsUnsetBands(t *testing.T) {
	tbl := datasettest.Table(t)
	order := make([]string, 0, 5)
	for _, b := range core.AgeBands() {
		order = append(order, b.String())
	}
	ct, err := analysis.CrosstabOrdered(tbl, core.ColAgeGroup, core.ColAttrition, order)
	require.NoError(t, err)

	assert.Equal(t, order, ct.Categories)
	// Ages 17 and 66 have no band.
	assert.Equal(t, float64(datasettest.Rows-2), ct.Total())
	assert.Equal(t, 2.0, ct.Count("18-25", "Yes"))
	assert.Equal(t, 1.0, ct.Count("56-65", "No"))
}

func TestGroupFloats(t *testing.T) {
	tbl := datasettest.Table(t)
	g, err := analysis.GroupFloats(tbl, core.ColTotalWorkingYears, core.ColWorkLifeBalance, core.ColAttrition)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3", "4"}, g.Levels)
	assert.Equal(t, []float64{8}, g.Values("1", "Yes"))
	assert.ElementsMatch(t, []float64{12, 8}, g.Values("2", "No"))
	assert.Len(t, g.HueValues("Yes"), 4)

	_, err = analysis.GroupFloats(tbl, core.ColDepartment, "", core.ColAttrition)
	assert.Error(t, err)
}

func TestHistogramBy(t *testing.T) {
	tbl := datasettest.Table(t)
	h, err := analysis.HistogramBy(tbl, core.ColAge, core.ColAttrition, 20)
	require.NoError(t, err)

	require.Equal(t, 20, h.Bins())
	assert.Equal(t, 17.0, h.Edges[0])
	assert.Equal(t, 66.0, h.Edges[20])

	var total float64
	for _, row := range h.Counts {
		require.Len(t, row, 20)
		for _, v := range row {
			total += v
		}
	}
	assert.Equal(t, float64(datasettest.Rows), total, "max value lands in the last bin")
	assert.GreaterOrEqual(t, h.Max(), 1.0)
}
