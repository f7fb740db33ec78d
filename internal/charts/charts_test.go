package charts_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrition/internal/charts"
	"attrition/internal/dataset/datasettest"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestAllOrder(t *testing.T) {
	var names []string
	for _, c := range charts.All() {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Title)
	}
	assert.Equal(t, []string{"attrition", "age", "department", "worklife", "gender", "agegroup", "correlation"}, names)
}

func TestLookup(t *testing.T) {
	c, ok := charts.Lookup("gender")
	require.True(t, ok)
	assert.Equal(t, "Attrition by Gender", c.Title)

	_, ok = charts.Lookup("payroll")
	assert.False(t, ok)
}

func TestRenderProducesPNG(t *testing.T) {
	table := datasettest.Table(t)
	for _, c := range charts.All() {
		c := c
		t.Run(c.Name, func(t *testing.T) {
			png, err := c.Render(table)
			require.NoError(t, err)
			require.Greater(t, len(png), len(pngSignature))
			assert.True(t, bytes.HasPrefix(png, pngSignature), "not a PNG")
		})
	}
}

func TestRenderIsRepeatable(t *testing.T) {
	table := datasettest.Table(t)
	c, ok := charts.Lookup("department")
	require.True(t, ok)

	first, err := c.Render(table)
	require.NoError(t, err)
	second, err := c.Render(table)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
