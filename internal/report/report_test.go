package report_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrition/internal/charts"
	"attrition/internal/core"
	"attrition/internal/dataset"
	"attrition/internal/dataset/datasettest"
	"attrition/internal/log"
	"attrition/internal/report"
)

func stubChart(name string) charts.Chart {
	return charts.New(name, "Stub "+name, func(t *dataset.Table) ([]byte, error) {
		return []byte(name), nil
	})
}

func newBuilder(t *testing.T, opts report.Options) (*report.Builder, *dataset.Loader) {
	t.Helper()
	loader := dataset.NewLoader(datasettest.Path(t), log.Discard())
	if opts.Charts == nil {
		opts.Charts = []charts.Chart{stubChart("one"), stubChart("two"), stubChart("three")}
	}
	return report.NewBuilder(loader, opts), loader
}

func TestBuildAssemblesDashboard(t *testing.T) {
	b, _ := newBuilder(t, report.Options{PreviewRows: 5})

	d, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, report.Title, d.Title)
	assert.Equal(t, datasettest.Rows, d.Rows)
	assert.Equal(t, datasettest.Columns+1, d.Cols, "AgeGroup is derived on load")
	assert.Len(t, d.Columns, d.Cols)
	assert.Len(t, d.Preview, 5)
	assert.Equal(t, uint64(1), d.Version)
	require.NotNil(t, d.Correlation)
	assert.False(t, d.GeneratedAt.IsZero())

	var names []string
	for _, c := range d.Charts {
		names = append(names, c.Name)
		assert.Equal(t, []byte(c.Name), c.PNG)
	}
	assert.Equal(t, []string{"one", "two", "three"}, names)

	c, ok := d.Chart("two")
	require.True(t, ok)
	assert.Equal(t, "Stub two", c.Title)
	_, ok = d.Chart("four")
	assert.False(t, ok)
}

func TestBuildCachesPerVersion(t *testing.T) {
	b, loader := newBuilder(t, report.Options{})
	ctx := context.Background()

	first, err := b.Build(ctx)
	require.NoError(t, err)
	second, err := b.Build(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int64(1), b.Builds())

	loader.Invalidate("test")
	third, err := b.Build(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, uint64(2), third.Version)
	assert.Equal(t, int64(2), b.Builds())
	assert.Equal(t, 2, b.Cache().Size())
}

func TestBuildConcurrentCallsShareOneRender(t *testing.T) {
	b, _ := newBuilder(t, report.Options{})

	var wg sync.WaitGroup
	results := make([]*report.Dashboard, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := b.Build(context.Background())
			assert.NoError(t, err)
			results[i] = d
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), b.Builds())
	for _, d := range results {
		assert.Same(t, results[0], d)
	}
}

func TestBuildFailsWholeDashboardOnChartError(t *testing.T) {
	boom := errors.New("boom")
	b, _ := newBuilder(t, report.Options{Charts: []charts.Chart{
		stubChart("ok"),
		charts.New("bad", "Bad", func(*dataset.Table) ([]byte, error) { return nil, boom }),
	}})

	d, err := b.Build(context.Background())
	require.Error(t, err)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, b.Cache().Size())
}

func TestBuildDataUnavailable(t *testing.T) {
	loader := dataset.NewLoader(t.TempDir()+"/missing.csv", log.Discard())
	b := report.NewBuilder(loader, report.Options{Charts: []charts.Chart{stubChart("one")}})

	_, err := b.Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDataUnavailable)
}

func TestBuildWithRealCharts(t *testing.T) {
	if testing.Short() {
		t.Skip("renders every chart")
	}
	b, _ := newBuilder(t, report.Options{Charts: charts.All(), CacheTTL: time.Minute})

	d, err := b.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, d.Charts, len(charts.All()))
	for _, c := range d.Charts {
		assert.NotEmpty(t, c.PNG, c.Name)
	}
}

func TestBuildSurvivesCallerCancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	slow := charts.New("slow", "Slow", func(t *dataset.Table) ([]byte, error) {
		close(started)
		<-release
		return []byte("slow"), nil
	})
	b, _ := newBuilder(t, report.Options{
		Charts:  []charts.Chart{slow, stubChart("next")},
		Workers: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		d   *report.Dashboard
		err error
	}
	done := make(chan result, 1)
	go func() {
		d, err := b.Build(ctx)
		done <- result{d, err}
	}()

	<-started
	cancel()
	close(release)

	res := <-done
	require.NoError(t, res.err)
	require.Len(t, res.d.Charts, 2)
	assert.Equal(t, "next", res.d.Charts[1].Name)

	again, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Same(t, res.d, again)
	assert.Equal(t, int64(1), b.Builds())
}
