// Package report assembles the dashboard from the shared table and caches the
// result per dataset version.
package report

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"attrition/internal/analysis"
	"attrition/internal/cache"
	"attrition/internal/charts"
	"attrition/internal/dataset"
	"attrition/internal/log"
)

// Title is the dashboard heading.
const Title = "IBM HR Employee Attrition & Performance Dashboard"

// TableSource yields the current derived table.
type TableSource interface {
	Table(ctx context.Context) (*dataset.Table, error)
}

// RenderedChart is one chart image in display order.
type RenderedChart struct {
	Name  string
	Title string
	PNG   []byte
}

// Dashboard is everything the page shows for one dataset version.
type Dashboard struct {
	Title       string
	Source      string
	Version     uint64
	Rows        int
	Cols        int
	Columns     []string
	Preview     [][]string
	Charts      []RenderedChart
	Correlation *analysis.Matrix
	GeneratedAt time.Time
}

// Chart returns the rendered chart called name.
func (d *Dashboard) Chart(name string) (RenderedChart, bool) {
	for _, c := range d.Charts {
		if c.Name == name {
			return c, true
		}
	}
	return RenderedChart{}, false
}

// Options tune a Builder. Zero values take defaults.
type Options struct {
	PreviewRows int
	CacheSize   int
	CacheTTL    time.Duration
	Charts      []charts.Chart
	// Workers caps how many charts render at once.
	Workers     int
	Logger      *log.Logger
}

// Builder renders dashboards.
type Builder struct {
	source      TableSource
	charts      []charts.Chart
	previewRows int
	workers     int
	cache       *cache.LRU[*Dashboard]
	group       singleflight.Group
	logger      *log.Logger
	now         func() time.Time

	builds atomic.Int64
}

// NewBuilder returns a builder reading from source.
func NewBuilder(source TableSource, opts Options) *Builder {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = 50
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 8
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.Charts == nil {
		opts.Charts = charts.All()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	return &Builder{
		source:      source,
		charts:      opts.Charts,
		previewRows: opts.PreviewRows,
		workers:     opts.Workers,
		cache:       cache.NewLRU[*Dashboard](opts.CacheSize, opts.CacheTTL),
		logger:      opts.Logger.WithComponent(log.ComponentReport),
		now:         time.Now,
	}
}

// Cache exposes the dashboard cache so it can be swept and inspected.
func (b *Builder) Cache() *cache.LRU[*Dashboard] { return b.cache }

// Has reports whether the builder renders a chart called name.
func (b *Builder) Has(name string) bool {
	for _, c := range b.charts {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Builds reports how many dashboards have been rendered.
func (b *Builder) Builds() int64 { return b.builds.Load() }

// Build returns the dashboard for the current table, rendering it if the
// version is not cached. Any chart failure fails the whole build.
func (b *Builder) Build(ctx context.Context) (*Dashboard, error) {
	t, err := b.source.Table(ctx)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s@%d", t.Source(), t.Version())
	if d, ok := b.cache.Get(key); ok {
		return d, nil
	}

	// The build is shared by every caller waiting on key, so one caller
	// going away must not cancel it for the others.
	v, err, _ := b.group.Do(key, func() (any, error) {
		if d, ok := b.cache.Get(key); ok {
			return d, nil
		}
		d, err := b.assemble(context.WithoutCancel(ctx), t)
		if err != nil {
			return nil, err
		}
		b.cache.Set(key, d)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dashboard), nil
}

func (b *Builder) assemble(ctx context.Context, t *dataset.Table) (*Dashboard, error) {
	start := b.now()
	rendered := make([]RenderedChart, len(b.charts))

	chartLog := b.logger.WithComponent(log.ComponentCharts)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, c := range b.charts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			began := time.Now()
			png, err := c.Render(t)
			if err != nil {
				return err
			}
			rendered[i] = RenderedChart{Name: c.Name, Title: c.Title, PNG: png}
			chartLog.Debug("Chart rendered",
				log.FieldChart, c.Name,
				log.FieldBytes, len(png),
				log.FieldDuration, time.Since(began).Milliseconds(),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		b.logger.Error("Dashboard build failed", log.NewFields().
			WithOperation(log.OpRender).
			WithError(err).
			ToSlice()...)
		return nil, fmt.Errorf("build dashboard: %w", err)
	}

	corr, err := analysis.Correlation(t)
	if err != nil {
		return nil, fmt.Errorf("build dashboard: %w", err)
	}

	b.builds.Add(1)
	d := &Dashboard{
		Title:       Title,
		Source:      t.Source(),
		Version:     t.Version(),
		Rows:        t.Rows(),
		Cols:        t.Columns(),
		Columns:     t.Names(),
		Preview:     t.Head(b.previewRows),
		Charts:      rendered,
		Correlation: corr,
		GeneratedAt: b.now(),
	}
	fields := log.NewFields().
		WithOperation(log.OpRender).
		WithDataset(d.Source, d.Version, d.Rows, d.Cols)
	fields[log.FieldDuration] = d.GeneratedAt.Sub(start).Milliseconds()
	b.logger.Info("Dashboard built", fields.ToSlice()...)
	return d, nil
}
