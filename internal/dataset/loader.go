package dataset

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"attrition/internal/log"
)

// Loader memoizes the derived table for one fixed path. The first call to
// Table reads and derives; later calls return the same *Table until the
// source file's modification time or size changes, or Invalidate is called.
type Loader struct {
	path   string
	logger *log.Logger

	mu      sync.Mutex
	table   *Table
	modTime time.Time
	size    int64
	stale   bool
	version uint64

	loads atomic.Int64
}

// NewLoader returns a loader for path. Nothing is read until Table.
func NewLoader(path string, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Loader{
		path:   path,
		logger: logger.WithComponent(log.ComponentDataset),
	}
}

// Path returns the source path.
func (l *Loader) Path() string { return l.path }

// Loads reports how many times the source has been read.
func (l *Loader) Loads() int64 { return l.loads.Load() }

// Version returns the version of the memoized table, 0 before the first load.
func (l *Loader) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

// Table returns the memoized table, loading it on first use or after an
// invalidation.
func (l *Loader) Table(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.table != nil && !l.stale {
		info, err := os.Stat(l.path)
		if err != nil {
			l.logger.WarnContext(ctx, "Dataset source unreachable, serving cached table",
				log.FieldSource, l.path,
				log.FieldVersion, l.version,
				log.FieldError, err)
			return l.table, nil
		}
		if info.ModTime().Equal(l.modTime) && info.Size() == l.size {
			return l.table, nil
		}
		l.logger.InfoContext(ctx, "Dataset source changed",
			log.FieldSource, l.path,
			"previous_mod_time", l.modTime,
			"mod_time", info.ModTime())
	}

	return l.reload(ctx)
}

// Invalidate marks the memoized table stale; the next Table call reads the
// source again.
func (l *Loader) Invalidate(reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stale = true
	l.logger.Info("Dataset invalidated",
		log.FieldOperation, log.OpInvalidate,
		log.FieldSource, l.path,
		"reason", reason)
}

// reload must be called with l.mu held.
func (l *Loader) reload(ctx context.Context) (*Table, error) {
	start := time.Now()
	l.loads.Add(1)

	loaded, err := Load(l.path)
	if err != nil {
		l.logger.ErrorContext(ctx, "Dataset load failed",
			log.FieldOperation, log.OpLoad,
			log.FieldSource, l.path,
			"error_type", log.ErrorTypeDataUnavailable,
			log.FieldError, err)
		return nil, err
	}
	derived, err := WithAgeBand(loaded)
	if err != nil {
		l.logger.ErrorContext(ctx, "Dataset derive failed",
			log.FieldOperation, log.OpDerive,
			log.FieldSource, l.path,
			log.FieldError, err)
		return nil, err
	}

	l.version++
	derived.version = l.version
	l.table = derived
	l.modTime = derived.modTime
	l.size = derived.size
	l.stale = false

	op := log.OpLoad
	if l.version > 1 {
		op = log.OpReload
	}
	fields := log.NewFields().
		WithOperation(op).
		WithDataset(l.path, l.version, derived.Rows(), derived.Columns())
	fields[log.FieldDuration] = time.Since(start).Milliseconds()
	l.logger.InfoContext(ctx, "Dataset loaded", fields.ToSlice()...)

	return derived, nil
}
