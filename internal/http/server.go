package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"attrition/internal/cache"
	"attrition/internal/dataset"
	"attrition/internal/log"
	"attrition/internal/middleware/ratelimit"
	"attrition/internal/middleware/security"
	"attrition/internal/middleware/trace"
	"attrition/internal/report"
	appweb "attrition/web"
)

// Dataset is the memoized table the server reads and invalidates.
type Dataset interface {
	Table(ctx context.Context) (*dataset.Table, error)
	Invalidate(reason string)
	Version() uint64
	Loads() int64
}

// Options tune a Server. Zero values take defaults.
type Options struct {
	Logger *log.Logger
	// ReloadLimit is the number of POST /reload calls allowed per client
	// per minute.
	ReloadLimit int
	// StaticMaxAge is the Cache-Control max-age for /static/, in seconds.
	StaticMaxAge int
}

type Server struct {
	http.Server
	templates  *template.Template
	data       Dataset
	dashboards *report.Builder
	logger     *log.Logger

	limiter  *ratelimit.Limiter
	trace    *trace.Middleware
	clientIP *security.ClientIP
	janitor  *cache.Janitor
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, data Dataset, dashboards *report.Builder, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.StaticMaxAge == 0 {
		opts.StaticMaxAge = 3600
	}

	mux := http.NewServeMux()
	s := &Server{
		data:       data,
		dashboards: dashboards,
		logger:     opts.Logger.WithComponent(log.ComponentHTTP),
		limiter:    ratelimit.NewLimiter(ratelimit.Config{Requests: opts.ReloadLimit, Window: time.Minute}),
		clientIP:   security.NewClientIP(),
		janitor:    cache.NewJanitor(),
		started:    time.Now(),
	}
	s.trace = trace.NewMiddleware(s.clientIP.Extract)

	s.janitor.Register(dashboards.Cache())
	s.janitor.Register(s.limiter)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.WithComponent(log.ComponentTemplate).Error("Failed parsing templates",
			log.FieldError, err,
			"error_type", log.ErrorTypeConfiguration)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.CacheControl(opts.StaticMaxAge)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /charts/{file}", s.handleChart)
	mux.HandleFunc("GET /api/correlation", s.handleCorrelation)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.Handle("POST /reload", s.limiter.Middleware(s.clientIP.Extract, s.writeRateLimited)(http.HandlerFunc(s.handleReload)))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           log.Middleware(opts.Logger)(s.trace.Middleware(headers.Middleware(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// StartMaintenance begins periodic expiry sweeps of the dashboard cache and
// the rate limiter.
func (s *Server) StartMaintenance(interval time.Duration) {
	s.janitor.Start(interval)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.janitor.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
