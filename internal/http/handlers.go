package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"attrition/internal/core"
	"attrition/internal/log"
	"attrition/internal/report"
)

// pageData is what dashboard.html renders.
type pageData struct {
	*report.Dashboard
	Footer string
}

type errorPage struct {
	Title   string
	Status  int
	Message string
}

const footer = "This dashboard provides insights into IBM HR data, analyzing attrition and employee performance."

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.templates == nil {
		s.logger.ErrorContext(ctx, "Templates not loaded",
			log.FieldPath, r.URL.Path,
			"error_type", log.ErrorTypeConfiguration)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	d, err := s.dashboards.Build(ctx)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	resp := NewResponse().Header("Cache-Control", "no-cache")
	if err := resp.HTML(s.templates, "dashboard.html", pageData{Dashboard: d, Footer: footer}); err != nil {
		s.logger.WithComponent(log.ComponentTemplate).ErrorContext(ctx, "Dashboard template execution failed",
			log.FieldError, err,
			"template", "dashboard.html")
		InternalServerError("template execution failed").Write(w)
		return
	}
	resp.Write(w)
}

// renderError writes the error page for a failed dashboard build. Missing
// or unreadable data is a 503; anything else is a 500.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	logArgs := []any{log.FieldError, err, log.FieldStatusCode, status}
	if status == http.StatusServiceUnavailable {
		logArgs = append(logArgs, "error_type", log.ErrorTypeDataUnavailable)
		s.logger.WarnContext(r.Context(), "Dashboard unavailable", logArgs...)
	} else {
		logArgs = append(logArgs, "error_type", log.ErrorTypeInternal)
		s.logger.ErrorContext(r.Context(), "Dashboard build failed", logArgs...)
	}

	resp := NewResponse().Status(status).Header("Retry-After", "30")
	page := errorPage{Title: report.Title, Status: status, Message: message}
	if s.templates == nil || resp.HTML(s.templates, "error.html", page) != nil {
		resp.Text(message)
	}
	resp.Write(w)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrDataUnavailable):
		return http.StatusServiceUnavailable, "The employee dataset is not available. Check that " + core.DataFile + " is present and readable."
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "The dashboard took too long to build. Please try again."
	default:
		return http.StatusInternalServerError, "The dashboard could not be built."
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok || !s.dashboards.Has(name) {
		s.logger.DebugContext(r.Context(), "Unknown chart requested",
			log.FieldPath, r.URL.Path,
			"error_type", log.ErrorTypeNotFound)
		NotFoundError(fmt.Sprintf("unknown chart %q", r.PathValue("file"))).Write(w)
		return
	}

	d, err := s.dashboards.Build(r.Context())
	if err != nil {
		status, message := statusFor(err)
		s.logger.WarnContext(r.Context(), "Chart unavailable", log.FieldChart, name, log.FieldError, err)
		ErrorJSON(status, message).Write(w)
		return
	}
	chart, ok := d.Chart(name)
	if !ok {
		NotFoundError(fmt.Sprintf("unknown chart %q", name)).Write(w)
		return
	}

	etag := fmt.Sprintf(`"v%d-%s"`, d.Version, name)
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	NewResponse().
		Header("ETag", etag).
		Header("Cache-Control", "no-cache").
		Body("image/png", chart.PNG).
		Write(w)
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboards.Build(r.Context())
	if err != nil {
		status, message := statusFor(err)
		ErrorJSON(status, message).Write(w)
		return
	}
	NewResponse().JSON(d.Correlation).Write(w)
}

type summaryResponse struct {
	Source      string    `json:"source"`
	Version     uint64    `json:"version"`
	Rows        int       `json:"rows"`
	Columns     int       `json:"columns"`
	Names       []string  `json:"names"`
	Charts      []string  `json:"charts"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboards.Build(r.Context())
	if err != nil {
		status, message := statusFor(err)
		ErrorJSON(status, message).Write(w)
		return
	}
	names := make([]string, len(d.Charts))
	for i, c := range d.Charts {
		names[i] = c.Name
	}
	NewResponse().JSON(summaryResponse{
		Source:      d.Source,
		Version:     d.Version,
		Rows:        d.Rows,
		Columns:     d.Cols,
		Names:       d.Columns,
		Charts:      names,
		GeneratedAt: d.GeneratedAt,
	}).Write(w)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	previous := s.data.Version()
	s.data.Invalidate("http reload from " + s.clientIP.Extract(r))
	NewResponse().
		Status(http.StatusAccepted).
		JSON(map[string]any{
			"status":           "invalidated",
			"previous_version": previous,
		}).
		Write(w)
}

func (s *Server) writeRateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorJSON(http.StatusTooManyRequests, "reload rate limit exceeded, try again later").Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports ready once the dataset can be loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if t, err := s.data.Table(ctx); err != nil {
		checks["dataset"] = "failed: " + err.Error()
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["dataset"] = map[string]any{
			"status":  "ok",
			"version": t.Version(),
			"rows":    t.Rows(),
		}
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.trace.GetMetrics()
	limitMetrics := s.limiter.GetMetrics()
	cacheStats := s.dashboards.Cache().Stats()

	var b strings.Builder
	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_requests_in_flight", "gauge", "HTTP requests currently being served", traceMetrics.InFlight)
	metric("http_client_errors_total", "counter", "Responses with a 4xx status", traceMetrics.ClientErrors)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric("dataset_loads_total", "counter", "Times the dataset file has been read", s.data.Loads())
	metric("dataset_version", "gauge", "Version of the memoized dataset", s.data.Version())
	metric("dashboard_builds_total", "counter", "Dashboards rendered", s.dashboards.Builds())
	metric("dashboard_cache_entries", "gauge", "Dashboards currently cached", cacheStats.Entries)
	metric("dashboard_cache_hits_total", "counter", "Dashboard cache hits", cacheStats.Hits)
	metric("dashboard_cache_misses_total", "counter", "Dashboard cache misses", cacheStats.Misses)
	metric("reload_rate_limited_total", "counter", "Reload requests rejected by the rate limiter", limitMetrics.Rejected)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", limitMetrics.ClientCount)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", strconv.FormatFloat(time.Since(s.started).Seconds(), 'f', 0, 64))

	NewResponse().Body("text/plain; version=0.0.4; charset=utf-8", []byte(b.String())).Write(w)
}
