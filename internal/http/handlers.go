package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"anggaran/internal/dataset"
)

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady reports readiness. The external source never makes the
// service unready because every failure falls back to the static dataset.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if n := len(dataset.Departments()); n == 0 {
		checks["static_dataset"] = "failed: empty"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["static_dataset"] = map[string]any{"departments": n, "status": "ok"}
	}

	checks["external_source"] = s.externalSourceCheck(ctx)

	if s.cacheEntries != nil {
		checks["cache"] = map[string]any{"entries": s.cacheEntries(), "status": "ok"}
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	_ = writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) externalSourceCheck(ctx context.Context) string {
	conn := s.defaults.Conn
	switch {
	case !s.defaults.UseExternal:
		return "disabled"
	case !conn.Complete():
		return "incomplete: using static dataset"
	case s.pinger == nil:
		return "not_configured"
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.pinger.Ping(pctx, conn); err != nil {
		return "unreachable: using static dataset"
	}
	return "ok"
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	cacheEntries := 0
	if s.cacheEntries != nil {
		cacheEntries = s.cacheEntries()
	}

	metric := func(name, help, kind string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	w.WriteHeader(http.StatusOK)
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "Responses with a 5xx status", "counter", traceMetrics.ErrorResponses)
	metric("http_requests_in_flight", "Requests currently being served", "gauge", traceMetrics.InFlight)
	metric("pipeline_runs_total", "Dashboard pipeline evaluations", "counter", s.appMetrics.pipelineRuns.Load())
	metric("pipeline_fallbacks_total", "Runs that fell back to the static dataset", "counter", s.appMetrics.fallbacks.Load())
	metric("exports_total", "Completed exports", "counter", s.appMetrics.exports.Load())
	metric("connection_tests_total", "Connection tests performed", "counter", s.appMetrics.connectionTests.Load())
	metric("source_cache_entries", "Cached external department tables", "gauge", cacheEntries)
	metric("rate_limit_hits_total", "Requests refused by the rate limiter", "counter", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "Suspicious requests detected", "counter", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "Application uptime in seconds", "gauge", fmt.Sprintf("%.0f", time.Since(s.appMetrics.uptime).Seconds()))
}
