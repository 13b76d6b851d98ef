// Package http serves the budget dashboard, its chart data and exports.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	applog "anggaran/internal/log"
	"anggaran/internal/middleware/ratelimit"
	"anggaran/internal/middleware/security"
	"anggaran/internal/middleware/trace"
	"anggaran/internal/pipeline"
	"anggaran/internal/source"
	appweb "anggaran/web"
)

// Runner evaluates one dashboard request.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) pipeline.Result
}

// Pinger checks that a connection can be opened.
type Pinger interface {
	Ping(ctx context.Context, p source.ConnParams) error
}

type Options struct {
	Runner   Runner
	Pinger   Pinger
	Defaults Defaults
	Logger   *applog.Logger
	// CacheEntries reports the size of the external source cache; optional.
	CacheEntries func() int
	RateLimit    ratelimit.Config
}

type appMetrics struct {
	pipelineRuns    atomic.Int64
	fallbacks       atomic.Int64
	exports         atomic.Int64
	connectionTests atomic.Int64
	uptime          time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	runner    Runner
	pinger    Pinger
	defaults  Defaults
	logger    *applog.Logger

	traceMiddleware  *trace.Middleware
	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter
	cacheEntries     func() int
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		runner:       opts.Runner,
		pinger:       opts.Pinger,
		defaults:     opts.Defaults,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		cacheEntries: opts.CacheEntries,
		appMetrics:   &appMetrics{uptime: time.Now()},
	}
	s.securityDetector = security.NewDetector(logger)
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)
	s.rateLimiter = ratelimit.NewLimiter(opts.RateLimit, logger)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err.Error())
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err.Error())
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/charts", s.handleCharts)
	mux.HandleFunc("/export/{format}", s.handleExport)
	mux.HandleFunc("/ui/connection-test", s.handleConnectionTest)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var h http.Handler = mux
	h = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, http.MethodPost)(h)
	h = s.securityDetector.Middleware(s.securityDetector.ExtractClientIP)(h)
	h = headers.Middleware(h)
	h = s.traceMiddleware.Middleware(h)
	s.Handler = h

	return s
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// run evaluates req and records pipeline counters.
func (s *Server) run(ctx context.Context, req pipeline.Request) pipeline.Result {
	res := s.runner.Run(ctx, req)
	s.appMetrics.pipelineRuns.Add(1)
	if res.Fallback(req.Settings) {
		s.appMetrics.fallbacks.Add(1)
	}
	return res
}
