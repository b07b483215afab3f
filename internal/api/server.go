// Package api serves the event window calculator and the AOR planner over HTTP.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"

	"github.com/ccampo133/auto-aor/internal/auth"
	"github.com/ccampo133/auto-aor/internal/health"
	"github.com/ccampo133/auto-aor/internal/httputil"
	"github.com/ccampo133/auto-aor/internal/metrics"
	"github.com/ccampo133/auto-aor/internal/plan"
	"github.com/ccampo133/auto-aor/web"
)

// Options configures NewServer.
type Options struct {
	Addr               string
	Auth               auth.Config
	TrustProxy         bool
	MaxConcurrentPerIP int
	Planner            *plan.Planner
	// MCP, when set, is mounted at /mcp.
	MCP   http.Handler
	Ready []health.Check
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(opts Options, logger *slog.Logger) *Server {
	maxPerIP := opts.MaxConcurrentPerIP
	if maxPerIP <= 0 {
		maxPerIP = 10
	}
	limiter := httputil.NewLimiter(maxPerIP, 0).Middleware(opts.TrustProxy)
	route := func(h http.Handler) http.Handler {
		return limiter(handlers.CompressHandler(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(opts.Ready...))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /{$}", http.FileServerFS(web.Content))

	mux.Handle("POST /api/v1/windows", route(windowsHandler(logger)))
	mux.Handle("POST /api/v1/constraints", route(constraintsHandler(logger)))
	mux.Handle("GET /api/v1/calendar", route(calendarHandler()))
	if opts.Planner != nil {
		mux.Handle("POST /api/v1/plans", route(plansHandler(logger, opts.Planner)))
	}

	if opts.MCP != nil {
		mux.Handle("/mcp", limiter(streaming(opts.MCP, logger)))
	}

	// Build middleware chain: metrics -> logging -> recovery -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(opts.Auth)(handler)
	handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
		handlers.PrintRecoveryStack(true),
	)(handler)
	handler = loggingMiddleware(logger, opts.TrustProxy)(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// streaming clears the server write deadline for handlers that hold the
// response open, such as streamable MCP sessions.
func streaming(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := http.NewResponseController(w).SetWriteDeadline(time.Time{})
		if err != nil && !errors.Is(err, http.ErrNotSupported) {
			logger.Warn("clearing write deadline", "component", "api", "path", r.URL.Path, "error", err)
		}
		next.ServeHTTP(w, r)
	})
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// Flush lets streaming MCP responses through the recorder.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := httputil.RequestID(r)
			w.Header().Set(httputil.RequestIDHeader, id)
			r = r.WithContext(httputil.WithRequestID(r.Context(), id))
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
