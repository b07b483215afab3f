package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoaor_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autoaor_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	occurrencesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoaor_occurrences_total",
			Help: "Total number of predicted transit and eclipse occurrences.",
		},
		[]string{"event"},
	)

	plansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoaor_plans_total",
			Help: "Total number of observation plans by event and outcome.",
		},
		[]string{"event", "outcome"},
	)

	planDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autoaor_plan_duration_seconds",
			Help:    "Time to build one observation plan.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(occurrencesTotal)
	prometheus.MustRegister(plansTotal)
	prometheus.MustRegister(planDurationSeconds)
}

// Plan outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordOccurrences counts n predicted occurrences of event.
func RecordOccurrences(event string, n int) {
	if n <= 0 {
		return
	}
	occurrencesTotal.WithLabelValues(event).Add(float64(n))
}

// RecordPlan counts one planning run and its duration.
func RecordPlan(event, outcome string, d time.Duration) {
	plansTotal.WithLabelValues(event, outcome).Inc()
	planDurationSeconds.Observe(d.Seconds())
}

var knownRoutes = map[string]bool{
	"/":                   true,
	"/healthz":            true,
	"/readyz":             true,
	"/metrics":            true,
	"/api/v1/windows":     true,
	"/api/v1/constraints": true,
	"/api/v1/calendar":    true,
	"/api/v1/plans":       true,
	"/mcp":                true,
}

// normalizeRoute bounds the path label to the registered routes.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
