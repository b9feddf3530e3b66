// Package observability owns the Prometheus collectors of the produtos API.
package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luizgft/produtos-api/internal/platform/httpx"
)

// Outcomes recorded for product service operations.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics holds a private registry with the request collectors and the
// product operation counter. It implements products.OperationRecorder.
type Metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	operations *prometheus.CounterVec
}

// NewMetrics registers every collector the API exports on /metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "produtos",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served, by method, chi route pattern and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "produtos",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request latency, by method and chi route pattern.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "route"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "produtos",
			Name:      "operations_total",
			Help:      "Product service calls, by operation and outcome.",
		}, []string{"op", "result"}),
	}
	m.registry.MustRegister(m.requests, m.latency, m.operations)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable), "metrics disabled")
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts each request once the router has resolved its pattern,
// so /api/produtos/42 and /api/produtos/7 share the /api/produtos/{id} series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveOperation records the outcome of one product service call.
func (m *Metrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, operationResult(err)).Inc()
}

func operationResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, httpx.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, httpx.ErrBadRequest), errors.Is(err, httpx.ErrValidation), errors.Is(err, httpx.ErrDuplicate):
		return ResultRejected
	default:
		return ResultError
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
