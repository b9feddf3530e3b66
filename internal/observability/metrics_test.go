package observability

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/luizgft/produtos-api/internal/platform/httpx"
)

func newInstrumentedRouter(m *Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/produtos/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Put("/api/produtos/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Delete("/api/produtos/{id}", func(w http.ResponseWriter, r *http.Request) {})
	return r
}

func TestMiddlewareSeparatesMethodsOnSameRoute(t *testing.T) {
	m := NewMetrics()
	router := newInstrumentedRouter(m)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/produtos/1", nil),
		httptest.NewRequest(http.MethodGet, "/api/produtos/2", nil),
		httptest.NewRequest(http.MethodPut, "/api/produtos/2", nil),
		httptest.NewRequest(http.MethodDelete, "/api/produtos/3", nil),
	} {
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/produtos/{id}", "200")); got != 2 {
		t.Fatalf("expected 2 GET requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("PUT", "/api/produtos/{id}", "400")); got != 1 {
		t.Fatalf("expected 1 PUT request, got %v", got)
	}
	// A handler that never writes still counts as 200.
	if got := testutil.ToFloat64(m.requests.WithLabelValues("DELETE", "/api/produtos/{id}", "200")); got != 1 {
		t.Fatalf("expected 1 DELETE request, got %v", got)
	}
	if n := testutil.CollectAndCount(m.latency); n != 3 {
		t.Fatalf("expected 3 latency series, got %d", n)
	}
}

func TestMiddlewareUnmatchedRoute(t *testing.T) {
	m := NewMetrics()
	router := newInstrumentedRouter(m)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/elsewhere", nil))

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Fatalf("expected unmatched 404 to be counted, got %v", got)
	}
}

func TestObserveOperationResults(t *testing.T) {
	m := NewMetrics()

	m.ObserveOperation("get", nil)
	m.ObserveOperation("get", fmt.Errorf("wrapped: %w", httpx.ErrNotFound))
	m.ObserveOperation("update", fmt.Errorf("%w: id must be positive", httpx.ErrBadRequest))
	m.ObserveOperation("delete", errors.New("boom"))

	cases := []struct{ op, result string }{
		{"get", ResultOK},
		{"get", ResultNotFound},
		{"update", ResultRejected},
		{"delete", ResultError},
	}
	for _, tc := range cases {
		if got := testutil.ToFloat64(m.operations.WithLabelValues(tc.op, tc.result)); got != 1 {
			t.Fatalf("expected one %s/%s, got %v", tc.op, tc.result, got)
		}
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.ObserveOperation("list", nil)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, `produtos_operations_total{op="list",result="ok"} 1`) {
		t.Fatalf("expected operation counter in exposition, got: %s", body)
	}
}

func TestNilMetricsIsInert(t *testing.T) {
	var m *Metrics

	m.ObserveOperation("get", nil)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
