package e2e

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/luizgft/produtos-api/internal/app"
	"github.com/luizgft/produtos-api/internal/i18n"
	jobmetrics "github.com/luizgft/produtos-api/internal/jobs"
	"github.com/luizgft/produtos-api/internal/platform/httpx"
	"github.com/luizgft/produtos-api/internal/products"
	"github.com/luizgft/produtos-api/jobs"
)

type captureEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (c *captureEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func (c *captureEnqueuer) drain() []*asynq.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.tasks
	c.tasks = nil
	return out
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, reader))
	return rr
}

func TestProductLifecycleEmitsEvents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	enqueuer := &captureEnqueuer{}
	service := products.NewService(products.NewMemoryRepository(), products.ServiceConfig{
		Logger:    logger,
		Publisher: jobs.NewClientWithEnqueuer(enqueuer),
	})
	responder := httpx.ErrorResponder{Logger: logger, Localize: products.LocalizeError(i18n.New())}
	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          &app.Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second},
		ProductsHandler: products.NewHandler(logger, service, responder),
	})

	steps := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodPost, "/api/produtos", `{"name":"Cadeira","price":10,"quantity":1}`, http.StatusCreated},
		{http.MethodPut, "/api/produtos/1", `{"name":"Cadeira","price":12,"quantity":1}`, http.StatusOK},
		{http.MethodDelete, "/api/produtos/1", "", http.StatusNoContent},
		{http.MethodDelete, "/api/produtos/1", "", http.StatusNotFound},
	}
	for _, step := range steps {
		if rr := do(t, router, step.method, step.path, step.body); rr.Code != step.status {
			t.Fatalf("%s %s: expected %d, got %d (%s)", step.method, step.path, step.status, rr.Code, rr.Body.String())
		}
	}

	tasks := enqueuer.drain()
	if len(tasks) != 3 {
		t.Fatalf("expected 3 events, got %d", len(tasks))
	}

	reg := prometheus.NewRegistry()
	job := jobs.NewProductEventJob(logger, jobmetrics.NewMetrics(reg))
	for _, task := range tasks {
		if task.Type() != jobs.TaskProductChanged {
			t.Fatalf("unexpected task type %q", task.Type())
		}
		if err := job.Handle(context.Background(), task); err != nil {
			t.Fatalf("job handle: %v", err)
		}
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	consumed := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "produtos_events_consumed_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			consumed[labelValue(metric, "action")] = metric.GetCounter().GetValue()
		}
	}
	for _, action := range []products.Action{products.ActionCreated, products.ActionUpdated, products.ActionDeleted} {
		if consumed[string(action)] != 1 {
			t.Fatalf("expected one %s event, got %v", action, consumed[string(action)])
		}
	}
}

func labelValue(metric *dto.Metric, name string) string {
	for _, label := range metric.GetLabel() {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}
