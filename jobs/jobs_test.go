package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/luizgft/produtos-api/internal/jobs"
	"github.com/luizgft/produtos-api/internal/products"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "x", Queue: QueueDefault, Type: task.Type()}, nil
}

func TestClientPublishEnqueuesProductEvent(t *testing.T) {
	enq := &fakeEnqueuer{}
	client := NewClientWithEnqueuer(enq)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	client.now = func() time.Time { return fixed }

	err := client.Publish(context.Background(), products.ChangeEvent{Action: products.ActionCreated, ProductID: 8})

	require.NoError(t, err)
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskProductChanged, enq.tasks[0].Type())
	payload, err := DecodeProductChanged(enq.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, products.ActionCreated, payload.Action)
	assert.Equal(t, int64(8), payload.ProductID)
	assert.Equal(t, fixed, payload.OccurredAt)
	assert.NotEmpty(t, payload.EventID)
	assert.NoError(t, client.Close())
}

func TestClientPublishPropagatesQueueError(t *testing.T) {
	client := NewClientWithEnqueuer(&fakeEnqueuer{err: errors.New("redis down")})

	err := client.Publish(context.Background(), products.ChangeEvent{Action: products.ActionDeleted, ProductID: 1})

	assert.ErrorContains(t, err, "redis down")
}

func TestDecodeProductChangedRejectsIncomplete(t *testing.T) {
	body, _ := json.Marshal(ProductChangedPayload{EventID: "e1"})

	_, err := DecodeProductChanged(asynq.NewTask(TaskProductChanged, body))

	assert.Error(t, err)
}

func TestProductEventJobHandle(t *testing.T) {
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())
	job := NewProductEventJob(nil, metrics)
	task, err := NewProductChangedTask(products.ChangeEvent{Action: products.ActionUpdated, ProductID: 3}, time.Now())
	require.NoError(t, err)

	assert.NoError(t, job.Handle(context.Background(), task))
}

func TestProductEventJobSkipsRetryOnGarbage(t *testing.T) {
	job := NewProductEventJob(nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskProductChanged, []byte("{")))

	assert.ErrorIs(t, err, asynq.SkipRetry)
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return f.info, f.err
}

func TestJobsHealth(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(fakeInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4, Archived: 1}}, nil).MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":4,"retry":0,"dead":1}`, rr.Body.String())
}

func TestJobsHealthUnavailable(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(fakeInspector{err: errors.New("dial tcp")}, nil).MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestNewWorkerRequiresRedis(t *testing.T) {
	_, err := NewWorker(WorkerConfig{})

	assert.Error(t, err)
}

func TestPublishedEventIsConsumedByWorker(t *testing.T) {
	enq := &fakeEnqueuer{}
	client := NewClientWithEnqueuer(enq)
	reg := prometheus.NewRegistry()
	job := NewProductEventJob(nil, jobmetrics.NewMetrics(reg))

	for _, event := range []products.ChangeEvent{
		{Action: products.ActionCreated, ProductID: 1},
		{Action: products.ActionUpdated, ProductID: 1},
		{Action: products.ActionDeleted, ProductID: 1},
	} {
		require.NoError(t, client.Publish(context.Background(), event))
	}

	require.Len(t, enq.tasks, 3)
	for _, task := range enq.tasks {
		_, err := DecodeProductChanged(task)
		require.NoError(t, err)
		require.NoError(t, job.Handle(context.Background(), task))
	}

	count, err := testutil.GatherAndCount(reg, "produtos_events_consumed_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestNewProductChangedTaskMintsEventIDPerCall(t *testing.T) {
	event := products.ChangeEvent{Action: products.ActionUpdated, ProductID: 4}
	now := time.Now()

	first, err := NewProductChangedTask(event, now)
	require.NoError(t, err)
	second, err := NewProductChangedTask(event, now)
	require.NoError(t, err)

	a, err := DecodeProductChanged(first)
	require.NoError(t, err)
	b, err := DecodeProductChanged(second)
	require.NoError(t, err)
	assert.NotEqual(t, a.EventID, b.EventID)
}
