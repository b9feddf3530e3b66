package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/luizgft/produtos-api/internal/jobs"
)

// ProductEventJob consumes produto:changed tasks and writes the audit trail.
type ProductEventJob struct {
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewProductEventJob constructs the job handler.
func NewProductEventJob(logger *slog.Logger, metrics *jobmetrics.Metrics) *ProductEventJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductEventJob{logger: logger, metrics: metrics}
}

// Handle processes TaskProductChanged tasks.
func (j *ProductEventJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskProductChanged)
	payload, err := DecodeProductChanged(t)
	if err != nil {
		j.logger.Warn("drop malformed product event", slog.Any("error", err))
		return tracker.End(fmt.Errorf("%v: %w", err, asynq.SkipRetry))
	}
	j.logger.InfoContext(ctx, "product changed",
		slog.String("event_id", payload.EventID),
		slog.String("action", string(payload.Action)),
		slog.Int64("product_id", payload.ProductID),
		slog.Time("occurred_at", payload.OccurredAt),
	)
	j.metrics.AddEvent(string(payload.Action))
	return tracker.End(nil)
}
