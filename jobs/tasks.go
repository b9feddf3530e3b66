package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/luizgft/produtos-api/internal/products"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskProductChanged carries a product mutation to the worker.
	TaskProductChanged = "produto:changed"
)

// ProductChangedPayload is the wire form of products.ChangeEvent.
type ProductChangedPayload struct {
	EventID    string          `json:"event_id"`
	Action     products.Action `json:"action"`
	ProductID  int64           `json:"product_id"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewProductChangedTask builds the task for event under a fresh event id.
// The event id is also the asynq task id, so a queued task can be matched to
// the line the worker logs for it.
func NewProductChangedTask(event products.ChangeEvent, now time.Time) (*asynq.Task, error) {
	payload := ProductChangedPayload{
		EventID:    uuid.NewString(),
		Action:     event.Action,
		ProductID:  event.ProductID,
		OccurredAt: now.UTC(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("jobs: encode product event: %w", err)
	}
	return asynq.NewTask(TaskProductChanged, body,
		asynq.Queue(QueueDefault),
		asynq.TaskID(payload.EventID),
		asynq.MaxRetry(5),
	), nil
}

// DecodeProductChanged parses a task payload.
func DecodeProductChanged(t *asynq.Task) (ProductChangedPayload, error) {
	var payload ProductChangedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return ProductChangedPayload{}, err
	}
	if payload.ProductID <= 0 || payload.Action == "" {
		return ProductChangedPayload{}, fmt.Errorf("jobs: incomplete product event %q", payload.EventID)
	}
	return payload, nil
}
