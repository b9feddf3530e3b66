package products

import "context"

// Action describes what happened to a product.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ChangeEvent is emitted after a mutation has been persisted.
type ChangeEvent struct {
	Action    Action
	ProductID int64
}

// Publisher forwards change events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// OperationRecorder observes the outcome of each service call.
type OperationRecorder interface {
	ObserveOperation(op string, err error)
}
