package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// TypeOrderCreated is the task queued after a checkout commits.
const TypeOrderCreated = "order:created"

// OrderCreatedPayload carries what the notification worker needs.
type OrderCreatedPayload struct {
	Code  string `json:"code"`
	Email string `json:"email"`
	Total int64  `json:"total"`
}

// Enqueuer pushes notification tasks onto the asynq queue. Delivery is
// at-least-once and happens outside the checkout transaction; a failed
// enqueue is logged by the caller, never surfaced to the customer.
type Enqueuer struct {
	Client *asynq.Client
}

// OrderCreated enqueues the order confirmation task, deduplicated by order
// code so a client retry does not send twice.
func (e Enqueuer) OrderCreated(ctx context.Context, code, email string, total int64) error {
	if e.Client == nil {
		return nil
	}
	payload, err := json.Marshal(OrderCreatedPayload{Code: code, Email: email, Total: total})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeOrderCreated, payload)
	_, err = e.Client.EnqueueContext(ctx, task,
		asynq.TaskID("order-created-"+code),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	return err
}
