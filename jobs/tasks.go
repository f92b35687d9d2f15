package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSaleSubmitted is the task type for post-submit notifications.
	TaskSaleSubmitted = "sale:submitted"
	// TaskDraftsReap is the task type for the stale session marker sweep.
	TaskDraftsReap = "drafts:reap"
)

// SaleSubmittedPayload describes a submitted sale notification.
type SaleSubmittedPayload struct {
	Kind         string `json:"kind"`
	SaleID       string `json:"sale_id"`
	CustomerName string `json:"customer_name"`
}

// NewSaleSubmittedTask constructs an Asynq task.
func NewSaleSubmittedTask(payload SaleSubmittedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSaleSubmitted, data), nil
}

// HandleSaleSubmittedTask processes TaskSaleSubmitted tasks.
func HandleSaleSubmittedTask(ctx context.Context, t *asynq.Task) error {
	var payload SaleSubmittedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: route through SMTP once the notification templates land.
	fmt.Printf("[jobs] %s %s submitted for customer %s\n", payload.Kind, payload.SaleID, payload.CustomerName)
	return nil
}

// NewDraftsReapTask constructs the periodic sweep task.
func NewDraftsReapTask() *asynq.Task {
	return asynq.NewTask(TaskDraftsReap, nil)
}
