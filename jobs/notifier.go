package jobs

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/salesdesk-erp/salesdesk/internal/draft"
)

// Notifier submits notification jobs to the queue. It satisfies the draft
// engine's Notifier interface.
type Notifier struct {
	client *asynq.Client
}

// NewNotifier constructs a Notifier over an Asynq client.
func NewNotifier(redisOpts asynq.RedisClientOpt) *Notifier {
	return &Notifier{client: asynq.NewClient(redisOpts)}
}

// SaleSubmitted enqueues the post-submit notification.
func (n *Notifier) SaleSubmitted(ctx context.Context, kind draft.Kind, saleID, customerName string) error {
	task, err := NewSaleSubmittedTask(SaleSubmittedPayload{
		Kind:         string(kind),
		SaleID:       saleID,
		CustomerName: customerName,
	})
	if err != nil {
		return err
	}
	_, err = n.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// Close releases client resources.
func (n *Notifier) Close() error {
	return n.client.Close()
}
