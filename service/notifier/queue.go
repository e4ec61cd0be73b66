package notifier

import (
	"context"

	"github.com/viant/approvio/service/messaging"
)

// QueueNotifier publishes notifications on a message queue so an external
// delivery worker (mailer, chat bridge) can fan them out.
type QueueNotifier struct {
	queue messaging.Queue[Notification]
}

// NewQueueNotifier creates a queue-backed notifier.
func NewQueueNotifier(queue messaging.Queue[Notification]) *QueueNotifier {
	return &QueueNotifier{queue: queue}
}

// Notify enqueues the notification; an enqueue failure counts as delivery
// failure.
func (n *QueueNotifier) Notify(ctx context.Context, notification *Notification) error {
	return n.queue.Publish(ctx, notification)
}
