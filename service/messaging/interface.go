package messaging

import (
	"context"
)

// Queue is an abstract message queue for any payload type. The orchestrator
// runs two of them: lifecycle events for external subscribers and suspension
// notifications for out-of-process decision channels.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message; depending on the
	// queue it is redelivered or dead-lettered
	Nack(err error) error
}
