package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/viant/approvio/service/event"
	"github.com/viant/approvio/service/messaging"
)

// Option customises the engine.
type Option func(*Service)

// WithWindow sets the decision window applied to new suspensions.
func WithWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEventQueue attaches a queue receiving lifecycle events; nil disables
// publication.
func WithEventQueue(queue messaging.Queue[event.Event]) Option {
	return func(s *Service) { s.events = queue }
}

type submitRequest struct {
	idempotencyKey string
}

// SubmitOption customises a single submission.
type SubmitOption func(*submitRequest)

// WithIdempotencyKey deduplicates retried submissions: a key seen before
// resolves to the existing instance instead of creating a new one.
func WithIdempotencyKey(key string) SubmitOption {
	return func(r *submitRequest) { r.idempotencyKey = key }
}
