package approvio

import (
	"go.uber.org/zap"

	"github.com/viant/approvio/service/dao/instance"
	"github.com/viant/approvio/service/event"
	"github.com/viant/approvio/service/messaging"
	"github.com/viant/approvio/service/notifier"
	"github.com/viant/approvio/service/token"
)

// Option customises the service façade.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithLogger sets the structured logger used across all components.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithInstanceStore sets the instance store.
func WithInstanceStore(store instance.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithTokenService sets the token service.
func WithTokenService(tokens token.Service) Option {
	return func(s *Service) { s.tokens = tokens }
}

// WithNotifier sets the notifier gateway.
func WithNotifier(gateway notifier.Service) Option {
	return func(s *Service) { s.notifier = gateway }
}

// WithEventQueue sets the lifecycle event queue.
func WithEventQueue(queue messaging.Queue[event.Event]) Option {
	return func(s *Service) { s.events = queue }
}
