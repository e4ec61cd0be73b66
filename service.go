package approvio

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/viant/approvio/server"
	"github.com/viant/approvio/service/dao/instance"
	ifs "github.com/viant/approvio/service/dao/instance/fs"
	imemory "github.com/viant/approvio/service/dao/instance/memory"
	"github.com/viant/approvio/service/engine"
	"github.com/viant/approvio/service/event"
	"github.com/viant/approvio/service/messaging"
	qmemory "github.com/viant/approvio/service/messaging/memory"
	"github.com/viant/approvio/service/notifier"
	"github.com/viant/approvio/service/token"
	tmemory "github.com/viant/approvio/service/token/memory"
)

// Service is the high-level façade assembling the orchestrator: instance
// store, token service, notifier gateway, engine and HTTP endpoints. Hosts
// embed it and interact through Engine() or the HTTP surface.
type Service struct {
	config *Config
	logger *zap.Logger

	store    instance.Store
	tokens   token.Service
	notifier notifier.Service

	events        messaging.Queue[event.Event]
	notifications messaging.Queue[notifier.Notification]

	engine *engine.Service
	server *server.Server

	stopSweeper func()
}

// New assembles a service; unset collaborators fall back to the configured
// defaults (in-memory store, in-memory token service, log notifier).
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) init() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.store == nil {
		if basePath := s.config.Store.BasePath; basePath != "" {
			store, err := ifs.New(basePath)
			if err != nil {
				return fmt.Errorf("failed to open instance store: %w", err)
			}
			s.store = store
		} else {
			s.store = imemory.New()
		}
	}
	if s.tokens == nil {
		s.tokens = tmemory.New(tmemory.WithTTL(s.config.Approval.Window()))
	}
	if s.events == nil {
		s.events = qmemory.NewQueue[event.Event](qmemory.DefaultConfig())
	}
	if s.notifier == nil {
		switch s.config.Notifier.Kind {
		case NotifierQueue:
			s.notifications = qmemory.NewQueue[notifier.Notification](qmemory.DefaultConfig())
			s.notifier = notifier.NewQueueNotifier(s.notifications)
		case NotifierWebhook:
			s.notifier = notifier.NewWebhookNotifier(s.config.Notifier.WebhookURL, nil)
		default:
			s.notifier = notifier.NewLogNotifier(s.logger)
		}
	}
	s.engine = engine.New(s.store, s.tokens, s.notifier,
		engine.WithWindow(s.config.Approval.Window()),
		engine.WithLogger(s.logger),
		engine.WithEventQueue(s.events))
	s.server = server.NewServer(s.config.HTTP.Addr, s.engine, s.logger)
	return nil
}

// Engine returns the workflow engine.
func (s *Service) Engine() *engine.Service { return s.engine }

// Server returns the HTTP endpoint server.
func (s *Service) Server() *server.Server { return s.server }

// Events returns the lifecycle event queue.
func (s *Service) Events() messaging.Queue[event.Event] { return s.events }

// Notifications returns the notification queue when the queue notifier is
// configured, nil otherwise.
func (s *Service) Notifications() messaging.Queue[notifier.Notification] {
	return s.notifications
}

// Start launches the expiry sweeper and the HTTP listener.
func (s *Service) Start(ctx context.Context) error {
	s.stopSweeper = s.engine.StartSweeper(ctx, s.config.Approval.SweepInterval())
	return s.server.Start()
}

// Stop shuts everything down, waiting for in-flight requests up to timeout.
func (s *Service) Stop(timeout time.Duration) error {
	if s.stopSweeper != nil {
		s.stopSweeper()
		s.stopSweeper = nil
	}
	return s.server.Stop(timeout)
}
