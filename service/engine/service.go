package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/viant/approvio/internal/clock"
	"github.com/viant/approvio/model"
	"github.com/viant/approvio/service/dao"
	"github.com/viant/approvio/service/dao/instance"
	"github.com/viant/approvio/service/event"
	"github.com/viant/approvio/service/messaging"
	"github.com/viant/approvio/service/notifier"
	"github.com/viant/approvio/service/token"
	"github.com/viant/approvio/tracing"
)

// DefaultWindow is the decision window applied when no option overrides it.
const DefaultWindow = 24 * time.Hour

// Service drives approval instances through the lifecycle state machine.
// It is the only component that mutates instance state; the store persists,
// the token service arbitrates racing resume attempts, the notifier
// delivers the suspension credential.
type Service struct {
	store    instance.Store
	tokens   token.Service
	notifier notifier.Service
	events   messaging.Queue[event.Event]
	window   time.Duration
	logger   *zap.Logger
}

// New creates an engine on top of the supplied collaborators.
func New(store instance.Store, tokens token.Service, gateway notifier.Service, options ...Option) *Service {
	ret := &Service{
		store:    store,
		tokens:   tokens,
		notifier: gateway,
		window:   DefaultWindow,
		logger:   zap.NewNop(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Window returns the configured decision window.
func (s *Service) Window() time.Duration {
	return s.window
}

// Submit validates the payload, creates the instance and synchronously
// drives it to AWAITING_DECISION: a resumption token is issued and handed
// to the notifier. A failed notification fails the submission outright and
// invalidates the undelivered token.
func (s *Service) Submit(ctx context.Context, payload map[string]interface{}, options ...SubmitOption) (*model.Instance, error) {
	ctx, span := tracing.StartSpan(ctx, "engine.Submit", "SERVER")
	inst, err := s.submit(ctx, payload, options...)
	tracing.EndSpan(span, err)
	return inst, err
}

func (s *Service) submit(ctx context.Context, payload map[string]interface{}, options ...SubmitOption) (*model.Instance, error) {
	normalized, err := model.NormalizePayload(payload)
	if err != nil {
		return nil, err
	}
	var request submitRequest
	for _, option := range options {
		option(&request)
	}
	if request.idempotencyKey != "" {
		existing, err := s.store.LookupIdempotencyKey(ctx, request.idempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	inst := model.NewInstance(normalized)
	inst.IdempotencyKey = request.idempotencyKey
	if err = s.store.Create(ctx, inst); err != nil {
		// A conflict on the idempotency key means a concurrent retry won
		// the create; resolve to its instance.
		if errors.Is(err, dao.ErrConflict) && request.idempotencyKey != "" {
			existing, lookupErr := s.store.LookupIdempotencyKey(ctx, request.idempotencyKey)
			if lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	s.publish(ctx, event.TopicRequestCreated, inst)

	value, err := s.tokens.Issue(ctx, inst.ID)
	if err != nil {
		return nil, s.failSubmission(ctx, inst, model.StateSubmitted, err)
	}

	// The suspension is persisted before the token leaves the process, so
	// a decision can never arrive for an instance not yet awaiting one.
	inst.Suspend(token.DigestOf(value), inst.CreatedAt.Add(s.window))
	if err = s.store.Update(ctx, inst, model.StateSubmitted); err != nil {
		_, _ = s.tokens.Invalidate(ctx, inst.ID)
		return nil, err
	}
	s.publish(ctx, event.TopicRequestUpdated, inst)

	notification := &notifier.Notification{
		InstanceID: inst.ID,
		Token:      value,
		Payload:    inst.Payload,
	}
	if err = s.notifier.Notify(ctx, notification); err != nil {
		// An undelivered token is unreachable; burn it before failing.
		_, _ = s.tokens.Invalidate(ctx, inst.ID)
		return nil, s.failSubmission(ctx, inst, model.StateAwaitingDecision, fmt.Errorf("%w: %s", ErrNotifierFailure, err.Error()))
	}
	s.logger.Info("request suspended awaiting decision",
		zap.String("requestId", inst.ID),
		zap.Time("expiresAt", *inst.ExpiresAt))
	return inst, nil
}

func (s *Service) failSubmission(ctx context.Context, inst *model.Instance, expected model.State, cause error) error {
	inst.Fail(cause)
	if err := s.store.Update(ctx, inst, expected); err != nil {
		s.logger.Error("failed to persist failed submission",
			zap.String("requestId", inst.ID), zap.Error(err))
	}
	s.publish(ctx, event.TopicRequestUpdated, inst)
	s.logger.Error("submission failed", zap.String("requestId", inst.ID), zap.Error(cause))
	return cause
}

// Decide consumes the resumption token and applies the verdict. Exactly one
// of any number of duplicate deliveries succeeds; the rest observe
// ErrUnknownToken or ErrDecisionWindowElapsed.
func (s *Service) Decide(ctx context.Context, value string, verdict model.Verdict, reason string) (*model.Instance, error) {
	ctx, span := tracing.StartSpan(ctx, "engine.Decide", "SERVER")
	inst, err := s.decide(ctx, value, verdict, reason)
	tracing.EndSpan(span, err)
	return inst, err
}

func (s *Service) decide(ctx context.Context, value string, verdict model.Verdict, reason string) (*model.Instance, error) {
	instanceID, err := s.tokens.ValidateAndConsume(ctx, value)
	switch {
	case err == nil:
	case errors.Is(err, token.ErrExpired):
		s.expireInstance(ctx, instanceID)
		return nil, ErrDecisionWindowElapsed
	case errors.Is(err, token.ErrNotFound):
		return nil, ErrUnknownToken
	default:
		return nil, fmt.Errorf("failed to consume token: %w", err)
	}

	inst, err := s.store.Load(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load instance %s: %w", instanceID, err)
	}
	if inst.State != model.StateAwaitingDecision || inst.PendingTokenDigest != token.DigestOf(value) {
		return nil, ErrUnknownToken
	}
	// On-access timeout check: the window is enforced against the stored
	// timestamp, not a live timer.
	if inst.DeadlineElapsed(clock.Now()) {
		s.expireInstance(ctx, inst.ID)
		return nil, ErrDecisionWindowElapsed
	}

	result := map[string]interface{}{"status": string(verdict.State())}
	if reason != "" {
		result["reason"] = reason
	}
	inst.Resolve(verdict, result)
	if err = s.store.Update(ctx, inst, model.StateAwaitingDecision); err != nil {
		if errors.Is(err, dao.ErrStaleWrite) {
			// A sweep raced us past the deadline; the instance is settled.
			return nil, ErrDecisionWindowElapsed
		}
		return nil, err
	}
	s.publish(ctx, event.TopicDecisionCreated, inst)
	s.logger.Info("decision applied",
		zap.String("requestId", inst.ID),
		zap.String("verdict", string(verdict)))
	return inst, nil
}

// Status returns the current instance record; dao.ErrNotFound for an
// unknown identifier.
func (s *Service) Status(ctx context.Context, id string) (*model.Instance, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	return s.store.Load(ctx, id)
}

// List returns instances, optionally restricted to the supplied states.
func (s *Service) List(ctx context.Context, states ...model.State) ([]*model.Instance, error) {
	var parameters []*dao.Parameter
	if len(states) > 0 {
		values := make([]string, 0, len(states))
		for _, state := range states {
			values = append(values, string(state))
		}
		parameters = append(parameters, dao.NewParameter("State", values...))
	}
	return s.store.List(ctx, parameters...)
}

// Sweep expires every instance whose decision window has elapsed and burns
// its outstanding token. It returns the number of instances expired.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "engine.Sweep", "INTERNAL")
	swept, err := s.sweep(ctx)
	tracing.EndSpan(span, err)
	return swept, err
}

func (s *Service) sweep(ctx context.Context) (int, error) {
	pending, err := s.List(ctx, model.StateAwaitingDecision)
	if err != nil {
		return 0, err
	}
	now := clock.Now()
	swept := 0
	for _, inst := range pending {
		if !inst.DeadlineElapsed(now) {
			continue
		}
		// Burn the outstanding token so the credential can never resume a
		// past-deadline instance. Settling is arbitrated by the conditional
		// update, not by who burned the token: an instance whose earlier
		// settle attempt failed to persist is picked up again here.
		if _, err := s.tokens.Invalidate(ctx, inst.ID); err != nil {
			return swept, err
		}
		if s.expireInstance(ctx, inst.ID) {
			swept++
		}
	}
	return swept, nil
}

func (s *Service) expireInstance(ctx context.Context, id string) bool {
	if id == "" {
		return false
	}
	inst, err := s.store.Load(ctx, id)
	if err != nil || inst.State != model.StateAwaitingDecision {
		return false
	}
	inst.Expire()
	if err = s.store.Update(ctx, inst, model.StateAwaitingDecision); err != nil {
		// Lost a settle race; the other writer owns the terminal state.
		return false
	}
	s.publish(ctx, event.TopicRequestExpired, inst)
	s.logger.Info("request expired", zap.String("requestId", inst.ID))
	return true
}

// StartSweeper runs Sweep on the supplied interval until ctx is cancelled
// or the returned stop function is called.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = time.Minute
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				if _, err := s.Sweep(ctx); err != nil {
					s.logger.Error("sweep failed", zap.Error(err))
				}
			}
		}
	}()
	return func() { close(done) }
}

func (s *Service) publish(ctx context.Context, topic string, inst *model.Instance) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, &event.Event{
		Topic:      topic,
		InstanceID: inst.ID,
		State:      inst.State,
		CreatedAt:  clock.Now(),
		Data:       inst.Result,
	})
}
