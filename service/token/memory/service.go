package memory

import (
	"context"
	"sync"
	"time"

	"github.com/viant/approvio/internal/clock"
	"github.com/viant/approvio/service/dao/store"
	"github.com/viant/approvio/service/token"
)

// Service implements an in-memory token service. Records live in a generic
// memory store keyed by token digest; a service-level mutex provides the
// atomic check-and-mark required by ValidateAndConsume.
type Service struct {
	mu      sync.Mutex
	records *store.MemoryStore[string, token.Record]
	live    map[string]string // instanceID -> live digest
	epochs  map[string]int    // instanceID -> last suspension epoch
	ttl     time.Duration
}

// Ensure Service implements token.Service
var _ token.Service = (*Service)(nil)

// Option customises the token service.
type Option func(*Service)

// WithTTL sets the validity window applied to issued tokens; zero means no
// expiry at the token layer.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// New creates an in-memory token service.
func New(options ...Option) *Service {
	ret := &Service{
		records: store.NewMemoryStore[string, token.Record](func(r *token.Record) string { return r.Digest }),
		live:    make(map[string]string),
		epochs:  make(map[string]int),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Issue mints a token for the instance and records its binding.
func (s *Service) Issue(ctx context.Context, instanceID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := clock.Now()
	if digest, ok := s.live[instanceID]; ok {
		if record, _ := s.records.Load(ctx, digest); record != nil && record.Live(now) {
			return "", token.ErrLiveToken
		}
		delete(s.live, instanceID)
	}
	value, err := token.Generate()
	if err != nil {
		return "", err
	}
	s.epochs[instanceID]++
	record := &token.Record{
		Digest:     token.DigestOf(value),
		InstanceID: instanceID,
		Epoch:      s.epochs[instanceID],
		IssuedAt:   now,
	}
	if s.ttl > 0 {
		expiry := now.Add(s.ttl)
		record.ExpiresAt = &expiry
	}
	if err = s.records.Save(ctx, record); err != nil {
		return "", err
	}
	s.live[instanceID] = record.Digest
	return value, nil
}

// ValidateAndConsume burns the token and resolves its instance.
func (s *Service) ValidateAndConsume(ctx context.Context, value string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.records.Load(ctx, token.DigestOf(value))
	if err != nil || record == nil {
		return "", token.ErrNotFound
	}
	if record.ConsumedAt != nil {
		return "", token.ErrNotFound
	}
	now := clock.Now()
	// An expired token is burned on observation; it never validates again.
	s.consume(record, now)
	if record.ExpiresAt != nil && now.After(*record.ExpiresAt) {
		return record.InstanceID, token.ErrExpired
	}
	return record.InstanceID, nil
}

// Invalidate consumes the instance's live token, if any, reporting whether
// this call burned it.
func (s *Service) Invalidate(ctx context.Context, instanceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	digest, ok := s.live[instanceID]
	if !ok {
		return false, nil
	}
	record, err := s.records.Load(ctx, digest)
	if err != nil || record == nil {
		delete(s.live, instanceID)
		return false, nil
	}
	if record.ConsumedAt != nil {
		delete(s.live, instanceID)
		return false, nil
	}
	s.consume(record, clock.Now())
	return true, nil
}

func (s *Service) consume(record *token.Record, now time.Time) {
	record.ConsumedAt = &now
	delete(s.live, record.InstanceID)
}
