package memory

import (
	"context"
	"sync"

	"github.com/viant/approvio/model"
	"github.com/viant/approvio/service/dao"
	"github.com/viant/approvio/service/dao/criteria"
	"github.com/viant/approvio/service/dao/instance"
)

// Service implements an in-memory instance store. A single mutex provides
// the check-and-set semantics the conditional Update requires.
type Service struct {
	mu      sync.RWMutex
	records map[string]*model.Instance
	byKey   map[string]string // idempotency key -> instance id
}

// Ensure Service implements instance.Store
var _ instance.Store = (*Service)(nil)

// New creates an in-memory instance store.
func New() *Service {
	return &Service{
		records: make(map[string]*model.Instance),
		byKey:   make(map[string]string),
	}
}

// Create persists a new instance.
func (s *Service) Create(_ context.Context, inst *model.Instance) error {
	if inst == nil {
		return dao.ErrNilEntity
	}
	if inst.ID == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[inst.ID]; ok {
		return dao.ErrConflict
	}
	// Idempotency keys are unique; enforced here, under the same lock as
	// the id check, so concurrent retries cannot both create.
	if inst.IdempotencyKey != "" {
		if _, ok := s.byKey[inst.IdempotencyKey]; ok {
			return dao.ErrConflict
		}
	}
	stored := inst.Clone()
	s.records[inst.ID] = stored
	if stored.IdempotencyKey != "" {
		s.byKey[stored.IdempotencyKey] = stored.ID
	}
	inst.Revision = stored.Revision
	return nil
}

// Load returns a copy of the stored instance.
func (s *Service) Load(_ context.Context, id string) (*model.Instance, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.records[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return stored.Clone(), nil
}

// Update persists a mutated instance when the stored state still matches
// the caller's expectation.
func (s *Service) Update(_ context.Context, inst *model.Instance, expected model.State) error {
	if inst == nil {
		return dao.ErrNilEntity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.records[inst.ID]
	if !ok {
		return dao.ErrNotFound
	}
	if stored.State != expected {
		return dao.ErrStaleWrite
	}
	next := inst.Clone()
	next.Revision = stored.Revision + 1
	s.records[inst.ID] = next
	inst.Revision = next.Revision
	return nil
}

// List returns stored instances filtered by the optional State parameter.
func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*model.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Instance, 0, len(s.records))
	for _, stored := range s.records {
		if !criteria.FilterByState(stored.State, parameters) {
			continue
		}
		out = append(out, stored.Clone())
	}
	return out, nil
}

// LookupIdempotencyKey resolves a caller supplied idempotency key.
func (s *Service) LookupIdempotencyKey(_ context.Context, key string) (*model.Instance, error) {
	if key == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key]
	if !ok {
		return nil, nil
	}
	stored, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return stored.Clone(), nil
}
