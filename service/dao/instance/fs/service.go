package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/approvio/model"
	"github.com/viant/approvio/service/dao"
	"github.com/viant/approvio/service/dao/criteria"
	"github.com/viant/approvio/service/dao/instance"
)

// Service implements a filesystem-backed instance store: one JSON document
// per instance under basePath. A process-wide mutex serializes writers so
// the conditional Update keeps its check-and-set guarantee; the revision
// counter additionally detects writes racing an external mutator.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
	byKey    map[string]string // idempotency key -> instance id
}

// Ensure Service implements instance.Store
var _ instance.Store = (*Service)(nil)

// Create persists a new instance document.
func (s *Service) Create(ctx context.Context, inst *model.Instance) error {
	if inst == nil {
		return dao.ErrNilEntity
	}
	if inst.ID == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	location := s.instancePath(inst.ID)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check instance %s: %w", inst.ID, err)
	}
	if exists {
		return dao.ErrConflict
	}
	// Idempotency keys are unique; the index check shares the write lock
	// with the document upload, so concurrent retries cannot both create.
	if inst.IdempotencyKey != "" {
		if _, ok := s.byKey[inst.IdempotencyKey]; ok {
			return dao.ErrConflict
		}
	}
	if err = s.upload(ctx, location, inst); err != nil {
		return err
	}
	if inst.IdempotencyKey != "" {
		s.byKey[inst.IdempotencyKey] = inst.ID
	}
	return nil
}

// Load retrieves an instance document.
func (s *Service) Load(ctx context.Context, id string) (*model.Instance, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx, id)
}

func (s *Service) load(ctx context.Context, id string) (*model.Instance, error) {
	location := s.instancePath(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check instance %s: %w", id, err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read instance %s: %w", id, err)
	}
	var inst model.Instance
	if err = json.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instance %s: %w", id, err)
	}
	return &inst, nil
}

// Update persists a mutated instance when the stored copy is still in the
// expected state.
func (s *Service) Update(ctx context.Context, inst *model.Instance, expected model.State) error {
	if inst == nil {
		return dao.ErrNilEntity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := s.load(ctx, inst.ID)
	if err != nil {
		return err
	}
	if stored.State != expected || stored.Revision != inst.Revision {
		return dao.ErrStaleWrite
	}
	inst.Revision++
	return s.upload(ctx, s.instancePath(inst.ID), inst)
}

// List returns stored instances filtered by the optional State parameter.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	var instances []*model.Instance
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			continue
		}
		var inst model.Instance
		if err = json.Unmarshal(data, &inst); err != nil {
			continue
		}
		if !criteria.FilterByState(inst.State, parameters) {
			continue
		}
		instances = append(instances, &inst)
	}
	return instances, nil
}

// LookupIdempotencyKey resolves a caller supplied idempotency key. Keys are
// tracked in memory and rebuilt from documents on start.
func (s *Service) LookupIdempotencyKey(ctx context.Context, key string) (*model.Instance, error) {
	if key == "" {
		return nil, nil
	}
	s.mu.RLock()
	id, ok := s.byKey[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return s.Load(ctx, id)
}

func (s *Service) upload(ctx context.Context, location string, inst *model.Instance) error {
	data, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("failed to marshal instance %s: %w", inst.ID, err)
	}
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save instance %s: %w", inst.ID, err)
	}
	return nil
}

func (s *Service) instancePath(id string) string {
	return url.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

// rebuildIndex scans existing documents to restore the idempotency key map
// after a restart.
func (s *Service) rebuildIndex(ctx context.Context) error {
	instances, err := s.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inst := range instances {
		if inst.IdempotencyKey != "" {
			s.byKey[inst.IdempotencyKey] = inst.ID
		}
	}
	return nil
}

// New creates a filesystem instance store rooted at basePath.
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	fsService := afs.New()
	ctx := context.Background()
	exists, _ := fsService.Exists(ctx, basePath)
	if !exists {
		if err := fsService.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	ret := &Service{
		basePath: url.Normalize(basePath, file.Scheme),
		fs:       fsService,
		byKey:    make(map[string]string),
	}
	if err := ret.rebuildIndex(ctx); err != nil {
		return nil, err
	}
	return ret, nil
}
