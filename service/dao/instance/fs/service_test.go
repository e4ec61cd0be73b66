package fs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/approvio/model"
	"github.com/viant/approvio/service/dao"
)

func newInstance(id string) *model.Instance {
	inst := model.NewInstance(map[string]interface{}{"name": "Ana", "course": "Go 101", "cost": float64(100)})
	inst.ID = id
	return inst
}

func TestServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	service, err := New(t.TempDir())
	assert.NoError(t, err)

	inst := newInstance("inst-1")
	assert.NoError(t, service.Create(ctx, inst))
	assert.ErrorIs(t, service.Create(ctx, newInstance("inst-1")), dao.ErrConflict)

	loaded, err := service.Load(ctx, "inst-1")
	assert.NoError(t, err)
	assert.Equal(t, model.StateSubmitted, loaded.State)
	// payload values keep a plain number representation across the store
	assert.Equal(t, float64(100), loaded.Payload["cost"])

	_, err = service.Load(ctx, "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestServiceUpdateConditional(t *testing.T) {
	ctx := context.Background()
	service, err := New(t.TempDir())
	assert.NoError(t, err)

	inst := newInstance("inst-1")
	assert.NoError(t, service.Create(ctx, inst))

	inst.Suspend("digest", inst.CreatedAt.Add(1))
	assert.NoError(t, service.Update(ctx, inst, model.StateSubmitted))
	assert.Equal(t, 1, inst.Revision)

	// wrong expected state
	assert.ErrorIs(t, service.Update(ctx, inst, model.StateSubmitted), dao.ErrStaleWrite)

	// stale revision
	behind := inst.Clone()
	behind.Revision = 0
	assert.ErrorIs(t, service.Update(ctx, behind, model.StateAwaitingDecision), dao.ErrStaleWrite)

	inst.Resolve(model.VerdictRejected, map[string]interface{}{"decision": "REJECTED"})
	assert.NoError(t, service.Update(ctx, inst, model.StateAwaitingDecision))

	loaded, err := service.Load(ctx, "inst-1")
	assert.NoError(t, err)
	assert.Equal(t, model.StateRejected, loaded.State)
	assert.Equal(t, 2, loaded.Revision)
}

func TestServiceListByState(t *testing.T) {
	ctx := context.Background()
	service, err := New(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, service.Create(ctx, newInstance("inst-1")))
	second := newInstance("inst-2")
	second.Suspend("digest", second.CreatedAt.Add(1))
	assert.NoError(t, service.Create(ctx, second))

	all, err := service.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	awaiting, err := service.List(ctx, dao.NewParameter("State", string(model.StateAwaitingDecision)))
	assert.NoError(t, err)
	if assert.Len(t, awaiting, 1) {
		assert.Equal(t, "inst-2", awaiting[0].ID)
	}
}

func TestServiceRebuildsIdempotencyIndex(t *testing.T) {
	ctx := context.Background()
	basePath := t.TempDir()
	service, err := New(basePath)
	assert.NoError(t, err)

	inst := newInstance("inst-1")
	inst.IdempotencyKey = "req-42"
	assert.NoError(t, service.Create(ctx, inst))

	// the key is unique across instances
	duplicate := newInstance("inst-2")
	duplicate.IdempotencyKey = "req-42"
	assert.ErrorIs(t, service.Create(ctx, duplicate), dao.ErrConflict)
	_, err = service.Load(ctx, "inst-2")
	assert.ErrorIs(t, err, dao.ErrNotFound)

	// a fresh service over the same directory restores the key mapping
	reopened, err := New(basePath)
	assert.NoError(t, err)
	found, err := reopened.LookupIdempotencyKey(ctx, "req-42")
	assert.NoError(t, err)
	if assert.NotNil(t, found) {
		assert.Equal(t, "inst-1", found.ID)
	}
}
