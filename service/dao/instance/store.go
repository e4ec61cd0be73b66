package instance

import (
	"context"

	"github.com/viant/approvio/model"
	"github.com/viant/approvio/service/dao"
)

// Store persists approval instances. It is a passive surface: it never
// initiates a lifecycle transition, and the engine is the only caller of
// Update.
type Store interface {
	// Create persists a new instance; dao.ErrConflict when the identifier
	// or the idempotency key is already taken. The key check and the write
	// are atomic, so concurrent submission retries cannot both create.
	Create(ctx context.Context, instance *model.Instance) error

	// Load returns the instance by identifier; dao.ErrNotFound when absent.
	Load(ctx context.Context, id string) (*model.Instance, error)

	// Update persists a mutated instance conditionally: the stored copy
	// must still be in the expected state, otherwise dao.ErrStaleWrite.
	// On success the stored revision is incremented.
	Update(ctx context.Context, instance *model.Instance, expected model.State) error

	// List returns instances, optionally filtered with a State parameter
	// (see dao.NewParameter).
	List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Instance, error)

	// LookupIdempotencyKey resolves a previously used caller supplied
	// idempotency key to its instance, or nil when unused.
	LookupIdempotencyKey(ctx context.Context, key string) (*model.Instance, error)
}
