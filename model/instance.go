package model

import (
	"time"

	"github.com/viant/approvio/internal/clock"
	"github.com/viant/approvio/internal/idgen"
)

// Instance represents a single approval request travelling through the
// lifecycle state machine. The engine is the sole writer of State,
// PendingTokenDigest, DecidedAt and Result; stores only persist.
type Instance struct {
	ID      string                 `json:"id"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   State                  `json:"state"`

	// PendingTokenDigest holds the digest of the outstanding resumption
	// token; non-empty exactly while State == AWAITING_DECISION. The raw
	// token is never persisted.
	PendingTokenDigest string `json:"pendingTokenDigest,omitempty"`

	// Revision increments on every store update; used for optimistic
	// concurrency by the filesystem store.
	Revision int `json:"revision"`

	IdempotencyKey string `json:"idempotencyKey,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	DecidedAt *time.Time `json:"decidedAt,omitempty"`

	// Result carries the terminal outcome payload: the decision detail or
	// an error description.
	Result map[string]interface{} `json:"result,omitempty"`
}

// NewInstance creates an instance in the SUBMITTED state with a freshly
// assigned identifier.
func NewInstance(payload map[string]interface{}) *Instance {
	return &Instance{
		ID:        idgen.New(),
		Payload:   payload,
		State:     StateSubmitted,
		CreatedAt: clock.Now(),
	}
}

// Suspend moves the instance to AWAITING_DECISION, binding the outstanding
// token digest and the decision deadline.
func (i *Instance) Suspend(tokenDigest string, deadline time.Time) {
	i.State = StateAwaitingDecision
	i.PendingTokenDigest = tokenDigest
	i.ExpiresAt = &deadline
}

// Resolve applies a terminal decision verdict.
func (i *Instance) Resolve(verdict Verdict, result map[string]interface{}) {
	now := clock.Now()
	i.State = verdict.State()
	i.PendingTokenDigest = ""
	i.DecidedAt = &now
	i.Result = result
}

// Expire marks the instance timed out waiting for a decision.
func (i *Instance) Expire() {
	now := clock.Now()
	i.State = StateExpired
	i.PendingTokenDigest = ""
	i.DecidedAt = &now
	i.Result = map[string]interface{}{"error": "decision window elapsed"}
}

// Fail records an unrecoverable internal error.
func (i *Instance) Fail(err error) {
	now := clock.Now()
	i.State = StateFailed
	i.PendingTokenDigest = ""
	i.DecidedAt = &now
	if err != nil {
		i.Result = map[string]interface{}{"error": err.Error()}
	}
}

// DeadlineElapsed reports whether the decision window has passed at the
// supplied point in time.
func (i *Instance) DeadlineElapsed(now time.Time) bool {
	return i.State == StateAwaitingDecision && i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// Clone returns a deep copy so a caller can mutate the result without
// affecting the stored instance.
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	clone := *i
	if i.Payload != nil {
		clone.Payload = make(map[string]interface{}, len(i.Payload))
		for k, v := range i.Payload {
			clone.Payload[k] = v
		}
	}
	if i.Result != nil {
		clone.Result = make(map[string]interface{}, len(i.Result))
		for k, v := range i.Result {
			clone.Result[k] = v
		}
	}
	if i.ExpiresAt != nil {
		t := *i.ExpiresAt
		clone.ExpiresAt = &t
	}
	if i.DecidedAt != nil {
		t := *i.DecidedAt
		clone.DecidedAt = &t
	}
	return &clone
}
