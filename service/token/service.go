package token

import (
	"context"
	"errors"
	"time"
)

// Common token errors. ErrNotFound deliberately covers both "never issued"
// and "already consumed" so a caller cannot probe whether a credential ever
// existed.
var (
	ErrNotFound = errors.New("token: not found")
	ErrExpired  = errors.New("token: expired")

	// ErrLiveToken is returned by Issue when an unconsumed token already
	// exists for the instance; at most one live token per instance.
	ErrLiveToken = errors.New("token: live token already issued")
)

// Service mints and arbitrates single-use resumption tokens. The token is
// an opaque, unguessable credential bound to exactly one suspension of one
// instance; ValidateAndConsume is the sole arbitration point for racing
// resume attempts.
type Service interface {
	// Issue mints a token bound to the instance and marks it live.
	Issue(ctx context.Context, instanceID string) (string, error)

	// ValidateAndConsume atomically marks the token consumed and returns
	// the bound instance identifier. Under concurrent duplicate calls with
	// the same token exactly one caller succeeds; the rest observe
	// ErrNotFound or ErrExpired. An expired token is burned on observation
	// and its instance identifier is still returned alongside ErrExpired so
	// the caller can finalize the abandoned suspension.
	ValidateAndConsume(ctx context.Context, token string) (string, error)

	// Invalidate consumes the live token of an instance, if any, and
	// reports whether this call performed the consumption. Used when a
	// suspension is abandoned (expiry sweep, failed notification) so the
	// credential can never resume anything.
	Invalidate(ctx context.Context, instanceID string) (bool, error)
}

// Record is the persisted single-use binding of a token digest to an
// instance suspension. The raw token is never stored.
type Record struct {
	Digest     string     `json:"digest"`
	InstanceID string     `json:"instanceId"`
	Epoch      int        `json:"epoch"`
	IssuedAt   time.Time  `json:"issuedAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`
}

// Live reports whether the record can still authorize a resume at the
// supplied point in time.
func (r *Record) Live(now time.Time) bool {
	if r.ConsumedAt != nil {
		return false
	}
	if r.ExpiresAt != nil && now.After(*r.ExpiresAt) {
		return false
	}
	return true
}
