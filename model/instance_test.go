package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/approvio/internal/clock"
)

func TestInstanceLifecycle(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock.NowFunc = func() time.Time { return base }
	defer func() { clock.NowFunc = time.Now }()

	instance := NewInstance(map[string]interface{}{"name": "Ana"})
	assert.NotEmpty(t, instance.ID)
	assert.Equal(t, StateSubmitted, instance.State)
	assert.Equal(t, base, instance.CreatedAt)

	deadline := base.Add(time.Hour)
	instance.Suspend("digest-1", deadline)
	assert.Equal(t, StateAwaitingDecision, instance.State)
	assert.Equal(t, "digest-1", instance.PendingTokenDigest)
	assert.Equal(t, deadline, *instance.ExpiresAt)

	assert.False(t, instance.DeadlineElapsed(deadline))
	assert.True(t, instance.DeadlineElapsed(deadline.Add(time.Second)))

	instance.Resolve(VerdictApproved, map[string]interface{}{"decision": "APPROVED"})
	assert.Equal(t, StateApproved, instance.State)
	assert.Empty(t, instance.PendingTokenDigest)
	assert.Equal(t, base, *instance.DecidedAt)
	assert.False(t, instance.DeadlineElapsed(deadline.Add(time.Second)))
}

func TestInstanceExpireAndFail(t *testing.T) {
	expired := NewInstance(nil)
	expired.Suspend("digest", clock.Now())
	expired.Expire()
	assert.Equal(t, StateExpired, expired.State)
	assert.Empty(t, expired.PendingTokenDigest)
	assert.Equal(t, "decision window elapsed", expired.Result["error"])

	failed := NewInstance(nil)
	failed.Fail(errors.New("notifier unreachable"))
	assert.Equal(t, StateFailed, failed.State)
	assert.Equal(t, "notifier unreachable", failed.Result["error"])
}

func TestInstanceClone(t *testing.T) {
	instance := NewInstance(map[string]interface{}{"cost": float64(100)})
	instance.Suspend("digest", clock.Now().Add(time.Hour))

	clone := instance.Clone()
	clone.Payload["cost"] = float64(1)
	clone.State = StateApproved
	*clone.ExpiresAt = clone.ExpiresAt.Add(time.Hour)

	assert.Equal(t, float64(100), instance.Payload["cost"])
	assert.Equal(t, StateAwaitingDecision, instance.State)
	assert.NotEqual(t, *instance.ExpiresAt, *clone.ExpiresAt)
}
