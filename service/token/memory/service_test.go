package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/approvio/internal/clock"
	"github.com/viant/approvio/service/token"
)

func TestServiceIssueAndConsume(t *testing.T) {
	ctx := context.Background()
	service := New()

	value, err := service.Issue(ctx, "inst-1")
	assert.NoError(t, err)
	assert.NotEmpty(t, value)

	// at most one live token per instance
	_, err = service.Issue(ctx, "inst-1")
	assert.ErrorIs(t, err, token.ErrLiveToken)

	instanceID, err := service.ValidateAndConsume(ctx, value)
	assert.NoError(t, err)
	assert.Equal(t, "inst-1", instanceID)

	// single use: the second consume fails the same as a fabricated token
	_, err = service.ValidateAndConsume(ctx, value)
	assert.ErrorIs(t, err, token.ErrNotFound)
	_, err = service.ValidateAndConsume(ctx, "no-such-token")
	assert.ErrorIs(t, err, token.ErrNotFound)

	// once consumed a new token can be issued for the same instance
	next, err := service.Issue(ctx, "inst-1")
	assert.NoError(t, err)
	assert.NotEqual(t, value, next)
}

func TestServiceConcurrentConsumeExactlyOnce(t *testing.T) {
	ctx := context.Background()
	service := New()
	value, err := service.Issue(ctx, "inst-1")
	assert.NoError(t, err)

	const callers = 32
	var waitGroup sync.WaitGroup
	var succeeded int32
	var mu sync.Mutex
	waitGroup.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer waitGroup.Done()
			if _, err := service.ValidateAndConsume(ctx, value); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	waitGroup.Wait()
	assert.Equal(t, int32(1), succeeded)
}

func TestServiceExpiredTokenBurnsOnObservation(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock.NowFunc = func() time.Time { return base }
	defer func() { clock.NowFunc = time.Now }()

	ctx := context.Background()
	service := New(WithTTL(time.Minute))
	value, err := service.Issue(ctx, "inst-1")
	assert.NoError(t, err)

	clock.NowFunc = func() time.Time { return base.Add(2 * time.Minute) }

	instanceID, err := service.ValidateAndConsume(ctx, value)
	assert.ErrorIs(t, err, token.ErrExpired)
	assert.Equal(t, "inst-1", instanceID)

	// burned: a later retry no longer reveals expiry
	_, err = service.ValidateAndConsume(ctx, value)
	assert.ErrorIs(t, err, token.ErrNotFound)
}

func TestServiceInvalidate(t *testing.T) {
	ctx := context.Background()
	service := New()

	// nothing live yet
	consumed, err := service.Invalidate(ctx, "inst-1")
	assert.NoError(t, err)
	assert.False(t, consumed)

	value, err := service.Issue(ctx, "inst-1")
	assert.NoError(t, err)

	consumed, err = service.Invalidate(ctx, "inst-1")
	assert.NoError(t, err)
	assert.True(t, consumed)

	// the burned token cannot resume anything
	_, err = service.ValidateAndConsume(ctx, value)
	assert.ErrorIs(t, err, token.ErrNotFound)

	// losing side of an invalidate race reports false
	consumed, err = service.Invalidate(ctx, "inst-1")
	assert.NoError(t, err)
	assert.False(t, consumed)
}

func TestGenerateUnpredictable(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		value, err := token.Generate()
		assert.NoError(t, err)
		assert.False(t, seen[value])
		seen[value] = true
	}
	assert.NotEqual(t, token.DigestOf("a"), token.DigestOf("b"))
}
