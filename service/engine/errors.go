package engine

import "errors"

var (
	// ErrUnknownToken covers tokens that were never issued or were already
	// consumed; the two cases are deliberately indistinguishable.
	ErrUnknownToken = errors.New("engine: task token not found or expired")

	// ErrDecisionWindowElapsed is returned when a decision arrives after
	// the suspension window; the instance has been (or is being) expired.
	ErrDecisionWindowElapsed = errors.New("engine: task timed out")

	// ErrNotifierFailure wraps a failed suspension notification; the
	// affected instance is persisted as FAILED.
	ErrNotifierFailure = errors.New("engine: notification delivery failed")
)
