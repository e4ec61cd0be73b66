package dao

import "errors"

// Common, reusable DAO errors. Sentinel variables let callers detect error
// conditions via errors.Is instead of brittle string comparisons.

var (
	// ErrNotFound is returned when the requested entity does not exist in
	// the underlying storage.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates that the supplied ID/key is empty or otherwise
	// invalid.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when the caller attempts to persist a nil
	// pointer.
	ErrNilEntity = errors.New("dao: nil entity")

	// ErrConflict is returned by Create when an entity with the same
	// identifier already exists.
	ErrConflict = errors.New("dao: already exists")

	// ErrStaleWrite is returned by a conditional Update when the stored
	// entity no longer matches the caller supplied expectation.
	ErrStaleWrite = errors.New("dao: stale write")
)
