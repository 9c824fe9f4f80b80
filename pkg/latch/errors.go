package latch

import "errors"

var (
	// ErrNoBackends is returned by New when the backend list is empty.
	ErrNoBackends = errors.New("latch: at least one backend is required")

	// ErrInvalidCount is returned by New when count < 1.
	ErrInvalidCount = errors.New("latch: count must be >= 1")

	// ErrInvalidMaxDuration is returned by New when maxDuration is too
	// small relative to clock drift: it must be at least twice the clock
	// drift, so that Count's validity window is non-negative.
	ErrInvalidMaxDuration = errors.New("latch: maxDuration must be >= 2x clock drift")

	// ErrEmptyName is returned by New when name is empty.
	ErrEmptyName = errors.New("latch: name must not be empty")
)
