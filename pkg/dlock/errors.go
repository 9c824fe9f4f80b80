package dlock

import "errors"

var (
	// ErrNoBackends is returned by New when the backend list is empty.
	// NewSimple always builds a one-element list and never returns it.
	ErrNoBackends = errors.New("dlock: at least one backend is required")

	// ErrInvalidTTL is returned by Lock when ttl <= 2ms.
	ErrInvalidTTL = errors.New("dlock: ttl must be > 2ms")

	// ErrEmptyKey is returned by Lock/Unlock when key is empty.
	ErrEmptyKey = errors.New("dlock: key must not be empty")
)

// errLockNotGranted is the internal sentinel a failed SetLock call feeds
// through xretry.Swallow so the quorum executor sees it as a null result.
// It never escapes this package.
var errLockNotGranted = errors.New("dlock: backend did not grant the lock")
