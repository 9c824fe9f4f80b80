package semaphore

import "errors"

var (
	// ErrNoBackends is returned by New when the backend list is empty.
	ErrNoBackends = errors.New("semaphore: at least one backend is required")

	// ErrInvalidMaxLeases is returned by New when maxLeases < 1.
	ErrInvalidMaxLeases = errors.New("semaphore: maxLeases must be >= 1")

	// ErrEmptyKey is returned by Lock/Unlock when key is empty.
	ErrEmptyKey = errors.New("semaphore: key must not be empty")
)

// errSlotNotGranted is the internal sentinel a failed SetSemaphoreLock
// call feeds through xretry.Swallow so the quorum executor sees it as a
// null result. It never escapes this package.
var errSlotNotGranted = errors.New("semaphore: backend did not grant a slot")
