package backend

import (
	"context"
	"time"
)

// LockBackend is the capability a single-instance lock (pkg/dlock) needs.
type LockBackend interface {
	// SetLock issues the equivalent of SET key owner NX PX ttl.
	// Returns (true, nil) iff the key was absent and is now set to owner.
	// Returns (false, nil) iff the key was already held (by anyone).
	SetLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)

	// RemoveLock issues the equivalent of "if GET(key)==owner then DEL(key)".
	// Returns (true, nil) iff the key was owned by owner and was deleted.
	// Returns (false, nil) iff the key was absent or owned by someone else;
	// RemoveLock never deletes a key it does not own.
	RemoveLock(ctx context.Context, key, owner string) (bool, error)
}

// SemaphoreBackend is the capability the counting semaphore (pkg/semaphore)
// needs in addition to a cleanup channel for crashed holders.
type SemaphoreBackend interface {
	// SetSemaphoreLock atomically checks that the current cardinality of
	// the set at key is < maxLeases, adds owner to it, and refreshes the
	// key's TTL. Returns (true, nil) on success, (false, nil) if the
	// semaphore was already at capacity.
	SetSemaphoreLock(ctx context.Context, key, owner string, maxLeases int, ttl time.Duration) (bool, error)

	// RemoveSemaphoreLock removes owner from the set at key and deletes its
	// companion cleanup marker. No quorum check is performed by callers of
	// this method; it is always best-effort across every backend.
	RemoveSemaphoreLock(ctx context.Context, key, owner string) (bool, error)

	// CleanUpExpiredSemaphoreLocks prunes members of the set at key whose
	// companion marker under cleanupKey has expired, releasing slots held
	// by crashed holders. It is called once before every acquire attempt.
	CleanUpExpiredSemaphoreLocks(ctx context.Context, key, cleanupKey string) error
}

// LatchBackend is the capability the listening count-down latch
// (pkg/latch) needs: quorum counting plus a pub/sub wake-up path.
type LatchBackend interface {
	// Count adds a unique token to the set at latchKey, refreshes the key's
	// TTL monotonically (never shrinking it), and publishes the literal
	// string "open" on channel once the set's cardinality reaches
	// initialCount. clientID/count together form the token; count is the
	// caller's pre-decrement local counter value, so retries of the same
	// logical decrement resubmit an identical token and are deduplicated by
	// the backend's set semantics. Returns (true, nil) on success.
	Count(ctx context.Context, latchKey, channel, clientID string, count, initialCount int64, ttl time.Duration) (bool, error)

	// UndoCount removes the token (clientID, count) from the set at
	// latchKey, used to roll back a Count call that the quorum executor
	// could not confirm reached quorum. Returns the resulting cardinality.
	UndoCount(ctx context.Context, latchKey, clientID string, count int64) (int64, error)

	// CheckCount returns the current cardinality of the set at latchKey.
	CheckCount(ctx context.Context, latchKey string) (int64, error)

	// Listen subscribes to channel and returns a stream of received
	// messages plus a cancel function. The stream is closed and the
	// subscription torn down when either cancel is called or ctx is done.
	Listen(ctx context.Context, channel string) (msgs <-chan string, cancel func(), err error)
}

// Backend is the union of every capability a concrete key-value adapter can
// offer. Concrete adapters (pkg/redisbackend, pkg/memorybackend) implement
// this in full; primitives accept the narrower interface they actually use.
type Backend interface {
	LockBackend
	SemaphoreBackend
	LatchBackend
}
