// Package backend defines the capability interfaces that every concrete
// key-value store must satisfy to back the coordination primitives in this
// module (pkg/dlock, pkg/semaphore, pkg/latch).
//
// # Design rationale
//
// The package intentionally exports no concrete client. The primitives in
// this module are written against these interfaces only; they never see a
// connection pool, a wire protocol, or a scripting host directly. Two
// concrete adapters ship alongside the primitives for convenience:
//
//   - pkg/redisbackend, over github.com/redis/go-redis/v9
//   - pkg/memorybackend, an in-process reference implementation for tests
//     and local development
//
// Either one — or any other type satisfying Backend — can be handed to
// dlock.New, semaphore.New, or latch.New.
//
// # Capability segregation
//
// Backend is split into three narrow interfaces rather than one "god
// interface": LockBackend, SemaphoreBackend, and LatchBackend. A caller
// that only needs mutual exclusion can depend on LockBackend alone. Backend
// is the union all three, and is what concrete adapters implement; the
// primitives' constructors each accept only the narrow interface they
// need (dlock: LockBackend, semaphore: SemaphoreBackend, latch:
// LatchBackend).
//
// # Null results
//
// Every method returns (value, error). A returned error means the backend
// call itself failed (network error, script error, timeout) — the caller is
// expected to convert it into "no quorum contribution" rather than propagate
// it — the same treatment a false/zero result gets. A nil error with
// a zero/false value (e.g. SetLock returning (false, nil)) means the backend
// was reached and answered "not OK" (key already held, set full, etc.) —
// this is the ordinary, expected outcome of a losing race, not a failure.
package backend
