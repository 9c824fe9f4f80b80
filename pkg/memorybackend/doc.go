// Package memorybackend is an in-process reference implementation of
// pkg/backend.Backend, for tests and for local/dev use without a real
// Redis: mutex-guarded maps standing in for what a concrete Redis backend
// would do with SET/SADD/PEXPIRE/SCARD/PUBLISH.
//
// Every lock key and semaphore member carries its own expiry, checked
// lazily against time.Now() on each access — treated as absent once stale.
// There is no background sweep: lazy expiry is sufficient because every
// lock and semaphore operation already walks the relevant map. Latch keys
// are different: Count records an expiry for the key, but nothing checks
// it, so a latch's tokens stay until UndoCount removes them.
package memorybackend
