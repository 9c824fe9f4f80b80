// Package dlock implements the single-instance lock primitive and the
// Redlock-style quorum lock built on top of it.
//
// SimpleLock and RedLock share one internal core (core.go): a
// single-instance lock is mathematically a quorum lock over one backend
// with a majority threshold of one, so both are built from the same
// acquire/release shape, parameterized only by the backend list; both
// acquire with the quorum executor's wait-all strategy.
package dlock
