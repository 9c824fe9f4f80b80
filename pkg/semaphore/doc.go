// Package semaphore implements a distributed counting semaphore: the same
// quorum acquire/best-effort-release control structure as pkg/dlock, with
// the per-backend operation replaced by "grant one of maxLeases slots"
// instead of "grant exclusive ownership".
//
// The public surface is deliberately narrow: `lock(key, ttl)`/`unlock(key)`
// only — no Extend, no Query, no tenant dimension. It keeps the
// acquire-then-cleanup shape of sweeping expired holders before every
// acquire attempt, without the extra machinery a richer semaphore would
// carry.
package semaphore
