// Package quorum implements the fan-out/collect engine that backs every
// multi-backend primitive in this module: run a fallible operation against
// N independent backends concurrently, under a wall-clock deadline, and
// decide whether a majority of them produced a usable result within the
// time actually available once clock drift is accounted for.
//
// # Algorithm
//
// Run fans out one goroutine per backend index, each invoking the caller's
// f. Results are collected into a mutex-guarded slice, append-only for the
// duration of one Run call. Depending on the Strategy:
//
//   - WaitAll waits for every goroutine to finish before deciding. Used by
//     lock/semaphore acquisition and by the latch's count-down, where every
//     backend's verdict is needed to judge quorum.
//   - WaitAny waits only until the first non-null result lands, then
//     cancels the context passed to the remaining goroutines and returns as
//     soon as they unwind. Used by the latch's await, where any one
//     backend's pub/sub "open" message is sufficient.
//
// quorum = ⌊N/2⌋+1 under WaitAll; under WaitAny the "any backend suffices"
// semantics mean exactly one result is always enough, so the effective
// threshold is 1 regardless of N. Either way, Run separately requires the
// elapsed wall-clock time plus clock drift to still fit inside the
// caller's timeout (the "validity" check); a result set that meets the
// threshold but arrived too slowly is treated the same as one that never
// reached it.
//
// # Retrying wrapper
//
// RunWithRetry layers a retrying wrapper on top of Run using a
// *xretry.Retryer built from the caller's retryCount/retryDelay
// (construction-time preconditions enforced by xretry.New, not by this
// package): any attempt that returns an empty result triggers another
// attempt after the fixed delay; the first non-empty attempt wins.
//
// Run and RunWithRetry never panic and never return an error for
// per-backend failures — f is expected to have already swallowed those
// (see pkg/xretry.Swallow) and reported them as a false "ok".
package quorum
