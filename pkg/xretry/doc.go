// Package xretry provides the bounded-retry and swallow-and-default
// utilities this module's primitives need: a fixed number of attempts
// separated by a fixed delay, and a helper that converts a backend error
// into the null/zero result the quorum executor's per-backend operation
// contract expects instead of propagating it.
//
// # Design rationale
//
// This is a deliberately narrow wrapper: every call site here only ever
// needs "retryCount total attempts with fixed retryDelay between them" —
// no exponential backoff, no jitter, no per-attempt policy object — so
// this package is built directly on avast/retry-go/v5's Do/DoWithResult
// shape rather than introducing a pluggable RetryPolicy/BackoffPolicy
// abstraction layer that would otherwise sit unused.
package xretry
