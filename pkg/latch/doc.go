// Package latch implements a listening count-down latch: a distributed,
// quorum-backed count-down barrier that wakes waiters via pub/sub with a
// polling fallback.
//
// CountDown fans a `Count` call out to every backend via the quorum
// executor's wait-all strategy, exactly like pkg/dlock's Lock; Await races
// a pub/sub subscription fan-out (quorum.WaitAny — any one backend's
// "open" message suffices, see pkg/quorum's doc comment and DESIGN.md's
// Open Question decision on the wait-any threshold) against a periodic
// CheckCount poll on a ticker-plus-select loop that keeps polling until
// one of several signals fires, not just a single timer.
//
// A channel name hard-coded on one path instead of threading the caller's
// channel name through consistently is a classic source of "works until
// you use a second latch name" bugs. Latch carries a single channel field
// used by both CountDown's publish side and Await's subscribe side, so
// there is no second code path where a literal channel name could diverge.
// The channel defaults to the latch's name and can be overridden with
// WithChannel when several latches should share one wake-up channel.
package latch
