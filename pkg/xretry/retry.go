package xretry

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// Retryer executes an operation up to Attempts times, waiting Delay between
// each failed attempt. The first attempt that returns a nil error (Do) or a
// nil error with its result (DoWithResult) wins; if every attempt fails the
// last error is returned.
//
// Retryer has no exported fields; construct one with New.
type Retryer struct {
	attempts uint
	delay    time.Duration
}

// New builds a Retryer. attempts is the total number of attempts including
// the first; delay is the fixed wait between attempts. Both are
// preconditions: attempts must be >= 1 and delay must be > 0, violation of
// either is a construction failure rather than a runtime one.
func New(attempts int, delay time.Duration) (*Retryer, error) {
	if attempts < 1 {
		return nil, ErrInvalidAttempts
	}
	if delay <= 0 {
		return nil, ErrInvalidDelay
	}
	return &Retryer{attempts: uint(attempts), delay: delay}, nil
}

// Do runs fn up to r.attempts times with a fixed r.delay between attempts,
// returning nil on the first success or the last error once attempts are
// exhausted. ctx cancellation aborts retrying early.
func (r *Retryer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil {
		return ErrInvalidAttempts
	}
	if ctx == nil {
		return ErrNilContext
	}
	if fn == nil {
		return ErrNilFunc
	}
	return retry.New(
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	).Do(func() error { return fn(ctx) })
}

// DoWithResult is the generic, value-returning counterpart to Do.
func DoWithResult[T any](ctx context.Context, r *Retryer, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrInvalidAttempts
	}
	if ctx == nil {
		return zero, ErrNilContext
	}
	if fn == nil {
		return zero, ErrNilFunc
	}
	return retry.NewWithData[T](
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	).Do(func() (T, error) { return fn(ctx) })
}

// Swallow runs fn and converts any error into a zero value and ok=false: a
// backend call failure is swallowed here and converted to a null result at
// the primitive layer rather than propagated. It never returns an error
// itself; it is meant to wrap a single backend call immediately before
// that call's result is fed into the quorum executor.
func Swallow[T any](fn func() (T, error)) (value T, ok bool) {
	v, err := fn()
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}
