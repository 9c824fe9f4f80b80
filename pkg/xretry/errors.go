package xretry

import "errors"

var (
	// ErrNilContext is returned when a nil context.Context is passed to Do
	// or DoWithResult.
	ErrNilContext = errors.New("xretry: context must not be nil")

	// ErrNilFunc is returned when a nil function is passed to Do or
	// DoWithResult.
	ErrNilFunc = errors.New("xretry: function must not be nil")

	// ErrInvalidAttempts is returned by New when attempts < 1.
	ErrInvalidAttempts = errors.New("xretry: attempts must be >= 1")

	// ErrInvalidDelay is returned by New when delay <= 0.
	ErrInvalidDelay = errors.New("xretry: delay must be > 0")
)
