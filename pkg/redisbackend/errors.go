package redisbackend

import "errors"

var (
	// ErrNilClient is returned by New when client is nil.
	ErrNilClient = errors.New("redisbackend: client must not be nil")

	// errUnexpectedScriptResult is wrapped with detail and returned when a
	// Lua script run through evalScriptInt64 replies with something that
	// does not decode to a scalar int64. The count and cleanup_semaphore
	// scripts reply 'OK' and are not decoded this way.
	errUnexpectedScriptResult = errors.New("redisbackend: unexpected script result")
)
