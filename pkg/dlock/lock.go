package dlock

import (
	"context"

	"github.com/himadieievsv/distributed-locks/pkg/backend"
)

// RedLock is the Redlock-style quorum lock: Lock succeeds only once a
// majority of backends grant the key within the TTL's validity window;
// Unlock is always issued on every backend, best-effort.
type RedLock struct {
	c *core
}

// New constructs a RedLock over backends. backends must be non-empty;
// retryCount defaults to 3 and retryDelay to 100ms, both overridable via
// options.
func New(backends []backend.LockBackend, opts ...Option) (*RedLock, error) {
	c, err := newCore(backends, opts...)
	if err != nil {
		return nil, err
	}
	return &RedLock{c: c}, nil
}

// Lock attempts to acquire key across a majority of backends within ttl
// (DefaultTTL unless overridden by WithTTL). Returns true iff the lock was
// acquired; false means it was not (either contended or the validity
// window was missed), never an error for ordinary contention.
func (l *RedLock) Lock(ctx context.Context, key string, opts ...LockOption) (bool, error) {
	o := defaultLockOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return l.c.lock(ctx, key, o.ttl)
}

// Unlock releases key on every backend, best-effort. It is a no-op on any
// backend this instance does not own (RemoveLock never deletes a key it
// does not own).
func (l *RedLock) Unlock(ctx context.Context, key string) error {
	return l.c.unlock(ctx, key)
}

// SimpleLock is the single-instance lock: the same acquire/release shape
// as RedLock, specialized to exactly one backend (quorum of one). It
// exists as a distinct type because a single-backend caller should not
// need to construct a one-element slice to express "no quorum required".
type SimpleLock struct {
	c *core
}

// NewSimple constructs a SimpleLock over a single backend. retryCount
// defaults to 3 and retryDelay to 100ms, both overridable via options.
func NewSimple(b backend.LockBackend, opts ...Option) (*SimpleLock, error) {
	c, err := newCore([]backend.LockBackend{b}, opts...)
	if err != nil {
		return nil, err
	}
	return &SimpleLock{c: c}, nil
}

// Lock attempts to acquire key within ttl (DefaultTTL unless overridden by
// WithTTL).
func (l *SimpleLock) Lock(ctx context.Context, key string, opts ...LockOption) (bool, error) {
	o := defaultLockOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return l.c.lock(ctx, key, o.ttl)
}

// Unlock releases key, a no-op if this instance does not currently own it.
func (l *SimpleLock) Unlock(ctx context.Context, key string) error {
	return l.c.unlock(ctx, key)
}
