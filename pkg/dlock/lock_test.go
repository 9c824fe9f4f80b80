package dlock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himadieievsv/distributed-locks/pkg/backend"
	"github.com/himadieievsv/distributed-locks/pkg/memorybackend"
)

func newBackends(t *testing.T, n int) []backend.LockBackend {
	t.Helper()
	out := make([]backend.LockBackend, n)
	for i := range out {
		out[i] = memorybackend.New()
	}
	return out
}

func TestSimpleLock(t *testing.T) {
	ctx := context.Background()

	t.Run("acquire then contended acquire on the same backend fails", func(t *testing.T) {
		b := memorybackend.New()
		l, err := NewSimple(b)
		require.NoError(t, err)

		ok, err := l.Lock(ctx, "res")
		require.NoError(t, err)
		assert.True(t, ok)

		other, err := NewSimple(b)
		require.NoError(t, err)
		ok, err = other.Lock(ctx, "res")
		require.NoError(t, err)
		assert.False(t, ok, "a second instance over the same backend must not acquire a held key")
	})

	t.Run("unlock then re-acquire succeeds", func(t *testing.T) {
		b := memorybackend.New()
		l, err := NewSimple(b)
		require.NoError(t, err)

		ok, err := l.Lock(ctx, "res")
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, l.Unlock(ctx, "res"))

		ok, err = l.Lock(ctx, "res")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects empty key", func(t *testing.T) {
		l, err := NewSimple(memorybackend.New())
		require.NoError(t, err)
		_, err = l.Lock(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyKey)
	})

	t.Run("rejects too-small ttl", func(t *testing.T) {
		l, err := NewSimple(memorybackend.New())
		require.NoError(t, err)
		_, err = l.Lock(ctx, "res", WithTTL(time.Microsecond))
		assert.ErrorIs(t, err, ErrInvalidTTL)
	})

	t.Run("New rejects a nil backend list", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, ErrNoBackends)
	})
}

func TestRedLock_MajorityAcquire(t *testing.T) {
	ctx := context.Background()

	t.Run("majority of backends grant -> success", func(t *testing.T) {
		backends := newBackends(t, 3)
		// pre-seed one backend as already held by someone else, leaving a
		// 2-of-3 majority still available
		_, err := backends[0].SetLock(ctx, "res", "someone-else", time.Minute)
		require.NoError(t, err)

		l, err := New(backends)
		require.NoError(t, err)
		ok, err := l.Lock(ctx, "res")
		require.NoError(t, err)
		assert.True(t, ok, "2 of 3 backends granting the lock is a majority")
	})

	t.Run("minority of backends grant -> failure, and the minority is rolled back", func(t *testing.T) {
		backends := newBackends(t, 3)
		_, err := backends[0].SetLock(ctx, "res", "someone-else", time.Minute)
		require.NoError(t, err)
		_, err = backends[1].SetLock(ctx, "res", "someone-else", time.Minute)
		require.NoError(t, err)

		l, err := New(backends)
		require.NoError(t, err)
		ok, err := l.Lock(ctx, "res")
		require.NoError(t, err)
		assert.False(t, ok, "only 1 of 3 backends was free, below majority")

		// the one backend this instance did acquire should have been rolled
		// back, so a fresh owner can take backends[2] cleanly
		ok, err = backends[2].SetLock(ctx, "res", "fresh-owner", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "the third backend must have been released by the failed attempt's rollback")
	})
}

func TestRedLock_Unlock(t *testing.T) {
	ctx := context.Background()
	backends := newBackends(t, 3)
	l, err := New(backends)
	require.NoError(t, err)

	ok, err := l.Lock(ctx, "res")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Unlock(ctx, "res"))

	for i, b := range backends {
		ok, err := b.SetLock(ctx, "res", "other", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "backend %d should be free after Unlock", i)
	}
}

func TestRedLock_NonOwnerUnlockIsNoOp(t *testing.T) {
	ctx := context.Background()
	b := memorybackend.New()

	holder, err := NewSimple(b)
	require.NoError(t, err)
	ok, err := holder.Lock(ctx, "res")
	require.NoError(t, err)
	require.True(t, ok)

	removed, err := b.RemoveLock(ctx, "res", "not-the-owner")
	require.NoError(t, err)
	assert.False(t, removed)

	stillHeld, err := b.SetLock(ctx, "res", "fresh-owner", time.Minute)
	require.NoError(t, err)
	assert.False(t, stillHeld, "res must remain held after a non-owner unlock attempt")
}
