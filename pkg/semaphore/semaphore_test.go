package semaphore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himadieievsv/distributed-locks/pkg/backend"
	"github.com/himadieievsv/distributed-locks/pkg/memorybackend"
)

func newBackends(n int) []backend.SemaphoreBackend {
	out := make([]backend.SemaphoreBackend, n)
	for i := range out {
		out[i] = memorybackend.New()
	}
	return out
}

func TestNew_Preconditions(t *testing.T) {
	_, err := New(nil, 2)
	assert.ErrorIs(t, err, ErrNoBackends)

	_, err = New(newBackends(1), 0)
	assert.ErrorIs(t, err, ErrInvalidMaxLeases)
}

func TestSemaphore_LockUpToCapacity(t *testing.T) {
	ctx := context.Background()
	backends := newBackends(3)

	s1, err := New(backends, 2)
	require.NoError(t, err)
	s2, err := New(backends, 2)
	require.NoError(t, err)
	s3, err := New(backends, 2)
	require.NoError(t, err)

	ok, err := s1.Lock(ctx, "res")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s2.Lock(ctx, "res")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s3.Lock(ctx, "res")
	require.NoError(t, err)
	assert.False(t, ok, "a third holder must be refused once maxLeases=2 is full")
}

func TestSemaphore_UnlockFreesASlot(t *testing.T) {
	ctx := context.Background()
	backends := newBackends(3)

	s1, err := New(backends, 1)
	require.NoError(t, err)
	s2, err := New(backends, 1)
	require.NoError(t, err)

	ok, err := s1.Lock(ctx, "res")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s2.Lock(ctx, "res")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s1.Unlock(ctx, "res"))

	ok, err = s2.Lock(ctx, "res")
	require.NoError(t, err)
	assert.True(t, ok, "slot freed by Unlock must become available")
}

func TestSemaphore_ExpiredHolderIsReclaimed(t *testing.T) {
	ctx := context.Background()
	backends := newBackends(3)

	s1, err := New(backends, 1)
	require.NoError(t, err)
	s2, err := New(backends, 1)
	require.NoError(t, err)

	// 50ms leaves a non-negative validity window (50ms minus elapsed minus
	// the 4ms clock drift) while still expiring quickly
	ok, err := s1.Lock(ctx, "res", WithTTL(50*time.Millisecond))
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(100 * time.Millisecond)

	// s2's Lock call runs cleanupExpired across every backend before
	// attempting to acquire, so s1's crashed/expired holder must not block
	// a fresh acquire.
	ok, err = s2.Lock(ctx, "res")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSemaphore_RejectsEmptyKey(t *testing.T) {
	ctx := context.Background()
	s, err := New(newBackends(1), 1)
	require.NoError(t, err)

	_, err = s.Lock(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)

	assert.ErrorIs(t, s.Unlock(ctx, ""), ErrEmptyKey)
}

func TestSemaphore_FailedAcquireRollsBackPartialGrants(t *testing.T) {
	ctx := context.Background()
	backends := newBackends(3)

	// fill backends[0] and backends[1] at capacity 1 with a different
	// owner, leaving only backends[2] free: a quorum of 3 requires 2, so
	// this attempt must fail and release whatever it grabbed.
	blocker, err := New(backends[:2], 1)
	require.NoError(t, err)
	ok, err := blocker.Lock(ctx, "res")
	require.NoError(t, err)
	require.True(t, ok)

	s, err := New(backends, 1)
	require.NoError(t, err)
	ok, err = s.Lock(ctx, "res")
	require.NoError(t, err)
	assert.False(t, ok)

	// backends[2] must have been released by the rollback
	fresh, err := New(backends[2:], 1)
	require.NoError(t, err)
	ok, err = fresh.Lock(ctx, "res")
	require.NoError(t, err)
	assert.True(t, ok, "the one backend the failed attempt acquired must have been rolled back")
}
