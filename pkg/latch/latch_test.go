package latch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himadieievsv/distributed-locks/pkg/backend"
	"github.com/himadieievsv/distributed-locks/pkg/memorybackend"
)

func newBackends(n int) []backend.LatchBackend {
	out := make([]backend.LatchBackend, n)
	for i := range out {
		out[i] = memorybackend.New()
	}
	return out
}

func TestNew_Preconditions(t *testing.T) {
	backends := newBackends(1)

	_, err := New("", 1, backends)
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = New("n", 1, nil)
	assert.ErrorIs(t, err, ErrNoBackends)

	_, err = New("n", 0, backends)
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = New("n", 1, backends, WithMaxDuration(time.Millisecond))
	assert.ErrorIs(t, err, ErrInvalidMaxDuration)
}

func TestLatch_CountDownDecrementsUntilZero(t *testing.T) {
	ctx := context.Background()
	l, err := New("latch-a", 2, newBackends(3), WithMaxDuration(300*time.Millisecond))
	require.NoError(t, err)

	r, err := l.CountDown(ctx)
	require.NoError(t, err)
	assert.Equal(t, Success, r)
	assert.Equal(t, int64(1), l.GetCount(ctx))

	r, err = l.CountDown(ctx)
	require.NoError(t, err)
	assert.Equal(t, Success, r)
	assert.Equal(t, int64(0), l.GetCount(ctx))

	// a CountDown call once the internal counter is already at zero is a
	// no-op success, not an error
	r, err = l.CountDown(ctx)
	require.NoError(t, err)
	assert.Equal(t, Success, r)
}

func TestLatch_AwaitSucceedsOnceThresholdReached(t *testing.T) {
	ctx := context.Background()
	backends := newBackends(3)
	l, err := New("latch-b", 2, backends, WithMaxDuration(300*time.Millisecond))
	require.NoError(t, err)

	_, err = l.CountDown(ctx)
	require.NoError(t, err)
	_, err = l.CountDown(ctx)
	require.NoError(t, err)

	r, err := l.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, Success, r, "Await's fast path should see the threshold already met")
}

func TestLatch_AwaitUnblocksOnConcurrentCountDown(t *testing.T) {
	ctx := context.Background()
	backends := newBackends(3)
	l, err := New("latch-c", 1, backends, WithMaxDuration(2*time.Second))
	require.NoError(t, err)

	done := make(chan Result, 1)
	go func() {
		r, err := l.Await(ctx)
		require.NoError(t, err)
		done <- r
	}()

	time.Sleep(20 * time.Millisecond)
	_, err = l.CountDown(ctx)
	require.NoError(t, err)

	select {
	case r := <-done:
		assert.Equal(t, Success, r)
	case <-time.After(time.Second):
		t.Fatal("Await never observed the CountDown that opened the latch")
	}
}

func TestLatch_AwaitTimesOutIfThresholdNeverReached(t *testing.T) {
	ctx := context.Background()
	l, err := New("latch-d", 2, newBackends(3), WithMaxDuration(300*time.Millisecond))
	require.NoError(t, err)

	_, err = l.CountDown(ctx) // only 1 of 2 required
	require.NoError(t, err)

	r, err := l.Await(ctx, WithTimeout(100*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, Failed, r)
}

func TestLatch_GetCount(t *testing.T) {
	ctx := context.Background()
	l, err := New("latch-e", 3, newBackends(1), WithMaxDuration(300*time.Millisecond))
	require.NoError(t, err)

	assert.Equal(t, int64(3), l.GetCount(ctx))
	_, err = l.CountDown(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), l.GetCount(ctx))
}

func TestLatch_WithChannelOverridesDefault(t *testing.T) {
	ctx := context.Background()
	backends := newBackends(1)
	mb := backends[0].(*memorybackend.Backend)

	l, err := New("latch-g", 1, backends, WithMaxDuration(300*time.Millisecond), WithChannel("custom-channel"))
	require.NoError(t, err)

	msgs, cancel, err := mb.Listen(ctx, "custom-channel")
	require.NoError(t, err)
	defer cancel()

	_, err = l.CountDown(ctx)
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, "open", msg)
	case <-time.After(time.Second):
		t.Fatal("expected the open publish on the overridden channel")
	}
}

func TestLatch_MultipleParticipantsEachCountDownOnce(t *testing.T) {
	ctx := context.Background()
	backends := newBackends(3)

	// three independent participants, each with its own Latch handle over
	// the same name/backends, each contributing exactly one CountDown
	p1, err := New("latch-f", 3, backends, WithMaxDuration(300*time.Millisecond))
	require.NoError(t, err)
	p2, err := New("latch-f", 3, backends, WithMaxDuration(300*time.Millisecond))
	require.NoError(t, err)
	p3, err := New("latch-f", 3, backends, WithMaxDuration(300*time.Millisecond))
	require.NoError(t, err)

	for _, p := range []*Latch{p1, p2} {
		r, err := p.CountDown(ctx)
		require.NoError(t, err)
		assert.Equal(t, Success, r)
	}

	r, err := p1.Await(ctx, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, Failed, r, "only 2 of 3 distinct participants have counted down")

	r, err = p3.CountDown(ctx)
	require.NoError(t, err)
	assert.Equal(t, Success, r)

	r, err = p1.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, Success, r, "the third distinct participant's CountDown should open the latch")
}
