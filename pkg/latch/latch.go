package latch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/himadieievsv/distributed-locks/pkg/backend"
	"github.com/himadieievsv/distributed-locks/pkg/ownerid"
	"github.com/himadieievsv/distributed-locks/pkg/quorum"
	"github.com/himadieievsv/distributed-locks/pkg/xretry"
)

// Latch is the listening count-down latch.
//
// The zero value is not usable; construct one with New. A Latch is safe
// for concurrent use, but CountDown serializes internally (see CountDown's
// doc comment) — concurrent CountDown calls on the same instance run one
// at a time rather than truly in parallel.
type Latch struct {
	name         string
	latchKey     string
	channel      string
	owner        string
	minimalCount int64
	maxDuration  time.Duration

	backends []backend.LatchBackend
	executor *quorum.Executor
	retryer  *xretry.Retryer

	mu           sync.Mutex
	currentCount int64
}

// New constructs a Latch named name requiring count distinct CountDown
// successes before Await reports SUCCESS. backends must be non-empty;
// count must be >= 1; maxDuration (DefaultMaxDuration unless overridden by
// WithMaxDuration) must be at least twice the clock drift computed for it,
// so that Count's validity window is never negative by construction.
func New(name string, count int64, backends []backend.LatchBackend, opts ...Option) (*Latch, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	if count < 1 {
		return nil, ErrInvalidCount
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	drift := quorum.ClockDrift(o.maxDuration, quorum.DefaultClockDrift)
	if o.maxDuration < 2*drift {
		return nil, ErrInvalidMaxDuration
	}

	retryer, err := xretry.New(o.retryCount, o.retryDelay)
	if err != nil {
		return nil, err
	}

	var execOpts []quorum.Option
	if o.logger != nil {
		execOpts = append(execOpts, quorum.WithLogger(o.logger))
	}
	if o.tracerProvider != nil {
		execOpts = append(execOpts, quorum.WithTracerProvider(o.tracerProvider))
	}
	if o.meterProvider != nil {
		execOpts = append(execOpts, quorum.WithMeterProvider(o.meterProvider))
	}

	channel := name
	if o.channel != "" {
		channel = o.channel
	}

	return &Latch{
		name:         name,
		latchKey:     name,
		channel:      channel,
		owner:        ownerid.New(),
		minimalCount: count,
		maxDuration:  o.maxDuration,
		backends:     backends,
		executor:     quorum.New(execOpts...),
		retryer:      retryer,
		currentCount: count,
	}, nil
}

// CountDown submits one pending decrement across a majority of backends.
//
// CountDown holds the latch's internal mutex for its entire body rather
// than only around the currentCount read/write: the token submitted to
// each backend is `ownerId ∥ currentCount`, so two CountDown calls racing
// on the same snapshot of currentCount would submit the *same* token —
// the backend's set semantics would dedupe it to one member, yet both
// calls would independently decrement currentCount, silently
// under-counting. Serializing the whole call keeps "one CountDown call,
// one token, one decrement" true regardless of caller concurrency.
func (l *Latch) CountDown(ctx context.Context) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentCount <= 0 {
		return Success, nil
	}
	current := l.currentCount

	_, ok := quorum.RunWithRetry[struct{}](ctx, l.executor, l.retryer, len(l.backends), quorum.WaitAll, l.maxDuration,
		func(ctx context.Context, idx int) (struct{}, bool) {
			return xretry.Swallow(func() (struct{}, error) {
				_, err := l.backends[idx].Count(ctx, l.latchKey, l.channel, l.owner, current, l.minimalCount, l.maxDuration)
				return struct{}{}, err
			})
		},
	)

	if !ok {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), undoCleanupDeadline)
		defer cancel()
		l.undoAll(cleanupCtx, current)
		return Failed, nil
	}

	l.currentCount--
	return Success, nil
}

func (l *Latch) undoAll(ctx context.Context, count int64) {
	var wg sync.WaitGroup
	wg.Add(len(l.backends))
	for _, b := range l.backends {
		b := b
		go func() {
			defer wg.Done()
			_, _ = b.UndoCount(ctx, l.latchKey, l.owner, count)
		}()
	}
	wg.Wait()
}

// Await blocks until the latch opens or timeout (l.maxDuration unless
// overridden by WithTimeout) elapses.
func (l *Latch) Await(ctx context.Context, opts ...AwaitOption) (Result, error) {
	o := defaultAwaitOptions(l.maxDuration)
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if card, err := l.backends[0].CheckCount(ctx, l.latchKey); err == nil && card >= l.minimalCount {
		return Success, nil
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	opened := make(chan struct{})
	var once sync.Once
	signalOpen := func() {
		once.Do(func() { close(opened) })
	}

	go l.raceSubscriptions(deadlineCtx, signalOpen, o.timeout)
	go l.pollForOpen(deadlineCtx, signalOpen, o.timeout)

	select {
	case <-opened:
		return Success, nil
	case <-deadlineCtx.Done():
		return Failed, nil
	}
}

// raceSubscriptions subscribes to every backend's channel concurrently;
// any one "open" message suffices. Built directly on the quorum
// executor's WaitAny strategy — this is exactly the "any backend's open
// suffices" case pkg/quorum's wait-any threshold decision exists for.
func (l *Latch) raceSubscriptions(ctx context.Context, signalOpen func(), timeout time.Duration) {
	_, ok := quorum.Run[struct{}](ctx, l.executor, len(l.backends), quorum.WaitAny, timeout,
		func(ctx context.Context, idx int) (struct{}, bool) {
			msgs, cancelSub, err := l.backends[idx].Listen(ctx, l.channel)
			if err != nil {
				return struct{}{}, false
			}
			defer cancelSub()
			for {
				select {
				case msg, open := <-msgs:
					if !open {
						return struct{}{}, false
					}
					if msg == "open" {
						return struct{}{}, true
					}
				case <-ctx.Done():
					return struct{}{}, false
				}
			}
		},
	)
	if ok {
		signalOpen()
	}
}

// pollForOpen is a periodic CheckCount safety net against a subscription
// established after the publish, a dropped message, or a disconnected
// client.
func (l *Latch) pollForOpen(ctx context.Context, signalOpen func(), timeout time.Duration) {
	ticker := time.NewTicker(pollInterval(timeout))
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			card, err := l.backends[0].CheckCount(ctx, l.latchKey)
			if err == nil && card >= l.minimalCount {
				signalOpen()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// GetCount returns max(0, minimalCount - observed cardinality on a
// backend); on backend failure it conservatively returns minimalCount.
func (l *Latch) GetCount(ctx context.Context) int64 {
	card, err := l.backends[0].CheckCount(ctx, l.latchKey)
	if err != nil {
		return l.minimalCount
	}
	remaining := l.minimalCount - card
	if remaining < 0 {
		return 0
	}
	return remaining
}
