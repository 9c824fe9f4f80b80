package quorum

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/himadieievsv/distributed-locks/pkg/xlog"
	"github.com/himadieievsv/distributed-locks/pkg/xretry"
)

// DefaultClockDrift is the fixed component added on top of the
// timeout-proportional component when computing clockDrift: clockDrift =
// ⌈timeout×0.01⌉ + defaultDrift.
const DefaultClockDrift = 3 * time.Millisecond

// Executor runs a per-backend operation against N backends and decides
// quorum. The zero value is not usable; construct one with New.
type Executor struct {
	defaultDrift time.Duration
	logger       xlog.Logger
	tracer       oteltracer
	metrics      *Metrics
}

// Option configures an Executor built by New.
type Option func(*Executor)

// WithDefaultDrift overrides DefaultClockDrift.
func WithDefaultDrift(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.defaultDrift = d
		}
	}
}

// WithLogger attaches a logger used for best-effort diagnostic logging
// (e.g. a caller passing n <= 0). A nil logger, or never calling this
// option, disables logging.
func WithLogger(l xlog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// New builds an Executor. It never fails: the only preconditions the
// quorum algorithm attaches (retryCount >= 1, retryDelay > 0) belong to
// the retrying wrapper's xretry.Retryer, built separately and passed to
// RunWithRetry.
func New(opts ...Option) *Executor {
	e := &Executor{defaultDrift: DefaultClockDrift}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.tracer.tracer == nil {
		e.tracer = newTracer(nil)
	}
	return e
}

// Run fans out f across n backend indices [0,n) and decides whether quorum
// was reached within the validity window.
//
//   - quorum threshold is ⌊n/2⌋+1 under WaitAll, 1 under WaitAny.
//   - clockDrift = ⌈timeout×0.01⌉ + e.defaultDrift.
//   - validity = timeout - elapsed - clockDrift; Run fails if validity < 0
//     even when the threshold was met.
//
// f must not panic and must treat ctx cancellation as "stop and return
// promptly" — under WaitAny, ctx is cancelled for the remaining in-flight
// calls as soon as the first non-null result arrives.
//
// Run is a free function rather than a method because Go methods cannot
// carry their own type parameters independent of the receiver's.
func Run[T any](
	ctx context.Context,
	e *Executor,
	n int,
	strategy Strategy,
	timeout time.Duration,
	f func(ctx context.Context, idx int) (T, bool),
) ([]T, bool) {
	if n <= 0 {
		if e.logger != nil {
			e.logger.Warn(ctx, "quorum: Run called with n <= 0", slog.Int("n", n))
		}
		return nil, false
	}

	ctx, span := e.tracer.start(ctx, spanNameRun, strategy, n)
	defer span.end()

	threshold := n/2 + 1
	if strategy == WaitAny {
		threshold = 1
	}
	clockDrift := ClockDrift(timeout, e.defaultDrift)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sink := &syncSlice[T]{}
	start := time.Now()

	switch strategy {
	case WaitAny:
		waitAny(runCtx, cancel, n, sink, f)
	default:
		waitAll(runCtx, n, sink, f)
	}

	elapsed := time.Since(start)
	validity := timeout - elapsed - clockDrift
	results := sink.snapshot()
	valid := len(results) >= threshold && validity >= 0

	span.record(len(results), threshold, valid, elapsed)
	if e.metrics != nil {
		e.metrics.RecordRun(ctx, strategy.String(), valid, elapsed)
	}

	if !valid {
		return nil, false
	}
	return results, true
}

// ClockDrift computes clockDrift = ⌈timeout×0.01⌉ + defaultDrift, rounding
// the proportional component up to the millisecond.
// Exported so callers that must validate a precondition expressed in terms
// of clockDrift (e.g. pkg/latch's "maxDuration >= 2*clockDrift") can use
// the exact same formula the executor itself uses.
func ClockDrift(timeout, defaultDrift time.Duration) time.Duration {
	ms := math.Ceil(float64(timeout.Milliseconds()) * 0.01)
	return time.Duration(ms)*time.Millisecond + defaultDrift
}

func waitAll[T any](ctx context.Context, n int, sink *syncSlice[T], f func(context.Context, int) (T, bool)) {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		idx := i
		g.Go(func() error {
			if v, ok := f(gctx, idx); ok {
				sink.add(v)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func waitAny[T any](ctx context.Context, cancel context.CancelFunc, n int, sink *syncSlice[T], f func(context.Context, int) (T, bool)) {
	var wg sync.WaitGroup
	var once sync.Once
	wg.Add(n)
	for i := 0; i < n; i++ {
		idx := i
		go func() {
			defer wg.Done()
			v, ok := f(ctx, idx)
			if ok {
				sink.add(v)
				once.Do(cancel)
			}
		}()
	}
	wg.Wait()
}

// RunWithRetry layers a retrying wrapper over Run: it retries the whole
// fan-out/collect attempt, via retryer, until one attempt returns a valid
// result or attempts are exhausted.
func RunWithRetry[T any](
	ctx context.Context,
	e *Executor,
	retryer *xretry.Retryer,
	n int,
	strategy Strategy,
	timeout time.Duration,
	f func(ctx context.Context, idx int) (T, bool),
) ([]T, bool) {
	results, err := xretry.DoWithResult(ctx, retryer, func(ctx context.Context) ([]T, error) {
		res, ok := Run[T](ctx, e, n, strategy, timeout, f)
		if !ok {
			return nil, errEmptyResult
		}
		return res, nil
	})
	if err != nil {
		return nil, false
	}
	return results, true
}
