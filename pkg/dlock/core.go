package dlock

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

// unlockCleanupTimeout bounds the best-effort unlock fan-out issued after
// a caller's ctx has already been cancelled/timed out: it falls back to an
// independent cleanup context so pre-unlock-on-failure still completes
// instead of being aborted by the very deadline that caused it.
const unlockCleanupTimeout = 5 * time.Second

// core is the shared acquire/release engine behind both SimpleLock (one
// backend) and RedLock (N backends): a single-instance lock is a quorum
// lock with N=1, so both share this type instead of duplicating the
// fan-out/rollback logic.
type core struct {
	backends []backend.LockBackend
	owner    string
	executor *quorum.Executor
	retryer  *xretry.Retryer
}

func newCore(backends []backend.LockBackend, opts ...Option) (*core, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
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

	return &core{
		backends: backends,
		owner:    ownerid.New(),
		executor: quorum.New(execOpts...),
		retryer:  retryer,
	}, nil
}

// lock implements the quorum acquire algorithm shared by RedLock and
// SimpleLock.
func (c *core) lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return false, ErrEmptyKey
	}
	if ttl <= 2*time.Millisecond {
		return false, ErrInvalidTTL
	}

	_, ok := quorum.RunWithRetry[struct{}](ctx, c.executor, c.retryer, len(c.backends), quorum.WaitAll, ttl,
		func(ctx context.Context, idx int) (struct{}, bool) {
			return xretry.Swallow(func() (struct{}, error) {
				granted, err := c.backends[idx].SetLock(ctx, key, c.owner, ttl)
				if err != nil {
					return struct{}{}, err
				}
				if !granted {
					return struct{}{}, errLockNotGranted
				}
				return struct{}{}, nil
			})
		},
	)

	if !ok {
		// A timed-out/minority acquisition may still have succeeded on some
		// backends; strand nothing, clean up now rather than wait for TTL.
		cleanupCtx, cancel := unlockCleanupContext(ctx)
		defer cancel()
		c.unlockAll(cleanupCtx, key)
		return false, nil
	}
	return true, nil
}

// unlock releases key on every backend: best-effort, no quorum, no retry
// from this layer.
func (c *core) unlock(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	c.unlockAll(ctx, key)
	return nil
}

func (c *core) unlockAll(ctx context.Context, key string) {
	var wg sync.WaitGroup
	wg.Add(len(c.backends))
	for _, b := range c.backends {
		b := b
		go func() {
			defer wg.Done()
			_, _ = b.RemoveLock(ctx, key, c.owner)
		}()
	}
	wg.Wait()
}

// unlockCleanupContext derives a fresh context for best-effort cleanup that
// survives the cancellation/deadline of the ctx that triggered it.
func unlockCleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), unlockCleanupTimeout)
}
