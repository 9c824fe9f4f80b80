package semaphore

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

// unlockCleanupTimeout bounds the best-effort release fan-out issued after
// a failed acquire whose caller ctx has already elapsed; see
// pkg/dlock.core's identical rationale.
const unlockCleanupTimeout = 5 * time.Second

// Semaphore is a distributed counting semaphore: up to maxLeases
// concurrent holders of the same key across a quorum of backends.
type Semaphore struct {
	backends  []backend.SemaphoreBackend
	owner     string
	maxLeases int
	executor  *quorum.Executor
	retryer   *xretry.Retryer
}

// New constructs a Semaphore over backends with maxLeases available slots
// per key. backends must be non-empty and maxLeases must be >= 1.
func New(backends []backend.SemaphoreBackend, maxLeases int, opts ...Option) (*Semaphore, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	if maxLeases < 1 {
		return nil, ErrInvalidMaxLeases
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

	return &Semaphore{
		backends:  backends,
		owner:     ownerid.New(),
		maxLeases: maxLeases,
		executor:  quorum.New(execOpts...),
		retryer:   retryer,
	}, nil
}

// cleanupKeyFor derives the companion cleanup-marker key backend.Backend
// implementations use to track per-member liveness.
func cleanupKeyFor(key string) string {
	return key + ":cleanup"
}

// Lock attempts to acquire one of maxLeases slots for key across a
// majority of backends within ttl (DefaultTTL unless overridden by
// WithTTL).
func (s *Semaphore) Lock(ctx context.Context, key string, opts ...LockOption) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return false, ErrEmptyKey
	}

	o := defaultLockOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	s.cleanupExpired(ctx, key)

	_, ok := quorum.RunWithRetry[struct{}](ctx, s.executor, s.retryer, len(s.backends), quorum.WaitAll, o.ttl,
		func(ctx context.Context, idx int) (struct{}, bool) {
			return xretry.Swallow(func() (struct{}, error) {
				granted, err := s.backends[idx].SetSemaphoreLock(ctx, key, s.owner, s.maxLeases, o.ttl)
				if err != nil {
					return struct{}{}, err
				}
				if !granted {
					return struct{}{}, errSlotNotGranted
				}
				return struct{}{}, nil
			})
		},
	)

	if !ok {
		cleanupCtx, cancel := unlockCleanupContext(ctx)
		defer cancel()
		s.unlockAll(cleanupCtx, key)
		return false, nil
	}
	return true, nil
}

// Unlock releases key's slot on every backend, best-effort, no quorum
// check.
func (s *Semaphore) Unlock(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	s.unlockAll(ctx, key)
	return nil
}

// cleanupExpired fans CleanUpExpiredSemaphoreLocks out to every backend
// concurrently, best-effort, before each acquire attempt.
func (s *Semaphore) cleanupExpired(ctx context.Context, key string) {
	cleanupKey := cleanupKeyFor(key)
	var wg sync.WaitGroup
	wg.Add(len(s.backends))
	for _, b := range s.backends {
		b := b
		go func() {
			defer wg.Done()
			_ = b.CleanUpExpiredSemaphoreLocks(ctx, key, cleanupKey)
		}()
	}
	wg.Wait()
}

func (s *Semaphore) unlockAll(ctx context.Context, key string) {
	var wg sync.WaitGroup
	wg.Add(len(s.backends))
	for _, b := range s.backends {
		b := b
		go func() {
			defer wg.Done()
			_, _ = b.RemoveSemaphoreLock(ctx, key, s.owner)
		}()
	}
	wg.Wait()
}

func unlockCleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), unlockCleanupTimeout)
}
