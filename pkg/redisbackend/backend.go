package redisbackend

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/himadieievsv/distributed-locks/pkg/backend"
	"github.com/himadieievsv/distributed-locks/pkg/xlog"
)

// Backend implements backend.Backend against a single Redis endpoint.
// The zero value is not usable; construct one with New. A Backend is safe
// for concurrent use — all state lives in Redis or in the underlying
// client, which is itself concurrency-safe.
type Backend struct {
	client  redis.UniversalClient
	scripts *scripts
	logger  xlog.Logger
}

var _ backend.Backend = (*Backend)(nil)

// Option configures a Backend at construction.
type Option func(*Backend)

// WithLogger attaches a logger used for best-effort diagnostic logging of
// script errors (e.g. an unexpected scalar reply shape). A nil logger, or
// never passing this option, disables logging.
func WithLogger(l xlog.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// New wraps an existing redis.UniversalClient (a *redis.Client,
// *redis.ClusterClient, or *redis.SentinelClient all satisfy it). The
// Backend does not own the client's lifecycle; callers close it.
func New(client redis.UniversalClient, opts ...Option) (*Backend, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	b := &Backend{client: client, scripts: getScripts()}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// cleanupKeyFor derives the base under which SetSemaphoreLock writes a
// per-owner marker. pkg/semaphore's own cleanupKeyFor independently
// derives the identical "key:cleanup" base to pass into
// CleanUpExpiredSemaphoreLocks — the two packages agree on this
// convention without either importing the other, the same way a wire
// format would be documented between two otherwise-unrelated services.
func cleanupKeyFor(key string) string {
	return key + ":cleanup"
}

// evalInt64 runs script through evalScriptInt64 and logs a Warn on failure
// if a logger was configured; the error is always still returned.
func (b *Backend) evalInt64(ctx context.Context, script *redis.Script, keys []string, args ...any) (int64, error) {
	n, err := evalScriptInt64(ctx, b.client, script, keys, args...)
	if err != nil && b.logger != nil {
		b.logger.Warn(ctx, "redisbackend: script evaluation failed", slog.String("error", err.Error()))
	}
	return n, err
}

// SetLock implements backend.LockBackend.
func (b *Backend) SetLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	ok, err := b.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// RemoveLock implements backend.LockBackend.
func (b *Backend) RemoveLock(ctx context.Context, key, owner string) (bool, error) {
	n, err := b.evalInt64(ctx, b.scripts.removeLock, []string{key}, owner)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetSemaphoreLock implements backend.SemaphoreBackend.
func (b *Backend) SetSemaphoreLock(ctx context.Context, key, owner string, maxLeases int, ttl time.Duration) (bool, error) {
	n, err := b.evalInt64(ctx, b.scripts.setSemaphoreLock,
		[]string{key}, owner, maxLeases, ttl.Milliseconds(), cleanupKeyFor(key))
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RemoveSemaphoreLock implements backend.SemaphoreBackend.
func (b *Backend) RemoveSemaphoreLock(ctx context.Context, key, owner string) (bool, error) {
	_, err := b.scripts.removeSemaphoreLock.Run(ctx, b.client, []string{key}, owner, cleanupKeyFor(key)).Result()
	if err != nil {
		return false, err
	}
	return true, nil
}

// CleanUpExpiredSemaphoreLocks implements backend.SemaphoreBackend.
func (b *Backend) CleanUpExpiredSemaphoreLocks(ctx context.Context, key, cleanupKey string) error {
	_, err := b.scripts.cleanupSemaphore.Run(ctx, b.client, []string{key}, cleanupKey).Result()
	return err
}

// Count implements backend.LatchBackend.
func (b *Backend) Count(ctx context.Context, latchKey, channel, clientID string, count, initialCount int64, ttl time.Duration) (bool, error) {
	token := latchToken(clientID, count)
	_, err := b.scripts.count.Run(ctx, b.client, []string{latchKey}, token, ttl.Milliseconds(), initialCount, channel).Result()
	if err != nil {
		return false, err
	}
	return true, nil
}

// UndoCount implements backend.LatchBackend.
func (b *Backend) UndoCount(ctx context.Context, latchKey, clientID string, count int64) (int64, error) {
	token := latchToken(clientID, count)
	return b.evalInt64(ctx, b.scripts.undoCount, []string{latchKey}, token)
}

// CheckCount implements backend.LatchBackend.
func (b *Backend) CheckCount(ctx context.Context, latchKey string) (int64, error) {
	return b.client.SCard(ctx, latchKey).Result()
}

// Listen implements backend.LatchBackend on top of go-redis's native
// PubSub. Receive blocks until the SUBSCRIBE confirmation arrives, so a
// caller observing a successful return is guaranteed not to miss a
// message published immediately after.
func (b *Backend) Listen(ctx context.Context, channel string) (<-chan string, func(), error) {
	pubsub := b.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan string, 8)
	done := make(chan struct{})

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}

	go func() {
		defer close(out)
		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-done:
					return
				}
			case <-done:
				return
			case <-ctx.Done():
				cancel()
				return
			}
		}
	}()

	return out, cancel, nil
}

// latchToken renders the (clientID, count) pair into the unique token
// every latch script submits to its backing set. Duplicated verbatim from
// pkg/memorybackend rather than shared, since it is a two-line wire
// convention between pkg/latch and whichever backend.LatchBackend it
// talks to — not a behavior the two backend packages need to share code
// to keep in sync.
func latchToken(clientID string, count int64) string {
	return clientID + "\x00" + strconv.FormatInt(count, 10)
}
