package memorybackend

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/himadieievsv/distributed-locks/pkg/backend"
)

type lockEntry struct {
	owner     string
	expiresAt time.Time
}

type subscription struct {
	out chan string
}

// Backend is an in-process implementation of backend.Backend. The zero
// value is not usable; construct one with New. Safe for concurrent use.
type Backend struct {
	mu         sync.Mutex
	locks      map[string]lockEntry
	semaphores map[string]map[string]time.Time // key -> owner -> member expiry

	latchMu      sync.Mutex
	latchMembers map[string]map[string]struct{} // latchKey -> token set
	latchExpiry  map[string]time.Time

	subsMu sync.Mutex
	subs   map[string][]*subscription
}

// New constructs an empty in-process Backend.
func New() *Backend {
	return &Backend{
		locks:        make(map[string]lockEntry),
		semaphores:   make(map[string]map[string]time.Time),
		latchMembers: make(map[string]map[string]struct{}),
		latchExpiry:  make(map[string]time.Time),
		subs:         make(map[string][]*subscription),
	}
}

var _ backend.Backend = (*Backend)(nil)

// SetLock implements backend.LockBackend.
func (b *Backend) SetLock(_ context.Context, key, owner string, ttl time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.activeLockLocked(key); ok {
		return false, nil
	}
	b.locks[key] = lockEntry{owner: owner, expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// RemoveLock implements backend.LockBackend.
func (b *Backend) RemoveLock(_ context.Context, key, owner string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.activeLockLocked(key)
	if !ok || e.owner != owner {
		return false, nil
	}
	delete(b.locks, key)
	return true, nil
}

// activeLockLocked returns the live entry for key, lazily evicting it if
// its TTL has already elapsed. Caller must hold b.mu.
func (b *Backend) activeLockLocked(key string) (lockEntry, bool) {
	e, ok := b.locks[key]
	if !ok {
		return lockEntry{}, false
	}
	if !e.expiresAt.After(time.Now()) {
		delete(b.locks, key)
		return lockEntry{}, false
	}
	return e, true
}

// SetSemaphoreLock implements backend.SemaphoreBackend.
func (b *Backend) SetSemaphoreLock(_ context.Context, key, owner string, maxLeases int, ttl time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	members := b.semaphores[key]
	if members == nil {
		members = make(map[string]time.Time)
		b.semaphores[key] = members
	}
	pruneExpired(members)

	if _, already := members[owner]; !already && len(members) >= maxLeases {
		return false, nil
	}
	members[owner] = time.Now().Add(ttl)
	return true, nil
}

// RemoveSemaphoreLock implements backend.SemaphoreBackend.
func (b *Backend) RemoveSemaphoreLock(_ context.Context, key, owner string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	members := b.semaphores[key]
	if members == nil {
		return false, nil
	}
	if _, ok := members[owner]; !ok {
		return false, nil
	}
	delete(members, owner)
	return true, nil
}

// CleanUpExpiredSemaphoreLocks implements backend.SemaphoreBackend.
//
// A real Redis backend tracks each member's liveness via a companion
// marker key (cleanupKey) with its own TTL; this in-process backend
// instead stores each member's expiry directly alongside it, which is
// observationally equivalent for the single-process case this backend
// serves. cleanupKey is accepted to satisfy the interface and otherwise
// unused.
func (b *Backend) CleanUpExpiredSemaphoreLocks(_ context.Context, key, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	pruneExpired(b.semaphores[key])
	return nil
}

func pruneExpired(members map[string]time.Time) {
	now := time.Now()
	for owner, exp := range members {
		if !exp.After(now) {
			delete(members, owner)
		}
	}
}

// latchToken renders the (clientID, count) pair into the unique token
// stored as a set member.
func latchToken(clientID string, count int64) string {
	return clientID + "\x00" + strconv.FormatInt(count, 10)
}

// Count implements backend.LatchBackend.
func (b *Backend) Count(_ context.Context, latchKey, channel, clientID string, count, initialCount int64, ttl time.Duration) (bool, error) {
	var shouldPublish bool

	b.latchMu.Lock()
	members := b.latchMembers[latchKey]
	if members == nil {
		members = make(map[string]struct{})
		b.latchMembers[latchKey] = members
	}
	members[latchToken(clientID, count)] = struct{}{}

	newExpiry := time.Now().Add(ttl)
	if cur, ok := b.latchExpiry[latchKey]; !ok || newExpiry.After(cur) {
		b.latchExpiry[latchKey] = newExpiry
	}
	shouldPublish = int64(len(members)) >= initialCount
	b.latchMu.Unlock()

	if shouldPublish {
		b.publish(channel, "open")
	}
	return true, nil
}

// UndoCount implements backend.LatchBackend.
func (b *Backend) UndoCount(_ context.Context, latchKey, clientID string, count int64) (int64, error) {
	b.latchMu.Lock()
	defer b.latchMu.Unlock()
	members := b.latchMembers[latchKey]
	if members != nil {
		delete(members, latchToken(clientID, count))
	}
	return int64(len(members)), nil
}

// CheckCount implements backend.LatchBackend.
func (b *Backend) CheckCount(_ context.Context, latchKey string) (int64, error) {
	b.latchMu.Lock()
	defer b.latchMu.Unlock()
	return int64(len(b.latchMembers[latchKey])), nil
}

// Listen implements backend.LatchBackend. Publishes are delivered
// non-blocking/best-effort against an 8-slot buffer, matching "listen
// emits each received message until canceled" without letting a slow
// reader stall the in-process publisher.
func (b *Backend) Listen(ctx context.Context, channel string) (<-chan string, func(), error) {
	sub := &subscription{out: make(chan string, 8)}

	b.subsMu.Lock()
	b.subs[channel] = append(b.subs[channel], sub)
	b.subsMu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			b.subsMu.Lock()
			defer b.subsMu.Unlock()
			subs := b.subs[channel]
			for i, s := range subs {
				if s == sub {
					b.subs[channel] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			close(sub.out)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return sub.out, cancel, nil
}

// publish delivers msg to every live subscriber of channel. Send and the
// cancel-time close both run under subsMu, so a subscriber already removed
// from the list can never be sent to after its channel is closed.
func (b *Backend) publish(channel, msg string) {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	for _, s := range b.subs[channel] {
		select {
		case s.out <- msg:
		default:
		}
	}
}
