package redisbackend

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	//go:embed lua/remove_lock.lua
	removeLockSrc string

	//go:embed lua/set_semaphore_lock.lua
	setSemaphoreLockSrc string

	//go:embed lua/remove_semaphore_lock.lua
	removeSemaphoreLockSrc string

	//go:embed lua/cleanup_semaphore.lua
	cleanupSemaphoreSrc string

	//go:embed lua/count.lua
	countSrc string

	//go:embed lua/undo_count.lua
	undoCountSrc string
)

// scripts holds every Lua script this backend runs, each wrapped in a
// *redis.Script so go-redis can EVALSHA it and transparently fall back to
// EVAL on a NOSCRIPT miss.
type scripts struct {
	removeLock          *redis.Script
	setSemaphoreLock    *redis.Script
	removeSemaphoreLock *redis.Script
	cleanupSemaphore    *redis.Script
	count               *redis.Script
	undoCount           *redis.Script
}

var (
	globalScripts     *scripts
	globalScriptsOnce sync.Once
)

// getScripts returns the process-wide script set, compiling it on first
// use. Every *Backend shares it: the scripts carry no per-client state, so
// there is nothing to gain from per-Backend copies.
func getScripts() *scripts {
	globalScriptsOnce.Do(func() {
		globalScripts = &scripts{
			removeLock:          redis.NewScript(removeLockSrc),
			setSemaphoreLock:    redis.NewScript(setSemaphoreLockSrc),
			removeSemaphoreLock: redis.NewScript(removeSemaphoreLockSrc),
			cleanupSemaphore:    redis.NewScript(cleanupSemaphoreSrc),
			count:               redis.NewScript(countSrc),
			undoCount:           redis.NewScript(undoCountSrc),
		}
	})
	return globalScripts
}

// WarmupScripts loads every script into Redis's script cache ahead of
// first use, so the first real call isn't the one paying the compile
// cost. Safe to skip: go-redis falls back to EVAL on a cache miss.
func WarmupScripts(ctx context.Context, client redis.UniversalClient) error {
	if client == nil {
		return ErrNilClient
	}
	s := getScripts()
	if err := s.removeLock.Load(ctx, client).Err(); err != nil {
		return fmt.Errorf("load remove_lock script: %w", err)
	}
	if err := s.setSemaphoreLock.Load(ctx, client).Err(); err != nil {
		return fmt.Errorf("load set_semaphore_lock script: %w", err)
	}
	if err := s.removeSemaphoreLock.Load(ctx, client).Err(); err != nil {
		return fmt.Errorf("load remove_semaphore_lock script: %w", err)
	}
	if err := s.cleanupSemaphore.Load(ctx, client).Err(); err != nil {
		return fmt.Errorf("load cleanup_semaphore script: %w", err)
	}
	if err := s.count.Load(ctx, client).Err(); err != nil {
		return fmt.Errorf("load count script: %w", err)
	}
	if err := s.undoCount.Load(ctx, client).Err(); err != nil {
		return fmt.Errorf("load undo_count script: %w", err)
	}
	return nil
}

// convertScriptResultInt64 safely decodes a Lua script's scalar reply into
// an int64, handling every shape go-redis's reply parser can hand back for
// a Lua number. Extracted as a pure function so it is directly testable
// against each input type without a live Redis connection.
func convertScriptResultInt64(val any) (int64, error) {
	switch n := val.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case string:
		// DEL/SREM-backed scripts above always return a number; redis.Script
		// never replies with a numeric string, but a script edited to
		// `return tostring(n)` would land here, so decode defensively
		// rather than silently truncating to 0.
		var out int64
		if _, err := fmt.Sscanf(n, "%d", &out); err != nil {
			return 0, fmt.Errorf("%w: got non-numeric string %q", errUnexpectedScriptResult, n)
		}
		return out, nil
	default:
		return 0, fmt.Errorf("%w: got %T", errUnexpectedScriptResult, val)
	}
}

// evalScriptInt64 runs script against client and decodes its reply as a
// scalar int64.
func evalScriptInt64(ctx context.Context, client redis.UniversalClient, script *redis.Script, keys []string, args ...any) (int64, error) {
	val, err := script.Run(ctx, client, keys, args...).Result()
	if err != nil {
		return 0, err
	}
	return convertScriptResultInt64(val)
}
