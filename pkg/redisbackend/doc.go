// Package redisbackend implements backend.Backend over a single logical
// Redis endpoint (standalone, Sentinel, or Cluster, via
// redis.UniversalClient).
//
// SetLock and CheckCount map directly onto native atomic Redis commands
// (SET NX PX, SCARD) and need no scripting. Every other operation needs
// more than one command to stay atomic across concurrent callers, so it
// is a Lua script embedded from pkg/redisbackend/lua via go:embed and run
// with EVALSHA/EVAL through a process-wide singleton *redis.Script holder,
// with a defensive scalar decode so an unexpected reply type surfaces as
// an error instead of a panic.
//
// Listen is built on go-redis's native PubSub, forwarding payloads onto a
// channel until either the caller's context is done or the returned
// cancel func is called.
//
// New accepts optional functional options; WithLogger attaches an
// xlog.Logger used for best-effort diagnostic logging of script failures.
package redisbackend
