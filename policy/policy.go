// Package policy declares the contract every eviction policy satisfies,
// and the factory contract a cache core uses to obtain a fresh,
// independent policy instance for itself (or, in a sharded cache, for
// each of its shards).
package policy

import "errors"

// ErrInvalidCapacity is returned by Reserve when asked to pre-size for
// fewer than one key.
var ErrInvalidCapacity = errors.New("policy: invalid capacity")

// Strategy is the bookkeeping a single eviction policy instance
// maintains for a single cache core. It tracks keys only — never
// values — and is always invoked under the owning core's lock.
//
// OnAccess reports whether k was tracked: it never resurrects an
// unknown key, and never panics on one either.
type Strategy[K comparable] interface {
	// OnInsert records that k has just entered the cache. k must not
	// already be tracked.
	OnInsert(k K)

	// OnAccess records a read or write hit on k. Returns false if k is
	// not tracked, and does not start tracking it. A policy may still
	// count the call toward its own housekeeping (halvedlfu counts it
	// toward the halving period).
	OnAccess(k K) bool

	// OnRemove records that k is being removed. No-op if k is untracked.
	OnRemove(k K)

	// OnClear drops all bookkeeping.
	OnClear()

	// SelectForEviction returns a tracked key to evict, or false if the
	// policy is tracking nothing. Idempotent: calling it twice with no
	// intervening mutation returns the same key.
	SelectForEviction() (K, bool)

	// Reserve hints that up to cap keys will be tracked. Returns
	// ErrInvalidCapacity if cap < 1.
	Reserve(cap int) error
}

// Factory builds a fresh Strategy instance bound to no particular
// core yet. Cache cores and sharded caches hold a Factory and call
// New() once per core/shard, so policy state is never shared across
// independently-evicting partitions.
type Factory[K comparable] interface {
	New() Strategy[K]
}
