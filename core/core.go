// Package core implements a single bounded, policy-driven cache: a
// plain map of values guarded by a lock, with eviction decisions
// delegated entirely to a policy.Strategy.
//
// Grounded on original_source/cache/Base.hpp, restructured in the
// teacher's Go shape (cache/cache.go): Get/Put/Clear follow Base's
// lock discipline exactly, including the shared-then-exclusive
// two-phase Get and desync recovery on a false OnAccess or on an
// eviction victim the map does not hold.
package core

import (
	"context"
	"errors"

	"github.com/arkdyn/polycache/internal/singleflight"
	"github.com/arkdyn/polycache/lock"
	"github.com/arkdyn/polycache/policy"
	"github.com/arkdyn/polycache/policy/lru"
)

// ErrInvalidCapacity is returned by New when asked to build a core
// that can hold fewer than one entry.
var ErrInvalidCapacity = errors.New("core: invalid capacity")

// Options configures a Core. The zero value is not usable directly;
// build one through New.
type Options[K comparable, V any] struct {
	// Capacity bounds the number of entries the core holds. Must be >= 1.
	Capacity int

	// Policy supplies the eviction strategy. Nil defaults to policy/lru.
	Policy policy.Factory[K]

	// Lock supplies the synchronization primitive. Nil defaults to a
	// real sync.RWMutex; lock.NoOp opts out of synchronization entirely.
	Lock lock.RW
}

// Core is a single bounded cache partition: one map, one lock, one
// policy instance. It is the unit a sharded.Cache distributes keys
// across, and the unit a registry.Registry hands back per method.
type Core[K comparable, V any] struct {
	capacity int
	mu       lock.RW
	values   map[K]V
	strategy policy.Strategy[K]
	loader   singleflight.Group[K, V]
}

// New builds a Core. Capacity must be at least 1.
func New[K comparable, V any](opt Options[K, V]) (*Core[K, V], error) {
	if opt.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	factory := opt.Policy
	if factory == nil {
		factory = lru.New[K]()
	}
	strategy := factory.New()
	if err := strategy.Reserve(opt.Capacity); err != nil {
		return nil, err
	}

	mu := opt.Lock
	if mu == nil {
		mu = lock.New()
	}

	return &Core[K, V]{
		capacity: opt.Capacity,
		mu:       mu,
		values:   make(map[K]V, opt.Capacity),
		strategy: strategy,
	}, nil
}

// Get reports the value stored for k, if any. It takes the lock
// shared to probe membership, then upgrades to exclusive to record
// the access and re-reads under that lock in case Put or Clear raced
// in between.
func (c *Core[K, V]) Get(k K) (v V, hit bool) {
	c.mu.RLock()
	_, present := c.values[k]
	c.mu.RUnlock()
	if !present {
		return v, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	v, present = c.values[k]
	if !present {
		return v, false
	}
	if !c.strategy.OnAccess(k) {
		c.clearLocked()
		var zero V
		return zero, false
	}
	return v, true
}

// Put inserts or updates k's value. If k is new and the core is at
// capacity, a victim is evicted first; if the policy and the map
// disagree about what is tracked, the core clears itself and drops
// the incoming write rather than risk operating on stale bookkeeping.
func (c *Core[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, present := c.values[k]; present {
		c.values[k] = v
		if !c.strategy.OnAccess(k) {
			c.clearLocked()
		}
		return
	}

	if len(c.values) >= c.capacity {
		if victim, ok := c.strategy.SelectForEviction(); ok {
			if _, tracked := c.values[victim]; !tracked {
				c.clearLocked()
				return
			}
			delete(c.values, victim)
			c.strategy.OnRemove(victim)
		}
	}

	if len(c.values) < c.capacity {
		c.values[k] = v
		c.strategy.OnInsert(k)
	}
}

// Clear drops every entry and all policy bookkeeping.
func (c *Core[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

func (c *Core[K, V]) clearLocked() {
	c.values = make(map[K]V, c.capacity)
	c.strategy.OnClear()
}

// Size reports the number of entries currently held.
func (c *Core[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// Capacity reports the bound passed to New.
func (c *Core[K, V]) Capacity() int { return c.capacity }

// IsMtSafe reports whether this core is actually synchronized, i.e.
// whether its lock is anything other than the distinguished no-op.
func (c *Core[K, V]) IsMtSafe() bool { return !lock.IsNoOp(c.mu) }

// GetOrLoad returns the cached value for k, or calls load to produce
// one on a miss. Concurrent GetOrLoad calls for the same key share a
// single in-flight load via singleflight; the loaded value is then
// Put into the core like any other write, so it participates in
// eviction normally.
func (c *Core[K, V]) GetOrLoad(ctx context.Context, k K, load func(context.Context, K) (V, error)) (V, error) {
	if v, hit := c.Get(k); hit {
		return v, nil
	}

	return c.loader.Do(ctx, k, func() (V, error) {
		if v, hit := c.Get(k); hit {
			return v, nil
		}
		v, err := load(ctx, k)
		if err != nil {
			var zero V
			return zero, err
		}
		c.Put(k, v)
		return v, nil
	})
}
