// Package sharded distributes keys across a fixed number of
// independent core.Core partitions, each with its own lock and its
// own policy instance, so unrelated keys never contend or evict one
// another.
//
// Grounded on original_source/cache/Fragmented.hpp: a registry-level
// lock guards lazy shard creation, and once a shard exists its own
// lock governs everything that happens inside it. Shard routing and
// auto-sizing are adapted from the teacher's internal/util helpers.
package sharded

import (
	"context"
	"errors"

	"github.com/arkdyn/polycache/core"
	"github.com/arkdyn/polycache/internal/util"
	"github.com/arkdyn/polycache/lock"
	"github.com/arkdyn/polycache/policy"
)

// ErrInvalidCapacity is returned by New when asked to build a cache
// that can hold fewer than one entry.
var ErrInvalidCapacity = errors.New("sharded: invalid capacity")

// Options configures a Cache. The zero value is not usable directly;
// build one through New.
type Options[K comparable, V any] struct {
	// Capacity bounds the total number of entries across all shards.
	// Must be >= 1. Divided evenly (floor, clamped to 1) across Shards.
	Capacity int

	// Shards sets the shard count. <= 0 picks util.ReasonableShardCount(),
	// rounded up to the next power of two.
	Shards int

	// Policy supplies the eviction strategy used by every shard. Each
	// shard gets its own Strategy instance from a single call to
	// factory.New(), so state never leaks across shards. Nil defaults
	// to policy/lru.
	Policy policy.Factory[K]

	// Lock guards shard-slot creation. Nil defaults to a real
	// sync.RWMutex.
	Lock lock.RW

	// ShardLock builds the lock for each shard's own core.Core. Called
	// once per shard, lazily, on the first Put or GetOrLoad routed to
	// that shard (Get never creates a shard). Nil
	// defaults to a fresh sync.RWMutex per shard.
	ShardLock func() lock.RW
}

// Cache is a sharded, policy-driven cache. Shards materialize lazily:
// an empty shard costs nothing beyond a nil slot until its first Put.
type Cache[K comparable, V any] struct {
	capacityPerShard int
	nShards          int
	policy           policy.Factory[K]
	shardLock        func() lock.RW

	mu     lock.RW
	shards []*core.Core[K, V]
}

// New builds a Cache. Capacity must be at least 1.
func New[K comparable, V any](opt Options[K, V]) (*Cache[K, V], error) {
	if opt.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	nShards := opt.Shards
	if nShards <= 0 {
		nShards = util.ReasonableShardCount()
	} else {
		nShards = int(util.NextPow2(uint64(nShards)))
	}

	capacityPerShard := opt.Capacity / nShards
	if capacityPerShard < 1 {
		capacityPerShard = 1
	}

	mu := opt.Lock
	if mu == nil {
		mu = lock.New()
	}

	shardLock := opt.ShardLock
	if shardLock == nil {
		shardLock = lock.New
	}

	return &Cache[K, V]{
		capacityPerShard: capacityPerShard,
		nShards:          nShards,
		policy:           opt.Policy,
		shardLock:        shardLock,
		mu:               mu,
		shards:           make([]*core.Core[K, V], nShards),
	}, nil
}

// shardIndex routes k to a shard. Key types that implement
// util.Hasher (compositekey.Key2/Key3/Key4 among them) hash
// themselves; everything else falls through to Fnv64a's built-in
// cases.
func (c *Cache[K, V]) shardIndex(k K) int {
	return util.ShardIndex(util.Fnv64a(k), c.nShards)
}

// slot returns the shard for k, or nil if it has never been written to.
func (c *Cache[K, V]) slot(k K) *core.Core[K, V] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.shards[c.shardIndex(k)]
}

// slotForWrite returns the shard for k, materializing it under the
// registry lock if this is the first write it has ever seen.
func (c *Cache[K, V]) slotForWrite(k K) *core.Core[K, V] {
	idx := c.shardIndex(k)

	c.mu.RLock()
	shard := c.shards[idx]
	c.mu.RUnlock()
	if shard != nil {
		return shard
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shards[idx] == nil {
		shard, err := core.New[K, V](core.Options[K, V]{
			Capacity: c.capacityPerShard,
			Policy:   c.policy,
			Lock:     c.shardLock(),
		})
		if err != nil {
			// capacityPerShard is always >= 1, so New cannot fail here.
			panic(err)
		}
		c.shards[idx] = shard
	}
	return c.shards[idx]
}

// Get reports the value stored for k, if any.
func (c *Cache[K, V]) Get(k K) (v V, hit bool) {
	shard := c.slot(k)
	if shard == nil {
		return v, false
	}
	return shard.Get(k)
}

// Put inserts or updates k's value in its shard, materializing that
// shard on first use.
func (c *Cache[K, V]) Put(k K, v V) {
	c.slotForWrite(k).Put(k, v)
}

// Clear empties every materialized shard. Shards that were never
// created stay nil.
func (c *Cache[K, V]) Clear() {
	c.mu.RLock()
	shards := make([]*core.Core[K, V], len(c.shards))
	copy(shards, c.shards)
	c.mu.RUnlock()

	for _, shard := range shards {
		if shard != nil {
			shard.Clear()
		}
	}
}

// Size reports the total number of entries across all shards. This is
// a point-in-time snapshot, not a linearizable total: each shard is
// read independently (the same shared-probe-then-delegate pattern
// core.Get uses for a single key), so a concurrent write to one shard
// can land between that shard's read and another's.
func (c *Cache[K, V]) Size() int {
	c.mu.RLock()
	shards := make([]*core.Core[K, V], len(c.shards))
	copy(shards, c.shards)
	c.mu.RUnlock()

	total := 0
	for _, shard := range shards {
		if shard != nil {
			total += shard.Size()
		}
	}
	return total
}

// Capacity reports the total capacity across all shards (shard count
// times per-shard capacity, which may exceed the requested Capacity
// by rounding).
func (c *Cache[K, V]) Capacity() int { return c.capacityPerShard * c.nShards }

// Shards reports the number of shards this cache was built with.
func (c *Cache[K, V]) Shards() int { return c.nShards }

// IsMtSafe reports whether the registry lock is actually synchronized.
func (c *Cache[K, V]) IsMtSafe() bool { return !lock.IsNoOp(c.mu) }

// GetOrLoad delegates to the target shard's own GetOrLoad, so
// concurrent loads for the same key coalesce within that shard without
// blocking unrelated shards.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, k K, load func(context.Context, K) (V, error)) (V, error) {
	return c.slotForWrite(k).GetOrLoad(ctx, k, load)
}
