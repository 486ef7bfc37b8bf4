// Package shared provides process-wide singleton cache wrappers:
// lazily and idempotently initialized, a miss on every read and a
// no-op on every write before initialization.
//
// Grounded on original_source/cache/Shared.hpp and
// SharedFragmented.hpp. Go has no class-template singleton idiom
// (utils::Singleton<T>); the idiomatic replacement is a struct holding
// its own sync.RWMutex, built by the caller (typically as a package-
// level var) rather than accessed through a class-static getInstance.
package shared

import (
	"sync"

	"github.com/arkdyn/polycache/core"
	"github.com/arkdyn/polycache/policy"
	"github.com/arkdyn/polycache/sharded"
)

// Plain wraps a single core.Core behind idempotent initialization.
// The zero value is ready to use, uninitialized.
type Plain[K comparable, V any] struct {
	mu sync.RWMutex
	c  *core.Core[K, V]
}

// Initialize creates the underlying cache on first call; later calls
// are no-ops, exactly like Shared::initialize's "if (!_cache)" guard.
func (p *Plain[K, V]) Initialize(capacity int, factory policy.Factory[K]) error {
	p.mu.RLock()
	initialized := p.c != nil
	p.mu.RUnlock()
	if initialized {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.c != nil {
		return nil
	}
	c, err := core.New[K, V](core.Options[K, V]{Capacity: capacity, Policy: factory})
	if err != nil {
		return err
	}
	p.c = c
	return nil
}

// Initialized reports whether Initialize has successfully run.
func (p *Plain[K, V]) Initialized() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.c != nil
}

// Get reports the value stored for k. Before Initialize, every call
// reports a miss.
func (p *Plain[K, V]) Get(k K) (v V, hit bool) {
	p.mu.RLock()
	c := p.c
	p.mu.RUnlock()
	if c == nil {
		return v, false
	}
	return c.Get(k)
}

// Put stores k's value. Before Initialize, it is a no-op.
func (p *Plain[K, V]) Put(k K, v V) {
	p.mu.RLock()
	c := p.c
	p.mu.RUnlock()
	if c != nil {
		c.Put(k, v)
	}
}

// Clear empties the underlying cache. Before Initialize, it is a no-op.
func (p *Plain[K, V]) Clear() {
	p.mu.RLock()
	c := p.c
	p.mu.RUnlock()
	if c != nil {
		c.Clear()
	}
}

// Sharded wraps a single sharded.Cache behind idempotent initialization.
type Sharded[K comparable, V any] struct {
	mu sync.RWMutex
	c  *sharded.Cache[K, V]
}

// Initialize creates the underlying sharded cache on first call; later
// calls are no-ops.
func (s *Sharded[K, V]) Initialize(shards, capacity int, factory policy.Factory[K]) error {
	s.mu.RLock()
	initialized := s.c != nil
	s.mu.RUnlock()
	if initialized {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}
	c, err := sharded.New[K, V](sharded.Options[K, V]{Capacity: capacity, Shards: shards, Policy: factory})
	if err != nil {
		return err
	}
	s.c = c
	return nil
}

// Initialized reports whether Initialize has successfully run.
func (s *Sharded[K, V]) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c != nil
}

// Get reports the value stored for k. Before Initialize, every call
// reports a miss.
func (s *Sharded[K, V]) Get(k K) (v V, hit bool) {
	s.mu.RLock()
	c := s.c
	s.mu.RUnlock()
	if c == nil {
		return v, false
	}
	return c.Get(k)
}

// Put stores k's value. Before Initialize, it is a no-op.
func (s *Sharded[K, V]) Put(k K, v V) {
	s.mu.RLock()
	c := s.c
	s.mu.RUnlock()
	if c != nil {
		c.Put(k, v)
	}
}

// Clear empties the underlying cache. Before Initialize, it is a no-op.
func (s *Sharded[K, V]) Clear() {
	s.mu.RLock()
	c := s.c
	s.mu.RUnlock()
	if c != nil {
		c.Clear()
	}
}
