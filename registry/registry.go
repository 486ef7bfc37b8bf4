// Package registry provides a process-wide, type-erased map from a
// (class name, method name, key type, value type) quadruple to a
// lazily-created cache instance, so repeated calls for the same
// method get the same cache instead of each allocating their own.
//
// Grounded on original_source/cache/MethodCacheManager.hpp: the shared
// CacheKey/CacheKeyHash plus shared-read/exclusive-write lookup-or-
// create sequence. Go has no typeid/std::type_index; reflect.Type,
// obtained via reflect.TypeFor, is the idiomatic stand-in.
package registry

import (
	"reflect"
	"sync"

	"github.com/arkdyn/polycache/core"
	"github.com/arkdyn/polycache/policy"
	"github.com/arkdyn/polycache/sharded"
)

type key struct {
	class, method    string
	keyType, valType reflect.Type
}

// Registry is a process-wide, type-erased cache-of-caches. The zero
// value is ready to use.
type Registry struct {
	mu     sync.RWMutex
	caches map[key]any
}

// Default is a package-level registry that callers can pass to the
// free functions below; those functions use only the registry they
// are given.
var Default = &Registry{}

// PlainCache returns the core.Core[K,V] registered for
// (className, methodName), constructing it with the given capacity
// and factory (nil for policy/lru) if this is the first call for that
// quadruple. Later calls with the same quadruple ignore capacity and
// factory and return the existing instance, matching the C++
// original's "first caller wins" semantics.
func PlainCache[K comparable, V any](r *Registry, className, methodName string, capacity int, factory policy.Factory[K]) (*core.Core[K, V], error) {
	k := key{
		class:   className,
		method:  methodName,
		keyType: reflect.TypeFor[K](),
		valType: reflect.TypeFor[V](),
	}

	if c, ok := lookup[*core.Core[K, V]](r, k); ok {
		return c, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.caches[k]; ok {
		return c.(*core.Core[K, V]), nil
	}

	c, err := core.New[K, V](core.Options[K, V]{Capacity: capacity, Policy: factory})
	if err != nil {
		return nil, err
	}
	if r.caches == nil {
		r.caches = make(map[key]any)
	}
	r.caches[k] = c
	return c, nil
}

// ShardedCache is PlainCache's sharded-cache counterpart.
func ShardedCache[K comparable, V any](r *Registry, className, methodName string, shards, capacity int, factory policy.Factory[K]) (*sharded.Cache[K, V], error) {
	k := key{
		class:   className,
		method:  methodName,
		keyType: reflect.TypeFor[K](),
		valType: reflect.TypeFor[V](),
	}

	if c, ok := lookup[*sharded.Cache[K, V]](r, k); ok {
		return c, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.caches[k]; ok {
		return c.(*sharded.Cache[K, V]), nil
	}

	c, err := sharded.New[K, V](sharded.Options[K, V]{Capacity: capacity, Shards: shards, Policy: factory})
	if err != nil {
		return nil, err
	}
	if r.caches == nil {
		r.caches = make(map[key]any)
	}
	r.caches[k] = c
	return c, nil
}

func lookup[T any](r *Registry, k key) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var zero T
	c, ok := r.caches[k]
	if !ok {
		return zero, false
	}
	return c.(T), true
}
