// Package compositekey builds hashable, comparable keys out of
// several fields, for callers whose cached method takes more than one
// argument. Go has no variadic generics, so this is a family of
// fixed-arity types rather than a single Key[Args...].
//
// Grounded on original_source/cache/MethodCacheKey.hpp: equality is
// the tuple's structural equality, and Hash folds each field's hash
// through the same mixing step as MethodCacheKey's tuple_hash_impl.
package compositekey

import (
	"fmt"

	"github.com/arkdyn/polycache/internal/util"
)

// mix folds h2 into h1 using the boost::hash_combine style step the
// original ports from std::hash_combine.
func mix(h1, h2 uint64) uint64 {
	return h1 ^ (h2 + 0x9e3779b97f4a7c15 + (h1 << 6) + (h1 >> 2))
}

// hashOf hashes a single comparable field. It reuses util.Fnv64a's
// fast paths for the types that package already dispatches on, and
// falls back to hashing a printf rendering for anything else —
// correct for any comparable type, just not the fastest possible.
func hashOf[T comparable](v T) (h uint64) {
	defer func() {
		if r := recover(); r != nil {
			h = util.Fnv64a(fmt.Sprintf("%v", v))
		}
	}()
	return util.Fnv64a(v)
}

// Key2 is a composite key over two comparable fields.
type Key2[A, B comparable] struct {
	A A
	B B
}

// Hash returns a 64-bit hash suitable for routing or bucketing; equal
// keys always hash equally, by construction of the field hashes.
func (k Key2[A, B]) Hash() uint64 {
	h := hashOf(k.A)
	return mix(h, hashOf(k.B))
}

// Key3 is a composite key over three comparable fields.
type Key3[A, B, C comparable] struct {
	A A
	B B
	C C
}

func (k Key3[A, B, C]) Hash() uint64 {
	h := hashOf(k.A)
	h = mix(h, hashOf(k.B))
	return mix(h, hashOf(k.C))
}

// Key4 is a composite key over four comparable fields.
type Key4[A, B, C, D comparable] struct {
	A A
	B B
	C C
	D D
}

func (k Key4[A, B, C, D]) Hash() uint64 {
	h := hashOf(k.A)
	h = mix(h, hashOf(k.B))
	h = mix(h, hashOf(k.C))
	return mix(h, hashOf(k.D))
}
