// Package mru implements the most-recently-used eviction policy: it
// shares LRU's single recency list, but an access sends a key to the
// back instead of the front, so the most recently touched key is the
// next one evicted rather than the least.
//
// Grounded on original_source/cache/MRUCacheStrategy.hpp's
// evict-on-access rule, restructured onto LRU's container/list shape
// in place of that file's older, pre-ICacheStrategy method signatures.
package mru

import (
	"container/list"

	"github.com/arkdyn/polycache/policy"
)

type mru[K comparable] struct {
	order *list.List
	pos   map[K]*list.Element
}

type factory[K comparable] struct{}

// New returns a Factory that builds independent MRU instances.
func New[K comparable]() policy.Factory[K] { return factory[K]{} }

func (factory[K]) New() policy.Strategy[K] {
	return &mru[K]{
		order: list.New(),
		pos:   make(map[K]*list.Element),
	}
}

func (p *mru[K]) OnInsert(k K) {
	p.pos[k] = p.order.PushFront(k)
}

func (p *mru[K]) OnAccess(k K) bool {
	el, ok := p.pos[k]
	if !ok {
		return false
	}
	p.order.MoveToBack(el)
	return true
}

func (p *mru[K]) OnRemove(k K) {
	if el, ok := p.pos[k]; ok {
		p.order.Remove(el)
		delete(p.pos, k)
	}
}

func (p *mru[K]) OnClear() {
	p.order.Init()
	p.pos = make(map[K]*list.Element)
}

func (p *mru[K]) SelectForEviction() (K, bool) {
	back := p.order.Back()
	if back == nil {
		var zero K
		return zero, false
	}
	return back.Value.(K), true
}

func (p *mru[K]) Reserve(cap int) error {
	if cap < 1 {
		return policy.ErrInvalidCapacity
	}
	pos := make(map[K]*list.Element, cap)
	for k, v := range p.pos {
		pos[k] = v
	}
	p.pos = pos
	return nil
}
