// Package lru implements the least-recently-used eviction policy:
// accesses promote a key to the front of a recency list, and the
// victim is always the back of that list.
package lru

import (
	"container/list"

	"github.com/arkdyn/polycache/policy"
)

type lru[K comparable] struct {
	order *list.List            // front = most recently used
	pos   map[K]*list.Element   // key -> its node in order
}

type factory[K comparable] struct{}

// New returns a Factory that builds independent LRU instances.
func New[K comparable]() policy.Factory[K] { return factory[K]{} }

func (factory[K]) New() policy.Strategy[K] {
	return &lru[K]{
		order: list.New(),
		pos:   make(map[K]*list.Element),
	}
}

func (p *lru[K]) OnInsert(k K) {
	p.pos[k] = p.order.PushFront(k)
}

func (p *lru[K]) OnAccess(k K) bool {
	el, ok := p.pos[k]
	if !ok {
		return false
	}
	p.order.MoveToFront(el)
	return true
}

func (p *lru[K]) OnRemove(k K) {
	if el, ok := p.pos[k]; ok {
		p.order.Remove(el)
		delete(p.pos, k)
	}
}

func (p *lru[K]) OnClear() {
	p.order.Init()
	p.pos = make(map[K]*list.Element)
}

func (p *lru[K]) SelectForEviction() (K, bool) {
	back := p.order.Back()
	if back == nil {
		var zero K
		return zero, false
	}
	return back.Value.(K), true
}

func (p *lru[K]) Reserve(cap int) error {
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
