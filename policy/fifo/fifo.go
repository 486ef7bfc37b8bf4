// Package fifo implements first-in-first-out eviction: insertion order
// alone determines the victim; accesses are tracked for presence but
// never reorder anything.
//
// Grounded on original_source/cache/strategy/FIFO.hpp.
package fifo

import (
	"container/list"

	"github.com/arkdyn/polycache/policy"
)

type fifo[K comparable] struct {
	order *list.List // front = most recently inserted
	pos   map[K]*list.Element
}

type factory[K comparable] struct{}

// New returns a Factory that builds independent FIFO instances.
func New[K comparable]() policy.Factory[K] { return factory[K]{} }

func (factory[K]) New() policy.Strategy[K] {
	return &fifo[K]{
		order: list.New(),
		pos:   make(map[K]*list.Element),
	}
}

func (p *fifo[K]) OnInsert(k K) {
	p.pos[k] = p.order.PushFront(k)
}

// OnAccess reports presence only; FIFO never reorders on access.
func (p *fifo[K]) OnAccess(k K) bool {
	_, ok := p.pos[k]
	return ok
}

func (p *fifo[K]) OnRemove(k K) {
	if el, ok := p.pos[k]; ok {
		p.order.Remove(el)
		delete(p.pos, k)
	}
}

func (p *fifo[K]) OnClear() {
	p.order.Init()
	p.pos = make(map[K]*list.Element)
}

func (p *fifo[K]) SelectForEviction() (K, bool) {
	back := p.order.Back()
	if back == nil {
		var zero K
		return zero, false
	}
	return back.Value.(K), true
}

func (p *fifo[K]) Reserve(cap int) error {
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
