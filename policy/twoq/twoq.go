// Package twoq implements the 2Q (two-queue) eviction policy: newcomers
// land in A1 and only get promoted to Am, the proven queue, once they
// are accessed again. Adapted from the teacher's policy/twoq/twoq.go
// ghost-queue bookkeeping and original_source/cache/strategy/2Q.hpp's
// onInsert/onAccess/onRemove contract; unlike the teacher's version,
// this implementation tracks keys only (no shard-owned node pointers)
// and has no separate ghost list — the spec's 2Q has no admission
// second-chance via ghosts, only the two resident queues A1 and Am.
package twoq

import (
	"container/list"

	"github.com/arkdyn/polycache/policy"
)

type twoQ[K comparable] struct {
	a1, am *list.List
	posA1  map[K]*list.Element
	posAm  map[K]*list.Element
}

type factory[K comparable] struct{}

// New returns a Factory that builds independent 2Q instances.
func New[K comparable]() policy.Factory[K] { return factory[K]{} }

func (factory[K]) New() policy.Strategy[K] {
	return &twoQ[K]{
		a1:    list.New(),
		am:    list.New(),
		posA1: make(map[K]*list.Element),
		posAm: make(map[K]*list.Element),
	}
}

func (p *twoQ[K]) OnInsert(k K) {
	p.posA1[k] = p.a1.PushFront(k)
}

func (p *twoQ[K]) OnAccess(k K) bool {
	if el, ok := p.posAm[k]; ok {
		p.am.MoveToFront(el)
		return true
	}
	if el, ok := p.posA1[k]; ok {
		p.a1.Remove(el)
		delete(p.posA1, k)
		p.posAm[k] = p.am.PushFront(k)
		return true
	}
	return false
}

func (p *twoQ[K]) OnRemove(k K) {
	if el, ok := p.posA1[k]; ok {
		p.a1.Remove(el)
		delete(p.posA1, k)
		return
	}
	if el, ok := p.posAm[k]; ok {
		p.am.Remove(el)
		delete(p.posAm, k)
	}
}

func (p *twoQ[K]) OnClear() {
	p.a1.Init()
	p.am.Init()
	p.posA1 = make(map[K]*list.Element)
	p.posAm = make(map[K]*list.Element)
}

// SelectForEviction prefers the back of A1 (unproven newcomers) over
// the back of Am, so a scan of fresh keys cannot evict proven ones.
func (p *twoQ[K]) SelectForEviction() (K, bool) {
	if back := p.a1.Back(); back != nil {
		return back.Value.(K), true
	}
	if back := p.am.Back(); back != nil {
		return back.Value.(K), true
	}
	var zero K
	return zero, false
}

func (p *twoQ[K]) Reserve(cap int) error {
	if cap < 1 {
		return policy.ErrInvalidCapacity
	}
	a1 := make(map[K]*list.Element, cap)
	for k, v := range p.posA1 {
		a1[k] = v
	}
	p.posA1 = a1
	am := make(map[K]*list.Element, cap)
	for k, v := range p.posAm {
		am[k] = v
	}
	p.posAm = am
	return nil
}
