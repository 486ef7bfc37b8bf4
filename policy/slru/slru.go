// Package slru implements segmented LRU: a probationary segment for
// newcomers and a protected segment for keys accessed at least twice,
// with the protected segment capped at protRatio of the overall
// capacity and demoting its own tail back to probationary on overflow.
//
// Grounded on original_source/cache/strategy/SLRU.hpp.
package slru

import (
	"container/list"

	"github.com/arkdyn/polycache/policy"
)

const protRatio = 0.67

type slru[K comparable] struct {
	prob, prot       *list.List
	posProb, posProt map[K]*list.Element
	protCap          int
}

type factory[K comparable] struct{}

// New returns a Factory that builds independent SLRU instances.
func New[K comparable]() policy.Factory[K] { return factory[K]{} }

func (factory[K]) New() policy.Strategy[K] {
	return &slru[K]{
		prob:    list.New(),
		prot:    list.New(),
		posProb: make(map[K]*list.Element),
		posProt: make(map[K]*list.Element),
	}
}

func (p *slru[K]) OnInsert(k K) {
	p.posProb[k] = p.prob.PushFront(k)
}

func (p *slru[K]) OnAccess(k K) bool {
	if el, ok := p.posProt[k]; ok {
		p.prot.MoveToFront(el)
		return true
	}
	if el, ok := p.posProb[k]; ok {
		p.prob.Remove(el)
		delete(p.posProb, k)
		p.posProt[k] = p.prot.PushFront(k)
		p.enforceProtectedCap()
		return true
	}
	return false
}

func (p *slru[K]) OnRemove(k K) {
	if el, ok := p.posProb[k]; ok {
		p.prob.Remove(el)
		delete(p.posProb, k)
		return
	}
	if el, ok := p.posProt[k]; ok {
		p.prot.Remove(el)
		delete(p.posProt, k)
	}
}

func (p *slru[K]) OnClear() {
	p.prob.Init()
	p.prot.Init()
	p.posProb = make(map[K]*list.Element)
	p.posProt = make(map[K]*list.Element)
}

// SelectForEviction prefers the probationary tail: a key that has
// never earned a second access is evicted before any protected key.
func (p *slru[K]) SelectForEviction() (K, bool) {
	if back := p.prob.Back(); back != nil {
		return back.Value.(K), true
	}
	if back := p.prot.Back(); back != nil {
		return back.Value.(K), true
	}
	var zero K
	return zero, false
}

func (p *slru[K]) Reserve(cap int) error {
	if cap < 1 {
		return policy.ErrInvalidCapacity
	}
	prob := make(map[K]*list.Element, cap)
	for k, v := range p.posProb {
		prob[k] = v
	}
	p.posProb = prob
	prot := make(map[K]*list.Element, cap)
	for k, v := range p.posProt {
		prot[k] = v
	}
	p.posProt = prot

	protCap := int(protRatio * float64(cap))
	if protCap < 1 {
		protCap = 1
	}
	p.protCap = protCap
	p.enforceProtectedCap()
	return nil
}

func (p *slru[K]) enforceProtectedCap() {
	for p.protCap > 0 && p.prot.Len() > p.protCap {
		back := p.prot.Back()
		demoteKey := back.Value.(K)
		p.prot.Remove(back)
		delete(p.posProt, demoteKey)
		p.posProb[demoteKey] = p.prob.PushFront(demoteKey)
	}
}
