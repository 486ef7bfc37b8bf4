// Package redislfu implements Redis's approximated LFU: each key
// carries an 8-bit hit counter that increments probabilistically
// (less likely the higher it already is) and decays over time, and
// eviction samples a handful of keys via random-length jumps through
// the recency list rather than scanning every key.
//
// Grounded on original_source/cache/strategy/RedisLFU.hpp.
package redislfu

import (
	"container/list"
	"math/rand"
	"time"

	"github.com/arkdyn/polycache/policy"
)

const (
	sampleSize   = 5
	lfuLogFactor = 10
	lfuDecayTime = 1 // minutes per decrement
)

type meta struct {
	hits uint8
	ldt  uint16 // last decay time, in minutes since an arbitrary epoch
}

type redisLFU[K comparable] struct {
	metaOf map[K]meta
	index  *list.List
	pos    map[K]*list.Element
	rng    *rand.Rand
}

type factory[K comparable] struct{}

// New returns a Factory that builds independent RedisLFU instances.
func New[K comparable]() policy.Factory[K] { return factory[K]{} }

func (factory[K]) New() policy.Strategy[K] {
	return &redisLFU[K]{
		metaOf: make(map[K]meta),
		index:  list.New(),
		pos:    make(map[K]*list.Element),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func currentMinutes() uint16 {
	return uint16(time.Now().Unix() / 60)
}

func (p *redisLFU[K]) OnInsert(k K) {
	if _, exists := p.pos[k]; exists {
		return
	}
	el := p.index.PushFront(k)
	p.pos[k] = el
	p.metaOf[k] = meta{hits: 0, ldt: currentMinutes()}
}

func (p *redisLFU[K]) OnAccess(k K) bool {
	el, ok := p.pos[k]
	if !ok {
		return false
	}

	p.decay(k)
	p.maybeIncrement(k, p.rng.Uint32())

	p.index.MoveToFront(el)
	return true
}

func (p *redisLFU[K]) OnRemove(k K) {
	if el, ok := p.pos[k]; ok {
		p.index.Remove(el)
		delete(p.pos, k)
	}
	delete(p.metaOf, k)
}

func (p *redisLFU[K]) OnClear() {
	p.metaOf = make(map[K]meta)
	p.index.Init()
	p.pos = make(map[K]*list.Element)
}

// SelectForEviction samples at most sampleSize keys, each reached by a
// random jump of 1..7 elements from the last, and returns the one
// with the lowest hit count (ties broken by the stalest decay time).
func (p *redisLFU[K]) SelectForEviction() (K, bool) {
	if p.index.Len() == 0 {
		var zero K
		return zero, false
	}

	var (
		worstKey  K
		worstHits uint8
		worstLdt  uint16
		haveWorst bool
	)

	el := p.index.Front()
	for i := 0; i < sampleSize && el != nil; i++ {
		key := el.Value.(K)
		p.decay(key)
		m := p.metaOf[key]

		if !haveWorst || isWorse(m.hits, m.ldt, worstHits, worstLdt) {
			worstKey, worstHits, worstLdt, haveWorst = key, m.hits, m.ldt, true
		}

		jumps := 1 + int(p.rng.Uint32()%7)
		for ; jumps > 0 && el != nil; jumps-- {
			el = el.Next()
		}
	}

	if !haveWorst {
		var zero K
		return zero, false
	}
	return worstKey, true
}

func isWorse(hitsA uint8, ldtA uint16, hitsB uint8, ldtB uint16) bool {
	if hitsA != hitsB {
		return hitsA < hitsB
	}
	return ldtA < ldtB
}

func (p *redisLFU[K]) Reserve(cap int) error {
	if cap < 1 {
		return policy.ErrInvalidCapacity
	}
	metaOf := make(map[K]meta, cap)
	for k, v := range p.metaOf {
		metaOf[k] = v
	}
	p.metaOf = metaOf
	pos := make(map[K]*list.Element, cap)
	for k, v := range p.pos {
		pos[k] = v
	}
	p.pos = pos
	return nil
}

func (p *redisLFU[K]) decay(k K) {
	m, ok := p.metaOf[k]
	if !ok {
		return
	}

	now := currentMinutes()
	elapsed := now - m.ldt
	if elapsed == 0 {
		return
	}

	decrements := elapsed / lfuDecayTime
	if decrements > 0 {
		if uint16(decrements) >= uint16(m.hits) {
			m.hits = 0
		} else {
			m.hits -= uint8(decrements)
		}
		m.ldt = now
		p.metaOf[k] = m
	}
}

func (p *redisLFU[K]) maybeIncrement(k K, rnd32 uint32) {
	m := p.metaOf[k]
	if m.hits == 255 {
		return
	}

	denom := uint32(m.hits)*lfuLogFactor + 1
	if rnd32%denom == 0 {
		m.hits++
	}
	p.metaOf[k] = m
}
