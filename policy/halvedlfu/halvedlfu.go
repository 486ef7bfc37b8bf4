// Package halvedlfu implements LFU bucketing with periodic frequency
// halving: every halvingPeriod operations, every key's frequency is
// floor-divided by two (floor at 1), so old bursts of activity decay
// and stale high-frequency keys stop permanently blocking eviction.
//
// Grounded on original_source/cache/strategy/HalvedLFU.hpp.
package halvedlfu

import (
	"container/list"

	"github.com/arkdyn/polycache/policy"
)

const halvingPeriod = 4 * 1024

type entry[K comparable] struct {
	freq int
	el   *list.Element
}

type halvedLFU[K comparable] struct {
	minFreq         int
	buckets         map[int]*list.List
	pos             map[K]entry[K]
	opsSinceHalving int
}

type factory[K comparable] struct{}

// New returns a Factory that builds independent halving-LFU instances.
func New[K comparable]() policy.Factory[K] { return factory[K]{} }

func (factory[K]) New() policy.Strategy[K] {
	return &halvedLFU[K]{
		buckets: make(map[int]*list.List),
		pos:     make(map[K]entry[K]),
	}
}

func (p *halvedLFU[K]) bucket(freq int) *list.List {
	b, ok := p.buckets[freq]
	if !ok {
		b = list.New()
		p.buckets[freq] = b
	}
	return b
}

func (p *halvedLFU[K]) OnInsert(k K) {
	p.checkHalving()
	b := p.bucket(1)
	el := b.PushFront(k)
	p.pos[k] = entry[K]{freq: 1, el: el}
	p.minFreq = 1
}

func (p *halvedLFU[K]) OnAccess(k K) bool {
	p.checkHalving()
	e, ok := p.pos[k]
	if !ok {
		return false
	}

	oldBucket := p.buckets[e.freq]
	oldBucket.Remove(e.el)
	newFreq := e.freq + 1
	if oldBucket.Len() == 0 {
		delete(p.buckets, e.freq)
		if p.minFreq == e.freq {
			p.minFreq = newFreq
		}
	}

	newBucket := p.bucket(newFreq)
	el := newBucket.PushFront(k)
	p.pos[k] = entry[K]{freq: newFreq, el: el}
	return true
}

func (p *halvedLFU[K]) OnRemove(k K) {
	p.checkHalving()
	e, ok := p.pos[k]
	if !ok {
		return
	}
	if b, ok := p.buckets[e.freq]; ok {
		b.Remove(e.el)
		if b.Len() == 0 {
			delete(p.buckets, e.freq)
		}
	}
	delete(p.pos, k)
	if len(p.pos) == 0 || len(p.buckets) == 0 {
		p.OnClear()
	}
}

func (p *halvedLFU[K]) OnClear() {
	p.minFreq = 0
	p.buckets = make(map[int]*list.List)
	p.pos = make(map[K]entry[K])
	p.opsSinceHalving = 0
}

func (p *halvedLFU[K]) SelectForEviction() (K, bool) {
	if len(p.buckets) == 0 || p.minFreq == 0 {
		var zero K
		return zero, false
	}

	p.checkHalving()
	b, ok := p.buckets[p.minFreq]
	if !ok || b.Len() == 0 {
		best, found := p.lowestNonemptyBucket()
		if !found {
			var zero K
			return zero, false
		}
		p.minFreq = best
		b = p.buckets[best]
	}
	return b.Back().Value.(K), true
}

func (p *halvedLFU[K]) Reserve(cap int) error {
	if cap < 1 {
		return policy.ErrInvalidCapacity
	}
	pos := make(map[K]entry[K], cap)
	for k, v := range p.pos {
		pos[k] = v
	}
	p.pos = pos
	return nil
}

func (p *halvedLFU[K]) lowestNonemptyBucket() (int, bool) {
	best := 0
	found := false
	for freq, bucket := range p.buckets {
		if bucket.Len() == 0 {
			continue
		}
		if !found || freq < best {
			best = freq
			found = true
		}
	}
	return best, found
}

// checkHalving runs a halving pass every halvingPeriod operations,
// moving each key's frequency to max(1, freq/2) in a single sweep.
func (p *halvedLFU[K]) checkHalving() {
	p.opsSinceHalving++
	if p.opsSinceHalving < halvingPeriod {
		return
	}
	p.opsSinceHalving = 0

	if len(p.pos) == 0 {
		p.OnClear()
		return
	}

	type move struct {
		key            K
		oldFreq, newFreq int
	}
	moves := make([]move, 0, len(p.pos))
	for k, e := range p.pos {
		newFreq := e.freq / 2
		if newFreq < 1 {
			newFreq = 1
		}
		if newFreq != e.freq {
			moves = append(moves, move{key: k, oldFreq: e.freq, newFreq: newFreq})
		}
	}

	for _, m := range moves {
		e, ok := p.pos[m.key]
		if !ok {
			continue
		}
		if b, ok := p.buckets[m.oldFreq]; ok {
			b.Remove(e.el)
			if b.Len() == 0 {
				delete(p.buckets, m.oldFreq)
			}
		}
		nb := p.bucket(m.newFreq)
		el := nb.PushFront(m.key)
		p.pos[m.key] = entry[K]{freq: m.newFreq, el: el}
	}

	best, found := p.lowestNonemptyBucket()
	if found {
		p.minFreq = best
	} else {
		p.minFreq = 0
	}
}
