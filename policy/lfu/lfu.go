// Package lfu implements least-frequently-used eviction with O(1)
// bucketing: every key lives in a frequency bucket, access bumps the
// key to the next bucket, and eviction pulls the least-recently-used
// key out of the lowest nonempty bucket.
//
// Grounded on original_source/cache/LFUCacheStrategy.hpp.
package lfu

import (
	"container/list"

	"github.com/arkdyn/polycache/policy"
)

type entry[K comparable] struct {
	freq int
	el   *list.Element
}

type lfu[K comparable] struct {
	minFreq int
	buckets map[int]*list.List
	pos     map[K]entry[K]
}

type factory[K comparable] struct{}

// New returns a Factory that builds independent LFU instances.
func New[K comparable]() policy.Factory[K] { return factory[K]{} }

func (factory[K]) New() policy.Strategy[K] {
	return &lfu[K]{
		buckets: make(map[int]*list.List),
		pos:     make(map[K]entry[K]),
	}
}

func (p *lfu[K]) bucket(freq int) *list.List {
	b, ok := p.buckets[freq]
	if !ok {
		b = list.New()
		p.buckets[freq] = b
	}
	return b
}

func (p *lfu[K]) OnInsert(k K) {
	b := p.bucket(1)
	el := b.PushFront(k)
	p.pos[k] = entry[K]{freq: 1, el: el}
	p.minFreq = 1
}

func (p *lfu[K]) OnAccess(k K) bool {
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

func (p *lfu[K]) OnRemove(k K) {
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

func (p *lfu[K]) OnClear() {
	p.minFreq = 0
	p.buckets = make(map[int]*list.List)
	p.pos = make(map[K]entry[K])
}

func (p *lfu[K]) SelectForEviction() (K, bool) {
	if len(p.buckets) == 0 || p.minFreq == 0 {
		var zero K
		return zero, false
	}

	b, ok := p.buckets[p.minFreq]
	if !ok || b.Len() == 0 {
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
		if !found {
			var zero K
			return zero, false
		}
		p.minFreq = best
		b = p.buckets[best]
	}
	return b.Back().Value.(K), true
}

func (p *lfu[K]) Reserve(cap int) error {
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
