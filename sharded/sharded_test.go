package sharded

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/arkdyn/polycache/compositekey"
	"github.com/arkdyn/polycache/policy/lru"
)

func TestNew_RejectsNonPositiveCapacity(t *testing.T) {
	t.Parallel()

	_, err := New[int, string](Options[int, string]{Capacity: 0})
	if !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("want ErrInvalidCapacity, got %v", err)
	}
}

func TestCache_ShardsRoundedToPowerOfTwo(t *testing.T) {
	t.Parallel()

	c, err := New[int, int](Options[int, int]{Capacity: 100, Shards: 5})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Shards() != 8 {
		t.Fatalf("want 5 rounded up to 8, got %d", c.Shards())
	}
}

func TestCache_PutGetRoundTrip(t *testing.T) {
	t.Parallel()

	c, _ := New[string, int](Options[string, int]{Capacity: 64, Shards: 4})
	c.Put("a", 1)
	v, hit := c.Get("a")
	if !hit || v != 1 {
		t.Fatalf("want hit with 1, got %v hit=%v", v, hit)
	}
}

func TestCache_MissBeforeAnyWrite(t *testing.T) {
	t.Parallel()

	c, _ := New[string, int](Options[string, int]{Capacity: 64, Shards: 4})
	if _, hit := c.Get("nope"); hit {
		t.Fatal("want miss: the shard was never materialized")
	}
}

func TestCache_ShardsNeverEvictOneAnother(t *testing.T) {
	t.Parallel()

	// Capacity 2, 2 shards -> 1 slot per shard. Two keys that land in
	// the same shard will evict each other; two keys in different
	// shards must not, no matter how many times each is written.
	c, _ := New[int, int](Options[int, int]{Capacity: 2, Shards: 2, Policy: lru.New[int]()})

	// Find two keys that hash into different shards.
	var a, b int
	found := false
	for i := 0; i < 1000 && !found; i++ {
		for j := i + 1; j < 1000; j++ {
			if c.shardIndex(i) != c.shardIndex(j) {
				a, b = i, j
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatal("could not find two keys in distinct shards")
	}

	c.Put(a, a)
	for i := 0; i < 50; i++ {
		c.Put(b, b)
	}

	if v, hit := c.Get(a); !hit || v != a {
		t.Fatalf("key %d in a disjoint shard must survive repeated writes to %d", a, b)
	}
}

func TestCache_ClearEmptiesAllMaterializedShards(t *testing.T) {
	t.Parallel()

	c, _ := New[string, int](Options[string, int]{Capacity: 64, Shards: 4})
	c.Put("a", 1)
	c.Put("b", 2)
	c.Clear()

	if c.Size() != 0 {
		t.Fatalf("want size 0 after Clear, got %d", c.Size())
	}
}

func TestCache_SizeSumsAcrossShards(t *testing.T) {
	t.Parallel()

	c, _ := New[int, int](Options[int, int]{Capacity: 64, Shards: 4})
	for i := 0; i < 10; i++ {
		c.Put(i, i)
	}
	if c.Size() != 10 {
		t.Fatalf("want size 10, got %d", c.Size())
	}
}

func TestCache_ConcurrentDisjointShardWrites(t *testing.T) {
	t.Parallel()

	// Every shard can hold all 1600 keys, so nothing is evicted.
	c, _ := New[int, int](Options[int, int]{Capacity: 16 * 1600, Shards: 16})

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		shard := i
		g.Go(func() error {
			// Each goroutine writes only the keys that route to its own shard.
			for k := 0; k < 1600; k++ {
				if c.shardIndex(k) == shard {
					c.Put(k, k*2)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent writes: %v", err)
	}

	for k := 0; k < 1600; k++ {
		v, hit := c.Get(k)
		if !hit || v != k*2 {
			t.Fatalf("key %d: want hit with %d, got %v hit=%v", k, k*2, v, hit)
		}
	}
}

func TestCache_ConcurrentSameKeyRaceConverges(t *testing.T) {
	t.Parallel()

	c, _ := New[string, int](Options[string, int]{Capacity: 64, Shards: 4})

	var g errgroup.Group
	for i := 0; i < 100; i++ {
		n := i
		g.Go(func() error {
			c.Put("hot", n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent writes: %v", err)
	}

	if _, hit := c.Get("hot"); !hit {
		t.Fatal("key written by many racing goroutines must end up present")
	}
}

func TestCache_CompositeKeyRoutesWithoutPanicking(t *testing.T) {
	t.Parallel()

	type K = compositekey.Key2[string, int]
	c, _ := New[K, string](Options[K, string]{Capacity: 64, Shards: 4})

	k := K{A: "user", B: 42}
	c.Put(k, "value")
	v, hit := c.Get(k)
	if !hit || v != "value" {
		t.Fatalf("want hit with %q, got %v hit=%v", "value", v, hit)
	}
}

func TestCache_GetOrLoadCoalescesWithinShard(t *testing.T) {
	t.Parallel()

	c, _ := New[string, int](Options[string, int]{Capacity: 64, Shards: 4})

	var calls atomic.Int32
	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			v, err := c.GetOrLoad(context.Background(), "k", func(context.Context, string) (int, error) {
				calls.Add(1)
				return 7, nil
			})
			if err != nil {
				return err
			}
			if v != 7 {
				t.Errorf("want 7, got %d", v)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("want exactly one load, got %d", n)
	}
}
