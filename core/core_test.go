package core

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/arkdyn/polycache/lock"
	"github.com/arkdyn/polycache/policy/fifo"
	"github.com/arkdyn/polycache/policy/lru"
)

func TestNew_RejectsNonPositiveCapacity(t *testing.T) {
	t.Parallel()

	_, err := New[int, string](Options[int, string]{Capacity: 0})
	if !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("want ErrInvalidCapacity, got %v", err)
	}
}

func TestCore_PutGetRoundTrip(t *testing.T) {
	t.Parallel()

	c, err := New[string, int](Options[string, int]{Capacity: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.Put("a", 1)
	v, hit := c.Get("a")
	if !hit || v != 1 {
		t.Fatalf("want hit with 1, got %v hit=%v", v, hit)
	}
}

func TestCore_MissOnAbsentKey(t *testing.T) {
	t.Parallel()

	c, _ := New[string, int](Options[string, int]{Capacity: 4})
	if _, hit := c.Get("nope"); hit {
		t.Fatal("want miss on absent key")
	}
}

func TestCore_DefaultsToLRUAndEvictsAtCapacity(t *testing.T) {
	t.Parallel()

	c, _ := New[int, int](Options[int, int]{Capacity: 2})
	c.Put(1, 1)
	c.Put(2, 2)
	c.Put(3, 3) // evicts 1, the LRU key

	if _, hit := c.Get(1); hit {
		t.Fatal("want 1 evicted")
	}
	if v, hit := c.Get(2); !hit || v != 2 {
		t.Fatal("want 2 still present")
	}
	if v, hit := c.Get(3); !hit || v != 3 {
		t.Fatal("want 3 present")
	}
}

func TestCore_PolicyOverride(t *testing.T) {
	t.Parallel()

	c, _ := New[int, int](Options[int, int]{Capacity: 2, Policy: fifo.New[int]()})
	c.Put(1, 1)
	c.Put(2, 2)
	c.Get(1) // FIFO never reorders on access
	c.Put(3, 3)

	if _, hit := c.Get(1); hit {
		t.Fatal("FIFO must evict the oldest insert regardless of access")
	}
}

func TestCore_UpdateExistingKeyDoesNotGrowSize(t *testing.T) {
	t.Parallel()

	c, _ := New[string, int](Options[string, int]{Capacity: 4})
	c.Put("a", 1)
	c.Put("a", 2)

	if c.Size() != 1 {
		t.Fatalf("want size 1, got %d", c.Size())
	}
	if v, hit := c.Get("a"); !hit || v != 2 {
		t.Fatalf("want updated value 2, got %v hit=%v", v, hit)
	}
}

func TestCore_Clear(t *testing.T) {
	t.Parallel()

	c, _ := New[string, int](Options[string, int]{Capacity: 4})
	c.Put("a", 1)
	c.Put("b", 2)
	c.Clear()

	if c.Size() != 0 {
		t.Fatalf("want size 0 after Clear, got %d", c.Size())
	}
	if _, hit := c.Get("a"); hit {
		t.Fatal("want miss after Clear")
	}
}

func TestCore_CapacityReportsConfiguredBound(t *testing.T) {
	t.Parallel()

	c, _ := New[int, int](Options[int, int]{Capacity: 7})
	if c.Capacity() != 7 {
		t.Fatalf("want 7, got %d", c.Capacity())
	}
}

func TestCore_IsMtSafe(t *testing.T) {
	t.Parallel()

	safe, _ := New[int, int](Options[int, int]{Capacity: 1})
	if !safe.IsMtSafe() {
		t.Fatal("default lock must report mt-safe")
	}

	unsafe, _ := New[int, int](Options[int, int]{Capacity: 1, Lock: lock.NoOp{}})
	if unsafe.IsMtSafe() {
		t.Fatal("NoOp lock must report not mt-safe")
	}
}

func TestCore_GetOrLoadCoalescesConcurrentLoads(t *testing.T) {
	t.Parallel()

	c, _ := New[string, int](Options[string, int]{Capacity: 4, Policy: lru.New[string]()})

	var calls int
	load := func(_ context.Context, _ string) (int, error) {
		calls++
		return 42, nil
	}

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			v, err := c.GetOrLoad(context.Background(), "k", load)
			if err != nil {
				return err
			}
			if v != 42 {
				t.Errorf("want 42, got %d", v)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if calls != 1 {
		t.Fatalf("want exactly one load, got %d", calls)
	}

	if v, hit := c.Get("k"); !hit || v != 42 {
		t.Fatalf("want cached 42 after load, got %v hit=%v", v, hit)
	}
}

func TestCore_GetOrLoadPropagatesLoadError(t *testing.T) {
	t.Parallel()

	c, _ := New[string, int](Options[string, int]{Capacity: 4})
	wantErr := errors.New("boom")

	_, err := c.GetOrLoad(context.Background(), "k", func(context.Context, string) (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("want %v, got %v", wantErr, err)
	}
	if _, hit := c.Get("k"); hit {
		t.Fatal("a failed load must not populate the cache")
	}
}
