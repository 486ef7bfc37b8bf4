// Command democache runs a synthetic Zipf-distributed workload against
// a sharded cache and reports hit rate and throughput. It is a
// consumer of the library, not part of it: callers embed core.Core or
// sharded.Cache directly; this binary exists only to exercise them.
//
// Adapted from the teacher's cmd/bench/main.go: the Zipf-distributed
// load generator and per-worker RNG pattern are kept, pprof and
// Prometheus serving are dropped (statistics reporting is out of
// scope), and the policy flag now covers every policy package instead
// of just lru/2q.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arkdyn/polycache/policy"
	"github.com/arkdyn/polycache/policy/fifo"
	"github.com/arkdyn/polycache/policy/halvedlfu"
	"github.com/arkdyn/polycache/policy/lfu"
	"github.com/arkdyn/polycache/policy/lru"
	"github.com/arkdyn/polycache/policy/mru"
	"github.com/arkdyn/polycache/policy/redislfu"
	"github.com/arkdyn/polycache/policy/slru"
	"github.com/arkdyn/polycache/policy/twoq"
	"github.com/arkdyn/polycache/sharded"
)

func policyFactory(name string) (policy.Factory[string], error) {
	switch name {
	case "lru":
		return lru.New[string](), nil
	case "mru":
		return mru.New[string](), nil
	case "fifo":
		return fifo.New[string](), nil
	case "2q":
		return twoq.New[string](), nil
	case "slru":
		return slru.New[string](), nil
	case "lfu":
		return lfu.New[string](), nil
	case "halvedlfu":
		return halvedlfu.New[string](), nil
	case "redislfu":
		return redislfu.New[string](), nil
	default:
		return nil, fmt.Errorf("unknown policy %q (lru|mru|fifo|2q|slru|lfu|halvedlfu|redislfu)", name)
	}
}

func main() {
	var (
		capacity   = flag.Int("cap", 100_000, "cache capacity (entries)")
		shards     = flag.Int("shards", 0, "number of shards (0=auto)")
		policyName = flag.String("policy", "lru", "eviction policy: lru|mru|fifo|2q|slru|lfu|halvedlfu|redislfu")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys  = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed  = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		preload = flag.Int("preload", 0, "preload entries (0 = cap/2)")
	)
	flag.Parse()

	factory, err := policyFactory(*policyName)
	if err != nil {
		log.Fatal(err)
	}

	c, err := sharded.New[string, string](sharded.Options[string, string]{
		Capacity: *capacity,
		Shards:   *shards,
		Policy:   factory,
	})
	if err != nil {
		log.Fatal(err)
	}

	pl := *preload
	if pl == 0 {
		pl = *capacity / 2
	}
	for i := 0; i < pl; i++ {
		k := "k:" + strconv.Itoa(i)
		c.Put(k, "v"+strconv.Itoa(i))
	}

	readPctVal := *readPct
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	var reads, writes, hits, misses, total uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)

			keyByZipf := func() string {
				return "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
			}

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				if int(localR.Int31n(100)) < readPctVal {
					atomic.AddUint64(&reads, 1)
					if _, ok := c.Get(keyByZipf()); ok {
						atomic.AddUint64(&hits, 1)
					} else {
						atomic.AddUint64(&misses, 1)
					}
				} else {
					atomic.AddUint64(&writes, 1)
					k := keyByZipf()
					c.Put(k, "v"+strconv.Itoa(localR.Int()))
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	ops := atomic.LoadUint64(&total)
	readsN := atomic.LoadUint64(&reads)
	writesN := atomic.LoadUint64(&writes)
	hitsN := atomic.LoadUint64(&hits)
	missesN := atomic.LoadUint64(&misses)

	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hitsN) / float64(readsN) * 100
	}

	fmt.Printf("policy=%s cap=%d shards=%d workers=%d keys=%d dur=%v seed=%d\n",
		*policyName, *capacity, c.Shards(), workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, writesN)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", hitsN, missesN, hitRate)
	fmt.Printf("size=%d\n", c.Size())
}
