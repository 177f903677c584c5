package main

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	cache "github.com/krisalay/bounded-cache"
	"github.com/krisalay/bounded-cache/eviction"
)

// A quick load run over every eviction policy: preload a keyspace larger
// than the cache, then hammer it with a read-heavy mixed workload and
// print throughput plus the resulting stats.

const (
	shards     = 8
	capacity   = 100000
	keyspace   = 150000
	goroutines = 100
	opsPerG    = 10000
)

func run(policy eviction.PolicyType) {
	c, err := cache.NewSharded(shards,
		cache.WithMaxSize(capacity),
		cache.WithEvictionPolicy(policy),
	)
	if err != nil {
		panic(err)
	}

	for i := 0; i < capacity; i++ {
		c.Put(fmt.Sprintf("key-%d", i), i)
	}

	start := time.Now()
	wg := sync.WaitGroup{}
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < opsPerG; i++ {
				key := fmt.Sprintf("key-%d", rng.Intn(keyspace))
				if rng.Intn(10) == 0 {
					c.Put(key, i)
				} else {
					c.Get(key)
				}
			}
		}(int64(g))
	}
	wg.Wait()
	elapsed := time.Since(start)

	ops := goroutines * opsPerG
	st := c.Stats()
	fmt.Printf("%-5s %10d ops %12v %14.0f ops/s  hit_rate=%.3f evictions=%d\n",
		policy, ops, elapsed, float64(ops)/elapsed.Seconds(), st.HitRate, st.Evictions)
}

func main() {
	fmt.Println("================ CACHE LOAD BENCHMARK =================")
	fmt.Printf("shards=%d capacity=%d keyspace=%d goroutines=%d ops/g=%d\n\n",
		shards, capacity, keyspace, goroutines, opsPerG)

	for _, p := range []eviction.PolicyType{eviction.LRU, eviction.MRU, eviction.LFU, eviction.FIFO} {
		run(p)
	}
}
