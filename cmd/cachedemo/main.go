package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	cache "github.com/krisalay/bounded-cache"
	"github.com/krisalay/bounded-cache/eviction"
	"github.com/krisalay/bounded-cache/writepolicy"
)

// Config is read from the environment so the demo can be re-run against
// different cache shapes without recompiling.
type Config struct {
	MaxSize     int    `env:"CACHE_MAX_SIZE" envDefault:"20"`
	Policy      string `env:"CACHE_EVICTION_POLICY" envDefault:"lru"`
	Shards      int    `env:"CACHE_SHARDS" envDefault:"4"`
	WriteBuffer int    `env:"CACHE_WRITE_BUFFER" envDefault:"1024"`
}

// ================= BACKING STORE =================

type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string]any
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]any)}
}

func (s *InMemoryStore) Load(ctx context.Context, key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fmt.Println("STORE  → load:", key)
	return s.data[key], nil
}

func (s *InMemoryStore) Put(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// ================= MAIN =================

func main() {
	// .env is optional; absence is fine.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	fmt.Println("\n==================== SYSTEM BOOT ====================")
	fmt.Println("EVICTION POLICY :", cfg.Policy)
	fmt.Println("SHARDS          :", cfg.Shards)
	fmt.Println("CAPACITY        :", cfg.MaxSize, "keys")

	store := NewInMemoryStore()
	store.Put(context.Background(), "a", "alpha")
	store.Put(context.Background(), "b", "beta")

	c, err := cache.NewSharded(cfg.Shards,
		cache.WithMaxSize(cfg.MaxSize),
		cache.WithEvictionPolicy(eviction.PolicyType(cfg.Policy)),
		cache.WithLogger(log),
		cache.WithLoader(store),
		cache.WithWritePolicy(writepolicy.NewBack(store, cfg.WriteBuffer, log)),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cache:", err)
		os.Exit(1)
	}

	ctx := context.Background()

	fmt.Println("\n==================== 1) READ-THROUGH MISS ====================")
	v, _ := c.GetOrLoad(ctx, "a")
	fmt.Println("CACHE  → GET a =", v)

	fmt.Println("\n==================== 2) CACHE HIT ====================")
	v, _ = c.GetOrLoad(ctx, "a")
	fmt.Println("CACHE  → GET a =", v)

	fmt.Println("\n==================== 3) TTL EXPIRATION ====================")
	c.PutWithTTL("x", "temp-value", 500*time.Millisecond)
	fmt.Println("CACHE  → PUT x (TTL = 500ms)")
	fmt.Println("CACHE  → TTL x =", c.TTL("x"))

	time.Sleep(time.Second)

	if _, ok := c.Get("x"); !ok {
		fmt.Println("CACHE  → x expired")
	}

	fmt.Println("\n==================== 4) SINGLEFLIGHT ====================")
	wg := sync.WaitGroup{}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			val, _ := c.GetOrLoad(ctx, "b")
			fmt.Printf("GOROUTINE-%d → GET b = %v\n", id, val)
		}(i)
	}
	wg.Wait()

	fmt.Println("\n==================== 5) EVICTION ====================")
	for i := 0; i < cfg.MaxSize*3; i++ {
		c.Put(fmt.Sprintf("k%d", i), i)
	}
	fmt.Println("CACHE  → size after flood =", c.Size())

	fmt.Println("\n==================== 6) SWEEP ====================")
	c.PutWithTTL("y", "short", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	fmt.Println("CACHE  → cleanup removed", c.CleanupExpired(), "entries")

	st := c.Stats()
	fmt.Println("\n==================== STATS ====================")
	fmt.Printf("HITS      : %d\n", st.Hits)
	fmt.Printf("MISSES    : %d\n", st.Misses)
	fmt.Printf("EVICTIONS : %d\n", st.Evictions)
	fmt.Printf("EXPIRED   : %d\n", st.Expired)
	fmt.Printf("HIT RATE  : %.3f\n", st.HitRate)
	fmt.Printf("SIZE      : %d\n", st.CurrentSize)

	fmt.Println("\n==================== SHUTDOWN ====================")
	c.Close()
	fmt.Println("SYSTEM → cache closed cleanly")
}
