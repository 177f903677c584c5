package cache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cache "github.com/krisalay/bounded-cache"
	"github.com/krisalay/bounded-cache/eviction"
	"github.com/krisalay/bounded-cache/types"
	"github.com/krisalay/bounded-cache/writepolicy"
)

//
// ================= TEST BACKING STORE =================
//

type TestStore struct {
	mu    sync.RWMutex
	data  map[string]any
	loads atomic.Int64
	delay time.Duration
}

func NewTestStore() *TestStore {
	return &TestStore{data: make(map[string]any)}
}

func (s *TestStore) Load(ctx context.Context, key string) (any, error) {
	s.loads.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key], nil
}

func (s *TestStore) Put(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func newTestCache(t *testing.T, opts ...cache.Option) *cache.Cache {
	t.Helper()
	c, err := cache.New(opts...)
	require.NoError(t, err)
	return c
}

//
// ================= CONSTRUCTION =================
//

func TestNewValidation(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := cache.New()
		require.NoError(t, err)
		assert.Equal(t, 0, c.Size())
	})

	t.Run("non-positive capacity", func(t *testing.T) {
		_, err := cache.New(cache.WithMaxSize(0))
		assert.ErrorIs(t, err, cache.ErrInvalidCapacity)

		_, err = cache.New(cache.WithMaxSize(-5))
		assert.ErrorIs(t, err, cache.ErrInvalidCapacity)
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := cache.New(cache.WithEvictionPolicy("bogus"))
		assert.ErrorIs(t, err, eviction.ErrUnknownPolicy)
	})
}

//
// ================= BASIC OPERATIONS =================
//

func TestPutGet(t *testing.T) {
	c := newTestCache(t)

	c.Put("key1", "value1")

	v, ok := c.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "value1", v)

	v, ok = c.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestOverwriteKeepsSize(t *testing.T) {
	c := newTestCache(t)

	c.Put("key1", "value1")
	c.Put("key1", "value2")

	assert.Equal(t, 1, c.Size())

	v, ok := c.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "value2", v)
}

func TestDelete(t *testing.T) {
	c := newTestCache(t)

	c.Put("key1", "value1")
	assert.True(t, c.Delete("key1"))
	assert.False(t, c.Delete("key1"))

	_, ok := c.Get("key1")
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	c := newTestCache(t)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	assert.ElementsMatch(t, []string{"a", "b", "c"}, c.Keys())
}

func TestClear(t *testing.T) {
	c := newTestCache(t)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")       // hit
	c.Get("missing") // miss

	c.Clear()

	assert.Equal(t, 0, c.Size())
	_, ok := c.Get("a")
	assert.False(t, ok)

	// counters are cumulative and survive Clear (the Get above added one
	// more miss)
	st := c.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(2), st.Misses)
}

//
// ================= CAPACITY & EVICTION =================
//

func TestCapacityInvariant(t *testing.T) {
	const maxSize = 10
	c := newTestCache(t, cache.WithMaxSize(maxSize))

	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("key-%d", i), i)
		assert.LessOrEqual(t, c.Size(), maxSize)
	}
	assert.Equal(t, maxSize, c.Size())
	assert.Equal(t, uint64(90), c.Stats().Evictions)
}

// The shared scenario from the four policy tests below: capacity 2,
// insert a and b, read a, insert c.
func runEvictionScenario(t *testing.T, policy eviction.PolicyType) *cache.Cache {
	t.Helper()
	c := newTestCache(t, cache.WithMaxSize(2), cache.WithEvictionPolicy(policy))
	c.Put("a", 1)
	c.Put("b", 2)
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Put("c", 3)
	return c
}

func TestEvictionLRU(t *testing.T) {
	c := runEvictionScenario(t, eviction.LRU)

	// b is the least recently touched
	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestEvictionMRU(t *testing.T) {
	c := runEvictionScenario(t, eviction.MRU)

	// a was touched last, so MRU drops it
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestEvictionFIFO(t *testing.T) {
	c := runEvictionScenario(t, eviction.FIFO)

	// insertion order wins regardless of the read of a
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestEvictionLFU(t *testing.T) {
	c := runEvictionScenario(t, eviction.LFU)

	// a has one read, b has none
	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestOverwriteResetsAccessCount(t *testing.T) {
	c := newTestCache(t, cache.WithMaxSize(2), cache.WithEvictionPolicy(eviction.LFU))

	c.Put("a", 1)
	c.Get("a")
	c.Get("a") // a: 2 accesses
	c.Put("b", 2)
	c.Get("b")    // b: 1 access
	c.Put("a", 9) // overwrite: a's counter starts over at 0
	c.Put("c", 3) // a is now the least frequently used

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
}

// brokenPolicy deliberately violates the policy contract so the cache's
// fallback eviction can be exercised.
type brokenPolicy struct {
	victim string // returned by ShouldEvict; "" means report no candidate
}

func (p *brokenPolicy) OnAccess(string, *types.CacheEntry) {}
func (p *brokenPolicy) OnInsert(string)                    {}
func (p *brokenPolicy) Remove(string)                      {}
func (p *brokenPolicy) Clear()                             {}

func (p *brokenPolicy) ShouldEvict(map[string]*types.CacheEntry) (string, bool) {
	return p.victim, p.victim != ""
}

func TestFallbackEviction(t *testing.T) {
	t.Run("no candidate", func(t *testing.T) {
		c := newTestCache(t, cache.WithMaxSize(2), cache.WithPolicy(&brokenPolicy{}))

		c.Put("b", 2)
		c.Put("a", 1)
		c.Put("c", 3)

		// fallback picks the smallest key deterministically
		assert.Equal(t, 2, c.Size())
		_, ok := c.Get("a")
		assert.False(t, ok)
		assert.Equal(t, uint64(1), c.Stats().Evictions)
	})

	t.Run("untracked candidate", func(t *testing.T) {
		c := newTestCache(t, cache.WithMaxSize(2), cache.WithPolicy(&brokenPolicy{victim: "ghost"}))

		c.Put("b", 2)
		c.Put("a", 1)
		c.Put("c", 3)

		assert.Equal(t, 2, c.Size())
		_, ok := c.Get("a")
		assert.False(t, ok)
		assert.Equal(t, uint64(1), c.Stats().Evictions)
	})
}

//
// ================= TTL =================
//

func TestTTLRoundTrip(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.PutWithTTL("temp", "value", 100*time.Millisecond))

	v, ok := c.Get("temp")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	time.Sleep(150 * time.Millisecond)

	v, ok = c.Get("temp")
	assert.False(t, ok)
	assert.Nil(t, v)

	st := c.Stats()
	assert.Equal(t, uint64(1), st.Expired)
	assert.Equal(t, 0, c.Size())
}

func TestPutWithTTLValidation(t *testing.T) {
	c := newTestCache(t)

	assert.ErrorIs(t, c.PutWithTTL("k", "v", 0), cache.ErrInvalidTTL)
	assert.ErrorIs(t, c.PutWithTTL("k", "v", -time.Second), cache.ErrInvalidTTL)

	// rejected before any mutation
	assert.Equal(t, 0, c.Size())
	assert.Equal(t, uint64(0), c.Stats().TotalRequests)
}

func TestCleanupExpired(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.PutWithTTL("short1", 1, 20*time.Millisecond))
	require.NoError(t, c.PutWithTTL("short2", 2, 20*time.Millisecond))
	require.NoError(t, c.PutWithTTL("long", 3, time.Hour))
	c.Put("forever", 4)

	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 2, c.CleanupExpired())
	assert.Equal(t, 2, c.Size())
	assert.Equal(t, uint64(2), c.Stats().Expired)

	// idempotent once swept
	assert.Equal(t, 0, c.CleanupExpired())
}

func TestExpireAndTTL(t *testing.T) {
	c := newTestCache(t)

	c.Put("k", "v")
	assert.Equal(t, cache.TTLNone, c.TTL("k"))
	assert.Equal(t, cache.TTLMissing, c.TTL("absent"))

	ok, err := c.Expire("k", 80*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	d := c.TTL("k")
	assert.Greater(t, d, time.Duration(0))
	assert.LessOrEqual(t, d, 80*time.Millisecond)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, cache.TTLMissing, c.TTL("k"))

	ok, err = c.Expire("absent", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Expire("k", 0)
	assert.ErrorIs(t, err, cache.ErrInvalidTTL)
}

//
// ================= STATS =================
//

func TestStats(t *testing.T) {
	c := newTestCache(t)

	c.Put("a", 1)
	c.Put("b", 2)

	c.Get("a")
	c.Get("b")
	c.Get("missing")

	st := c.Stats()
	assert.Equal(t, uint64(2), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, uint64(3), st.TotalRequests)
	assert.InDelta(t, 0.667, st.HitRate, 0.0005)
	assert.Equal(t, c.Size(), st.CurrentSize)
}

func TestStatsEmpty(t *testing.T) {
	c := newTestCache(t)

	st := c.Stats()
	assert.Equal(t, uint64(0), st.TotalRequests)
	assert.Equal(t, 0.0, st.HitRate)
}

//
// ================= METRICS OBSERVER =================
//

type countingMetrics struct {
	hits, misses, evictions, expired atomic.Int64
}

func (m *countingMetrics) Hit()      { m.hits.Add(1) }
func (m *countingMetrics) Miss()     { m.misses.Add(1) }
func (m *countingMetrics) Eviction() { m.evictions.Add(1) }
func (m *countingMetrics) Expire()   { m.expired.Add(1) }

func TestMetricsObserver(t *testing.T) {
	m := &countingMetrics{}
	c := newTestCache(t, cache.WithMaxSize(1), cache.WithMetrics(m))

	c.Put("a", 1)
	c.Get("a")       // hit
	c.Get("missing") // miss
	c.Put("b", 2)    // evicts a

	require.NoError(t, c.PutWithTTL("t", 1, 10*time.Millisecond)) // evicts b
	time.Sleep(30 * time.Millisecond)
	c.Get("t") // expired: expire + miss

	assert.Equal(t, int64(1), m.hits.Load())
	assert.Equal(t, int64(2), m.misses.Load())
	assert.Equal(t, int64(2), m.evictions.Load())
	assert.Equal(t, int64(1), m.expired.Load())
}

//
// ================= READ-THROUGH =================
//

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("loads on miss and caches", func(t *testing.T) {
		store := NewTestStore()
		store.data["k"] = "from-store"
		c := newTestCache(t, cache.WithLoader(store))

		v, err := c.GetOrLoad(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "from-store", v)
		assert.Equal(t, int64(1), store.loads.Load())

		// second call is a pure cache hit
		v, err = c.GetOrLoad(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "from-store", v)
		assert.Equal(t, int64(1), store.loads.Load())
	})

	t.Run("no loader", func(t *testing.T) {
		c := newTestCache(t)
		_, err := c.GetOrLoad(ctx, "k")
		assert.ErrorIs(t, err, cache.ErrNoLoader)
	})

	t.Run("loader error is not cached", func(t *testing.T) {
		c := newTestCache(t, cache.WithLoader(failingStore{}))
		_, err := c.GetOrLoad(ctx, "k")
		assert.Error(t, err)
		assert.Equal(t, 0, c.Size())
	})

	t.Run("concurrent loads collapse", func(t *testing.T) {
		store := NewTestStore()
		store.data["hot"] = "value"
		store.delay = 50 * time.Millisecond
		c := newTestCache(t, cache.WithLoader(store))

		wg := sync.WaitGroup{}
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := c.GetOrLoad(ctx, "hot")
				assert.NoError(t, err)
				assert.Equal(t, "value", v)
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), store.loads.Load())
	})
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (any, error) {
	return nil, errors.New("store down")
}

func (failingStore) Put(context.Context, string, any) error {
	return errors.New("store down")
}

//
// ================= WRITE PROPAGATION =================
//

func TestWritePolicyPropagation(t *testing.T) {
	store := NewTestStore()
	c := newTestCache(t, cache.WithWritePolicy(writepolicy.NewBack(store, 16, nil)))

	c.Put("a", 1)
	require.NoError(t, c.PutWithTTL("b", 2, time.Minute))
	c.Close() // flushes the write-back queue

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.Equal(t, 1, store.data["a"])
	assert.Equal(t, 2, store.data["b"])
}

//
// ================= CONCURRENCY =================
//

func TestConcurrentMixedOps(t *testing.T) {
	c := newTestCache(t, cache.WithMaxSize(64))

	wg := sync.WaitGroup{}
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("key-%d", i%100)
				switch i % 5 {
				case 0:
					c.Put(key, i)
				case 1:
					c.Get(key)
				case 2:
					c.Delete(key)
				case 3:
					_ = c.PutWithTTL(key, i, time.Minute)
				case 4:
					c.Keys()
				}
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), 64)
	st := c.Stats()
	assert.Equal(t, st.Hits+st.Misses, st.TotalRequests)
}
