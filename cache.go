package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/krisalay/bounded-cache/eviction"
	"github.com/krisalay/bounded-cache/types"
	"github.com/krisalay/bounded-cache/writepolicy"
)

// Sentinel results for TTL, matching Redis conventions.
const (
	// TTLNone means the key exists but carries no expiration.
	TTLNone = time.Duration(-1)

	// TTLMissing means the key does not exist or is already expired.
	TTLMissing = time.Duration(-2)
)

/*
Cache is a bounded, thread-safe, in-memory key-value store with per-entry
TTL and a pluggable eviction strategy.

It connects three pieces:
- the key -> entry mapping (owned exclusively by the Cache)
- one eviction.Policy instance deciding replacement order
- cumulative hit/miss/eviction/expired counters

Every public operation runs start-to-finish under one mutex, so the
mapping, the policy's ordering metadata and the counters always change
together. The number of entries never exceeds maxSize: room is made BEFORE
a new key is inserted, never after.

Expiry is lazy. An expired entry is removed when a Get trips over it or
when CleanupExpired sweeps; there is no background timer.
*/
type Cache struct {
	mu      sync.Mutex
	data    map[string]*types.CacheEntry
	maxSize int
	policy  eviction.Policy

	hits      uint64
	misses    uint64
	evictions uint64
	expired   uint64

	metrics     types.Metrics
	loader      types.Loader
	writePolicy writepolicy.Policy
	log         *slog.Logger

	// sf collapses concurrent GetOrLoad calls for the same key into one
	// trip to the backing store.
	sf singleflight.Group
}

// New builds a Cache. Without options you get capacity 100 and LRU
// eviction. Construction fails for a non-positive capacity or an unknown
// eviction policy; no partially-built cache is ever returned.
func New(opts ...Option) (*Cache, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newFromConfig(cfg)
}

func newFromConfig(cfg config) (*Cache, error) {
	if cfg.maxSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, cfg.maxSize)
	}
	pol := cfg.policyInstance
	if pol == nil {
		var err error
		if pol, err = eviction.New(cfg.policy); err != nil {
			return nil, err
		}
	}
	return &Cache{
		data:        make(map[string]*types.CacheEntry),
		maxSize:     cfg.maxSize,
		policy:      pol,
		metrics:     cfg.metrics,
		loader:      cfg.loader,
		writePolicy: cfg.writePolicy,
		log:         cfg.logger,
	}, nil
}

/*
Get retrieves the value for a key.

Misses come in two flavors and both return (nil, false):
- the key is absent: one miss is recorded
- the key is present but expired: the entry is removed, one expired count
  AND one miss are recorded

On a hit the entry is touched (access count + last-access time), the
eviction policy sees the access, and one hit is recorded.
*/
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.data[key]
	if !ok {
		c.misses++
		c.metrics.Miss()
		return nil, false
	}

	if ent.IsExpired() {
		c.removeLocked(key)
		c.expired++
		c.misses++
		c.metrics.Expire()
		c.metrics.Miss()
		return nil, false
	}

	ent.Touch()
	c.policy.OnAccess(key, ent)
	c.hits++
	c.metrics.Hit()
	return ent.Value, true
}

// Put stores a value with no expiration. See PutWithTTL for the full
// insert/overwrite protocol.
func (c *Cache) Put(key string, value any) {
	c.put(key, value, 0)
}

/*
PutWithTTL stores a value that expires ttl after now.

ttl must be strictly positive; anything else is rejected before any state
changes. Use Put for entries that should never expire.

Overwriting an existing key replaces its entry wholesale: access count and
timestamps start over, the policy sees an access, and no capacity check
runs (an overwrite never grows the mapping). Inserting a new key while the
cache is full evicts exactly one entry first.
*/
func (c *Cache) PutWithTTL(key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidTTL, ttl)
	}
	c.put(key, value, ttl)
	return nil
}

func (c *Cache) put(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	ent := types.NewCacheEntry(value, ttl)

	if _, ok := c.data[key]; ok {
		c.data[key] = ent
		c.policy.OnAccess(key, ent)
	} else {
		if len(c.data) >= c.maxSize {
			c.evictOneLocked()
		}
		c.data[key] = ent
		c.policy.OnAccess(key, ent)
		c.policy.OnInsert(key)
	}
	c.mu.Unlock()

	// Write propagation happens outside the lock: a slow backing store
	// must not stall readers. Fire-and-forget, so no caller context.
	if c.writePolicy != nil {
		c.writePolicy.OnWrite(context.Background(), key, value)
	}
}

// Delete removes a key and its policy metadata. It reports whether the key
// was present. Deleting an absent key is not an error and touches nothing.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[key]; !ok {
		return false
	}
	c.removeLocked(key)
	return true
}

// Clear removes every entry and resets the policy's ordering metadata.
// The stats counters are NOT reset; they are cumulative for the cache's
// lifetime.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]*types.CacheEntry)
	c.policy.Clear()
}

// Size returns the current number of entries, expired-but-unswept ones
// included.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Keys returns the currently stored keys in unspecified order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	return keys
}

// CleanupExpired sweeps the whole mapping and removes every expired entry,
// counting each toward the expired total. It returns how many were
// removed. This is the only bulk operation and it only runs when called;
// the cache never sweeps on its own.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stale []string
	for k, ent := range c.data {
		if ent.IsExpired() {
			stale = append(stale, k)
		}
	}
	for _, k := range stale {
		c.removeLocked(k)
		c.expired++
		c.metrics.Expire()
	}
	return len(stale)
}

// Stats returns a consistent snapshot of the lifetime counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	return Stats{
		Hits:          c.hits,
		Misses:        c.misses,
		Evictions:     c.evictions,
		Expired:       c.expired,
		TotalRequests: total,
		HitRate:       hitRate(c.hits, total),
		CurrentSize:   len(c.data),
	}
}

// Expire re-arms the TTL of an existing key so it expires ttl from now.
// It reports false when the key is absent or already expired. ttl must be
// strictly positive.
func (c *Cache) Expire(key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, fmt.Errorf("%w: got %v", ErrInvalidTTL, ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.data[key]
	if !ok || ent.IsExpired() {
		return false, nil
	}
	// Expiry is anchored to CreatedAt, so shift the TTL by the entry's age.
	ent.TTL = time.Since(ent.CreatedAt) + ttl
	return true, nil
}

// TTL returns the remaining lifetime of a key: a positive duration, or
// TTLNone for a key without expiration, or TTLMissing for an absent or
// already-expired key.
func (c *Cache) TTL(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.data[key]
	if !ok {
		return TTLMissing
	}
	deadline, hasTTL := ent.ExpiresAt()
	if !hasTTL {
		return TTLNone
	}
	d := time.Until(deadline)
	if d <= 0 {
		return TTLMissing
	}
	return d
}

/*
GetOrLoad returns the cached value for a key, or fetches it from the
configured loader on a miss and caches the result.

Concurrent calls for the same missing key are collapsed: only one goroutine
reaches the backing store, the rest share its result. The cache lock is
never held across a load. A nil value from the loader (with a nil error)
means "not found anywhere" and is not cached.
*/
func (c *Cache) GetOrLoad(ctx context.Context, key string) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	if c.loader == nil {
		return nil, ErrNoLoader
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		// Another flight may have filled the key while we queued.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := c.loader.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		if v != nil {
			c.Put(key, v)
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Close flushes the write policy, if any. The cache itself owns no
// goroutines and stays usable afterwards for in-memory operations.
func (c *Cache) Close() {
	if c.writePolicy != nil {
		c.writePolicy.Close()
	}
}

/*
evictOneLocked makes room for one new entry.

The policy names the victim. If its bookkeeping is empty or points at a key
that is not actually present, that is an invariant violation: it gets
logged and the cache falls back to the lexicographically smallest present
key. The fallback is deterministic on purpose (Go randomizes map
iteration) and still counts as an eviction, so the cache can never be left
overflowing.
*/
func (c *Cache) evictOneLocked() {
	if len(c.data) == 0 {
		return
	}

	victim, ok := c.policy.ShouldEvict(c.data)
	if !ok {
		victim = c.fallbackVictimLocked()
		c.log.Warn("eviction policy has no candidate, using fallback",
			"victim", victim)
	} else if _, present := c.data[victim]; !present {
		stale := victim
		victim = c.fallbackVictimLocked()
		c.log.Warn("eviction policy returned untracked key, using fallback",
			"policy_key", stale, "victim", victim)
	}

	c.removeLocked(victim)
	c.evictions++
	c.metrics.Eviction()
}

func (c *Cache) fallbackVictimLocked() string {
	var (
		victim string
		found  bool
	)
	for k := range c.data {
		if !found || k < victim {
			victim, found = k, true
		}
	}
	return victim
}

// removeLocked drops a key from the mapping and the policy metadata
// together. Every removal path (delete, eviction, expiry, sweep) funnels
// through here so the two can never drift apart.
func (c *Cache) removeLocked(key string) {
	delete(c.data, key)
	c.policy.Remove(key)
}
