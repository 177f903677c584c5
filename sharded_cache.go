package cache

import (
	"context"
	"time"

	"github.com/krisalay/bounded-cache/shard"
)

/*
ShardedCache spreads one logical cache over several independent Cache
shards to cut lock contention under heavy concurrency.

Each shard is a complete Cache with its own mutex, its own eviction policy
instance and its own slice of the total capacity. A key always routes to
the same shard, so per-key semantics (TTL, overwrite, eviction accounting)
are exactly those of Cache. What you give up is a global eviction order:
each shard evicts by its own policy over its own keys only.
*/
type ShardedCache struct {
	shards   []*Cache
	selector shard.Selector
}

/*
NewSharded builds a cache split into n shards.

Options are the same as for New; the configured max size is the TOTAL
capacity and is divided evenly across shards, so it must be at least n.
Each shard gets its own eviction policy instance; metrics, logger, loader
and write policy are shared.
*/
func NewSharded(n int, opts ...Option) (*ShardedCache, error) {
	if n <= 0 {
		return nil, ErrInvalidShards
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.policyInstance != nil && n > 1 {
		return nil, ErrSharedPolicy
	}
	perShard := cfg.maxSize / n
	if perShard <= 0 {
		return nil, ErrInvalidShards
	}
	cfg.maxSize = perShard

	shards := make([]*Cache, n)
	for i := range shards {
		c, err := newFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		shards[i] = c
	}
	return &ShardedCache{
		shards:   shards,
		selector: shard.HashSelector{},
	}, nil
}

func (s *ShardedCache) shardFor(key string) *Cache {
	return s.shards[s.selector.Pick(key, len(s.shards))]
}

func (s *ShardedCache) Get(key string) (any, bool) {
	return s.shardFor(key).Get(key)
}

func (s *ShardedCache) GetOrLoad(ctx context.Context, key string) (any, error) {
	return s.shardFor(key).GetOrLoad(ctx, key)
}

func (s *ShardedCache) Put(key string, value any) {
	s.shardFor(key).Put(key, value)
}

func (s *ShardedCache) PutWithTTL(key string, value any, ttl time.Duration) error {
	return s.shardFor(key).PutWithTTL(key, value, ttl)
}

func (s *ShardedCache) Delete(key string) bool {
	return s.shardFor(key).Delete(key)
}

func (s *ShardedCache) Expire(key string, ttl time.Duration) (bool, error) {
	return s.shardFor(key).Expire(key, ttl)
}

func (s *ShardedCache) TTL(key string) time.Duration {
	return s.shardFor(key).TTL(key)
}

// Clear empties every shard. Counters survive, as with Cache.Clear.
func (s *ShardedCache) Clear() {
	for _, c := range s.shards {
		c.Clear()
	}
}

// CleanupExpired sweeps every shard and returns the total removed.
func (s *ShardedCache) CleanupExpired() int {
	total := 0
	for _, c := range s.shards {
		total += c.CleanupExpired()
	}
	return total
}

// Size sums the shard sizes. The result is a point-in-time aggregate, not
// a single atomic snapshot across shards.
func (s *ShardedCache) Size() int {
	total := 0
	for _, c := range s.shards {
		total += c.Size()
	}
	return total
}

// Keys concatenates the keys of every shard, in unspecified order.
func (s *ShardedCache) Keys() []string {
	var keys []string
	for _, c := range s.shards {
		keys = append(keys, c.Keys()...)
	}
	return keys
}

// Stats sums the shard counters and recomputes the aggregate hit rate.
func (s *ShardedCache) Stats() Stats {
	var agg Stats
	for _, c := range s.shards {
		st := c.Stats()
		agg.Hits += st.Hits
		agg.Misses += st.Misses
		agg.Evictions += st.Evictions
		agg.Expired += st.Expired
		agg.CurrentSize += st.CurrentSize
	}
	agg.TotalRequests = agg.Hits + agg.Misses
	agg.HitRate = hitRate(agg.Hits, agg.TotalRequests)
	return agg
}

// Close closes every shard. A shared write policy is flushed once; its
// Close is required to tolerate the fan-out.
func (s *ShardedCache) Close() {
	for _, c := range s.shards {
		c.Close()
	}
}
