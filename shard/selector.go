package shard

import "hash/fnv"

/*
This file decides HOW a cache key is assigned to a shard.

A sharded cache splits its keyspace over several independent caches, each
with its own lock. For that to work, every operation on a given key must
land on the same shard every time, and keys should spread evenly so no
single shard turns into a hot spot.
*/

// Selector maps a key to a shard index in [0, n).
type Selector interface {
	Pick(key string, n int) int
}

// HashSelector routes by FNV-1a hash of the key. FNV is a fast,
// non-cryptographic hash that spreads typical cache keys well enough.
type HashSelector struct{}

func (HashSelector) Pick(key string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
