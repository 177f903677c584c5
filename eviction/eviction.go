package eviction

/*
This file defines how the cache decides what to remove when it runs out of space.
*/

import (
	"errors"
	"fmt"

	"github.com/krisalay/bounded-cache/types"
)

// ErrUnknownPolicy is returned by New for a policy identifier that is not
// one of the supported PolicyType values.
var ErrUnknownPolicy = errors.New("unknown eviction policy")

/*
Policy is the interface that all eviction strategies must follow.

The cache does NOT care how eviction works internally. It only calls these
methods, always under its own lock, and always in lockstep with its own
key -> entry mapping: whatever the cache stores, the policy tracks; whatever
the cache drops, the policy forgets.

Every method is required. Strategies that do not care about an event
implement it as a no-op instead of the cache probing for optional
capabilities.
*/
type Policy interface {

	// OnAccess is called after every successful read of an entry and after
	// every write (insert or overwrite). Strategies that order keys by
	// recency update their bookkeeping here. FIFO ignores it.
	OnAccess(key string, ent *types.CacheEntry)

	// OnInsert is called exactly once, when a brand-new key is inserted.
	// It is never called again for an overwrite of the same key.
	// Only FIFO cares; every other strategy treats it as a no-op.
	OnInsert(key string)

	// Remove is called whenever the cache drops a key for ANY reason:
	// explicit delete, eviction, expiry or clear. The policy must discard
	// its bookkeeping for that key.
	Remove(key string)

	// Clear resets all ordering metadata to empty.
	Clear()

	// ShouldEvict picks the next victim given the cache's full current
	// mapping. The second return value is false when the strategy's
	// internal structure is empty or inconsistent; the cache then falls
	// back to a deterministic victim of its own choosing.
	ShouldEvict(data map[string]*types.CacheEntry) (string, bool)
}

// PolicyType is a simple identifier for supported eviction strategies.
type PolicyType string

const (
	// LRU (Least Recently Used): evicts the key that has NOT been touched
	// for the longest time.
	LRU PolicyType = "lru"

	// MRU (Most Recently Used): evicts the key that was touched most
	// recently. Useful when the freshest data is the least likely to be
	// asked for again.
	MRU PolicyType = "mru"

	// LFU (Least Frequently Used): evicts the key with the fewest recorded
	// accesses.
	LFU PolicyType = "lfu"

	// FIFO (First In First Out): evicts the oldest inserted key,
	// regardless of access.
	FIFO PolicyType = "fifo"
)

// New is a small factory. Given a PolicyType it creates the matching
// strategy, or reports a configuration error for an unknown identifier.
func New(t PolicyType) (Policy, error) {
	switch t {
	case LRU:
		return newLRU(), nil
	case MRU:
		return newMRU(), nil
	case LFU:
		return newLFU(), nil
	case FIFO:
		return newFIFO(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, t)
	}
}
