// This file implements LFU eviction.

package eviction

import "github.com/krisalay/bounded-cache/types"

/*
lfu evicts the key with the fewest recorded accesses.

Unlike LRU/MRU/FIFO, LFU keeps NO ordering structure of its own: the access
count already lives on every CacheEntry, so the strategy reads it straight
from the mapping it is handed. That makes every event below a no-op and
moves all the work into ShouldEvict.

Tie-break rule, in order:
 1. lowest AccessCount
 2. oldest LastAccessedAt
 3. smallest key (lexicographic)

Step 3 exists because Go randomizes map iteration; without it, two entries
that tie on count and timestamp would make the victim non-deterministic.
*/
type lfu struct{}

func newLFU() *lfu {
	return &lfu{}
}

func (l *lfu) OnAccess(string, *types.CacheEntry) {}

func (l *lfu) OnInsert(string) {}

func (l *lfu) Remove(string) {}

func (l *lfu) Clear() {}

func (l *lfu) ShouldEvict(data map[string]*types.CacheEntry) (string, bool) {
	var (
		victim string
		best   *types.CacheEntry
	)
	for k, ent := range data {
		if best == nil || less(k, ent, victim, best) {
			victim, best = k, ent
		}
	}
	if best == nil {
		return "", false
	}
	return victim, true
}

// less reports whether candidate (k, ent) is a better victim than the
// current best, applying the documented tie-break chain.
func less(k string, ent *types.CacheEntry, bestKey string, best *types.CacheEntry) bool {
	if ent.AccessCount != best.AccessCount {
		return ent.AccessCount < best.AccessCount
	}
	if !ent.LastAccessedAt.Equal(best.LastAccessedAt) {
		return ent.LastAccessedAt.Before(best.LastAccessedAt)
	}
	return k < bestKey
}
