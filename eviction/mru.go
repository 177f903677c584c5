// This file implements MRU eviction.

package eviction

import "github.com/krisalay/bounded-cache/types"

/*
mru evicts the MOST recently touched key.

It keeps exactly the same recency ordering as LRU and simply evicts from
the opposite end of the list. MRU fits workloads where a key that was just
read is the least likely to be needed again, for example sequential scans
over data sets larger than the cache.
*/
type mru struct {
	order *recencyList
}

func newMRU() *mru {
	return &mru{order: newRecencyList()}
}

func (m *mru) OnAccess(k string, _ *types.CacheEntry) { m.order.touch(k) }

func (m *mru) OnInsert(string) {}

func (m *mru) Remove(k string) { m.order.remove(k) }

func (m *mru) Clear() { m.order.clear() }

func (m *mru) ShouldEvict(map[string]*types.CacheEntry) (string, bool) {
	return m.order.mostRecent()
}
