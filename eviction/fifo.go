// This file implements FIFO eviction.

package eviction

import "github.com/krisalay/bounded-cache/types"

/*
fifo evicts keys in pure insertion order.

- queue keeps keys in the order they first entered the cache;
  the front (index 0) is the oldest key.
- set records which keys are currently tracked, so re-inserting an
  existing key never reorders the queue.

Access never changes the ordering: OnAccess is deliberately a no-op, and
only OnInsert appends to the queue.
*/
type fifo struct {
	queue []string
	set   map[string]struct{}
}

func newFIFO() *fifo {
	return &fifo{
		queue: make([]string, 0),
		set:   make(map[string]struct{}),
	}
}

// OnAccess ignores reads and overwrites completely. FIFO only cares about
// the first insertion.
func (f *fifo) OnAccess(string, *types.CacheEntry) {}

// OnInsert records a brand-new key at the back of the queue. The cache
// guarantees it is called once per key lifetime, but the membership set
// keeps the queue duplicate-free even if a key is deleted and re-inserted.
func (f *fifo) OnInsert(k string) {
	if _, ok := f.set[k]; ok {
		return
	}
	f.queue = append(f.queue, k)
	f.set[k] = struct{}{}
}

// ShouldEvict peeks at the oldest tracked key. It does NOT pop: the cache
// removes the victim from the mapping first and then calls Remove, which
// keeps queue cleanup on a single code path.
func (f *fifo) ShouldEvict(map[string]*types.CacheEntry) (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	return f.queue[0], true
}

// Remove drops a key from the queue while preserving the order of the rest.
func (f *fifo) Remove(k string) {
	if _, ok := f.set[k]; !ok {
		return
	}
	delete(f.set, k)
	for i, v := range f.queue {
		if v == k {
			f.queue = append(f.queue[:i], f.queue[i+1:]...)
			break
		}
	}
}

func (f *fifo) Clear() {
	f.queue = f.queue[:0]
	f.set = make(map[string]struct{})
}
