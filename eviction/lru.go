// This file implements LRU eviction and the recency list shared with MRU.

package eviction

import "github.com/krisalay/bounded-cache/types"

// recencyNode represents ONE key inside the recency list.
// We use a doubly-linked list to track usage order.
type recencyNode struct {
	key  string
	prev *recencyNode
	next *recencyNode
}

/*
recencyList is an ordered structure over touched keys.

- head is the MOST recently touched key
- tail is the LEAST recently touched key
- nodes maps cache keys to their list nodes for O(1) moves

LRU and MRU maintain exactly the same ordering; they only disagree about
which end of the list to evict from, so they share this structure.
*/
type recencyList struct {
	nodes map[string]*recencyNode
	head  *recencyNode
	tail  *recencyNode
}

func newRecencyList() *recencyList {
	return &recencyList{nodes: make(map[string]*recencyNode)}
}

// touch marks a key as most recently used. Unknown keys are added at the
// front, known keys are moved there.
func (l *recencyList) touch(k string) {
	if n, ok := l.nodes[k]; ok {
		l.unlink(n)
		l.pushFront(n)
		return
	}
	n := &recencyNode{key: k}
	l.nodes[k] = n
	l.pushFront(n)
}

// remove forgets a key entirely.
func (l *recencyList) remove(k string) {
	if n, ok := l.nodes[k]; ok {
		l.unlink(n)
		delete(l.nodes, k)
	}
}

func (l *recencyList) clear() {
	l.nodes = make(map[string]*recencyNode)
	l.head = nil
	l.tail = nil
}

// leastRecent returns the key at the stale end of the list.
func (l *recencyList) leastRecent() (string, bool) {
	if l.tail == nil {
		return "", false
	}
	return l.tail.key, true
}

// mostRecent returns the key at the fresh end of the list.
func (l *recencyList) mostRecent() (string, bool) {
	if l.head == nil {
		return "", false
	}
	return l.head.key, true
}

func (l *recencyList) pushFront(n *recencyNode) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *recencyList) unlink(n *recencyNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
}

// lru evicts the least recently touched key.
type lru struct {
	order *recencyList
}

func newLRU() *lru {
	return &lru{order: newRecencyList()}
}

func (l *lru) OnAccess(k string, _ *types.CacheEntry) { l.order.touch(k) }

// OnInsert is a no-op: OnAccess already runs on every insert and that is
// all the recency ordering needs.
func (l *lru) OnInsert(string) {}

func (l *lru) Remove(k string) { l.order.remove(k) }

func (l *lru) Clear() { l.order.clear() }

func (l *lru) ShouldEvict(map[string]*types.CacheEntry) (string, bool) {
	return l.order.leastRecent()
}
