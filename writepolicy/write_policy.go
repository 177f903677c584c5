package writepolicy

import "context"

/*
This file defines what a "write policy" is.

The cache itself only writes to memory. When a backing store is involved,
different systems want different propagation behavior:
- write-through: strong consistency, every cache write hits the store
- write-back: high throughput, writes are queued and flushed asynchronously

Instead of hard-coding one behavior, the cache takes a Policy and calls it
on every write, after its own state is updated and outside its lock.
*/

// Policy is the contract that all write policies must follow.
type Policy interface {

	// OnWrite is called whenever the cache stores a key.
	OnWrite(ctx context.Context, key string, value any)

	// Close is called when the cache is shutting down. Policies with
	// pending work flush it here. Close must be safe to call more than
	// once: a sharded cache fans Close out to every shard.
	Close()
}
