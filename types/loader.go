package types

import "context"

/*
Loader is the contract between the cache and a backing store.

The cache itself is purely in-memory. When callers want read-through or
write propagation, they plug in a Loader that talks to the real source of
truth (a database, an API, another cache).
*/
type Loader interface {

	// Load fetches the value for a key that the cache does not hold.
	// Returning a nil value with a nil error means the key does not exist
	// in the backing store either; the cache will not store anything.
	Load(ctx context.Context, key string) (any, error)

	// Put writes a value back to the backing store. This is used by write
	// policies (write-through writes immediately, write-back queues the
	// write). It never stores anything in the cache itself.
	Put(ctx context.Context, key string, value any) error
}
