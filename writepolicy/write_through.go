// This file implements the "write-through" policy.

package writepolicy

import (
	"context"
	"io"
	"log/slog"

	"github.com/krisalay/bounded-cache/types"
)

/*
Through forwards every cache write to the backing store synchronously.

The cache write is not considered complete until the store write finishes,
so a slow store makes cache writes slow. In exchange the store never lags
behind the cache.
*/
type Through struct {
	store types.Loader
	log   *slog.Logger
}

// NewThrough creates a write-through policy. A nil logger discards.
func NewThrough(store types.Loader, log *slog.Logger) *Through {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Through{store: store, log: log}
}

func (w *Through) OnWrite(ctx context.Context, key string, value any) {
	if err := w.store.Put(ctx, key, value); err != nil {
		w.log.Error("write-through store put failed", "key", key, "error", err)
	}
}

// Close has nothing to clean up: write-through keeps no pending work.
func (w *Through) Close() {}
