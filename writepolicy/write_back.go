// This file implements the "write-back" policy.

package writepolicy

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/krisalay/bounded-cache/types"
)

// pending is one queued write waiting to reach the backing store.
type pending struct {
	ctx   context.Context
	key   string
	value any
}

/*
Back queues cache writes and flushes them to the backing store from a
single background worker.

The queue is a buffered channel. When the buffer is full the write is
DROPPED rather than blocking the cache: blocking the write path would
defeat the point of write-back. Drops are logged, and how many were
dropped is visible via Dropped.
*/
type Back struct {
	store types.Loader
	ch    chan pending
	log   *slog.Logger

	mu      sync.Mutex
	dropped uint64

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewBack creates a write-back policy with the given queue size and starts
// its worker. A nil logger discards.
func NewBack(store types.Loader, buffer int, log *slog.Logger) *Back {
	if buffer <= 0 {
		buffer = 1024
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	w := &Back{
		store: store,
		ch:    make(chan pending, buffer),
		log:   log,
	}
	w.wg.Add(1)
	go w.worker()
	return w
}

// OnWrite queues the write. If the queue is full the write is dropped so
// the cache stays fast; the backing store may miss some updates.
func (w *Back) OnWrite(ctx context.Context, key string, value any) {
	select {
	case w.ch <- pending{ctx, key, value}:
	default:
		w.mu.Lock()
		w.dropped++
		w.mu.Unlock()
		w.log.Warn("write-back queue full, dropping write", "key", key)
	}
}

// Dropped reports how many writes were discarded under queue pressure.
func (w *Back) Dropped() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

// worker drains the queue and pushes each write to the backing store.
// This is where eventual consistency happens.
func (w *Back) worker() {
	defer w.wg.Done()
	for req := range w.ch {
		if err := w.store.Put(req.ctx, req.key, req.value); err != nil {
			w.log.Error("write-back store put failed", "key", req.key, "error", err)
		}
	}
}

// Close stops accepting writes and waits for the worker to flush the
// queue. Safe to call multiple times.
func (w *Back) Close() {
	w.closeOnce.Do(func() {
		close(w.ch)
		w.wg.Wait()
	})
}
