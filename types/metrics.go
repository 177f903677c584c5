package types

// This file defines how the cache reports what it is doing.

/*
Metrics is the observer interface for cache events. The cache keeps its own
cumulative counters; a Metrics implementation is the hook for exporting the
same events to whatever monitoring system the caller uses.

Implementations are called while the cache holds its lock, so every method
MUST be fast, MUST NOT block, and MUST NOT call back into the cache.
*/
type Metrics interface {

	// Hit is called when the cache successfully returns a value.
	Hit()

	// Miss is called when the requested key is absent or expired.
	Miss()

	// Eviction is called when a key is removed to make room for another.
	Eviction()

	// Expire is called when a key is removed because its TTL ran out.
	Expire()
}

/*
NoopMetrics is the "do nothing" implementation of Metrics.

It exists so the cache never has to nil-check its metrics field: callers who
do not care about metrics get this one by default and every event is simply
ignored.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()      {}
func (NoopMetrics) Miss()     {}
func (NoopMetrics) Eviction() {}
func (NoopMetrics) Expire()   {}
