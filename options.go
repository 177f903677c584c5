package cache

import (
	"io"

	"log/slog"

	"github.com/krisalay/bounded-cache/eviction"
	"github.com/krisalay/bounded-cache/types"
	"github.com/krisalay/bounded-cache/writepolicy"
)

const (
	// DefaultMaxSize is the capacity used when WithMaxSize is not given.
	DefaultMaxSize = 100

	// DefaultPolicy is the eviction strategy used when WithEvictionPolicy
	// is not given.
	DefaultPolicy = eviction.LRU
)

type config struct {
	maxSize        int
	policy         eviction.PolicyType
	policyInstance eviction.Policy
	logger         *slog.Logger
	metrics        types.Metrics
	loader         types.Loader
	writePolicy    writepolicy.Policy
}

func defaultConfig() config {
	return config{
		maxSize: DefaultMaxSize,
		policy:  DefaultPolicy,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: types.NoopMetrics{},
	}
}

// Option configures a Cache at construction time.
type Option func(*config)

// WithMaxSize bounds the number of entries the cache may hold.
// Must be positive; New rejects anything else.
func WithMaxSize(n int) Option {
	return func(c *config) { c.maxSize = n }
}

// WithEvictionPolicy selects the replacement strategy
// ("lru", "mru", "lfu" or "fifo").
func WithEvictionPolicy(t eviction.PolicyType) Option {
	return func(c *config) { c.policy = t }
}

// WithPolicy plugs in a caller-built eviction.Policy instead of one of the
// named strategies. The instance must not be shared with another cache:
// its bookkeeping tracks exactly one mapping.
func WithPolicy(p eviction.Policy) Option {
	return func(c *config) { c.policyInstance = p }
}

// WithLogger attaches a structured logger. The cache only logs anomalies
// (policy bookkeeping inconsistencies); the default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics attaches a metrics observer mirroring the internal counters.
func WithMetrics(m types.Metrics) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLoader attaches a backing store for GetOrLoad read-through.
func WithLoader(ld types.Loader) Option {
	return func(c *config) { c.loader = ld }
}

// WithWritePolicy propagates every cache write to a backing store
// (write-through or write-back). Close flushes pending writes.
func WithWritePolicy(p writepolicy.Policy) Option {
	return func(c *config) { c.writePolicy = p }
}
