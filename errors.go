package cache

import "errors"

// Package-specific errors
var (
	// ErrInvalidCapacity is returned when constructing a cache with a
	// non-positive max size.
	ErrInvalidCapacity = errors.New("cache capacity must be positive")

	// ErrInvalidShards is returned when constructing a sharded cache with
	// a non-positive shard count, or a capacity too small to split.
	ErrInvalidShards = errors.New("invalid shard configuration")

	// ErrInvalidTTL is returned when a caller passes a non-positive TTL.
	ErrInvalidTTL = errors.New("ttl must be positive")

	// ErrNoLoader is returned by GetOrLoad when no backing loader was
	// configured.
	ErrNoLoader = errors.New("no loader configured")

	// ErrSharedPolicy is returned when a custom eviction policy instance
	// is handed to a multi-shard cache: one instance cannot track more
	// than one mapping.
	ErrSharedPolicy = errors.New("eviction policy instance cannot be shared across shards")
)
