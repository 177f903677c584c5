package cache

import "math"

/*
Stats is a snapshot of the cache's cumulative counters.

- Hits      : successful lookups
- Misses    : lookups of absent or expired keys
- Evictions : entries removed to make room under the capacity bound
- Expired   : entries removed because their TTL ran out

TotalRequests is Hits + Misses. HitRate is Hits / TotalRequests rounded to
three decimal places, or 0 when nothing has been requested yet.
CurrentSize is the number of entries at snapshot time.

Counters survive Clear: they describe the cache's whole lifetime.
*/
type Stats struct {
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	Expired       uint64
	TotalRequests uint64
	HitRate       float64
	CurrentSize   int
}

func hitRate(hits, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(hits)/float64(total)*1000) / 1000
}
