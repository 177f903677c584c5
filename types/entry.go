package types

import "time"

/*
CacheEntry is the unit of storage inside the cache.

Each key maps to a CacheEntry instead of a bare value so the cache can keep
per-entry metadata next to the data:
- when the entry was created
- how long it is allowed to live
- how often and how recently it was read

A TTL of zero means the entry never expires.

Replacing the value for a key always builds a brand-new CacheEntry, so the
access counter and timestamps start over. AccessCount never decreases for
the lifetime of one entry.
*/
type CacheEntry struct {
	Value          any
	CreatedAt      time.Time
	TTL            time.Duration
	AccessCount    uint64
	LastAccessedAt time.Time
}

// NewCacheEntry builds a fresh entry stamped with the current time.
// ttl <= 0 means the entry has no expiration.
func NewCacheEntry(value any, ttl time.Duration) *CacheEntry {
	now := time.Now()
	return &CacheEntry{
		Value:          value,
		CreatedAt:      now,
		TTL:            ttl,
		LastAccessedAt: now,
	}
}

// IsExpired reports whether the entry has outlived its TTL.
// Expiry is anchored to CreatedAt, not to the last access:
// reading an entry does not push its deadline forward.
func (e *CacheEntry) IsExpired() bool {
	if e.TTL <= 0 {
		return false
	}
	return time.Now().After(e.CreatedAt.Add(e.TTL))
}

// Touch records one successful read: the access counter goes up by one and
// the last-access timestamp moves to now. The cache calls this exactly once
// per non-expired Get.
func (e *CacheEntry) Touch() {
	e.AccessCount++
	e.LastAccessedAt = time.Now()
}

// ExpiresAt returns the absolute deadline of the entry.
// ok is false when the entry has no TTL.
func (e *CacheEntry) ExpiresAt() (time.Time, bool) {
	if e.TTL <= 0 {
		return time.Time{}, false
	}
	return e.CreatedAt.Add(e.TTL), true
}
