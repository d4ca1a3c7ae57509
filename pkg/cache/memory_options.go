package cache

import "time"

// memoryOptions holds configuration for the in-memory cache.
type memoryOptions struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxEntries      int
}

// defaultMemoryOptions returns memory cache options with sensible defaults:
// 5 minute TTL, 1 minute cleanup interval, unbounded size.
func defaultMemoryOptions() *memoryOptions {
	return &memoryOptions{
		defaultTTL:      5 * time.Minute,
		cleanupInterval: time.Minute,
		maxEntries:      0,
	}
}

// MemoryOption configures the in-memory cache.
type MemoryOption func(*memoryOptions)

// WithDefaultTTL sets the TTL applied when Set is called with a zero TTL.
func WithDefaultTTL(ttl time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.defaultTTL = ttl
	}
}

// WithCleanupInterval sets how often the janitor sweeps expired entries.
// A non-positive interval disables the background janitor; expired entries
// are then removed lazily on access.
func WithCleanupInterval(interval time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.cleanupInterval = interval
	}
}

// WithMaxEntries caps the number of entries. When the cap is reached the
// least recently used entry is evicted to make room. Zero means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) {
		o.maxEntries = n
	}
}
