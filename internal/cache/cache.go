// Package cache stores serialized server responses behind a small
// provider registry. Providers are selected by name from configuration:
// "memory" keeps entries in process, "redis" shares them between instances.
package cache

// EvictCallback is called when an entry leaves the cache for capacity or
// expiry. The memory provider also reports Delete. The redis provider
// reports only capacity evictions, with a nil value.
type EvictCallback func(key string, value []byte)

// Cache is a bounded key-value store with least-recently-used eviction and
// a per-entry time to live.
type Cache interface {
	// Get returns the value stored under key and refreshes its recency.
	Get(key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte)

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(key string)

	// Len returns the number of live entries.
	Len() int

	// Close releases backend connections.
	Close() error
}

// Logger receives backend failures. Cache operations never return errors:
// a failing backend behaves like an empty cache.
type Logger interface {
	Error(msg string, err error)
}
