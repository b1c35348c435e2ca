package cache

import (
	"github.com/goccy/go-json"
)

// Typed stores values of T as JSON in a Cache under a key prefix, so several
// kinds of values can share one backend.
type Typed[T any] struct {
	cache  Cache
	prefix string
	logger Logger
}

// NewTyped wraps c. logger may be nil.
func NewTyped[T any](c Cache, prefix string, logger Logger) *Typed[T] {
	return &Typed[T]{cache: c, prefix: prefix, logger: logger}
}

// Get decodes the value stored under key. Entries that no longer decode are
// dropped and reported as a miss.
func (t *Typed[T]) Get(key string) (T, bool) {
	var v T
	raw, ok := t.cache.Get(t.prefix + key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		t.logError("cache entry does not decode", err)
		t.cache.Delete(t.prefix + key)
		var zero T
		return zero, false
	}
	return v, true
}

// Set encodes v and stores it under key.
func (t *Typed[T]) Set(key string, v T) {
	raw, err := json.Marshal(v)
	if err != nil {
		t.logError("cache entry does not encode", err)
		return
	}
	t.cache.Set(t.prefix+key, raw)
}

// Delete removes key.
func (t *Typed[T]) Delete(key string) {
	t.cache.Delete(t.prefix + key)
}

func (t *Typed[T]) logError(msg string, err error) {
	if t.logger != nil {
		t.logger.Error(msg, err)
	}
}
