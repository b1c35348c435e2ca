package cache

// instrumentedCache counts hits and misses for a group and exposes the
// entry count through a collector that calls Len at scrape time.
type instrumentedCache struct {
	inner Cache
	group string
}

func newInstrumentedCache(inner Cache, group string) *instrumentedCache {
	registerEntriesCollector(group, inner.Len)
	return &instrumentedCache{inner: inner, group: group}
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		HitsTotal.WithLabelValues(c.group).Inc()
	} else {
		MissesTotal.WithLabelValues(c.group).Inc()
	}
	return val, ok
}

func (c *instrumentedCache) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

func (c *instrumentedCache) Delete(key string) {
	c.inner.Delete(key)
}

func (c *instrumentedCache) Len() int {
	return c.inner.Len()
}

// Close drops the entries collector before closing the backend.
func (c *instrumentedCache) Close() error {
	unregisterEntriesCollector(c.group)
	return c.inner.Close()
}
