package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ProviderConfig is handed to a Provider.
type ProviderConfig struct {
	Size    int           // maximum number of entries
	TTL     time.Duration // lifetime of an entry after its last write
	OnEvict EvictCallback
	Logger  Logger // nil discards backend failures

	RedisAddress  string
	RedisPassword string
	RedisDB       int
	// KeyPrefix namespaces the redis keys. Defaults to "jfcache:".
	KeyPrefix string

	// Group labels the cache_* metrics. A non-empty Group wraps the cache
	// with instrumentation.
	Group string
}

// Provider builds a Cache.
type Provider func(cfg ProviderConfig) (Cache, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register makes a provider available to New. It panics on a nil provider
// or a duplicate name.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	providers[name] = p
}

// New builds a cache with the named provider.
func New(name string, cfg ProviderConfig) (Cache, error) {
	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("cache: size must be positive, got %d", cfg.Size)
	}

	if cfg.Group == "" {
		return p(cfg)
	}

	group := cfg.Group
	next := cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if next != nil {
			next(key, value)
		}
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, err
	}
	return newInstrumentedCache(inner, group), nil
}

// RegisteredProviders returns the provider names in sorted order.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
