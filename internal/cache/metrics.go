package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics carry a "cache" label set from ProviderConfig.Group.
var (
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits.",
		},
		[]string{"cache"},
	)

	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses.",
		},
		[]string{"cache"},
	)

	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of entries evicted from the cache.",
		},
		[]string{"cache"},
	)
)

func init() {
	prometheus.MustRegister(HitsTotal, MissesTotal, EvictionsTotal)
}

// entriesCollector reports the size of one group by calling lenFunc on
// every scrape. Redis expires entries on its own, so a locally maintained
// gauge would drift.
type entriesCollector struct {
	desc    *prometheus.Desc
	lenFunc func() int
}

func (c *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.lenFunc()))
}

var (
	entriesMu         sync.Mutex
	entriesCollectors = make(map[string]*entriesCollector)
	// entriesReg is swapped for an isolated registry in tests.
	entriesReg prometheus.Registerer = prometheus.DefaultRegisterer
)

// registerEntriesCollector replaces any collector already registered for group.
func registerEntriesCollector(group string, lenFunc func() int) *entriesCollector {
	c := &entriesCollector{
		desc: prometheus.NewDesc(
			"cache_entries",
			"Current number of entries in the cache.",
			nil,
			prometheus.Labels{"cache": group},
		),
		lenFunc: lenFunc,
	}

	entriesMu.Lock()
	defer entriesMu.Unlock()

	if old, ok := entriesCollectors[group]; ok {
		entriesReg.Unregister(old)
	}
	entriesCollectors[group] = c
	_ = entriesReg.Register(c)
	return c
}

func unregisterEntriesCollector(group string) {
	entriesMu.Lock()
	defer entriesMu.Unlock()

	if c, ok := entriesCollectors[group]; ok {
		entriesReg.Unregister(c)
		delete(entriesCollectors, group)
	}
}
