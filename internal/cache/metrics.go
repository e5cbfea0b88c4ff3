package cache

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// cacheMetrics holds the Prometheus collectors of one EntityCache, labelled
// by store kind.
type cacheMetrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	puts          *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	entries       *prometheus.GaugeVec
}

func newCacheMetrics(reg prometheus.Registerer) (*cacheMetrics, error) {
	m := &cacheMetrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of entity cache hits",
		}, []string{"kind"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of entity cache misses",
		}, []string{"kind"}),
		puts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: "cache",
			Name:      "puts_total",
			Help:      "Total number of entities stored",
		}, []string{"kind"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Total number of store invalidations",
		}, []string{"kind"}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "bridge",
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Current number of cached entities",
		}, []string{"kind"}),
	}
	if reg == nil {
		return m, nil
	}
	for name, c := range map[string]prometheus.Collector{
		"hits":          m.hits,
		"misses":        m.misses,
		"puts":          m.puts,
		"invalidations": m.invalidations,
		"entries":       m.entries,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering cache %s metric: %w", name, err)
		}
	}
	return m, nil
}
