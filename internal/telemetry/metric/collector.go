package metric

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

// KeyspaceCollector reports the number of keys per value type, read from
// the backend at scrape time.
type KeyspaceCollector struct {
	counts func() map[string]int
	keys   *prometheus.Desc
}

// NewKeyspaceCollector creates a collector. counts returns key counts keyed
// by type name.
func NewKeyspaceCollector(counts func() map[string]int) *KeyspaceCollector {
	return &KeyspaceCollector{
		counts: counts,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Number of keys, by value type",
			[]string{"type"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *KeyspaceCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
}

// Collect implements prometheus.Collector.
func (c *KeyspaceCollector) Collect(ch chan<- prometheus.Metric) {
	counts := c.counts()
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, t := range types {
		ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(counts[t]), t)
	}
}
