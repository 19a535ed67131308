package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cool4zbl/build-redis-from-scratch/internal/storage/memory"
)

// StatsSource is implemented by *memory.Store.
type StatsSource interface {
	Stats() memory.Stats
}

// StoreCollector exports keyspace statistics at scrape time.
type StoreCollector struct {
	source StatsSource

	keys          *prometheus.Desc
	expiring      *prometheus.Desc
	expiredLazy   *prometheus.Desc
	expiredActive *prometheus.Desc
}

// NewStoreCollector creates a collector reading from source.
func NewStoreCollector(source StatsSource) *StoreCollector {
	return &StoreCollector{
		source: source,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "store", "keys"),
			"Entries held in the store, including expired entries not yet reaped.",
			nil, nil),
		expiring: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "store", "expiring_keys"),
			"Entries with a pending expiry.",
			nil, nil),
		expiredLazy: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "store", "expired_lazy_total"),
			"Expired entries removed by a read.",
			nil, nil),
		expiredActive: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "store", "expired_active_total"),
			"Expired entries removed by the reaper.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.expiring
	ch <- c.expiredLazy
	ch <- c.expiredActive
}

// Collect implements prometheus.Collector.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(st.Keys))
	ch <- prometheus.MustNewConstMetric(c.expiring, prometheus.GaugeValue, float64(st.Expiring))
	ch <- prometheus.MustNewConstMetric(c.expiredLazy, prometheus.CounterValue, float64(st.ExpiredLazy))
	ch <- prometheus.MustNewConstMetric(c.expiredActive, prometheus.CounterValue, float64(st.ExpiredActive))
}
