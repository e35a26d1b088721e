package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers hierarchy lookups and exports.
type Metrics struct {
	CacheLookups   *prometheus.CounterVec
	SharedFetches  prometheus.Counter
	ExportDuration prometheus.Histogram
	ExportRows     prometheus.Histogram
	ExportsTotal   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "partnersearch_hierarchy_cache_lookups_total",
			Help: "Hierarchy cache lookups by result",
		}, []string{"result"}), // "hit", "miss", "error"

		SharedFetches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "partnersearch_hierarchy_shared_fetches_total",
			Help: "Hierarchy requests served by an in-flight upstream fetch for the same duns",
		}),

		ExportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "partnersearch_export_duration_seconds",
			Help:    "Time to load, flatten and encode a hierarchy export",
			Buckets: prometheus.DefBuckets,
		}),

		ExportRows: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "partnersearch_export_rows",
			Help:    "Entities per exported hierarchy",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		}),

		ExportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "partnersearch_exports_total",
			Help: "Hierarchy exports by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) cacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) sharedFetch() {
	if m != nil {
		m.SharedFetches.Inc()
	}
}

func (m *Metrics) exportDone(outcome string, rows int, d time.Duration) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.ExportDuration.Observe(d.Seconds())
		m.ExportRows.Observe(float64(rows))
	}
}
