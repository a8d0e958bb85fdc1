package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the reporting core.
type Metrics struct {
	Refreshes       *prometheus.CounterVec
	RefreshFailures *prometheus.CounterVec
	RefreshDuration *prometheus.HistogramVec
	EventsScanned   *prometheus.CounterVec
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
}

// New registers and returns reporting metrics collectors.
func New() *Metrics {
	return &Metrics{
		Refreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "maya_report_refreshes_total",
			Help: "Total number of completed report refreshes",
		}, []string{"kind"}),
		RefreshFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "maya_report_refresh_failures_total",
			Help: "Total number of failed report refreshes",
		}, []string{"kind"}),
		RefreshDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "maya_report_refresh_duration_seconds",
			Help:    "Time spent scanning and aggregating one report",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		EventsScanned: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "maya_report_events_scanned_total",
			Help: "Total number of raw events read while refreshing reports",
		}, []string{"kind"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maya_report_cache_hits_total",
			Help: "Total number of report reads served from cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maya_report_cache_misses_total",
			Help: "Total number of report reads that required a computation",
		}),
	}
}

func (m *Metrics) ObserveRefresh(kind string, d time.Duration, scanned int) {
	m.Refreshes.WithLabelValues(kind).Inc()
	m.RefreshDuration.WithLabelValues(kind).Observe(d.Seconds())
	m.EventsScanned.WithLabelValues(kind).Add(float64(scanned))
}

func (m *Metrics) IncrementRefreshFailures(kind string) {
	m.RefreshFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementCacheHits() {
	m.CacheHits.Inc()
}

func (m *Metrics) IncrementCacheMisses() {
	m.CacheMisses.Inc()
}
