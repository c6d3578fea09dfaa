package covertree

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instrumentation a Tree can optionally
// report through. A Tree with no Metrics attached (the zero value of
// *Metrics is never used; see Tree.SetMetrics) runs identically, just
// without these counters/histograms being updated.
type Metrics struct {
	insertsTotal   *prometheus.CounterVec
	insertDepth    prometheus.Histogram
	queriesTotal   *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	nodesTotal     prometheus.Gauge
	rootPromotions prometheus.Counter
}

// NewMetrics creates and registers the cover tree's Prometheus metrics
// against the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		insertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "covertree_inserts_total",
				Help: "Total number of points inserted, including rejected duplicates.",
			},
			[]string{"outcome"},
		),
		insertDepth: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "covertree_insert_level",
				Help:    "Level at which a newly inserted point was attached.",
				Buckets: prometheus.LinearBuckets(-32, 4, 16),
			},
		),
		queriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "covertree_queries_total",
				Help: "Total number of queries served, by kind.",
			},
			[]string{"kind"},
		),
		queryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "covertree_query_duration_seconds",
				Help:    "Query latency in seconds, by kind.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		nodesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "covertree_nodes_total",
				Help: "Current number of points held in the tree.",
			},
		),
		rootPromotions: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "covertree_root_promotions_total",
				Help: "Total number of times the root has been promoted to a higher level.",
			},
		),
	}
}

// ObserveInsert records a successful insertion at the given level.
func (m *Metrics) ObserveInsert(level int) {
	m.insertsTotal.WithLabelValues("accepted").Inc()
	m.insertDepth.Observe(float64(level))
}

// ObserveDuplicate records a rejected duplicate insertion attempt.
func (m *Metrics) ObserveDuplicate() {
	m.insertsTotal.WithLabelValues("duplicate").Inc()
}

// ObserveRootPromotion records one root promotion event.
func (m *Metrics) ObserveRootPromotion() {
	m.rootPromotions.Inc()
}

// ObserveQuery records one query of the given kind ("nearest", "knn",
// "range", "furthest") and its latency.
func (m *Metrics) ObserveQuery(kind string, d time.Duration) {
	m.queriesTotal.WithLabelValues(kind).Inc()
	m.queryDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// SetNodesTotal updates the current point count gauge.
func (m *Metrics) SetNodesTotal(n int) {
	m.nodesTotal.Set(float64(n))
}
