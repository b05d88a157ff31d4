package metrics

import "github.com/prometheus/client_golang/prometheus"

// Index maintenance and query Prometheus metrics.
var (
	IndexEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wikindex",
			Name:      "index_events_total",
			Help:      "Mutation events handled by index updaters",
		},
		[]string{"updater", "kind", "outcome"}, // outcome: applied / skipped_no_table / skipped_missing / error
	)

	PopulateRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wikindex",
			Name:      "populate_rows_total",
			Help:      "Rows written by bulk population jobs",
		},
		[]string{"job"},
	)

	PopulateRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wikindex",
			Name:      "populate_runs_total",
			Help:      "Bulk population job runs",
		},
		[]string{"job", "result"}, // result: done / skipped / skipped_no_table / error
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wikindex",
			Name:      "query_duration_seconds",
			Help:      "Store query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"store"},
	)

	QueryResultSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wikindex",
			Name:      "query_result_size",
			Help:      "Records returned per store query",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"store"},
	)

	TreeNodesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wikindex",
			Name:      "tree_nodes_materialized_total",
			Help:      "Tree nodes materialized by title tree builds",
		},
	)

	StreamMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wikindex",
			Name:      "stream_messages_total",
			Help:      "Event stream entries processed by the consumer",
		},
		[]string{"result"}, // acked / rejected / failed
	)

	TreeTruncatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wikindex",
			Name:      "tree_truncated_total",
			Help:      "Title tree builds that hit a depth or node limit",
		},
		[]string{"limit"}, // depth / nodes
	)
)

var indexMetricsRegistered bool

// RegisterIndexMetrics registers index and query metrics. Must be called once from main.
func RegisterIndexMetrics() {
	if indexMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexEventsTotal)
	prometheus.MustRegister(PopulateRowsTotal)
	prometheus.MustRegister(PopulateRunsTotal)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueryResultSize)
	prometheus.MustRegister(TreeNodesTotal)
	prometheus.MustRegister(TreeTruncatedTotal)
	prometheus.MustRegister(StreamMessagesTotal)
	indexMetricsRegistered = true
}
