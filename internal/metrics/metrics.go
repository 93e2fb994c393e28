package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PropagationFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "airports_index_propagation_failures_total",
		Help: "Best-effort index writes that failed after the record store write succeeded",
	}, []string{"index", "op"})
	StaleHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "airports_stale_hits_total",
		Help: "Index hits dropped because the record store has no matching record",
	}, []string{"query"})
	QueryDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "airports_query_duration_ms",
		Help:    "Composite query duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"query"})
	BulkLoadRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "airports_bulk_load_records_total",
		Help: "Bulk-loaded records by outcome",
	}, []string{"outcome"})
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "airports_http_requests_total",
		Help: "HTTP requests by route and status class",
	}, []string{"route", "code"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "airports_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(PropagationFailuresTotal)
	prometheus.MustRegister(StaleHitsTotal)
	prometheus.MustRegister(QueryDurationMs)
	prometheus.MustRegister(BulkLoadRecordsTotal)
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// 文档注释：返回 Prometheus 指标监听器，在主入口挂载到 /metrics
func Handler() http.Handler { return promhttp.Handler() }
