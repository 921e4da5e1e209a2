package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Виды запросов к базе вершин (значение метки kind)
const (
	QueryNearby   = "nearby"
	QueryByRef    = "ref"
	QuerySearch   = "search"
	QueryStats    = "stats"
	QueryLocation = "location"
)

// Источники загрузки Store (значение метки source)
const (
	SourceCache   = "cache"
	SourceNetwork = "network"
)

var (
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "summit_queries_total",
		Help: "Total number of summit database queries",
	}, []string{"kind"})
	QueryDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "summit_query_duration_ms",
		Help:    "Query duration in milliseconds, store loading excluded",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50, 100},
	}, []string{"kind"})
	EmptyResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "summit_empty_results_total",
		Help: "Total number of queries that matched nothing",
	}, []string{"kind"})
	StoreUnavailableTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "summit_store_unavailable_total",
		Help: "Total number of queries rejected because the store could not be loaded",
	})

	StoreLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "summit_store_loads_total",
		Help: "Total number of successful store loads by source",
	}, []string{"source"})
	StoreLoadFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "summit_store_load_failures_total",
		Help: "Total number of failed store loads",
	})
	StoreSummits = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "summit_store_summits",
		Help: "Number of summits in the current store",
	})
	BlobDownloadedBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "summit_blob_downloaded_bytes_total",
		Help: "Total bytes of database blob downloaded",
	})

	DatasetEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "summit_dataset_events_total",
		Help: "Dataset update events by outcome",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(QueryDurationMs)
	prometheus.MustRegister(EmptyResultsTotal)
	prometheus.MustRegister(StoreUnavailableTotal)
	prometheus.MustRegister(StoreLoadsTotal)
	prometheus.MustRegister(StoreLoadFailuresTotal)
	prometheus.MustRegister(StoreSummits)
	prometheus.MustRegister(BlobDownloadedBytesTotal)
	prometheus.MustRegister(DatasetEventsTotal)
}

// Handler отдаёт метрики в формате Prometheus
func Handler() http.Handler {
	return promhttp.Handler()
}
