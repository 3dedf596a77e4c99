package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the search session.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	QueriesTotal       prometheus.Counter
	MatchesTotal       prometheus.Counter
	QueryDuration      prometheus.Histogram
	SuggestionsTotal   prometheus.Counter
	IndexBuildsTotal   prometheus.Counter
	IndexlessDocsTotal prometheus.Counter
	FetchesTotal       *prometheus.CounterVec
	FetchDuration      prometheus.Histogram
	IndexedDocuments   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		QueriesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "prepsearch_queries_total",
			Help: "Total number of non-empty search queries",
		}),
		MatchesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "prepsearch_matches_total",
			Help: "Total number of match records produced",
		}),
		QueryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "prepsearch_query_duration_seconds",
			Help:    "Duration of index scans in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25},
		}),
		SuggestionsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "prepsearch_suggestions_total",
			Help: "Total number of suggestion lookups",
		}),
		IndexBuildsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "prepsearch_index_builds_total",
			Help: "Total number of search index builds",
		}),
		IndexlessDocsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "prepsearch_indexless_documents_total",
			Help: "Total number of documents that could not be indexed",
		}),
		FetchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prepsearch_fetches_total",
			Help: "Total number of test repository fetches",
		}, []string{"status"}),
		FetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "prepsearch_fetch_duration_seconds",
			Help:    "Duration of test repository fetches in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		IndexedDocuments: f.NewGauge(prometheus.GaugeOpts{
			Name: "prepsearch_indexed_documents",
			Help: "Number of documents in the current index",
		}),
	}
}

// RecordQuery records one scan and the matches it produced
func (m *Metrics) RecordQuery(matches int, duration time.Duration) {
	if m == nil {
		return
	}
	m.QueriesTotal.Inc()
	m.MatchesTotal.Add(float64(matches))
	m.QueryDuration.Observe(duration.Seconds())
}

// RecordSuggest records a suggestion lookup
func (m *Metrics) RecordSuggest() {
	if m == nil {
		return
	}
	m.SuggestionsTotal.Inc()
}

// RecordBuild records an index build
func (m *Metrics) RecordBuild(documents, indexless int) {
	if m == nil {
		return
	}
	m.IndexBuildsTotal.Inc()
	m.IndexlessDocsTotal.Add(float64(indexless))
	m.IndexedDocuments.Set(float64(documents - indexless))
}

// RecordFetch records a repository fetch with its status
func (m *Metrics) RecordFetch(err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.FetchesTotal.WithLabelValues(status).Inc()
	m.FetchDuration.Observe(duration.Seconds())
}
