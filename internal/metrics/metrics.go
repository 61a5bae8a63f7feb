// Package metrics exposes Prometheus collectors for reports, score
// recalculation and the HTTP layer. Collectors live on a dedicated registry so
// /metrics only serves what this service defines plus Go runtime metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "farmops"

var registry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

var (
	reportRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "report",
		Name:      "requests_total",
		Help:      "Report generations by report kind and outcome.",
	}, []string{"report", "outcome"})

	reportDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "report",
		Name:      "duration_seconds",
		Help:      "Time spent aggregating a report.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"report"})

	reportRows = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "report",
		Name:      "rows",
		Help:      "Aggregated rows per report before paging.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"report"})

	recalcSubjects = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "recalc",
		Name:      "subjects_total",
		Help:      "Efficiency recalculations by subject kind and outcome.",
	}, []string{"kind", "outcome"})

	recalcJobs = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "recalc",
		Name:      "jobs_total",
		Help:      "Recalculation jobs by dispatch path.",
	}, []string{"path"})

	recalcQueueDepth = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "recalc",
		Name:      "queue_depth",
		Help:      "Jobs waiting in the in-memory recalculation queue.",
	})

	httpRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status_code"})

	httpDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
)

func init() { //nolint:gochecknoinits // runtime collectors on the private registry
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Registry returns the registry backing the /metrics endpoint.
func Registry() *prometheus.Registry {
	return registry
}

// ObserveReport records one report generation.
func ObserveReport(report string, rows int, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	reportRequests.WithLabelValues(report, outcome).Inc()
	reportDuration.WithLabelValues(report).Observe(elapsed.Seconds())
	if err == nil {
		reportRows.WithLabelValues(report).Observe(float64(rows))
	}
}

// RecordRecalculation records the outcome of one subject recalculation.
// outcome is one of "ok", "not_found", "error".
func RecordRecalculation(kind, outcome string) {
	recalcSubjects.WithLabelValues(kind, outcome).Inc()
}

// RecordRecalcJob records how a job was dispatched: "inline", "queued",
// "published" or "fallback".
func RecordRecalcJob(path string) {
	recalcJobs.WithLabelValues(path).Inc()
}

// SetRecalcQueueDepth updates the in-memory queue gauge.
func SetRecalcQueueDepth(depth int) {
	recalcQueueDepth.Set(float64(depth))
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(route, method, statusCode string, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, statusCode).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
