// Package metric exposes Prometheus metrics for pipeline runs and HTTP traffic.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "alumnicsv"

// Metrics contains all service metrics.
// Methods are safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	// Pipeline metrics
	RunsTotal   *prometheus.CounterVec
	RowsTotal   *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	UploadBytes *prometheus.HistogramVec
	ActiveRuns  prometheus.Gauge

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics creates the metric set. Nothing is registered yet.
func NewMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "runs_total",
				Help:      "Total number of pipeline runs by mode and status",
			},
			[]string{"mode", "status"},
		),

		RowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "rows_total",
				Help:      "Input rows by mode and outcome (accepted or a reject reason)",
			},
			[]string{"mode", "outcome"},
		),

		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "run_duration_seconds",
				Help:      "Pipeline run duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"mode"},
		),

		UploadBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "upload_bytes",
				Help:      "Size of uploaded CSV files in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
			},
			[]string{"mode"},
		),

		ActiveRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "active_runs",
				Help:      "Number of pipeline runs currently holding a slot",
			},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RunsTotal,
		m.RowsTotal,
		m.RunDuration,
		m.UploadBytes,
		m.ActiveRuns,
		m.HTTPRequests,
		m.HTTPDuration,
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(mode, status string, duration time.Duration, sizeBytes int64) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(mode, status).Inc()
	m.RunDuration.WithLabelValues(mode).Observe(duration.Seconds())
	m.UploadBytes.WithLabelValues(mode).Observe(float64(sizeBytes))
}

// ObserveRows adds n rows with the given outcome.
func (m *Metrics) ObserveRows(mode, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsTotal.WithLabelValues(mode, outcome).Add(float64(n))
}

// RunStarted increments the active run gauge.
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.ActiveRuns.Inc()
}

// RunFinished decrements the active run gauge.
func (m *Metrics) RunFinished() {
	if m == nil {
		return
	}
	m.ActiveRuns.Dec()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
