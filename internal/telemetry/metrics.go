package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal  *prometheus.CounterVec
	SolveDuration  *prometheus.HistogramVec
	Rejections     *prometheus.CounterVec
	DeficitResults prometheus.Counter
}

// NewMetrics creates and registers Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricing_requests_total",
				Help: "Total number of pricing requests by operation and status",
			},
			[]string{"operation", "status"},
		),
		SolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricing_solve_duration_seconds",
				Help:    "Pricing solve duration in seconds by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		Rejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricing_rejections_total",
				Help: "Requests rejected before solving, by reason",
			},
			[]string{"reason"},
		),
		DeficitResults: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pricing_deficit_results_total",
				Help: "Priced listings carrying at least one loss-making zone",
			},
		),
	}
}

// RecordRequest records a completed pricing request.
func (m *Metrics) RecordRequest(operation, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
	m.SolveDuration.WithLabelValues(operation).Observe(duration)
}

// RecordRejection records a request turned away before solving.
func (m *Metrics) RecordRejection(reason string) {
	m.Rejections.WithLabelValues(reason).Inc()
}
