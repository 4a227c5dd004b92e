package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

// PipelineMetrics instruments the worker-side audit pipeline. The service
// label is bound at construction so the pipeline stages can report without
// knowing it.
type PipelineMetrics struct {
	registry *prometheus.Registry
	service  string

	auditTotal      *prometheus.CounterVec
	auditDuration   *prometheus.HistogramVec
	auditsInFlight  prometheus.Gauge
	auditScore      prometheus.Histogram
	extractionTotal *prometheus.CounterVec
	batchTotal      *prometheus.CounterVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	auditTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cav",
			Subsystem: "worker",
			Name:      "audit_runs_total",
			Help:      "Total audit runs by outcome.",
		},
		[]string{"service", "status"},
	)
	auditDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cav",
			Subsystem: "worker",
			Name:      "audit_run_duration_seconds",
			Help:      "Audit run duration in seconds by outcome.",
			Buckets:   []float64{1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service", "status"},
	)
	auditsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cav",
			Subsystem: "worker",
			Name:      "audits_in_flight",
			Help:      "Number of in-flight audit runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	auditScore := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cav",
			Subsystem: "worker",
			Name:      "audit_score",
			Help:      "Distribution of compliance scores per completed audit.",
			Buckets:   []float64{0, 10, 25, 50, 75, 90, 100},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	extractionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cav",
			Subsystem: "worker",
			Name:      "document_extractions_total",
			Help:      "Total document extractions by method.",
		},
		[]string{"service", "method"},
	)
	batchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cav",
			Subsystem: "worker",
			Name:      "analysis_batches_total",
			Help:      "Total analysis batches by outcome.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(auditTotal, auditDuration, auditsInFlight, auditScore, extractionTotal, batchTotal)

	return &PipelineMetrics{
		registry:        registry,
		service:         service,
		auditTotal:      auditTotal,
		auditDuration:   auditDuration,
		auditsInFlight:  auditsInFlight,
		auditScore:      auditScore,
		extractionTotal: extractionTotal,
		batchTotal:      batchTotal,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartAudit() {
	m.auditsInFlight.Inc()
}

func (m *PipelineMetrics) FinishAudit(duration time.Duration, report *domain.ComplianceReport, err error) {
	m.auditsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.auditTotal.WithLabelValues(m.service, status).Inc()
	m.auditDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())

	if err == nil && report != nil {
		m.auditScore.Observe(report.Score)
	}
}

func (m *PipelineMetrics) ObserveExtraction(method domain.ExtractionMethod) {
	m.extractionTotal.WithLabelValues(m.service, string(method)).Inc()
}

func (m *PipelineMetrics) ObserveBatch(failed bool) {
	outcome := "success"
	if failed {
		outcome = "failed"
	}
	m.batchTotal.WithLabelValues(m.service, outcome).Inc()
}
