package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight *prometheus.GaugeVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docflow",
			Subsystem: "worker",
			Name:      "stage_process_total",
			Help:      "Total processed pipeline messages by stage and status.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"stage", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docflow",
			Subsystem: "worker",
			Name:      "stage_process_duration_seconds",
			Help:      "Pipeline stage processing duration in seconds.",
			Buckets:   prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"stage", "status"},
	)
	processInFlight := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "docflow",
			Subsystem: "worker",
			Name:      "stage_process_in_flight",
			Help:      "Number of in-flight pipeline stage executions.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"stage"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartStage(stage string) {
	m.processInFlight.WithLabelValues(stage).Inc()
}

func (m *WorkerMetrics) FinishStage(stage string, duration time.Duration, err error) {
	m.processInFlight.WithLabelValues(stage).Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(stage, status).Inc()
	m.processDuration.WithLabelValues(stage, status).Observe(duration.Seconds())
}
