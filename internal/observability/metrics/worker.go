package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	jobTotal     *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	jobInFlight  prometheus.Gauge
	queueLag     *prometheus.HistogramVec
	webhookTotal *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	jobTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docstream",
			Subsystem: "worker",
			Name:      "jobs_total",
			Help:      "Total processed jobs by type and status.",
		},
		[]string{"service", "type", "status"},
	)
	jobDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docstream",
			Subsystem: "worker",
			Name:      "job_duration_seconds",
			Help:      "Job processing duration in seconds by type and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "type", "status"},
	)
	jobInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docstream",
			Subsystem: "worker",
			Name:      "jobs_in_flight",
			Help:      "Number of in-flight jobs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docstream",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between job submission and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	webhookTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docstream",
			Subsystem: "worker",
			Name:      "webhook_deliveries_total",
			Help:      "Total completion webhook deliveries by status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(jobTotal, jobDuration, jobInFlight, queueLag, webhookTotal)

	return &WorkerMetrics{
		registry:     registry,
		jobTotal:     jobTotal,
		jobDuration:  jobDuration,
		jobInFlight:  jobInFlight,
		queueLag:     queueLag,
		webhookTotal: webhookTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartJob() {
	m.jobInFlight.Inc()
}

func (m *WorkerMetrics) FinishJob(service, jobType string, duration time.Duration, err error) {
	m.jobInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.jobTotal.WithLabelValues(service, jobType, status).Inc()
	m.jobDuration.WithLabelValues(service, jobType, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) RecordWebhookDelivery(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.webhookTotal.WithLabelValues(service, status).Inc()
}
