package scheduler

import (
	"github.com/go-sif/progressive/logging"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK        = "ok"
	outcomeFailed    = "failed"
	outcomeDuplicate = "duplicate"
)

type metrics struct {
	jobs        *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	rows        prometheus.Counter
	queries     prometheus.Gauge
	pendingJobs prometheus.Gauge
}

func newMetrics(namespace string) *metrics {
	return &metrics{
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "jobs_total",
				Help:      "Completed jobs, by query type and outcome",
			},
			[]string{"type", "outcome"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "job_duration_seconds",
				Help:      "Job execution time in seconds, by query type",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		rows: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "rows_processed_total",
				Help:      "Rows of accumulated partitions",
			},
		),
		queries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "active_queries",
				Help:      "Queries with pending or in-flight jobs",
			},
		),
		pendingJobs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "pending_jobs",
				Help:      "Jobs waiting to be dispatched",
			},
		),
	}
}

// register adds all collectors to registerer, logging rather than failing on conflicts
func (m *metrics) register(registerer prometheus.Registerer, logger *logging.Logger) {
	if registerer == nil {
		return
	}
	for _, c := range []prometheus.Collector{m.jobs, m.jobDuration, m.rows, m.queries, m.pendingJobs} {
		if err := registerer.Register(c); err != nil {
			logger.Warnf("Unable to register scheduler metric: %v", err)
		}
	}
}
